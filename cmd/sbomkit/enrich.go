package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/quay/sbomkit/advisory"
	"github.com/quay/sbomkit/advisory/cache"
	"github.com/quay/sbomkit/advisory/github"
)

// Enrich is the subcommand for adding advisories to a document.
func Enrich(ctx context.Context, cfg *commonConfig, args []string) error {
	c := &cfg.Config
	fs := flag.NewFlagSet("sbomkit enrich", flag.ExitOnError)
	out := fs.String("o", "-", "output file")
	cachePath := fs.String("cache", c.Cache.Path, "cache advisory responses in this SQLite database")
	ttl := fs.Duration("ttl", c.Cache.TTL.Or(24*time.Hour), "how long cached responses are used")
	batch := fs.Int("batch", c.BatchSize, "concurrent requests per batch (0 for the default)")
	timeout := fs.Duration("timeout", c.Timeout.Or(advisory.DefaultTimeout), "timeout for each advisory request")
	rps := fs.Float64("rate", c.RequestsPerSecond, "maximum requests per second (0 for unlimited)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one input document")
	}

	doc, err := readDocument(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	var gh github.Client
	if err := gh.Configure(ctx, c.githubConfig(), nil); err != nil {
		return err
	}
	var src advisory.Source = &gh
	if *cachePath != "" {
		cs, err := cache.Open(*cachePath, src, *ttl)
		if err != nil {
			return err
		}
		defer cs.Close()
		if n, err := cs.Prune(ctx); err != nil {
			slog.WarnContext(ctx, "unable to prune cache", "reason", err)
		} else if n > 0 {
			slog.DebugContext(ctx, "pruned cache", "removed", n)
		}
		src = cs
	}

	e := advisory.Enricher{
		Source:    src,
		BatchSize: *batch,
		Timeout:   *timeout,
	}
	if *rps > 0 {
		e.Limiter = rate.NewLimiter(rate.Limit(*rps), 1)
	}
	sum, err := e.Enrich(ctx, doc)
	if err != nil {
		return err
	}
	if sum.Partial() {
		slog.WarnContext(ctx, "some advisory queries failed; document may be incomplete",
			"failed_batches", sum.FailedBatches,
			"failed_requests", sum.FailedRequests)
	}
	return writeDocument(ctx, cfg, *out, doc)
}
