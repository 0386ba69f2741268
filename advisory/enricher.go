package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/quay/claircore/toolkit/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/advisory/github"
	"github.com/quay/sbomkit/purl"
)

// Defaults for the Enricher's zero values.
const (
	DefaultBatchSize = 100
	DefaultTimeout   = 30 * time.Second
)

// Enricher writes advisories from a Source into documents.
type Enricher struct {
	// Source is the advisory database to query. It must be set.
	Source Source
	// Registry maps package URLs to ecosystems. If nil, the
	// [purl.DefaultRegistry] is used.
	Registry *purl.Registry
	// BatchSize bounds the number of outstanding requests. If zero,
	// DefaultBatchSize is used.
	BatchSize int
	// Timeout bounds each request. A request that times out fails its batch.
	// If zero, DefaultTimeout is used.
	Timeout time.Duration
	// Limiter, if set, is waited on before each request.
	Limiter *rate.Limiter
}

// Summary reports what an enrichment run did.
//
// A run with failed batches did not see every advisory; the document is still
// consistent, but may be missing references.
type Summary struct {
	// Queried is the number of distinct (ecosystem, name) pairs requested.
	Queried int
	// FailedBatches is the number of batches whose results were dropped.
	FailedBatches int
	// FailedRequests is the number of individual requests that failed.
	FailedRequests int
	// Matched is the number of advisories that applied to an installed
	// version.
	Matched int
	// RefsAdded is the number of external references appended.
	RefsAdded int
}

// Partial reports whether any advisory results were dropped.
func (s *Summary) Partial() bool {
	return s.FailedBatches > 0
}

// Enrich queries the GitHub advisory database with the provided token and
// writes the results into doc.
//
// Failed batches are logged and skipped; see [Enricher.Enrich] for access to
// the run's [Summary].
func Enrich(ctx context.Context, doc *sbomkit.Document, accessToken string) error {
	c, err := github.NewClient(accessToken)
	if err != nil {
		return err
	}
	e := Enricher{Source: c}
	_, err = e.Enrich(ctx, doc)
	return err
}

// Target is a package awaiting the results for one query.
type target struct {
	Index   int
	Version string
}

// Group is the query plan for one ecosystem. Names are in first-seen order.
type group struct {
	Ecosystem string
	Names     []string
	Targets   map[string][]target
}

// Enrich modifies doc in place, appending advisory references to every
// vulnerable package.
//
// Only cancellation of ctx or a misconfigured Enricher reports an error.
// Source failures drop the affected batch and are reported in the Summary.
func (e *Enricher) Enrich(ctx context.Context, doc *sbomkit.Document) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "Enrich", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	if e.Source == nil {
		err := &sbomkit.Error{Op: "advisory.Enrich", Kind: sbomkit.ErrInvalid, Message: "no advisory source"}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ctx = log.With(ctx, "document", doc.Name)

	sum := new(Summary)
	var matches []found
	for _, g := range e.plan(ctx, doc) {
		vs, err := e.ecosystem(ctx, g, sum)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "enrichment interrupted")
			return sum, err
		}
		matches = append(matches, vs...)
	}

	for i := range matches {
		f := &matches[i]
		pkg := &doc.Packages[f.Index]
		f.Vuln.Package.ID = pkg.ID
		if f.Vuln.Package.Name == "" {
			f.Vuln.Package.Name = pkg.Name
		}
		adv, vuln, err := EncodeRefs(&f.Vuln)
		if err != nil {
			return sum, err
		}
		sum.Matched++
		for _, ref := range []sbomkit.ExternalRef{adv, vuln} {
			if hasRef(pkg.ExternalRefs, &ref) {
				continue
			}
			pkg.ExternalRefs = append(pkg.ExternalRefs, ref)
			sum.RefsAdded++
		}
	}
	if sum.RefsAdded > 0 && doc.Version().Less(sbomkit.V2_3) {
		slog.DebugContext(ctx, "raising document version", "from", doc.SPDXVersion, "to", sbomkit.V2_3.String())
		doc.SetVersion(sbomkit.V2_3)
	}

	span.SetAttributes(
		attribute.Int("queried", sum.Queried),
		attribute.Int("failed_batches", sum.FailedBatches),
		attribute.Int("refs_added", sum.RefsAdded),
	)
	lvl := slog.LevelInfo
	if sum.Partial() {
		lvl = slog.LevelWarn
	}
	slog.Log(ctx, lvl, "enrichment done",
		"queried", sum.Queried,
		"matched", sum.Matched,
		"refs_added", sum.RefsAdded,
		"failed_batches", sum.FailedBatches,
		"failed_requests", sum.FailedRequests)
	return sum, nil
}

// Plan groups the document's packages by ecosystem, in first-seen order.
func (e *Enricher) plan(ctx context.Context, doc *sbomkit.Document) []*group {
	reg := e.Registry
	if reg == nil {
		reg = purl.DefaultRegistry()
	}
	var out []*group
	byEco := make(map[string]*group)
	for i := range doc.Packages {
		p := &doc.Packages[i]
		loc, ok := p.PackageURL()
		if !ok {
			continue
		}
		eco, name, version, err := reg.Resolve(loc)
		if err != nil {
			slog.DebugContext(ctx, "skipping package", "package", p.ID, "reason", err)
			continue
		}
		if sbomkit.IsSet(p.Version) {
			version = p.Version
		}
		g, ok := byEco[eco]
		if !ok {
			g = &group{Ecosystem: eco, Targets: make(map[string][]target)}
			byEco[eco] = g
			out = append(out, g)
		}
		if _, ok := g.Targets[name]; !ok {
			g.Names = append(g.Names, name)
		}
		g.Targets[name] = append(g.Targets[name], target{Index: i, Version: version})
	}
	return out
}

// Found is a vulnerability bound to the package at Index.
type found struct {
	Index int
	Vuln  sbomkit.SecurityVulnerability
}

// Ecosystem runs the batches for one group, strictly one after another.
func (e *Enricher) ecosystem(ctx context.Context, g *group, sum *Summary) ([]found, error) {
	ctx, span := tracer.Start(ctx, "Ecosystem", trace.WithAttributes(attribute.String("ecosystem", g.Ecosystem)))
	defer span.End()
	ctx = log.With(ctx, "ecosystem", g.Ecosystem)

	size := e.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out []found
	for n, start := 0, 0; start < len(g.Names); n, start = n+1, start+size {
		names := g.Names[start:min(start+size, len(g.Names))]
		sum.Queried += len(names)
		res, failed, err := e.batch(ctx, g.Ecosystem, n, names)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err != nil {
			sum.FailedBatches++
			sum.FailedRequests += failed
			slog.WarnContext(ctx, "advisory batch failed, dropping results",
				"batch", n,
				"size", len(names),
				"failed", failed,
				"reason", err)
			continue
		}
		for i, name := range names {
			for _, t := range g.Targets[name] {
				out = appendMatches(out, g.Ecosystem, t, res[i])
			}
		}
	}
	return out, nil
}

// Batch issues one request per name concurrently and waits for all of them.
// Any failure fails the whole batch.
func (e *Enricher) batch(ctx context.Context, eco string, n int, names []string) ([][]sbomkit.SecurityVulnerability, int, error) {
	ctx, span := tracer.Start(ctx, "Batch", trace.WithAttributes(
		attribute.Int("batch", n),
		attribute.Int("size", len(names)),
	))
	defer span.End()

	res := make([][]sbomkit.SecurityVulnerability, len(names))
	var failed atomic.Int64
	var eg errgroup.Group
	for i, name := range names {
		eg.Go(func() error {
			vs, err := e.query(ctx, eco, name)
			if err != nil {
				failed.Add(1)
				return fmt.Errorf("%s: %w", name, err)
			}
			res[i] = vs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch failed")
		return nil, int(failed.Load()), err
	}
	return res, 0, nil
}

func (e *Enricher) query(ctx context.Context, eco, name string) ([]sbomkit.SecurityVulnerability, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return e.Source.Vulnerabilities(ctx, eco, name)
}

// AppendMatches appends the advisories that apply to the target's installed
// version.
func appendMatches(out []found, eco string, t target, vs []sbomkit.SecurityVulnerability) []found {
	for _, v := range vs {
		if v.Advisory.Withdrawn() {
			continue
		}
		if !MatchesRange(v.VulnerableVersionRange, t.Version) {
			continue
		}
		v.Ecosystem = eco
		v.Package.Version = t.Version
		out = append(out, found{Index: t.Index, Vuln: v})
	}
	return out
}

func hasRef(refs []sbomkit.ExternalRef, r *sbomkit.ExternalRef) bool {
	for i := range refs {
		if refs[i] == *r {
			return true
		}
	}
	return false
}
