// Sbomkit merges, enriches, and inspects SPDX documents.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quay/claircore/toolkit/log"
)

type commonConfig struct {
	Config config
	Indent string
}

type subcmd func(context.Context, *commonConfig, []string) error

func main() {
	var exit int
	defer func() {
		if exit != 0 {
			os.Exit(exit)
		}
	}()
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer done()

	var cfg commonConfig
	fs := flag.NewFlagSet("main", flag.ExitOnError)
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nSubcommands\n\n")
		for _, c := range []struct{ Name, Help string }{
			{"merge", "merge documents provided as arguments into one"},
			{"enrich", "add security advisories to a document"},
			{"paths", "print dependency paths for packages in a document"},
			{"license", "assess license risk for every package in a document"},
			{"vulns", "list advisories recorded in an enriched document"},
		} {
			fmt.Fprintln(out, c.Name)
			fmt.Fprintf(out, "\t%s\n", c.Help)
		}
		fmt.Fprintln(out)
	}
	cfgFile := fs.String("config", "", "JSON configuration file")
	verbose := fs.Bool("v", false, "enable debug logging")
	otlp := fs.String("otlp", "", "export traces to the OTLP/HTTP endpoint at this URL")
	metrics := fs.String("metrics", "", "write prometheus metrics to this textfile on exit")
	fs.StringVar(&cfg.Indent, "indent", "", "indent output documents with this string")
	fs.Parse(os.Args[1:])

	lvl := slog.LevelInfo
	if *verbose {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(log.WrapHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))))

	if *cfgFile != "" {
		b, err := os.ReadFile(*cfgFile)
		if err != nil {
			slog.Error("unable to read config", "reason", err)
			exit = 99
			return
		}
		if err := json.Unmarshal(b, &cfg.Config); err != nil {
			slog.Error("unable to parse config", "file", *cfgFile, "reason", err)
			exit = 99
			return
		}
	}
	if *otlp != "" {
		shutdown, err := setupTracing(ctx, *otlp)
		if err != nil {
			slog.Error("unable to set up tracing", "reason", err)
			exit = 99
			return
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("trace shutdown failed", "reason", err)
			}
		}()
	}
	if *metrics != "" {
		defer func() {
			if err := prometheus.WriteToTextfile(*metrics, prometheus.DefaultGatherer); err != nil {
				slog.Warn("unable to write metrics", "file", *metrics, "reason", err)
			}
		}()
	}

	var cmd subcmd
	switch n := fs.Arg(0); n {
	case "merge":
		cmd = Merge
	case "enrich":
		cmd = Enrich
	case "paths":
		cmd = Paths
	case "license":
		cmd = License
	case "vulns":
		cmd = Vulns
	case "":
		fs.Usage()
		exit = 99
		return
	default:
		fs.Usage()
		fmt.Fprintf(os.Stderr, "\nunknown subcommand %q\n", n)
		exit = 99
		return
	}

	if err := cmd(ctx, &cfg, fs.Args()[1:]); err != nil {
		slog.Error("command failed", "command", fs.Arg(0), "reason", err)
		exit = 2
		if ctx.Err() != nil {
			exit = 1
		}
	}
}
