package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/quay/sbomkit/advisory"
	"github.com/quay/sbomkit/depgraph"
)

// Vulns is the subcommand for listing recorded advisories.
func Vulns(ctx context.Context, cfg *commonConfig, args []string) error {
	fs := flag.NewFlagSet("sbomkit vulns", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one input document")
	}
	doc, err := readDocument(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	g := depgraph.New(doc)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	for i := range doc.Packages {
		p := &doc.Packages[i]
		for _, f := range advisory.PackageVulnerabilities(p) {
			fixed := ""
			if f.Vulnerability != nil && f.Vulnerability.FirstPatchedVersion != "" {
				fixed = "(fixed: " + f.Vulnerability.FirstPatchedVersion + ")"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				p.Name, p.Version, g.Level(p.ID), f.Severity, f.ID, f.Summary, fixed)
		}
	}
	return nil
}
