package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/quay/sbomkit/depgraph"
)

// Paths is the subcommand for printing dependency paths.
//
// With no package ids, every package in the document is printed.
func Paths(ctx context.Context, cfg *commonConfig, args []string) error {
	fs := flag.NewFlagSet("sbomkit paths", flag.ExitOnError)
	chain := fs.Bool("chain", false, "print only the first depends-on chain")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("expected an input document")
	}
	doc, err := readDocument(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	ids := fs.Args()[1:]
	if len(ids) == 0 {
		for i := range doc.Packages {
			ids = append(ids, doc.Packages[i].ID)
		}
	}

	g := depgraph.New(doc)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	for _, id := range ids {
		lvl := g.Level(id)
		if *chain {
			var names []string
			for _, p := range g.DependsOnChain(ctx, id) {
				names = append(names, p.Name)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, lvl, strings.Join(names, " > "))
			continue
		}
		paths := g.AncestorPaths(ctx, id)
		if len(paths) == 0 {
			fmt.Fprintf(w, "%s\t%s\t\n", id, lvl)
			continue
		}
		for _, p := range paths {
			names := make([]string, len(p))
			for i, pkg := range p {
				names[i] = pkg.Name
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, lvl, strings.Join(names, " > "))
		}
	}
	return nil
}
