package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/merge"
)

// Merge is the subcommand for combining documents.
func Merge(ctx context.Context, cfg *commonConfig, args []string) error {
	fs := flag.NewFlagSet("sbomkit merge", flag.ExitOnError)
	name := fs.String("name", "", "package name of the merged document (required)")
	version := fs.String("version", "", "package version of the merged document (required)")
	out := fs.String("o", "-", "output file")
	fs.Parse(args)
	if *name == "" || *version == "" {
		fs.Usage()
		return fmt.Errorf("name and version are required")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("no input documents")
	}

	docs := make([]*sbomkit.Document, 0, fs.NArg())
	for _, in := range fs.Args() {
		doc, err := readDocument(ctx, in)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	merged, err := merge.Merge(*name, *version, docs)
	if err != nil {
		return err
	}
	return writeDocument(ctx, cfg, *out, merged)
}
