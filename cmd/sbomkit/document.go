package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/sbom/spdx"
)

// readDocument decodes the named file, or stdin for "-".
func readDocument(ctx context.Context, name string) (*sbomkit.Document, error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	doc, err := spdx.NewDefaultDecoder().Decode(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// writeDocument encodes doc to the named file, or stdout for "-".
func writeDocument(ctx context.Context, cfg *commonConfig, name string, doc *sbomkit.Document) (err error) {
	var w io.Writer = os.Stdout
	if name != "-" {
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	var opts []spdx.Option
	if cfg.Indent != "" {
		opts = append(opts, spdx.WithIndent(cfg.Indent))
	}
	return spdx.NewDefaultEncoder(opts...).Encode(ctx, w, doc)
}
