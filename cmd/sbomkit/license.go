package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/license"
)

// License is the subcommand for assessing package licenses.
func License(ctx context.Context, cfg *commonConfig, args []string) error {
	fs := flag.NewFlagSet("sbomkit license", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one input document")
	}
	doc, err := readDocument(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	type row struct {
		ID      string       `json:"id"`
		Name    string       `json:"name"`
		License string       `json:"license"`
		Risk    license.Risk `json:"risk"`
	}
	rows := make([]row, len(doc.Packages))
	for i := range doc.Packages {
		p := &doc.Packages[i]
		lic := p.LicenseConcluded
		if !sbomkit.IsSet(lic) {
			lic = p.LicenseDeclared
		}
		rows[i] = row{ID: p.ID, Name: p.Name, License: lic, Risk: license.AssessPackage(p)}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", cfg.Indent)
		return enc.Encode(rows)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.License, r.Risk.Severity, strings.Join(r.Risk.Reasons, "; "))
	}
	return nil
}
