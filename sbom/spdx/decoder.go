package spdx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/sbom"
)

// DecoderOption is a type for configuring a Decoder.
type DecoderOption func(*Decoder)

// Decoder defines an SPDX decoder that converts SPDX documents to [sbomkit.Document].
//
// Both SPDX 2.2 and 2.3 JSON are accepted. Input compressed with gzip, zstd,
// or xz is detected and decompressed transparently.
type Decoder struct {
	// The data format to decode.
	Format Format
}

var _ sbom.Decoder = (*Decoder)(nil)

// NewDefaultDecoder creates a Decoder with default values and sets optional
// fields based on the provided options.
func NewDefaultDecoder(options ...DecoderOption) *Decoder {
	d := &Decoder{
		Format: JSONFormat,
	}

	for _, opt := range options {
		opt(d)
	}

	return d
}

// WithDecoderFormat sets the format for decoding.
func WithDecoderFormat(f Format) DecoderOption {
	return func(d *Decoder) {
		d.Format = f
	}
}

// Decode decodes an SPDX document from r.
//
// The document's original spdxVersion is reported, even though the
// underlying reader upgrades older documents to the 2.3 model.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) (*sbomkit.Document, error) {
	if d.Format != JSONFormat {
		return nil, fmt.Errorf("unsupported format: %s", d.Format)
	}
	r, done, err := decompress(r)
	if err != nil {
		return nil, invalid(err)
	}
	defer done()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("spdx: read: %w", err)
	}

	var head struct {
		SPDXVersion string `json:"spdxVersion"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, invalid(err)
	}
	doc, err := spdxjson.Read(bytes.NewReader(b))
	if err != nil {
		return nil, invalid(fmt.Errorf("failed to read SPDX JSON: %w", err))
	}

	out := d.parseDocument(ctx, doc)
	if head.SPDXVersion != "" {
		out.SPDXVersion = head.SPDXVersion
	}
	return out, nil
}

func invalid(err error) error {
	return &sbomkit.Error{
		Op:    "spdx.Decode",
		Kind:  sbomkit.ErrInvalid,
		Inner: err,
	}
}

func (d *Decoder) parseDocument(ctx context.Context, doc *v2_3.Document) *sbomkit.Document {
	out := &sbomkit.Document{
		SPDXID:      elementID(doc.SPDXIdentifier),
		Name:        doc.DocumentName,
		Namespace:   doc.DocumentNamespace,
		SPDXVersion: doc.SPDXVersion,
		DataLicense: doc.DataLicense,
	}
	if out.SPDXID == "" {
		out.SPDXID = sbomkit.DocumentID
	}
	if ci := doc.CreationInfo; ci != nil {
		out.CreationInfo.Created = ci.Created
		out.CreationInfo.LicenseListVersion = ci.LicenseListVersion
		for _, c := range ci.Creators {
			out.CreationInfo.Creators = append(out.CreationInfo.Creators, c.CreatorType+": "+c.Creator)
		}
	}
	for _, ref := range doc.ExternalDocumentReferences {
		id := string(ref.DocumentRefID)
		if !strings.HasPrefix(id, docRefPrefix) {
			id = docRefPrefix + id
		}
		out.ExternalDocumentRefs = append(out.ExternalDocumentRefs, sbomkit.ExternalDocumentRef{
			ID:  id,
			URI: ref.URI,
			Checksum: sbomkit.Checksum{
				Algorithm: string(ref.Checksum.Algorithm),
				Value:     ref.Checksum.Value,
			},
		})
	}

	files := make(map[string]struct{}, len(doc.Files))
	for _, f := range doc.Files {
		if f == nil {
			continue
		}
		file := newFile(f)
		files[file.ID] = struct{}{}
		out.Files = append(out.Files, file)
	}

	for _, p := range doc.Packages {
		if p == nil {
			continue
		}
		pkg := newPackage(p)
		for _, f := range p.Files {
			if f == nil {
				continue
			}
			file := newFile(f)
			pkg.HasFiles = append(pkg.HasFiles, file.ID)
			if _, ok := files[file.ID]; !ok {
				files[file.ID] = struct{}{}
				out.Files = append(out.Files, file)
			}
		}
		out.Packages = append(out.Packages, pkg)
	}

	idx := out.PackageIndex()
	for _, r := range doc.Relationships {
		if r == nil {
			continue
		}
		rel := sbomkit.Relationship{
			Element: docElementID(r.RefA),
			Type:    r.Relationship,
			Related: docElementID(r.RefB),
		}
		switch {
		case rel.Element == out.SPDXID && sbomkit.EqualConst(rel.Type, sbomkit.RelDescribes):
			out.DocumentDescribes = appendUnique(out.DocumentDescribes, rel.Related)
			continue
		case rel.Related == out.SPDXID && sbomkit.EqualConst(rel.Type, "DESCRIBED_BY"):
			out.DocumentDescribes = appendUnique(out.DocumentDescribes, rel.Element)
			continue
		case sbomkit.EqualConst(rel.Type, sbomkit.RelContains):
			if _, ok := files[rel.Related]; ok {
				if p := idx[rel.Element]; p != nil {
					p.HasFiles = appendUnique(p.HasFiles, rel.Related)
				}
			}
		}
		out.Relationships = append(out.Relationships, rel)
	}

	slog.DebugContext(ctx, "decoded SPDX document",
		"name", out.Name,
		"version", out.SPDXVersion,
		"packages", len(out.Packages),
		"files", len(out.Files),
		"relationships", len(out.Relationships))
	return out
}

func newPackage(p *v2_3.Package) sbomkit.Package {
	pkg := sbomkit.Package{
		ID:               elementID(p.PackageSPDXIdentifier),
		Name:             p.PackageName,
		Version:          p.PackageVersion,
		LicenseDeclared:  p.PackageLicenseDeclared,
		LicenseConcluded: p.PackageLicenseConcluded,
		DownloadLocation: p.PackageDownloadLocation,
		CopyrightText:    p.PackageCopyrightText,
	}
	if s := p.PackageSupplier; s != nil {
		switch {
		case s.SupplierType == "":
			pkg.Supplier = s.Supplier
		default:
			pkg.Supplier = s.SupplierType + ": " + s.Supplier
		}
	}
	if vc := p.PackageVerificationCode; vc != nil {
		pkg.VerificationCode = vc.Value
	}
	for _, ref := range p.PackageExternalReferences {
		if ref == nil {
			continue
		}
		pkg.ExternalRefs = append(pkg.ExternalRefs, sbomkit.ExternalRef{
			Category: ref.Category,
			Type:     ref.RefType,
			Locator:  ref.Locator,
			Comment:  ref.ExternalRefComment,
		})
	}
	return pkg
}

func newFile(f *v2_3.File) sbomkit.File {
	file := sbomkit.File{
		ID:                 elementID(f.FileSPDXIdentifier),
		Name:               strings.TrimPrefix(f.FileName, "./"),
		LicenseConcluded:   f.LicenseConcluded,
		LicenseInfoInFiles: f.LicenseInfoInFiles,
		CopyrightText:      f.FileCopyrightText,
	}
	for _, c := range f.Checksums {
		file.Checksums = append(file.Checksums, sbomkit.Checksum{
			Algorithm: string(c.Algorithm),
			Value:     c.Value,
		})
	}
	return file
}

func appendUnique(s []string, v string) []string {
	for _, e := range s {
		if e == v {
			return s
		}
	}
	return append(s, v)
}
