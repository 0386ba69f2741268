package spdx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	spdxjson "github.com/spdx/tools-golang/json"
	v2common "github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/sbom"
)

// Option is a type for setting optional fields for the Encoder.
type Option func(*Encoder)

var _ sbom.Encoder = (*Encoder)(nil)

// Encoder writes [sbomkit.Document] values as SPDX 2.3 JSON.
type Encoder struct {
	// The data format in which to encode.
	Format Format
	// Indent, if not empty, is used to indent the output.
	Indent string
}

// NewDefaultEncoder creates an Encoder with default values and sets optional
// fields based on the provided options.
func NewDefaultEncoder(options ...Option) *Encoder {
	e := &Encoder{
		Format: JSONFormat,
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

// WithIndent is used to pretty-print the output.
func WithIndent(indent string) Option {
	return func(e *Encoder) {
		e.Indent = indent
	}
}

// Encode encodes doc to w.
//
// DocumentDescribes entries are written as DESCRIBES relationships from the
// document, and HasFiles entries without a matching relationship are written
// as CONTAINS relationships.
func (e *Encoder) Encode(ctx context.Context, w io.Writer, doc *sbomkit.Document) error {
	if e.Format != JSONFormat {
		return fmt.Errorf("unknown requested format: %v", e.Format)
	}
	out, err := e.toSPDX(ctx, doc)
	if err != nil {
		return err
	}
	if e.Indent == "" {
		return spdxjson.Write(out, w)
	}
	var buf bytes.Buffer
	if err := spdxjson.Write(out, &buf); err != nil {
		return err
	}
	var ind bytes.Buffer
	if err := json.Indent(&ind, bytes.TrimSpace(buf.Bytes()), "", e.Indent); err != nil {
		return err
	}
	ind.WriteByte('\n')
	_, err = ind.WriteTo(w)
	return err
}

func (e *Encoder) toSPDX(ctx context.Context, doc *sbomkit.Document) (*v2_3.Document, error) {
	version := doc.SPDXVersion
	if version == "" {
		version = v2_3.Version
	}
	dataLicense := doc.DataLicense
	if dataLicense == "" {
		dataLicense = v2_3.DataLicense
	}
	docID := doc.SPDXID
	if docID == "" {
		docID = sbomkit.DocumentID
	}
	out := &v2_3.Document{
		SPDXVersion:       version,
		DataLicense:       dataLicense,
		SPDXIdentifier:    toElementID(docID),
		DocumentName:      doc.Name,
		DocumentNamespace: doc.Namespace,
		CreationInfo: &v2_3.CreationInfo{
			Created:            doc.CreationInfo.Created,
			LicenseListVersion: doc.CreationInfo.LicenseListVersion,
		},
	}
	for _, c := range doc.CreationInfo.Creators {
		typ, name, ok := strings.Cut(c, ":")
		if !ok {
			typ, name = string(sbomkit.SupplierTool), c
		}
		out.CreationInfo.Creators = append(out.CreationInfo.Creators, v2common.Creator{
			CreatorType: strings.TrimSpace(typ),
			Creator:     strings.TrimSpace(name),
		})
	}
	for _, ref := range doc.ExternalDocumentRefs {
		out.ExternalDocumentReferences = append(out.ExternalDocumentReferences, v2_3.ExternalDocumentRef{
			DocumentRefID: v2common.DocumentID(strings.TrimPrefix(ref.ID, docRefPrefix)),
			URI:           ref.URI,
			Checksum: v2common.Checksum{
				Algorithm: v2common.ChecksumAlgorithm(ref.Checksum.Algorithm),
				Value:     ref.Checksum.Value,
			},
		})
	}

	for i := range doc.Files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		out.Files = append(out.Files, newSpdxFile(&doc.Files[i]))
	}

	contains := make(map[[2]string]struct{})
	for _, r := range doc.Relationships {
		if sbomkit.EqualConst(r.Type, sbomkit.RelContains) {
			contains[[2]string{r.Element, r.Related}] = struct{}{}
		}
	}
	for _, id := range doc.DocumentDescribes {
		out.Relationships = append(out.Relationships, &v2_3.Relationship{
			RefA:         v2common.MakeDocElementID("", string(toElementID(docID))),
			RefB:         toDocElementID(id),
			Relationship: sbomkit.RelDescribes,
		})
	}
	for i := range doc.Packages {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p := &doc.Packages[i]
		out.Packages = append(out.Packages, newSpdxPackage(p))
		for _, f := range p.HasFiles {
			if _, ok := contains[[2]string{p.ID, f}]; ok {
				continue
			}
			out.Relationships = append(out.Relationships, &v2_3.Relationship{
				RefA:         toDocElementID(p.ID),
				RefB:         toDocElementID(f),
				Relationship: sbomkit.RelContains,
			})
		}
	}
	for _, r := range doc.Relationships {
		out.Relationships = append(out.Relationships, &v2_3.Relationship{
			RefA:         toDocElementID(r.Element),
			RefB:         toDocElementID(r.Related),
			Relationship: r.Type,
		})
	}
	return out, nil
}

func newSpdxPackage(p *sbomkit.Package) *v2_3.Package {
	download := p.DownloadLocation
	if download == "" {
		download = sbomkit.NoAssertion
	}
	pkg := &v2_3.Package{
		PackageName:             p.Name,
		PackageSPDXIdentifier:   toElementID(p.ID),
		PackageVersion:          p.Version,
		PackageDownloadLocation: download,
		PackageLicenseDeclared:  p.LicenseDeclared,
		PackageLicenseConcluded: p.LicenseConcluded,
		PackageCopyrightText:    p.CopyrightText,
		FilesAnalyzed:           p.VerificationCode != "",
	}
	switch s, ok := sbomkit.ParseSupplier(p.Supplier); {
	case ok:
		_, rest, _ := strings.Cut(p.Supplier, ":")
		pkg.PackageSupplier = &v2common.Supplier{
			SupplierType: string(s.Type),
			Supplier:     strings.TrimSpace(rest),
		}
	case p.Supplier != "":
		pkg.PackageSupplier = &v2common.Supplier{Supplier: p.Supplier}
	}
	if p.VerificationCode != "" {
		pkg.PackageVerificationCode = &v2common.PackageVerificationCode{Value: p.VerificationCode}
	}
	for _, ref := range p.ExternalRefs {
		pkg.PackageExternalReferences = append(pkg.PackageExternalReferences, &v2_3.PackageExternalReference{
			Category:           ref.Category,
			RefType:            ref.Type,
			Locator:            ref.Locator,
			ExternalRefComment: ref.Comment,
		})
	}
	return pkg
}

func newSpdxFile(f *sbomkit.File) *v2_3.File {
	file := &v2_3.File{
		FileName:           f.Name,
		FileSPDXIdentifier: toElementID(f.ID),
		LicenseConcluded:   f.LicenseConcluded,
		LicenseInfoInFiles: f.LicenseInfoInFiles,
		FileCopyrightText:  f.CopyrightText,
	}
	for _, c := range f.Checksums {
		file.Checksums = append(file.Checksums, v2common.Checksum{
			Algorithm: v2common.ChecksumAlgorithm(c.Algorithm),
			Value:     c.Value,
		})
	}
	return file
}
