// Package merge combines several SPDX documents into one.
package merge

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quay/sbomkit"
)

// RootPackageID is the conventional id sbom-tool style generators give the
// package a document describes. It collides across documents.
const RootPackageID = "SPDXRef-RootPackage"

// DefaultNamespaceHost is used when the first document's namespace has no
// usable host.
const DefaultNamespaceHost = "spdx.org/spdxdocs"

// Options controls the generated parts of a merged document.
type Options struct {
	// NewID returns a fresh opaque suffix. Defaults to [uuid.NewString].
	NewID func() string
	// Now returns the creation time. Defaults to [time.Now].
	Now func() time.Time
	// Creator is appended to the merged creators. Defaults to
	// [sbomkit.ToolCreator].
	Creator string
}

func (o *Options) defaults() {
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Creator == "" {
		o.Creator = sbomkit.ToolCreator()
	}
}

// Merge combines docs into a single document describing the named package.
//
// The first document is the metadata template. The root packages of every
// document are renamed to unique ids before concatenation, so that the
// conventional root id used by each input never collides. Inputs are not
// modified.
func Merge(name, version string, docs []*sbomkit.Document) (*sbomkit.Document, error) {
	return MergeWith(Options{}, name, version, docs)
}

// MergeWith is [Merge] with explicit Options.
//
// The merged document's SPDXID is always "SPDXRef-DOCUMENT", the only id SPDX
// allows for a document. The package name and version are recorded in its
// Name and Namespace instead.
func MergeWith(opts Options, name, version string, docs []*sbomkit.Document) (*sbomkit.Document, error) {
	const op = "merge.Merge"
	if len(docs) == 0 {
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrInvalid, Message: "no documents"}
	}
	for i, d := range docs {
		if d == nil {
			return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrInvalid, Message: fmt.Sprintf("document %d is nil", i)}
		}
	}
	opts.defaults()
	ids := newIDSet(docs)

	tmpl := docs[0]
	suffix, err := ids.fresh(opts.NewID, "")
	if err != nil {
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrInternal, Inner: err}
	}
	out := &sbomkit.Document{
		SPDXID:      sbomkit.DocumentID,
		Name:        strings.TrimSpace(name + " " + version),
		Namespace:   namespace(tmpl.Namespace, name, version, suffix),
		SPDXVersion: mergedVersion(docs),
		DataLicense: tmpl.DataLicense,
		CreationInfo: sbomkit.CreationInfo{
			Created:            opts.Now().UTC().Format(time.RFC3339),
			Creators:           mergedCreators(docs, opts.Creator),
			LicenseListVersion: tmpl.CreationInfo.LicenseListVersion,
		},
	}

	pkgSeen := make(map[string]struct{})
	fileSeen := make(map[string]struct{})
	relSeen := make(map[sbomkit.Relationship]struct{})
	for _, d := range docs {
		rename, err := renameRoots(d, ids, opts.NewID)
		if err != nil {
			return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrInternal, Inner: err}
		}
		fix := func(id string) string {
			if n, ok := rename[id]; ok {
				return n
			}
			return id
		}

		for _, id := range d.DocumentDescribes {
			out.DocumentDescribes = appendUnique(out.DocumentDescribes, fix(id))
		}
		for _, p := range d.Packages {
			p.ID = fix(p.ID)
			if _, ok := pkgSeen[p.ID]; ok {
				continue
			}
			pkgSeen[p.ID] = struct{}{}
			p.ExternalRefs = append([]sbomkit.ExternalRef(nil), p.ExternalRefs...)
			p.HasFiles = append([]string(nil), p.HasFiles...)
			out.Packages = append(out.Packages, p)
		}
		for _, f := range d.Files {
			if _, ok := fileSeen[f.ID]; ok {
				continue
			}
			fileSeen[f.ID] = struct{}{}
			out.Files = append(out.Files, f)
		}
		for _, r := range d.Relationships {
			r.Element = fix(r.Element)
			r.Related = fix(r.Related)
			if _, ok := relSeen[r]; ok {
				continue
			}
			relSeen[r] = struct{}{}
			out.Relationships = append(out.Relationships, r)
		}
		out.ExternalDocumentRefs = append(out.ExternalDocumentRefs, d.ExternalDocumentRefs...)
	}
	return out, nil
}

// renameRoots returns a mapping of each of the document's root package ids to
// a fresh id.
//
// Described ids that are not packages in d, such as files, keep their id.
func renameRoots(d *sbomkit.Document, ids *idSet, gen func() string) (map[string]string, error) {
	roots := d.DocumentDescribes
	if len(roots) == 0 && d.Package(RootPackageID) != nil {
		roots = []string{RootPackageID}
	}
	m := make(map[string]string, len(roots))
	for _, r := range roots {
		if _, ok := m[r]; ok {
			continue
		}
		if d.Package(r) == nil {
			continue
		}
		n, err := ids.fresh(gen, RootPackageID+"-")
		if err != nil {
			return nil, err
		}
		m[r] = n
	}
	return m, nil
}

// idSet tracks every id in use so generated ids are guaranteed unique even
// with a poor generator.
type idSet map[string]struct{}

func newIDSet(docs []*sbomkit.Document) *idSet {
	s := make(idSet)
	for _, d := range docs {
		for _, p := range d.Packages {
			s[p.ID] = struct{}{}
		}
		for _, f := range d.Files {
			s[f.ID] = struct{}{}
		}
	}
	return &s
}

const maxAttempts = 16

func (s *idSet) fresh(gen func() string, prefix string) (string, error) {
	for range maxAttempts {
		id := prefix + gen()
		if _, ok := (*s)[id]; ok {
			continue
		}
		(*s)[id] = struct{}{}
		return id, nil
	}
	return "", fmt.Errorf("unable to generate a unique id with prefix %q", prefix)
}

func namespace(tmpl, name, version, suffix string) string {
	host := DefaultNamespaceHost
	if u, err := url.Parse(tmpl); err == nil && u.Host != "" {
		host = u.Host
	}
	return fmt.Sprintf("https://%s/%s/%s/%s", host, url.PathEscape(name), url.PathEscape(version), suffix)
}

// MergedVersion reports the highest format version among the inputs, so that
// no input's fields are misrepresented.
func mergedVersion(docs []*sbomkit.Document) string {
	var v sbomkit.FormatVersion
	for _, d := range docs {
		if dv := d.Version(); v.Less(dv) {
			v = dv
		}
	}
	if v == (sbomkit.FormatVersion{}) {
		return sbomkit.V2_3.String()
	}
	return v.String()
}

// MergedCreators keeps the first document's organization, then every other
// non-organization creator in first-seen order, then the merging tool.
func mergedCreators(docs []*sbomkit.Document, tool string) []string {
	var out []string
	if org := docs[0].CreationInfo.Organization(); org != "" {
		out = append(out, string(sbomkit.SupplierOrganization)+": "+org)
	}
	for _, d := range docs {
		for _, c := range d.CreationInfo.Creators {
			if s, ok := sbomkit.ParseSupplier(c); ok && s.Type == sbomkit.SupplierOrganization {
				continue
			}
			out = appendUnique(out, c)
		}
	}
	return appendUnique(out, tool)
}

func appendUnique(s []string, v string) []string {
	for _, e := range s {
		if e == v {
			return s
		}
	}
	return append(s, v)
}
