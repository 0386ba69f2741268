package sbomkit

import (
	"fmt"
	"strconv"
	"strings"
)

// DocumentID is the conventional SPDXID of a Document.
const DocumentID = "SPDXRef-DOCUMENT"

// Document is an SPDX document.
//
// Relationships of type DESCRIBES originating from the document itself are
// not kept in Relationships; the described ids live in DocumentDescribes.
type Document struct {
	// SPDXID of the document, almost always "SPDXRef-DOCUMENT".
	SPDXID string `json:"SPDXID"`
	// Name of the document.
	Name string `json:"name"`
	// Namespace is a URI that is unique to this document.
	Namespace string `json:"documentNamespace"`
	// SPDXVersion is the raw format version, e.g. "SPDX-2.3".
	SPDXVersion string `json:"spdxVersion"`
	// DataLicense is the license the document itself is under.
	DataLicense  string       `json:"dataLicense"`
	CreationInfo CreationInfo `json:"creationInfo"`
	// DocumentDescribes is the list of root element ids.
	DocumentDescribes    []string              `json:"documentDescribes,omitempty"`
	Packages             []Package             `json:"packages,omitempty"`
	Files                []File                `json:"files,omitempty"`
	Relationships        []Relationship        `json:"relationships,omitempty"`
	ExternalDocumentRefs []ExternalDocumentRef `json:"externalDocumentRefs,omitempty"`
}

// CreationInfo records when and by whom a Document was made.
type CreationInfo struct {
	Created            string   `json:"created"`
	Creators           []string `json:"creators"`
	LicenseListVersion string   `json:"licenseListVersion,omitempty"`
}

// Organization reports the first "Organization: X" creator, if any.
func (c *CreationInfo) Organization() string {
	for _, cr := range c.Creators {
		if s, ok := ParseSupplier(cr); ok && s.Type == SupplierOrganization {
			return s.Name
		}
	}
	return ""
}

// Package is an SPDX package.
type Package struct {
	ID               string        `json:"SPDXID"`
	Name             string        `json:"name"`
	Version          string        `json:"versionInfo,omitempty"`
	LicenseDeclared  string        `json:"licenseDeclared,omitempty"`
	LicenseConcluded string        `json:"licenseConcluded,omitempty"`
	DownloadLocation string        `json:"downloadLocation,omitempty"`
	CopyrightText    string        `json:"copyrightText,omitempty"`
	Supplier         string        `json:"supplier,omitempty"`
	ExternalRefs     []ExternalRef `json:"externalRefs,omitempty"`
	// HasFiles is the list of file ids this package contains.
	HasFiles []string `json:"hasFiles,omitempty"`
	// VerificationCode is only present in documents that analyzed files.
	VerificationCode string `json:"-"`
}

// PackageURL returns the locator of the first package-manager purl
// reference, if present.
func (p *Package) PackageURL() (string, bool) {
	for i := range p.ExternalRefs {
		if p.ExternalRefs[i].Kind() == RefKindPurl {
			return p.ExternalRefs[i].Locator, true
		}
	}
	return "", false
}

// File is an SPDX file.
type File struct {
	ID                 string     `json:"SPDXID"`
	Name               string     `json:"fileName"`
	Checksums          []Checksum `json:"checksums,omitempty"`
	LicenseConcluded   string     `json:"licenseConcluded,omitempty"`
	LicenseInfoInFiles []string   `json:"licenseInfoInFiles,omitempty"`
	CopyrightText      string     `json:"copyrightText,omitempty"`
}

// Checksum is an algorithm and value pair.
type Checksum struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"checksumValue"`
}

// Relationship is an ordered (element, type, related element) triple.
type Relationship struct {
	Element string `json:"spdxElementId"`
	Type    string `json:"relationshipType"`
	Related string `json:"relatedSpdxElement"`
}

// IsDependsOn reports whether the Relationship is a DEPENDS_ON edge.
func (r *Relationship) IsDependsOn() bool {
	return EqualConst(r.Type, RelDependsOn)
}

// ExternalDocumentRef is carried through unexamined.
type ExternalDocumentRef struct {
	ID       string   `json:"externalDocumentId"`
	URI      string   `json:"spdxDocument"`
	Checksum Checksum `json:"checksum"`
}

// Package returns the package with the provided id, or nil.
func (d *Document) Package(id string) *Package {
	for i := range d.Packages {
		if d.Packages[i].ID == id {
			return &d.Packages[i]
		}
	}
	return nil
}

// PackageIndex returns a map of id to package. The pointers reference the
// Document's backing array, so the index is invalidated by appends to
// Packages.
func (d *Document) PackageIndex() map[string]*Package {
	m := make(map[string]*Package, len(d.Packages))
	for i := range d.Packages {
		p := &d.Packages[i]
		if _, ok := m[p.ID]; !ok {
			m[p.ID] = p
		}
	}
	return m
}

// IsRoot reports whether the id is listed in DocumentDescribes.
func (d *Document) IsRoot(id string) bool {
	for _, r := range d.DocumentDescribes {
		if r == id {
			return true
		}
	}
	return false
}

// Version parses SPDXVersion. Unparsable versions report 0.0.
func (d *Document) Version() FormatVersion {
	v, _ := ParseFormatVersion(d.SPDXVersion)
	return v
}

// SetVersion sets SPDXVersion from v.
func (d *Document) SetVersion(v FormatVersion) {
	d.SPDXVersion = v.String()
}

// FormatVersion is a parsed "SPDX-M.N" version.
type FormatVersion struct {
	Major, Minor int
}

// Well-known format versions.
var (
	V2_2 = FormatVersion{2, 2}
	V2_3 = FormatVersion{2, 3}
)

// ParseFormatVersion parses strings of the form "SPDX-2.3".
func ParseFormatVersion(s string) (FormatVersion, error) {
	var v FormatVersion
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "SPDX-")
	if !ok {
		return v, fmt.Errorf("sbomkit: bad version %q: missing prefix", s)
	}
	maj, min, ok := strings.Cut(rest, ".")
	if !ok {
		return v, fmt.Errorf("sbomkit: bad version %q: missing minor", s)
	}
	var err error
	if v.Major, err = strconv.Atoi(maj); err != nil {
		return FormatVersion{}, fmt.Errorf("sbomkit: bad version %q: %w", s, err)
	}
	if v.Minor, err = strconv.Atoi(min); err != nil {
		return FormatVersion{}, fmt.Errorf("sbomkit: bad version %q: %w", s, err)
	}
	return v, nil
}

// Less reports whether v sorts before o.
func (v FormatVersion) Less(o FormatVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

func (v FormatVersion) String() string {
	return fmt.Sprintf("SPDX-%d.%d", v.Major, v.Minor)
}
