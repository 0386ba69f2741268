package merge

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/test"
)

func libDocument(lib, dep string) *sbomkit.Document {
	root := test.NPMPackage(RootPackageID, lib, "1.0.0")
	return &sbomkit.Document{
		SPDXID:      sbomkit.DocumentID,
		Name:        lib + " 1.0.0",
		Namespace:   "https://sbom.example.com/" + lib + "/1.0.0/abc",
		SPDXVersion: "SPDX-2.2",
		DataLicense: "CC0-1.0",
		CreationInfo: sbomkit.CreationInfo{
			Created:  "2024-01-01T00:00:00Z",
			Creators: []string{"Organization: Org-" + lib, "Tool: Microsoft.SBOMTool-2.2.7"},
		},
		DocumentDescribes: []string{RootPackageID},
		Packages: []sbomkit.Package{
			root,
			test.NPMPackage("SPDXRef-Package-"+dep, dep, "2.0.0"),
		},
		Relationships: []sbomkit.Relationship{
			{Element: RootPackageID, Type: sbomkit.RelDependsOn, Related: "SPDXRef-Package-" + dep},
		},
	}
}

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func TestMerge(t *testing.T) {
	a := libDocument("Lib1", "shared")
	b := libDocument("Lib2", "shared")
	b.SPDXVersion = "SPDX-2.3"
	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

	got, err := MergeWith(Options{
		NewID:   sequence(),
		Now:     func() time.Time { return now },
		Creator: "Tool: sbomkit-test",
	}, "App", "1.0", []*sbomkit.Document{a, b})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("Metadata", func(t *testing.T) {
		if got, want := got.Name, "App 1.0"; got != want {
			t.Errorf("name: got: %q, want: %q", got, want)
		}
		if got, want := got.SPDXID, sbomkit.DocumentID; got != want {
			t.Errorf("SPDXID: got: %q, want: %q", got, want)
		}
		if got, want := got.Namespace, "https://sbom.example.com/App/1.0/id1"; got != want {
			t.Errorf("namespace: got: %q, want: %q", got, want)
		}
		if got, want := got.SPDXVersion, "SPDX-2.3"; got != want {
			t.Errorf("version: got: %q, want: %q", got, want)
		}
		if got, want := got.CreationInfo.Created, "2024-08-01T12:00:00Z"; got != want {
			t.Errorf("created: got: %q, want: %q", got, want)
		}
		want := []string{"Organization: Org-Lib1", "Tool: Microsoft.SBOMTool-2.2.7", "Tool: sbomkit-test"}
		if !cmp.Equal(got.CreationInfo.Creators, want) {
			t.Error(cmp.Diff(got.CreationInfo.Creators, want))
		}
	})

	t.Run("Roots", func(t *testing.T) {
		want := []string{"SPDXRef-RootPackage-id2", "SPDXRef-RootPackage-id3"}
		if !cmp.Equal(got.DocumentDescribes, want) {
			t.Error(cmp.Diff(got.DocumentDescribes, want))
		}
		for i, lib := range []string{"Lib1", "Lib2"} {
			p := got.Package(want[i])
			if p == nil {
				t.Fatalf("missing root %q", want[i])
			}
			if p.Name != lib {
				t.Errorf("root %q: got: %q, want: %q", want[i], p.Name, lib)
			}
		}
		for _, r := range got.Relationships {
			if r.Element == RootPackageID || r.Related == RootPackageID {
				t.Errorf("relationship still references %q: %+v", RootPackageID, r)
			}
		}
		wantRels := []sbomkit.Relationship{
			{Element: "SPDXRef-RootPackage-id2", Type: sbomkit.RelDependsOn, Related: "SPDXRef-Package-shared"},
			{Element: "SPDXRef-RootPackage-id3", Type: sbomkit.RelDependsOn, Related: "SPDXRef-Package-shared"},
		}
		if !cmp.Equal(got.Relationships, wantRels) {
			t.Error(cmp.Diff(got.Relationships, wantRels))
		}
	})

	t.Run("UniqueIDs", func(t *testing.T) {
		seen := make(map[string]struct{})
		for _, p := range got.Packages {
			if _, ok := seen[p.ID]; ok {
				t.Errorf("duplicate package id %q", p.ID)
			}
			seen[p.ID] = struct{}{}
		}
		if got, want := len(got.Packages), 3; got != want {
			t.Errorf("packages: got: %d, want: %d", got, want)
		}
	})

	t.Run("InputsUnchanged", func(t *testing.T) {
		if want := libDocument("Lib1", "shared"); !cmp.Equal(a, want) {
			t.Error(cmp.Diff(a, want))
		}
	})
}

func TestMergeCollidingGenerator(t *testing.T) {
	a := libDocument("Lib1", "x")
	b := libDocument("Lib2", "y")
	got, err := MergeWith(Options{NewID: func() string { return "same" }}, "App", "1.0", []*sbomkit.Document{a, b})
	if got != nil || !errors.Is(err, sbomkit.ErrInternal) {
		t.Errorf("got: %v, want: %v", err, sbomkit.ErrInternal)
	}
}

func TestMergeRandomIDs(t *testing.T) {
	var docs []*sbomkit.Document
	for i := range 5 {
		docs = append(docs, libDocument(fmt.Sprintf("Lib%d", i), fmt.Sprintf("dep%d", i)))
	}
	got, err := Merge("App", "1.0", docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.DocumentDescribes) != len(docs) {
		t.Fatalf("roots: got: %d, want: %d", len(got.DocumentDescribes), len(docs))
	}
	seen := make(map[string]struct{})
	for _, id := range got.DocumentDescribes {
		if !strings.HasPrefix(id, RootPackageID+"-") {
			t.Errorf("unexpected root id %q", id)
		}
		if _, ok := seen[id]; ok {
			t.Errorf("duplicate root id %q", id)
		}
		seen[id] = struct{}{}
	}
	if !strings.HasSuffix(got.CreationInfo.Creators[len(got.CreationInfo.Creators)-1], sbomkit.ToolVersion()) {
		t.Errorf("missing tool creator: %v", got.CreationInfo.Creators)
	}
}

func TestMergeEmpty(t *testing.T) {
	tt := []struct {
		Name string
		In   []*sbomkit.Document
	}{
		{"Nil", nil},
		{"Empty", []*sbomkit.Document{}},
		{"NilElement", []*sbomkit.Document{libDocument("Lib1", "x"), nil}},
	}
	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := Merge("App", "1.0", tc.In)
			if !errors.Is(err, sbomkit.ErrInvalid) {
				t.Errorf("got: %v, want: %v", err, sbomkit.ErrInvalid)
			}
		})
	}
}

func TestMergeDescribedFile(t *testing.T) {
	var docs []*sbomkit.Document
	for _, lib := range []string{"Lib1", "Lib2"} {
		d := libDocument(lib, "shared")
		fid := "SPDXRef-File-" + lib
		d.DocumentDescribes = append(d.DocumentDescribes, fid)
		d.Files = []sbomkit.File{{ID: fid, Name: "./" + lib + ".js"}}
		d.Relationships = append(d.Relationships,
			sbomkit.Relationship{Element: RootPackageID, Type: sbomkit.RelContains, Related: fid})
		docs = append(docs, d)
	}

	got, err := MergeWith(Options{NewID: sequence()}, "App", "1.0", docs)
	if err != nil {
		t.Fatal(err)
	}

	known := map[string]struct{}{sbomkit.DocumentID: {}}
	for _, p := range got.Packages {
		known[p.ID] = struct{}{}
	}
	for _, f := range got.Files {
		known[f.ID] = struct{}{}
	}
	for _, id := range got.DocumentDescribes {
		if _, ok := known[id]; !ok {
			t.Errorf("described id %q does not resolve", id)
		}
	}
	for _, r := range got.Relationships {
		for _, id := range []string{r.Element, r.Related} {
			if _, ok := known[id]; !ok {
				t.Errorf("relationship %v: id %q does not resolve", r, id)
			}
		}
	}
	for _, fid := range []string{"SPDXRef-File-Lib1", "SPDXRef-File-Lib2"} {
		if _, ok := known[fid]; !ok {
			t.Errorf("file %q renamed or dropped", fid)
		}
	}
	if got, want := len(got.Files), 2; got != want {
		t.Errorf("files: got: %d, want: %d", got, want)
	}
}
