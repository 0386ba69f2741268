// Package depgraph resolves DEPENDS_ON relationships in a document into
// ancestor paths and per-package classifications.
package depgraph

import (
	"context"
	"log/slog"

	"github.com/quay/sbomkit"
)

// MaxDepth bounds how far an ancestor walk may climb. Relationship data is
// not guaranteed to be acyclic, so walks that reach this depth are truncated.
const MaxDepth = 30

// Path is an ordered sequence of packages from a top-level ancestor down to
// and including the queried package.
type Path []*sbomkit.Package

// IDs returns the package ids in path order.
func (p Path) IDs() []string {
	out := make([]string, len(p))
	for i, pkg := range p {
		out[i] = pkg.ID
	}
	return out
}

// Top returns the top-level ancestor of the path.
func (p Path) Top() *sbomkit.Package {
	if len(p) == 0 {
		return nil
	}
	return p[0]
}

// Graph is an index over a document's DEPENDS_ON relationships.
//
// A Graph holds a reference to the document's packages; it must not be used
// after the document's Packages slice is modified.
type Graph struct {
	pkgs  map[string]*sbomkit.Package
	roots map[string]struct{}
	// Parents maps a package id to the distinct ids of packages depending on
	// it, in relationship order.
	parents map[string][]string
	top     map[string]struct{}
	// Candidates are the packages a walk may climb through.
	candidates map[string]struct{}
}

// New builds a Graph for doc.
func New(doc *sbomkit.Document) *Graph {
	g := &Graph{
		pkgs:       doc.PackageIndex(),
		roots:      make(map[string]struct{}, len(doc.DocumentDescribes)),
		parents:    make(map[string][]string),
		top:        make(map[string]struct{}),
		candidates: make(map[string]struct{}, len(doc.Packages)),
	}
	for _, id := range doc.DocumentDescribes {
		g.roots[id] = struct{}{}
	}
	multiRoot := len(g.roots) > 1
	for id := range g.pkgs {
		if _, ok := g.roots[id]; ok && !multiRoot {
			continue
		}
		g.candidates[id] = struct{}{}
	}

	seen := make(map[[2]string]struct{})
	for i := range doc.Relationships {
		r := &doc.Relationships[i]
		if !r.IsDependsOn() {
			continue
		}
		if _, ok := g.roots[r.Element]; ok {
			g.top[r.Related] = struct{}{}
		}
		k := [2]string{r.Related, r.Element}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		g.parents[r.Related] = append(g.parents[r.Related], r.Element)
	}
	return g
}

// AncestorPaths returns every dependency path leading to the package id,
// keeping only the longest path per distinct top-level ancestor.
//
// Paths are returned in the order their top-level ancestors are first
// reached. An unknown id yields no paths.
func (g *Graph) AncestorPaths(ctx context.Context, id string) []Path {
	pkg, ok := g.pkgs[id]
	if !ok {
		return nil
	}
	w := walker{g: g}
	w.walk(id, []*sbomkit.Package{pkg})
	if w.truncated {
		slog.WarnContext(ctx, "dependency walk truncated",
			"package", id,
			"max_depth", MaxDepth)
	}
	return w.paths
}

// Walker accumulates the result of a single AncestorPaths call.
type walker struct {
	g         *Graph
	paths     []Path
	byTop     map[string]int
	onChain   map[string]struct{}
	truncated bool
}

// Walk climbs from the first element of chain, which is ordered
// current-to-leaf.
//
// A parent already on the chain is not climbed into; a chain whose every
// parent is already on it ends there and counts as truncated.
func (w *walker) walk(id string, chain []*sbomkit.Package) {
	if w.onChain == nil {
		w.onChain = make(map[string]struct{})
	}
	w.onChain[id] = struct{}{}
	defer delete(w.onChain, id)

	var next []string
	if len(chain) > MaxDepth {
		w.truncated = true
	} else {
		for _, p := range w.g.candidateParents(id) {
			if _, ok := w.onChain[p]; ok {
				w.truncated = true
				continue
			}
			next = append(next, p)
		}
	}
	if len(next) == 0 {
		w.emit(chain)
		return
	}
	for _, p := range next {
		up := make([]*sbomkit.Package, 0, len(chain)+1)
		up = append(up, w.g.pkgs[p])
		up = append(up, chain...)
		w.walk(p, up)
	}
}

func (w *walker) emit(chain []*sbomkit.Package) {
	if w.byTop == nil {
		w.byTop = make(map[string]int)
	}
	top := chain[0].ID
	i, ok := w.byTop[top]
	switch {
	case !ok:
		w.byTop[top] = len(w.paths)
		w.paths = append(w.paths, Path(chain))
	case len(chain) > len(w.paths[i]):
		w.paths[i] = Path(chain)
	}
}

func (g *Graph) candidateParents(id string) []string {
	ps := g.parents[id]
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		if _, ok := g.candidates[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// DependsOnChain walks a single parent at a time, taking the first
// relationship found, and returns the chain from the nearest root-adjacent
// ancestor down to, but not including, the package id.
func (g *Graph) DependsOnChain(ctx context.Context, id string) []*sbomkit.Package {
	if _, ok := g.pkgs[id]; !ok {
		return nil
	}
	var rev []*sbomkit.Package
	cur := id
	for {
		ps := g.candidateParents(cur)
		if len(ps) == 0 {
			break
		}
		if len(rev) >= MaxDepth {
			slog.WarnContext(ctx, "dependency chain truncated",
				"package", id,
				"max_depth", MaxDepth)
			break
		}
		cur = ps[0]
		rev = append(rev, g.pkgs[cur])
	}
	out := make([]*sbomkit.Package, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}

// Level classifies the package id.
//
// Ids that are neither roots nor depended on by a root, including ids not
// present in the document, are [LevelTransitive].
func (g *Graph) Level(id string) Level {
	if _, ok := g.roots[id]; ok {
		return LevelRoot
	}
	if _, ok := g.top[id]; ok {
		return LevelTop
	}
	return LevelTransitive
}

// Levels classifies every package in the document.
func (g *Graph) Levels() map[string]Level {
	out := make(map[string]Level, len(g.pkgs))
	for id := range g.pkgs {
		out[id] = g.Level(id)
	}
	return out
}

// AncestorPaths is a convenience for building a Graph for a single query.
func AncestorPaths(ctx context.Context, doc *sbomkit.Document, id string) []Path {
	return New(doc).AncestorPaths(ctx, id)
}

// DependsOnChain is a convenience for building a Graph for a single query.
func DependsOnChain(ctx context.Context, doc *sbomkit.Document, id string) []*sbomkit.Package {
	return New(doc).DependsOnChain(ctx, id)
}

// PackageLevel is a convenience for building a Graph for a single query.
func PackageLevel(doc *sbomkit.Document, id string) Level {
	return New(doc).Level(id)
}
