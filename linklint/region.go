// Package linklint finds cross-references in Sphinx documentation that
// point at the entity whose documentation contains them, and rewrites them
// so they no longer link.
package linklint

import (
	"strings"

	"github.com/arjunmahishi/linklint/doctree"
)

// Region kinds.
const (
	KindModule       = "module"
	KindClass        = "class"
	KindFunction     = "function"
	KindMethod       = "method"
	KindClassMethod  = "classmethod"
	KindStaticMethod = "staticmethod"
	KindAttribute    = "attribute"
	KindProperty     = "property"
	KindType         = "type"
	KindException    = "exception"
	KindData         = "data"
)

const modulePrefix = "module-"

// Region is the span of lines documenting one entity.
type Region struct {
	Kind string `json:"kind"`
	Name string `json:"name"`

	// Start is the line where the declaration begins.
	Start int `json:"start"`

	// EndMain is the last line before the first nested region.
	EndMain int `json:"end_main"`

	// EndTotal is the last line including nested regions.
	EndTotal int `json:"end_total"`
}

// Contains reports whether line falls inside the whole region.
func (r Region) Contains(line int) bool {
	return r.Start <= line && line <= r.EndTotal
}

// FindRegions returns the regions declared in root. A region is appended
// once its subtree has been walked, so nested regions come before the
// regions containing them.
func FindRegions(root *doctree.Node) []Region {
	_, _, regions := findRegions(root, 0, nil)
	return regions
}

// findRegions walks n with the last seen line in cursor. It returns the
// cursor after n, the earliest start of a region in n's subtree (0 when
// there is none) and out with the regions of the subtree appended.
func findRegions(n *doctree.Node, cursor int, out []Region) (int, int, []Region) {
	kind, names, start := opens(n)

	if n.Line != 0 {
		cursor = n.Line + strings.Count(n.AsText(), "\n")
	}

	first := 0
	for _, child := range n.Children {
		var childFirst int
		cursor, childFirst, out = findRegions(child, cursor, out)
		if childFirst != 0 && (first == 0 || childFirst < first) {
			first = childFirst
		}
	}

	if len(names) == 0 {
		return cursor, first, out
	}

	endTotal := max(cursor, start)
	endMain := endTotal
	if first != 0 {
		endMain = min(max(first-1, start), endTotal)
	}
	for _, name := range names {
		out = append(out, Region{
			Kind:     kind,
			Name:     name,
			Start:    start,
			EndMain:  endMain,
			EndTotal: endTotal,
		})
	}
	if first == 0 || start < first {
		first = start
	}
	return cursor, first, out
}

// opens reports the region n declares, if any. Object descriptions with
// several signatures declare one name per signature.
func opens(n *doctree.Node) (kind string, names []string, start int) {
	switch n.Kind {
	case doctree.KindSection:
		if n.Line == 0 {
			return "", nil, 0
		}
		for _, id := range n.List(doctree.AttrIDs) {
			if !strings.HasPrefix(id, modulePrefix) || n.Has(doctree.AttrNames, id) {
				continue
			}
			if name := id[len(modulePrefix):]; name != "" {
				return KindModule, []string{name}, n.Line - 1
			}
		}
	case doctree.KindDesc:
		kind = n.Get(doctree.AttrObjType)
		if kind == "" || len(n.Children) == 0 {
			return "", nil, 0
		}
		first := n.Children[0]
		start = first.Line
		if start == 0 {
			start = n.Line
		}
		seen := map[string]bool{}
		for i, child := range n.Children {
			if i > 0 && child.Kind != doctree.KindDescSignature {
				continue
			}
			name := child.Get(doctree.AttrFullName)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
		return kind, names, start
	}
	return "", nil, 0
}
