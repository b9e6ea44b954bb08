package linklint

import (
	"iter"

	"github.com/arjunmahishi/linklint/doctree"
)

// SelfReference is a cross-reference inside the region it points to.
type SelfReference struct {
	Node   *doctree.Node
	Region Region
}

// Role returns the reference role, such as "class".
func (s SelfReference) Role() string {
	return s.Node.Get(doctree.AttrRefType)
}

// Target returns the reference target.
func (s SelfReference) Target() string {
	return s.Node.Get(doctree.AttrRefTarget)
}

// FindSelfLinks yields the references in root that point to a region
// containing them. References without a line are never yielded. Each
// iteration recomputes the regions from the tree.
func FindSelfLinks(root *doctree.Node, opts ...ResolverOption) iter.Seq[SelfReference] {
	return func(yield func(SelfReference) bool) {
		resolver := NewResolver(FindRegions(root), opts...)
		for ref := range root.FindAll(doctree.KindPendingXref, doctree.KindReference) {
			if ref.Line == 0 {
				continue
			}
			region, ok := resolver.FindRegion(ref.Get(doctree.AttrRefType), ref.Get(doctree.AttrRefTarget))
			if !ok || !region.Contains(ref.Line) {
				continue
			}
			if !yield(SelfReference{Node: ref, Region: region}) {
				return
			}
		}
	}
}

// FindSelfReferences yields the reference nodes of FindSelfLinks.
func FindSelfReferences(root *doctree.Node, opts ...ResolverOption) iter.Seq[*doctree.Node] {
	return func(yield func(*doctree.Node) bool) {
		for s := range FindSelfLinks(root, opts...) {
			if !yield(s.Node) {
				return
			}
		}
	}
}
