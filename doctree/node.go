// Package doctree defines the attributed document tree consumed by linklint.
package doctree

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Node kinds produced by the front ends and inspected by the checks.
const (
	KindDocument           = "document"
	KindSection            = "section"
	KindTitle              = "title"
	KindParagraph          = "paragraph"
	KindText               = "#text"
	KindPendingXref        = "pending_xref"
	KindReference          = "reference"
	KindLiteral            = "literal"
	KindEmphasis           = "emphasis"
	KindStrong             = "strong"
	KindInline             = "inline"
	KindTitleReference     = "title_reference"
	KindTarget             = "target"
	KindTransition         = "transition"
	KindComment            = "comment"
	KindLiteralBlock       = "literal_block"
	KindBlockQuote         = "block_quote"
	KindBulletList         = "bullet_list"
	KindEnumeratedList     = "enumerated_list"
	KindListItem           = "list_item"
	KindDesc               = "desc"
	KindDescSignature      = "desc_signature"
	KindDescName           = "desc_name"
	KindDescAddname        = "desc_addname"
	KindDescParameterList  = "desc_parameterlist"
	KindDescParameter      = "desc_parameter"
	KindDescReturns        = "desc_returns"
	KindDescContent        = "desc_content"
	KindVersionModified    = "versionmodified"
	KindRubric             = "rubric"
	KindDefinitionList     = "definition_list"
	KindDefinitionListItem = "definition_list_item"
	KindTerm               = "term"
	KindDefinition         = "definition"
	KindFootnote           = "footnote"
)

// Attribute names.
const (
	AttrIDs         = "ids"
	AttrNames       = "names"
	AttrClasses     = "classes"
	AttrRefType     = "reftype"
	AttrRefTarget   = "reftarget"
	AttrRefDomain   = "refdomain"
	AttrRefExplicit = "refexplicit"
	AttrRefSpecific = "refspecific"
	AttrRefURI      = "refuri"
	AttrRefName     = "refname"
	AttrDomain      = "domain"
	AttrObjType     = "objtype"
	AttrDescType    = "desctype"
	AttrFullName    = "fullname"
	AttrModule      = "module"
	AttrClass       = "class"
	AttrType        = "type"
	AttrVersion     = "version"
	AttrIsMod       = "ismod"
)

// textElements join their children without a separator in AsText, like
// docutils TextElement. Every other element joins children with a blank line.
var textElements = map[string]bool{
	KindTitle:             true,
	KindParagraph:         true,
	KindPendingXref:       true,
	KindReference:         true,
	KindLiteral:           true,
	KindEmphasis:          true,
	KindStrong:            true,
	KindInline:            true,
	KindTitleReference:    true,
	KindTarget:            true,
	KindComment:           true,
	KindLiteralBlock:      true,
	KindDescSignature:     true,
	KindDescName:          true,
	KindDescAddname:       true,
	KindDescParameterList: true,
	KindDescParameter:     true,
	KindDescReturns:       true,
	KindRubric:            true,
	KindTerm:              true,
}

// Attributes maps an attribute name to its values. Scalar attributes hold
// a single value.
type Attributes map[string][]string

// Node is one element of the tree. Text leaves have Kind KindText and carry
// their content in Text; elements carry attributes and children.
type Node struct {
	Kind     string
	Attrs    Attributes
	Children []*Node

	// Line is the 1-based source line, or 0 when the parser could not
	// attribute one.
	Line int

	Text string
}

// NewText returns a text leaf.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewElement returns an element of the given kind.
func NewElement(kind string, line int, children ...*Node) *Node {
	return &Node{Kind: kind, Line: line, Children: children}
}

// IsText reports whether n is a text leaf.
func (n *Node) IsText() bool {
	return n.Kind == KindText
}

// Append adds children to n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Get returns the first value of attribute key, or "".
func (n *Node) Get(key string) string {
	if vals := n.Attrs[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// List returns all values of attribute key.
func (n *Node) List(key string) []string {
	return n.Attrs[key]
}

// Has reports whether attribute key contains value.
func (n *Node) Has(key, value string) bool {
	return slices.Contains(n.Attrs[key], value)
}

// Set replaces the values of attribute key.
func (n *Node) Set(key string, values ...string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(Attributes)
	}
	n.Attrs[key] = values
	return n
}

// Add appends values to attribute key.
func (n *Node) Add(key string, values ...string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(Attributes)
	}
	n.Attrs[key] = append(n.Attrs[key], values...)
	return n
}

// Prepend inserts values at the front of attribute key.
func (n *Node) Prepend(key string, values ...string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(Attributes)
	}
	n.Attrs[key] = append(slices.Clone(values), n.Attrs[key]...)
	return n
}

// AsText returns the rendered text of the subtree.
func (n *Node) AsText() string {
	if n.IsText() {
		return n.Text
	}
	sep := "\n\n"
	if textElements[n.Kind] {
		sep = ""
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.AsText()
	}
	return strings.Join(parts, sep)
}

// All yields n and its descendants in pre-order.
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(yield) {
			return false
		}
	}
	return true
}

// FindAll yields the nodes of the given kinds in pre-order.
func (n *Node) FindAll(kinds ...string) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for node := range n.All() {
			if slices.Contains(kinds, node.Kind) && !yield(node) {
				return
			}
		}
	}
}

// String renders the subtree as an indented dump, one node per line.
func (n *Node) String() string {
	var sb strings.Builder
	n.dump(&sb, 0)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if n.IsText() {
		fmt.Fprintf(sb, "%s %q", KindText, n.Text)
	} else {
		sb.WriteString(n.Kind)
		if len(n.Attrs) > 0 {
			keys := make([]string, 0, len(n.Attrs))
			for k := range n.Attrs {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			attrs := make([]string, 0, len(keys))
			for _, k := range keys {
				attrs = append(attrs, fmt.Sprintf("%s=%s", k, strings.Join(n.Attrs[k], ",")))
			}
			fmt.Fprintf(sb, " {%s}", strings.Join(attrs, " "))
		}
	}
	if n.Line > 0 {
		fmt.Fprintf(sb, " L%d", n.Line)
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		c.dump(sb, depth+1)
	}
}
