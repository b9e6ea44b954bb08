package markup

import "strings"

// DirectiveKind classifies how a directive is turned into nodes.
type DirectiveKind int

const (
	// DirectiveOpaque directives have content that is not parsed as markup:
	// toctree, image, include, raw and every directive the table does not
	// know.
	DirectiveOpaque DirectiveKind = iota
	// DirectiveObject describes a Python object and opens a region.
	DirectiveObject
	DirectiveModule
	DirectiveCurrentModule
	// DirectiveVersion is versionadded, versionchanged and friends: a
	// version argument followed by inline text.
	DirectiveVersion
	// DirectiveContainer parses everything after the directive marker,
	// including the rest of its first line, as body content.
	DirectiveContainer
	// DirectiveContainerArg takes an argument and parses its content as body.
	DirectiveContainerArg
	DirectiveRubric
	// DirectiveLiteral keeps its content verbatim in a literal block.
	DirectiveLiteral
)

// DirectiveSpec describes a directive known to the tree builder.
type DirectiveSpec struct {
	// Name is the directive name without its domain, e.g. "method".
	Name string

	Domain string
	Kind   DirectiveKind

	// Nesting objects make their own name the class context of their
	// content.
	Nesting bool
}

// TakesArguments reports whether the lines following the directive marker,
// up to the first blank line, are arguments and options rather than content.
func (s DirectiveSpec) TakesArguments() bool {
	switch s.Kind {
	case DirectiveContainer:
		return false
	default:
		return true
	}
}

// ParsesContent reports whether the directive content is body markup.
func (s DirectiveSpec) ParsesContent() bool {
	switch s.Kind {
	case DirectiveOpaque, DirectiveLiteral, DirectiveRubric:
		return false
	default:
		return true
	}
}

var pyObjects = map[string]bool{
	"function":        false,
	"data":            false,
	"class":           true,
	"exception":       true,
	"method":          false,
	"classmethod":     false,
	"staticmethod":    false,
	"attribute":       false,
	"property":        false,
	"decorator":       false,
	"decoratormethod": false,
	"type":            false,
}

var directiveKinds = map[string]DirectiveKind{
	"module":             DirectiveModule,
	"currentmodule":      DirectiveCurrentModule,
	"versionadded":       DirectiveVersion,
	"versionchanged":     DirectiveVersion,
	"deprecated":         DirectiveVersion,
	"deprecated-removed": DirectiveVersion,
	"versionremoved":     DirectiveVersion,
	"note":               DirectiveContainer,
	"warning":            DirectiveContainer,
	"attention":          DirectiveContainer,
	"caution":            DirectiveContainer,
	"danger":             DirectiveContainer,
	"error":              DirectiveContainer,
	"hint":               DirectiveContainer,
	"important":          DirectiveContainer,
	"tip":                DirectiveContainer,
	"seealso":            DirectiveContainer,
	"impl-detail":        DirectiveContainer,
	"admonition":         DirectiveContainerArg,
	"topic":              DirectiveContainerArg,
	"sidebar":            DirectiveContainerArg,
	"only":               DirectiveContainerArg,
	"container":          DirectiveContainerArg,
	"availability":       DirectiveContainerArg,
	"rubric":             DirectiveRubric,
	"code-block":         DirectiveLiteral,
	"sourcecode":         DirectiveLiteral,
	"code":               DirectiveLiteral,
	"doctest":            DirectiveLiteral,
	"testcode":           DirectiveLiteral,
	"testoutput":         DirectiveLiteral,
	"productionlist":     DirectiveLiteral,
	"parsed-literal":     DirectiveLiteral,
	"math":               DirectiveLiteral,
	"highlight":          DirectiveOpaque,
}

// LookupDirective returns the spec for a directive name as written, which
// may carry a domain prefix such as "py:method".
func LookupDirective(name string) DirectiveSpec {
	domain, base := "", strings.ToLower(name)
	if i := strings.IndexByte(base, ':'); i >= 0 {
		domain, base = base[:i], base[i+1:]
	}
	if domain == "" || domain == DomainPy {
		if nesting, ok := pyObjects[base]; ok {
			return DirectiveSpec{Name: base, Domain: DomainPy, Kind: DirectiveObject, Nesting: nesting}
		}
		if base == "module" || base == "currentmodule" {
			return DirectiveSpec{Name: base, Domain: DomainPy, Kind: directiveKinds[base]}
		}
	}
	if domain != "" {
		// Objects of other domains: keep their content, no region.
		return DirectiveSpec{Name: base, Domain: domain, Kind: DirectiveContainerArg}
	}
	if kind, ok := directiveKinds[base]; ok {
		return DirectiveSpec{Name: base, Kind: kind}
	}
	return DirectiveSpec{Name: base, Kind: DirectiveOpaque}
}
