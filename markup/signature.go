package markup

import (
	"regexp"
	"strings"

	"github.com/arjunmahishi/linklint/doctree"
)

// pySigRe matches a Python object signature:
//
//	prefix.name[type params](args) -> return
var pySigRe = regexp.MustCompile(`^([\w.]*\.)?(\w+)\s*(?:\[\s*(.*)\s*\])?(?:\(\s*(.*)\s*\)(?:\s*->\s*(.*))?)?$`)

var annotationNameRe = regexp.MustCompile(`[A-Za-z_][\w.]*`)

// Signature is a parsed Python object signature.
type Signature struct {
	// Prefix is the dotted qualifier including its trailing dot, if any.
	Prefix     string
	Name       string
	TypeParams string
	Args       string
	HasArgs    bool
	Return     string
}

// ParseSignature parses one signature line of a Python object directive.
func ParseSignature(sig string) (Signature, bool) {
	sig = strings.TrimSpace(sig)
	m := pySigRe.FindStringSubmatchIndex(sig)
	if m == nil {
		return Signature{}, false
	}
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return sig[m[2*i]:m[2*i+1]]
	}
	return Signature{
		Prefix:     group(1),
		Name:       group(2),
		TypeParams: strings.TrimSpace(group(3)),
		Args:       strings.TrimSpace(group(4)),
		HasArgs:    m[8] >= 0,
		Return:     strings.TrimSpace(group(5)),
	}, true
}

// FullName qualifies the signature within the current class context. It
// also returns the prefix left over once the class context is removed,
// which becomes the class context of the object's content for objects that
// do not nest.
func (s Signature) FullName(class string) (fullname, prefix string) {
	prefix = s.Prefix
	if class == "" {
		return prefix + s.Name, prefix
	}
	switch {
	case strings.HasPrefix(prefix, class+"."):
		fullname = prefix + s.Name
		prefix = strings.TrimLeft(prefix[len(class):], ".")
	case prefix != "":
		fullname = class + "." + prefix + s.Name
	default:
		fullname = class + "." + s.Name
	}
	return fullname, prefix
}

// children renders the signature nodes: addname, name, parameters
// and the return annotation. Type names in annotations become line-less
// cross-references.
func (s Signature) children() []*doctree.Node {
	var out []*doctree.Node
	if s.Prefix != "" {
		out = append(out, doctree.NewElement(doctree.KindDescAddname, 0, doctree.NewText(s.Prefix)))
	}
	out = append(out, doctree.NewElement(doctree.KindDescName, 0, doctree.NewText(s.Name)))
	if s.HasArgs {
		params := doctree.NewElement(doctree.KindDescParameterList, 0)
		for _, arg := range splitTopLevel(s.Args, ',') {
			if arg = strings.TrimSpace(arg); arg != "" {
				params.Append(parameterNode(arg))
			}
		}
		out = append(out, params)
	}
	if s.Return != "" {
		out = append(out, doctree.NewElement(doctree.KindDescReturns, 0, annotationNodes(s.Return)...))
	}
	return out
}

func parameterNode(arg string) *doctree.Node {
	param := doctree.NewElement(doctree.KindDescParameter, 0)
	name, rest := arg, ""
	if i := indexTopLevel(arg, ':'); i >= 0 {
		name, rest = arg[:i], arg[i+1:]
	}
	annotation, def := rest, ""
	if i := indexTopLevel(rest, '='); i >= 0 {
		annotation, def = rest[:i], rest[i+1:]
	} else if rest == "" {
		if i := indexTopLevel(name, '='); i >= 0 {
			name, def = name[:i], name[i+1:]
		}
	}

	param.Append(doctree.NewText(strings.TrimSpace(name)))
	if annotation = strings.TrimSpace(annotation); annotation != "" {
		param.Append(doctree.NewText(": "))
		param.Append(annotationNodes(annotation)...)
	}
	if def = strings.TrimSpace(def); def != "" {
		param.Append(doctree.NewText("=" + def))
	}
	return param
}

func annotationNodes(annotation string) []*doctree.Node {
	var out []*doctree.Node
	last := 0
	for _, loc := range annotationNameRe.FindAllStringIndex(annotation, -1) {
		if loc[0] > last {
			out = append(out, doctree.NewText(annotation[last:loc[0]]))
		}
		name := annotation[loc[0]:loc[1]]
		reftype := "class"
		if name == "None" {
			reftype = "obj"
		}
		out = append(out, doctree.NewElement(doctree.KindPendingXref, 0, doctree.NewText(name)).
			Set(doctree.AttrRefDomain, DomainPy).
			Set(doctree.AttrRefType, reftype).
			Set(doctree.AttrRefTarget, name))
		last = loc[1]
	}
	if last < len(annotation) {
		out = append(out, doctree.NewText(annotation[last:]))
	}
	return out
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	for {
		i := indexTopLevel(s, sep)
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i+1:]
	}
}

// indexTopLevel finds sep outside brackets and string literals.
func indexTopLevel(s string, sep byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			return i
		}
	}
	return -1
}
