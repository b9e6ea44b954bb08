package markup

import (
	"strings"
	"unicode"

	"github.com/arjunmahishi/linklint/doctree"
)

// InlineFunc parses the inline markup of text that starts on line. Every
// returned element may carry line; Document corrects them afterwards.
type InlineFunc func(text string, line int) []*doctree.Node

// Arg is one argument line of a directive.
type Arg struct {
	Text string
	Line int
}

// Directive is a directive occurrence as seen by a front end.
type Directive struct {
	// Name as written, possibly domain qualified.
	Name string

	Line    int
	Args    []Arg
	Options map[string]string

	// Content and ContentLine hold the raw content for directives whose
	// content is kept verbatim.
	Content     string
	ContentLine int
}

// ArgText joins the argument lines with newlines.
func (d Directive) ArgText() string {
	parts := make([]string, len(d.Args))
	for i, a := range d.Args {
		parts[i] = a.Text
	}
	return strings.Join(parts, "\n")
}

type openSection struct {
	level int
	node  *doctree.Node
}

// Builder assembles a document tree from front end events.
type Builder struct {
	inline   InlineFunc
	doc      *doctree.Node
	sections []openSection

	// stack holds the containers opened inside the current section.
	stack []*doctree.Node

	pending []*doctree.Node
	module  string
	class   string
}

// NewBuilder returns a builder that parses inline text with inline.
func NewBuilder(inline InlineFunc) *Builder {
	return &Builder{
		inline: inline,
		doc:    doctree.NewElement(doctree.KindDocument, 0),
	}
}

// Inline parses text with the front end's inline parser.
func (b *Builder) Inline(text string, line int) []*doctree.Node {
	if b.inline == nil {
		return []*doctree.Node{doctree.NewText(text)}
	}
	return b.inline(text, line)
}

func (b *Builder) current() *doctree.Node {
	if n := len(b.stack); n > 0 {
		return b.stack[n-1]
	}
	if n := len(b.sections); n > 0 {
		return b.sections[n-1].node
	}
	return b.doc
}

func (b *Builder) flushPending() {
	if len(b.pending) == 0 {
		return
	}
	b.current().Append(b.pending...)
	b.pending = nil
}

func (b *Builder) append(n *doctree.Node) {
	b.flushPending()
	b.current().Append(n)
}

// Section opens a section at level, closing open sections at the same level
// or deeper. Sections can only nest in sections; inside other containers
// the title becomes a rubric.
func (b *Builder) Section(level int, title string, line int) {
	if len(b.stack) > 0 {
		b.append(doctree.NewElement(doctree.KindRubric, line, b.Inline(title, line)...))
		return
	}
	for n := len(b.sections); n > 0 && b.sections[n-1].level >= level; n-- {
		b.sections = b.sections[:n-1]
	}

	titleNode := doctree.NewElement(doctree.KindTitle, line, b.Inline(title, line)...)
	text := titleNode.AsText()
	section := doctree.NewElement(doctree.KindSection, line+1, titleNode)
	if id := Slug(text); id != "" {
		section.Set(doctree.AttrIDs, id)
	}
	section.Set(doctree.AttrNames, NormalizeName(text))
	for _, target := range b.pending {
		section.Add(doctree.AttrIDs, target.List(doctree.AttrIDs)...)
		section.Add(doctree.AttrNames, target.List(doctree.AttrNames)...)
	}
	b.pending = nil

	b.current().Append(section)
	b.sections = append(b.sections, openSection{level: level, node: section})
}

// Paragraph appends a paragraph of inline text.
func (b *Builder) Paragraph(text string, line int) {
	b.append(doctree.NewElement(doctree.KindParagraph, line, b.Inline(text, line)...))
}

// Target records an explicit hyperlink target. It attaches to the next
// section, or precedes the next element as a target node.
func (b *Builder) Target(name string, line int) {
	target := doctree.NewElement(doctree.KindTarget, line).
		Set(doctree.AttrNames, NormalizeName(name))
	if id := Slug(name); id != "" {
		target.Set(doctree.AttrIDs, id)
	}
	b.pending = append(b.pending, target)
}

// Add appends a leaf block such as a transition or literal block.
func (b *Builder) Add(n *doctree.Node) {
	b.append(n)
}

// Open appends a container and makes it current until Close.
func (b *Builder) Open(kind string, line int) *doctree.Node {
	n := doctree.NewElement(kind, line)
	b.append(n)
	b.stack = append(b.stack, n)
	return n
}

// Close closes the container opened last.
func (b *Builder) Close() {
	b.flushPending()
	if n := len(b.stack); n > 0 {
		b.stack = b.stack[:n-1]
	}
}

func (b *Builder) push(n *doctree.Node) {
	b.stack = append(b.stack, n)
}

// Directive appends the nodes for d. Front ends pass content to parse the
// directive body into the current container; it may be nil.
func (b *Builder) Directive(d Directive, content func()) {
	if content == nil {
		content = func() {}
	}
	spec := LookupDirective(d.Name)
	switch spec.Kind {
	case DirectiveObject:
		b.object(spec, d, content)
	case DirectiveModule:
		b.moduleDirective(d)
		content()
	case DirectiveCurrentModule:
		name := firstWord(d.ArgText())
		if name == "None" {
			name = ""
		}
		b.module = name
	case DirectiveVersion:
		b.version(spec, d, content)
	case DirectiveContainer, DirectiveContainerArg:
		n := doctree.NewElement(spec.Name, d.Line)
		if spec.Domain != "" {
			n.Set(doctree.AttrDomain, spec.Domain)
		}
		if spec.Name == "admonition" && len(d.Args) > 0 {
			n.Append(doctree.NewElement(doctree.KindTitle, d.Args[0].Line, b.Inline(d.ArgText(), d.Args[0].Line)...))
		}
		b.append(n)
		b.push(n)
		content()
		b.Close()
	case DirectiveRubric:
		b.append(doctree.NewElement(doctree.KindRubric, d.Line, b.Inline(d.ArgText(), d.Line)...))
	case DirectiveLiteral:
		b.append(doctree.NewElement(doctree.KindLiteralBlock, d.ContentLine, doctree.NewText(d.Content)))
	default:
		b.append(doctree.NewElement(doctree.KindComment, d.Line).Set(doctree.AttrClasses, spec.Name))
	}
}

func (b *Builder) moduleDirective(d Directive) {
	name := firstWord(d.ArgText())
	if name == "" {
		return
	}
	b.module = name
	b.flushPending()

	id := "module-" + name
	if len(b.stack) == 0 && len(b.sections) > 0 {
		section := b.sections[len(b.sections)-1].node
		if len(section.Children) == 1 && section.Children[0].Kind == doctree.KindTitle {
			section.Prepend(doctree.AttrIDs, id)
			return
		}
	}
	b.append(doctree.NewElement(doctree.KindTarget, d.Line).
		Set(doctree.AttrIDs, id).
		Set(doctree.AttrIsMod, "true"))
}

func (b *Builder) object(spec DirectiveSpec, d Directive, content func()) {
	module := b.module
	if m, ok := d.Options["module"]; ok {
		module = strings.TrimSpace(m)
	}

	desc := doctree.NewElement(doctree.KindDesc, d.Line).
		Set(doctree.AttrDomain, spec.Domain).
		Set(doctree.AttrObjType, spec.Name).
		Set(doctree.AttrDescType, spec.Name)

	class := b.class
	var last Signature
	var lastFull, lastPrefix string
	for _, arg := range d.Args {
		text := strings.TrimSpace(arg.Text)
		if text == "" {
			continue
		}
		sigNode := doctree.NewElement(doctree.KindDescSignature, arg.Line)
		sig, ok := ParseSignature(text)
		if !ok {
			sigNode.Append(doctree.NewElement(doctree.KindDescName, 0, doctree.NewText(text)))
			desc.Append(sigNode)
			continue
		}
		fullname, prefix := sig.FullName(class)
		sigNode.Append(sig.children()...)
		sigNode.Set(doctree.AttrFullName, fullname)
		if module != "" {
			sigNode.Set(doctree.AttrModule, module)
		}
		if class != "" {
			sigNode.Set(doctree.AttrClass, class)
		}
		id := fullname
		if module != "" {
			id = module + "." + fullname
		}
		sigNode.Set(doctree.AttrIDs, id)
		desc.Append(sigNode)
		last, lastFull, lastPrefix = sig, fullname, prefix
	}

	body := doctree.NewElement(doctree.KindDescContent, 0)
	desc.Append(body)
	b.append(desc)

	saved := b.class
	switch {
	case last.Name == "":
	case spec.Nesting:
		b.class = lastFull
	case lastPrefix != "":
		b.class = strings.Trim(lastPrefix, ".")
	}
	b.push(body)
	content()
	b.Close()
	b.class = saved
}

func (b *Builder) version(spec DirectiveSpec, d Directive, content func()) {
	n := doctree.NewElement(doctree.KindVersionModified, d.Line).Set(doctree.AttrType, spec.Name)
	b.append(n)
	b.push(n)

	words := 1
	if spec.Name == "deprecated-removed" {
		words = 2
	}
	var versions []string
	var text []string
	textLine := 0
	for _, arg := range d.Args {
		rest := arg.Text
		for len(versions) < words {
			rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
			if rest == "" {
				break
			}
			word := firstWord(rest)
			versions = append(versions, word)
			rest = rest[len(word):]
		}
		if len(versions) < words && textLine == 0 {
			continue
		}
		if textLine == 0 {
			rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
			if rest == "" {
				continue
			}
			textLine = arg.Line
		}
		text = append(text, rest)
	}
	n.Set(doctree.AttrVersion, versions...)
	if textLine > 0 {
		b.Paragraph(strings.TrimRightFunc(strings.Join(text, "\n"), unicode.IsSpace), textLine)
	}
	content()
	b.Close()
}

// Document finishes the tree and corrects inline line numbers.
func (b *Builder) Document() *doctree.Node {
	b.stack = nil
	b.flushPending()
	doctree.FixLines(b.doc)
	return b.doc
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NormalizeName lowercases s and collapses whitespace, like docutils
// reference names.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Slug converts s to a docutils identifier: lowercase ASCII letters and
// digits separated by single hyphens, starting with a letter.
func Slug(s string) string {
	var sb strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			hyphen = false
			sb.WriteRune(r)
			continue
		}
		hyphen = true
	}
	return strings.TrimLeftFunc(sb.String(), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
}
