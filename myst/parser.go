// Package myst parses MyST markdown into a doctree.
//
// Block structure comes from the tree-sitter markdown grammar. MyST
// extensions are layered on top: "(label)=" targets, "{name}" directive
// fences with ":key: value" options and "{role}`content`" roles.
package myst

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/arjunmahishi/linklint/doctree"
	"github.com/arjunmahishi/linklint/markup"
	sitter "github.com/smacker/go-tree-sitter"
	tree_sitter_markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
)

// ErrInvalidEncoding is returned for sources that are not valid UTF-8.
var ErrInvalidEncoding = errors.New("myst: source is not valid UTF-8")

var (
	targetRe    = regexp.MustCompile(`^\(([^()\s][^()]*)\)=\s*$`)
	directiveRe = regexp.MustCompile(`^\{([\w:+.-]+)\}\s*(.*)$`)
	optionRe    = regexp.MustCompile(`^:([\w-]+):\s*(.*)$`)
	closingRe   = regexp.MustCompile(`(^|\s+)#+\s*$`)
)

// Parse parses source and returns its document tree.
func Parse(source []byte) (*doctree.Node, error) {
	return ParseContext(context.Background(), source)
}

// ParseContext is Parse with a context that can cancel the tree-sitter
// parse.
func ParseContext(ctx context.Context, source []byte) (*doctree.Node, error) {
	if !utf8.Valid(source) {
		return nil, ErrInvalidEncoding
	}
	p := &parser{
		ctx:    ctx,
		parser: newParser(),
		b:      markup.NewBuilder(ParseInline),
	}
	source = blankFrontMatter(source)
	// An unterminated last line keeps closing fences inside the fence
	// content.
	if len(source) > 0 && source[len(source)-1] != '\n' {
		source = append(source[:len(source):len(source)], '\n')
	}
	if err := p.parse(source, 0); err != nil {
		return nil, err
	}
	return p.b.Document(), nil
}

// newParser creates a tree-sitter parser for the markdown block grammar.
func newParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(tree_sitter_markdown.GetLanguage())
	return p
}

type parser struct {
	ctx    context.Context
	parser *sitter.Parser
	b      *markup.Builder
}

// parse parses a fragment whose first line is source line offset+1.
func (p *parser) parse(source []byte, offset int) error {
	tree, err := p.parser.ParseCtx(p.ctx, nil, source)
	if err != nil {
		return fmt.Errorf("myst: parse: %w", err)
	}
	if tree == nil {
		return errors.New("myst: parse: no tree")
	}
	defer tree.Close()
	w := &walker{p: p, src: source, offset: offset}
	return w.blocks(tree.RootNode())
}

type walker struct {
	p      *parser
	src    []byte
	offset int
}

func (w *walker) line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1 + w.offset
}

func (w *walker) text(n *sitter.Node) string {
	return strings.TrimRight(n.Content(w.src), "\n")
}

// blocks walks the block children of n.
func (w *walker) blocks(n *sitter.Node) error {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if err := w.block(n.NamedChild(i)); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) block(n *sitter.Node) error {
	b := w.p.b
	switch n.Type() {
	case "document", "section":
		return w.blocks(n)
	case "atx_heading":
		level := 1
		title := ""
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch t := c.Type(); {
			case strings.HasPrefix(t, "atx_h") && strings.HasSuffix(t, "_marker"):
				level = int(t[len("atx_h")] - '0')
			case t == "inline":
				title = strings.TrimSpace(w.text(c))
			}
		}
		b.Section(level, closingRe.ReplaceAllString(title, ""), w.line(n))
	case "setext_heading":
		level := 1
		title := ""
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "setext_h2_underline":
				level = 2
			case "paragraph":
				title = strings.TrimSpace(w.text(c))
			}
		}
		b.Section(level, title, w.line(n))
	case "paragraph":
		w.paragraph(w.text(n), w.line(n))
	case "fenced_code_block":
		return w.fence(n)
	case "indented_code_block":
		b.Add(doctree.NewElement(doctree.KindLiteralBlock, w.line(n), doctree.NewText(w.text(n))))
	case "thematic_break":
		b.Add(doctree.NewElement(doctree.KindTransition, w.line(n)))
	case "html_block", "link_reference_definition":
		b.Add(doctree.NewElement(doctree.KindComment, w.line(n)))
	case "block_quote":
		b.Open(doctree.KindBlockQuote, w.line(n))
		defer b.Close()
		return w.blocks(n)
	case "list":
		kind := doctree.KindBulletList
		if item := n.NamedChild(0); item != nil && item.NamedChildCount() > 0 {
			switch item.NamedChild(0).Type() {
			case "list_marker_dot", "list_marker_parenthesis":
				kind = doctree.KindEnumeratedList
			}
		}
		b.Open(kind, w.line(n))
		defer b.Close()
		return w.blocks(n)
	case "list_item":
		b.Open(doctree.KindListItem, w.line(n))
		defer b.Close()
		return w.blocks(n)
	case "pipe_table":
		w.paragraph(w.text(n), w.line(n))
	}
	return nil
}

// paragraph splits leading "(label)=" lines off as targets.
func (w *walker) paragraph(text string, line int) {
	lines := strings.Split(text, "\n")
	k := 0
	for ; k < len(lines); k++ {
		m := targetRe.FindStringSubmatch(strings.TrimSpace(lines[k]))
		if m == nil {
			break
		}
		w.p.b.Target(m[1], line+k)
	}
	if k < len(lines) {
		w.p.b.Paragraph(strings.Join(lines[k:], "\n"), line+k)
	}
}

func (w *walker) fence(n *sitter.Node) error {
	var info string
	var body *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "info_string":
			info = strings.TrimSpace(c.Content(w.src))
		case "code_fence_content":
			body = c
		}
	}
	line := w.line(n)

	content := ""
	contentLine := line + 1
	if body != nil {
		content = body.Content(w.src)
		contentLine = w.line(body)
	}

	m := directiveRe.FindStringSubmatch(info)
	if m == nil {
		w.p.b.Add(doctree.NewElement(doctree.KindLiteralBlock, contentLine,
			doctree.NewText(strings.TrimRight(content, "\n"))))
		return nil
	}

	d := markup.Directive{Name: m[1], Line: line, Options: map[string]string{}}
	spec := markup.LookupDirective(d.Name)
	rest := strings.TrimSpace(m[2])
	if rest != "" && spec.TakesArguments() {
		d.Args = append(d.Args, markup.Arg{Text: rest, Line: line})
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	k := parseOptions(lines, d.Options)
	bodyText := strings.Join(lines[k:], "\n")
	bodyLine := contentLine + k

	if spec.Kind == markup.DirectiveLiteral {
		d.Content = strings.TrimRight(bodyText, "\n")
		if d.Content != "" {
			d.ContentLine = bodyLine
		}
	}

	var err error
	var parse func()
	if spec.ParsesContent() {
		parse = func() {
			if rest != "" && !spec.TakesArguments() {
				w.p.b.Paragraph(rest, line)
			}
			if strings.TrimSpace(bodyText) != "" {
				err = w.p.parse([]byte(bodyText+"\n"), bodyLine-1)
			}
		}
	}
	w.p.b.Directive(d, parse)
	return err
}

// parseOptions consumes ":key: value" lines or a "---" delimited YAML block
// at the start of directive content and returns the index of the first
// body line.
func parseOptions(lines []string, opts map[string]string) int {
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "---" {
		for k := 1; k < len(lines); k++ {
			if strings.TrimSpace(lines[k]) == "---" {
				return k + 1
			}
			if key, value, ok := strings.Cut(lines[k], ":"); ok {
				opts[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
		return 0
	}
	k := 0
	for ; k < len(lines); k++ {
		m := optionRe.FindStringSubmatch(strings.TrimSpace(lines[k]))
		if m == nil {
			break
		}
		opts[m[1]] = m[2]
	}
	return k
}

// blankFrontMatter replaces a leading YAML front matter block with empty
// lines so that line numbers stay intact.
func blankFrontMatter(source []byte) []byte {
	text := string(source)
	if !strings.HasPrefix(text, "---\n") && !strings.HasPrefix(text, "---\r\n") {
		return source
	}
	lines := strings.SplitAfter(text, "\n")
	for k := 1; k < len(lines); k++ {
		if strings.TrimRight(lines[k], "\r\n") != "---" {
			continue
		}
		var sb strings.Builder
		for _, l := range lines[:k+1] {
			if strings.HasSuffix(l, "\r\n") {
				sb.WriteString("\r\n")
			} else {
				sb.WriteString("\n")
			}
		}
		for _, l := range lines[k+1:] {
			sb.WriteString(l)
		}
		return []byte(sb.String())
	}
	return source
}
