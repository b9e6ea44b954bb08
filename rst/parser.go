// Package rst parses the subset of reStructuredText that linklint needs
// into a doctree.
//
// The parser is line and indentation based. It recognises section titles,
// transitions, paragraphs, literal and doctest blocks, block quotes, bullet,
// enumerated and definition lists, explicit targets, footnotes, comments
// and directives. Directive semantics come from package markup.
package rst

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/arjunmahishi/linklint/doctree"
	"github.com/arjunmahishi/linklint/markup"
	"github.com/mattn/go-runewidth"
)

// ErrInvalidEncoding is returned for sources that are not valid UTF-8.
var ErrInvalidEncoding = errors.New("rst: source is not valid UTF-8")

var (
	directiveRe = regexp.MustCompile(`^\.\.\s+([\w:+.-]+?)::(?:\s+(.*))?$`)
	targetRe    = regexp.MustCompile("^\\.\\.\\s+_(`[^`]+`|[^:]+|__):(?:\\s+(.*))?$")
	footnoteRe  = regexp.MustCompile(`^\.\.\s+\[([^\]]+)\](?:\s+(.*))?$`)
	optionRe    = regexp.MustCompile(`^:([^:\s][^:]*):(?:\s+(.*))?$`)
	enumRe      = regexp.MustCompile(`^(?:\((?:\d+|#)\)|(?:\d+|#)[.)])(?:\s+|$)`)
)

// Parse parses source and returns its document tree.
func Parse(source []byte) (*doctree.Node, error) {
	if !utf8.Valid(source) {
		return nil, ErrInvalidEncoding
	}
	p := &parser{}
	p.b = markup.NewBuilder(ParseInline)
	p.body(splitLines(string(source)), 1)
	return p.b.Document(), nil
}

type style struct {
	char rune
	over bool
}

type parser struct {
	b      *markup.Builder
	styles []style
}

func (p *parser) level(s style) int {
	for i, known := range p.styles {
		if known == s {
			return i + 1
		}
	}
	p.styles = append(p.styles, s)
	return len(p.styles)
}

// body parses lines as body elements. lines[0] is source line first.
func (p *parser) body(lines []string, first int) {
	for i := 0; i < len(lines); {
		line := lines[i]
		switch {
		case isBlank(line):
			i++
		case indentOf(line) > 0:
			block, next := indentedBlock(lines, i)
			p.b.Open(doctree.KindBlockQuote, first+i)
			p.body(block, first+i)
			p.b.Close()
			i = next
		case line == ".." || strings.HasPrefix(line, ".. "):
			i = p.explicit(lines, i, first)
		default:
			if next, ok := p.section(lines, i, first); ok {
				i = next
				continue
			}
			i = p.textBlock(lines, i, first)
		}
	}
}

// section recognises a title with an underline and optional overline, or a
// transition.
func (p *parser) section(lines []string, i, first int) (int, bool) {
	line := lines[i]
	if isAdornment(line) {
		if i+2 < len(lines) && !isBlank(lines[i+1]) && isAdornment(lines[i+2]) &&
			[]rune(lines[i+2])[0] == []rune(line)[0] {
			char := []rune(line)[0]
			p.b.Section(p.level(style{char: char, over: true}), strings.TrimSpace(lines[i+1]), first+i+1)
			return i + 3, true
		}
		if runewidth.StringWidth(strings.TrimRight(line, " ")) >= 4 && (i+1 == len(lines) || isBlank(lines[i+1])) {
			p.b.Add(doctree.NewElement(doctree.KindTransition, first+i))
			return i + 1, true
		}
		return i, false
	}
	if i+1 >= len(lines) || !isAdornment(lines[i+1]) {
		return i, false
	}
	title := strings.TrimRight(line, " ")
	under := strings.TrimRight(lines[i+1], " ")
	if runewidth.StringWidth(under) < runewidth.StringWidth(title) && utf8.RuneCountInString(under) < 4 {
		return i, false
	}
	p.b.Section(p.level(style{char: []rune(under)[0]}), title, first+i)
	return i + 2, true
}

// textBlock handles paragraphs, lists, definition lists, doctest blocks and
// literal blocks introduced by "::".
func (p *parser) textBlock(lines []string, i, first int) int {
	line := lines[i]
	switch {
	case isBullet(line):
		return p.list(lines, i, first, doctree.KindBulletList, isBullet)
	case enumRe.MatchString(line):
		return p.list(lines, i, first, doctree.KindEnumeratedList, enumRe.MatchString)
	case strings.HasPrefix(line, ">>>"):
		j := i
		for j < len(lines) && !isBlank(lines[j]) {
			j++
		}
		p.b.Add(doctree.NewElement(doctree.KindLiteralBlock, first+i,
			doctree.NewText(strings.Join(lines[i:j], "\n"))).Set(doctree.AttrClasses, "doctest"))
		return j
	case i+1 < len(lines) && !isBlank(lines[i+1]) && indentOf(lines[i+1]) > 0:
		return p.definitionList(lines, i, first)
	}

	j := i
	for j < len(lines) && !isBlank(lines[j]) && indentOf(lines[j]) == 0 {
		j++
	}
	text := strings.Join(lines[i:j], "\n")
	literal := strings.HasSuffix(text, "::")
	if literal {
		switch {
		case strings.TrimSpace(text) == "::":
			text = ""
		case len(text) > 2 && (text[len(text)-3] == ' ' || text[len(text)-3] == '\n'):
			text = strings.TrimRight(text[:len(text)-2], " \n")
		default:
			text = text[:len(text)-1]
		}
	}
	if text != "" {
		p.b.Paragraph(text, first+i)
	}
	if !literal {
		return j
	}

	k := j
	for k < len(lines) && isBlank(lines[k]) {
		k++
	}
	if k < len(lines) && indentOf(lines[k]) > 0 {
		block, next := indentedBlock(lines, k)
		p.b.Add(doctree.NewElement(doctree.KindLiteralBlock, first+k,
			doctree.NewText(strings.Join(block, "\n"))))
		return next
	}
	return j
}

func (p *parser) list(lines []string, i, first int, kind string, isItem func(string) bool) int {
	p.b.Open(kind, first+i)
	for i < len(lines) && isItem(lines[i]) {
		width := markerWidth(lines[i], kind)
		item, next := itemBlock(lines, i, width)
		p.b.Open(doctree.KindListItem, first+i)
		p.body(item, first+i)
		p.b.Close()
		i = next
		k := skipBlank(lines, i)
		if k < len(lines) && isItem(lines[k]) {
			i = k
		}
	}
	p.b.Close()
	return i
}

func (p *parser) definitionList(lines []string, i, first int) int {
	p.b.Open(doctree.KindDefinitionList, first+i)
	for i+1 < len(lines) && !isBlank(lines[i]) && indentOf(lines[i]) == 0 &&
		!isBlank(lines[i+1]) && indentOf(lines[i+1]) > 0 {
		p.b.Open(doctree.KindDefinitionListItem, first+i)
		p.b.Add(doctree.NewElement(doctree.KindTerm, first+i, p.b.Inline(lines[i], first+i)...))
		block, next := indentedBlock(lines, i+1)
		p.b.Open(doctree.KindDefinition, first+i+1)
		p.body(block, first+i+1)
		p.b.Close()
		p.b.Close()
		i = next
		if k := skipBlank(lines, i); k+1 < len(lines) && indentOf(lines[k]) == 0 &&
			!isBlank(lines[k+1]) && indentOf(lines[k+1]) > 0 && !isExplicit(lines[k]) {
			i = k
		}
	}
	p.b.Close()
	return i
}

// explicit handles explicit markup blocks starting at lines[i].
func (p *parser) explicit(lines []string, i, first int) int {
	line := lines[i]
	block, next := indentedBlock(lines, i+1)
	fullBlock := func(rest string) ([]string, int) {
		if rest == "" {
			return block, first + i + 1
		}
		return append([]string{rest}, block...), first + i
	}

	if m := targetRe.FindStringSubmatch(line); m != nil {
		name := strings.Trim(m[1], "`")
		url := m[2]
		for _, l := range block {
			if isBlank(l) {
				break
			}
			url += strings.TrimSpace(l)
		}
		if url = strings.TrimSpace(url); url != "" || name == "__" {
			p.b.Add(doctree.NewElement(doctree.KindTarget, first+i).
				Set(doctree.AttrNames, markup.NormalizeName(name)).
				Set(doctree.AttrRefURI, url))
		} else {
			p.b.Target(name, first+i)
		}
		return next
	}
	if m := footnoteRe.FindStringSubmatch(line); m != nil {
		content, contentLine := fullBlock(m[2])
		p.b.Open(doctree.KindFootnote, first+i).Set(doctree.AttrNames, markup.NormalizeName(m[1]))
		p.body(content, contentLine)
		p.b.Close()
		return next
	}
	m := directiveRe.FindStringSubmatch(line)
	if m == nil {
		// Comments and substitution definitions.
		p.b.Add(doctree.NewElement(doctree.KindComment, first+i))
		return next
	}

	d := markup.Directive{Name: m[1], Line: first + i, Options: map[string]string{}}
	spec := markup.LookupDirective(d.Name)
	rest := strings.TrimSpace(m[2])

	var content []string
	contentLine := first + i + 1
	if !spec.TakesArguments() {
		content, contentLine = fullBlock(rest)
	} else {
		if rest != "" {
			d.Args = append(d.Args, markup.Arg{Text: rest, Line: first + i})
		}
		k := 0
		for ; k < len(block) && !isBlank(block[k]); k++ {
			text := strings.TrimSpace(block[k])
			if om := optionRe.FindStringSubmatch(text); om != nil {
				d.Options[om[1]] = om[2]
				continue
			}
			if len(d.Options) > 0 {
				// Continuation of an option value.
				continue
			}
			d.Args = append(d.Args, markup.Arg{Text: text, Line: first + i + 1 + k})
		}
		content = block[k:]
		contentLine = first + i + 1 + k
	}

	if spec.Kind == markup.DirectiveLiteral {
		k := skipBlank(content, 0)
		d.Content = strings.Join(trimTrailingBlank(content[k:]), "\n")
		if d.Content != "" {
			d.ContentLine = contentLine + k
		}
	}

	var parse func()
	if spec.ParsesContent() {
		parse = func() { p.body(content, contentLine) }
	}
	p.b.Directive(d, parse)
	return next
}

// splitLines splits text into lines without their endings and expands tabs.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(expandTabs(line), " \r")
	}
	return lines
}

func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var sb strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := 8 - col%8
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func isExplicit(line string) bool {
	return line == ".." || strings.HasPrefix(line, ".. ")
}

const adornmentChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// isAdornment reports whether line is made of one repeated punctuation
// character.
func isAdornment(line string) bool {
	line = strings.TrimRight(line, " ")
	if len(line) < 2 || !strings.ContainsRune(adornmentChars, rune(line[0])) {
		return false
	}
	return strings.Count(line, line[:1]) == len(line)
}

func isBullet(line string) bool {
	if line == "" || !strings.ContainsRune("-*+•", []rune(line)[0]) {
		return false
	}
	_, size := utf8.DecodeRuneInString(line)
	return len(line) == size || line[size] == ' '
}

func markerWidth(line, kind string) int {
	var marker int
	if kind == doctree.KindBulletList {
		_, marker = utf8.DecodeRuneInString(line)
	} else {
		marker = len(strings.TrimRight(enumRe.FindString(line), " "))
	}
	width := marker
	for width < len(line) && line[width] == ' ' {
		width++
	}
	if width == len(line) {
		return marker + 1
	}
	return width
}

// itemBlock returns the dedented content of the list item at lines[i]
// whose text starts at column width, and the index after it.
func itemBlock(lines []string, i, width int) ([]string, int) {
	first := ""
	if width < len(lines[i]) {
		first = lines[i][width:]
	}
	block := []string{first}
	j := i + 1
	for j < len(lines) && (isBlank(lines[j]) || indentOf(lines[j]) >= width) {
		block = append(block, dedent(lines[j], width))
		j++
	}
	for j > i+1 && isBlank(lines[j-1]) {
		j--
		block = block[:len(block)-1]
	}
	return block, j
}

// indentedBlock returns the lines from lines[i] that are blank or indented,
// dedented by their common indentation, and the index after the block.
// Trailing blank lines are not part of the block.
func indentedBlock(lines []string, i int) ([]string, int) {
	j := i
	for j < len(lines) && (isBlank(lines[j]) || indentOf(lines[j]) > 0) {
		j++
	}
	for j > i && isBlank(lines[j-1]) {
		j--
	}
	minIndent := -1
	for _, line := range lines[i:j] {
		if isBlank(line) {
			continue
		}
		if n := indentOf(line); minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	block := make([]string, j-i)
	for k, line := range lines[i:j] {
		block[k] = dedent(line, minIndent)
	}
	return block, j
}

func dedent(line string, n int) string {
	if n <= 0 {
		return line
	}
	if len(line) <= n {
		return strings.TrimLeft(line, " ")
	}
	return line[n:]
}

func skipBlank(lines []string, i int) int {
	for i < len(lines) && isBlank(lines[i]) {
		i++
	}
	return i
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}
