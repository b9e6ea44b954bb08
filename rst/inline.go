package rst

import (
	"strings"
	"unicode"

	"github.com/arjunmahishi/linklint/doctree"
	"github.com/arjunmahishi/linklint/markup"
)

// ParseInline parses the inline markup of a text block starting on line.
// All elements carry line; doctree.FixLines moves them to the line they
// actually start on.
func ParseInline(text string, line int) []*doctree.Node {
	p := inlineParser{rs: []rune(text), line: line}
	p.parse()
	return p.out
}

type inlineParser struct {
	rs   []rune
	line int
	out  []*doctree.Node
	buf  []rune
}

func (p *inlineParser) flush() {
	if len(p.buf) > 0 {
		p.out = append(p.out, doctree.NewText(string(p.buf)))
		p.buf = nil
	}
}

func (p *inlineParser) emit(n *doctree.Node) {
	p.flush()
	p.out = append(p.out, n)
}

func (p *inlineParser) parse() {
	rs := p.rs
	for k := 0; k < len(rs); {
		if next, ok := p.markup(k); ok {
			k = next
			continue
		}
		r := rs[k]
		if r == '\\' && k+1 < len(rs) {
			switch rs[k+1] {
			case ' ':
			case '\n':
				p.buf = append(p.buf, '\n')
			default:
				p.buf = append(p.buf, rs[k+1])
			}
			k += 2
			continue
		}
		p.buf = append(p.buf, r)
		k++
	}
	p.flush()
}

// markup tries to recognise inline markup starting at k.
func (p *inlineParser) markup(k int) (int, bool) {
	rs := p.rs
	switch rs[k] {
	case '`':
		if !p.startOK(k) {
			return k, false
		}
		if p.hasPrefix(k, "``") {
			end := p.findEnd(k+2, "``", false)
			if end < 0 {
				return k, false
			}
			p.emit(doctree.NewElement(doctree.KindLiteral, p.line, doctree.NewText(string(rs[k+2:end]))))
			return end + 2, true
		}
		end := p.findEnd(k+1, "`", true)
		if end < 0 {
			return k, false
		}
		content := string(rs[k+1 : end])
		next := end + 1
		switch {
		case p.hasPrefix(next, "__"):
			p.emit(p.reference(content, true))
			return next + 2, true
		case p.hasPrefix(next, "_"):
			p.emit(p.reference(content, false))
			return next + 1, true
		}
		if name, n := p.roleName(next); n > 0 {
			p.emit(markup.Role(name, content, p.line))
			return next + n, true
		}
		p.emit(doctree.NewElement(doctree.KindTitleReference, p.line, doctree.NewText(markup.Unescape(content))))
		return next, true
	case ':':
		if !p.startOK(k) {
			return k, false
		}
		name, n := p.roleName(k)
		if n == 0 || !p.hasPrefix(k+n, "`") || p.hasPrefix(k+n, "``") {
			return k, false
		}
		end := p.findEnd(k+n+1, "`", true)
		if end < 0 {
			return k, false
		}
		p.emit(markup.Role(name, string(rs[k+n+1:end]), p.line))
		return end + 1, true
	case '*':
		if !p.startOK(k) {
			return k, false
		}
		delim, kind := "*", doctree.KindEmphasis
		if p.hasPrefix(k, "**") {
			delim, kind = "**", doctree.KindStrong
		}
		from := k + len(delim)
		if from < len(rs) && rs[from] == '*' {
			return k, false
		}
		end := p.findEnd(from, delim, true)
		if end < 0 {
			return k, false
		}
		p.emit(doctree.NewElement(kind, p.line, doctree.NewText(markup.Unescape(string(rs[from:end])))))
		return end + len(delim), true
	}
	return k, false
}

func (p *inlineParser) reference(content string, anonymous bool) *doctree.Node {
	title, target, explicit := markup.SplitExplicitTitle(content)
	ref := doctree.NewElement(doctree.KindReference, p.line, doctree.NewText(markup.Unescape(title)))
	switch {
	case explicit && strings.HasSuffix(target, "_"):
		ref.Set(doctree.AttrRefName, markup.NormalizeName(strings.TrimSuffix(target, "_")))
	case explicit:
		ref.Set(doctree.AttrRefURI, strings.Join(strings.Fields(target), ""))
	case !anonymous:
		ref.Set(doctree.AttrRefName, markup.NormalizeName(content))
	}
	return ref
}

// roleName returns the role name in ":name:" at k and the length of the
// whole marker.
func (p *inlineParser) roleName(k int) (string, int) {
	rs := p.rs
	if k >= len(rs) || rs[k] != ':' {
		return "", 0
	}
	j := k + 1
	for j < len(rs) {
		r := rs[j]
		if r == ':' {
			// Domain separators are followed by another name character.
			if j+1 < len(rs) && isRoleChar(rs[j+1]) && j > k+1 {
				j++
				continue
			}
			break
		}
		if !isRoleChar(r) {
			return "", 0
		}
		j++
	}
	if j >= len(rs) || j == k+1 {
		return "", 0
	}
	return string(rs[k+1 : j]), j - k + 1
}

func isRoleChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' || r == '+'
}

func (p *inlineParser) hasPrefix(k int, s string) bool {
	for i, r := range []rune(s) {
		if k+i >= len(p.rs) || p.rs[k+i] != r {
			return false
		}
	}
	return true
}

// startOK applies the inline markup start-string rules at k: preceded by
// the start of text, whitespace or an opening punctuation character.
func (p *inlineParser) startOK(k int) bool {
	if k == 0 {
		return true
	}
	prev := p.rs[k-1]
	if prev == '\\' {
		return false
	}
	return unicode.IsSpace(prev) || strings.ContainsRune(`-:/'"<([{`, prev) || unicode.Is(unicode.Ps, prev) || unicode.Is(unicode.Pi, prev)
}

// findEnd finds delim at or after from that closes inline markup. The
// content must not start or end with whitespace and the end-string must be
// followed by the end of text, whitespace or punctuation.
func (p *inlineParser) findEnd(from int, delim string, escapes bool) int {
	rs := p.rs
	if from >= len(rs) || unicode.IsSpace(rs[from]) {
		return -1
	}
	for i := from; i < len(rs); i++ {
		if escapes && rs[i] == '\\' {
			i++
			continue
		}
		if i == from || !p.hasPrefix(i, delim) || unicode.IsSpace(rs[i-1]) {
			continue
		}
		after := i + len([]rune(delim))
		if after == len(rs) || unicode.IsSpace(rs[after]) || unicode.IsPunct(rs[after]) || unicode.IsSymbol(rs[after]) {
			return i
		}
	}
	return -1
}
