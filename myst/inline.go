package myst

import (
	"regexp"
	"strings"

	"github.com/arjunmahishi/linklint/doctree"
	"github.com/arjunmahishi/linklint/markup"
)

var roleRe = regexp.MustCompile(`^\{([\w:+.-]+)\}`)

// ParseInline parses MyST inline markup: roles, code spans and links.
// Emphasis is left as text.
func ParseInline(text string, line int) []*doctree.Node {
	var out []*doctree.Node
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, doctree.NewText(buf.String()))
			buf.Reset()
		}
	}
	emit := func(n *doctree.Node) {
		flush()
		out = append(out, n)
	}

	for k := 0; k < len(text); {
		c := text[k]
		switch c {
		case '\\':
			if k+1 < len(text) && isASCIIPunct(text[k+1]) {
				buf.WriteByte(text[k+1])
				k += 2
				continue
			}
		case '{':
			if m := roleRe.FindStringSubmatch(text[k:]); m != nil {
				if content, next, ok := codeSpan(text, k+len(m[0])); ok {
					emit(markup.Role(m[1], content, line))
					k = next
					continue
				}
			}
		case '`':
			if content, next, ok := codeSpan(text, k); ok {
				emit(doctree.NewElement(doctree.KindLiteral, line, doctree.NewText(content)))
				k = next
				continue
			}
			// An unmatched run of backticks is literal text.
			n := runLength(text, k, '`')
			buf.WriteString(text[k : k+n])
			k += n
			continue
		case '[':
			if label, uri, next, ok := link(text, k); ok {
				ref := doctree.NewElement(doctree.KindReference, line, ParseInline(label, line)...)
				ref.Set(doctree.AttrRefURI, uri)
				emit(ref)
				k = next
				continue
			}
		}
		buf.WriteByte(c)
		k++
	}
	flush()
	return out
}

// codeSpan matches a backtick code span at k. A single leading and
// trailing space is stripped when both are present.
func codeSpan(text string, k int) (string, int, bool) {
	n := runLength(text, k, '`')
	if n == 0 {
		return "", k, false
	}
	for i := k + n; i < len(text); {
		if text[i] != '`' {
			i++
			continue
		}
		m := runLength(text, i, '`')
		if m == n {
			content := text[k+n : i]
			if len(content) > 1 && strings.HasPrefix(content, " ") && strings.HasSuffix(content, " ") && strings.TrimSpace(content) != "" {
				content = content[1 : len(content)-1]
			}
			return content, i + m, true
		}
		i += m
	}
	return "", k, false
}

// link matches an inline link "[label](uri)" at k.
func link(text string, k int) (label, uri string, next int, ok bool) {
	depth := 0
	closing := -1
	for i := k; i < len(text) && closing < 0; i++ {
		switch text[i] {
		case '\\':
			i++
		case '`':
			if _, end, found := codeSpan(text, i); found {
				i = end - 1
			}
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				closing = i
			}
		}
	}
	if closing < 0 || closing+1 >= len(text) || text[closing+1] != '(' {
		return "", "", k, false
	}
	end := strings.IndexByte(text[closing+2:], ')')
	if end < 0 {
		return "", "", k, false
	}
	dest := strings.TrimSpace(text[closing+2 : closing+2+end])
	if fields := strings.Fields(dest); len(fields) > 0 {
		dest = strings.Trim(fields[0], "<>")
	}
	return text[k+1 : closing], dest, closing + 2 + end + 1, true
}

func runLength(text string, k int, c byte) int {
	n := 0
	for k+n < len(text) && text[k+n] == c {
		n++
	}
	return n
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
