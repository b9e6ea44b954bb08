package linklint

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// IsHeaderLine reports whether line looks like the underline or overline
// of a title textLine: one repeated ASCII punctuation character, at least
// as wide as the title.
func IsHeaderLine(line, textLine string) bool {
	stripped := strings.TrimRightFunc(line, unicode.IsSpace)
	if stripped == "" || !isASCIIPunct(stripped[0]) {
		return false
	}
	if strings.Trim(stripped, stripped[:1]) != "" {
		return false
	}
	return runewidth.StringWidth(stripped) >= runewidth.StringWidth(strings.TrimRightFunc(textLine, unicode.IsSpace))
}

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func isASCIIPunct(c byte) bool {
	return strings.IndexByte(punctuation, c) >= 0
}

// ReplaceLine sets lines[i] to newLine. A header line directly above or
// below is resized to the width of the new text and keeps its own line
// ending.
func ReplaceLine(lines []string, i int, newLine string) {
	old := lines[i]
	lines[i] = newLine
	width := runewidth.StringWidth(strings.TrimRightFunc(newLine, unicode.IsSpace))
	for _, j := range []int{i - 1, i + 1} {
		if j < 0 || j >= len(lines) || !IsHeaderLine(lines[j], old) {
			continue
		}
		adj := lines[j]
		body := strings.TrimRight(adj, "\r\n")
		lines[j] = strings.Repeat(adj[:1], width) + adj[len(body):]
	}
}

// SubstituteLine replaces the first match of re on lines[i] with template,
// expanded as by regexp.Regexp.Expand. It reports whether the line changed.
func SubstituteLine(lines []string, i int, re *regexp.Regexp, template string) bool {
	if i < 0 || i >= len(lines) {
		return false
	}
	old := lines[i]
	loc := re.FindStringSubmatchIndex(old)
	if loc == nil {
		return false
	}
	repl := re.ExpandString(nil, template, old, loc)
	newLine := old[:loc[0]] + string(repl) + old[loc[1]:]
	if newLine == old {
		return false
	}
	ReplaceLine(lines, i, newLine)
	return true
}

// refFix is a pattern and template that rewrite a reference so it no
// longer links.
type refFix struct {
	re       *regexp.Regexp
	template string
}

// refFixes returns the rewrites for a reference with role and target, most
// specific first. domain may be empty.
func refFixes(syntax Syntax, domain, role, target string) []refFix {
	rolePat := regexp.QuoteMeta(role)
	if domain != "" {
		rolePat = "(?:" + regexp.QuoteMeta(domain) + ":)?" + rolePat
	}
	open, repl := `:(`+rolePat+`):`, `:${1}:`
	if syntax == SyntaxMyST {
		open, repl = `\{(`+rolePat+`)\}`, `{${1}}`
	}
	quoted := regexp.QuoteMeta(target)
	escaped := strings.ReplaceAll(target, "$", "$$")
	return []refFix{
		{
			// :class:`MyClass` -> :class:`!MyClass`
			re:       regexp.MustCompile(open + "`[~.]?" + quoted + "`"),
			template: repl + "`!" + escaped + "`",
		},
		{
			// :class:`Some Class <mymodule.MyClass>` -> :class:`!Some Class`
			re:       regexp.MustCompile(open + "`([^<`]+?)\\s*<" + quoted + ">`"),
			template: repl + "`!${2}`",
		},
	}
}
