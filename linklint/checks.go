package linklint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arjunmahishi/linklint/doctree"
)

// Issue is a problem found in a document.
type Issue struct {
	Check   string `json:"check"`
	Line    int    `json:"line"`
	Message string `json:"message"`
	Fixed   bool   `json:"fixed"`
}

// CheckFunc inspects a document and reports its issues. Checks that fix
// what they find edit w.Lines and set w.Changed.
type CheckFunc func(w *Work) []Issue

// Checks maps check names to their implementations.
type Checks map[string]CheckFunc

// CheckAll selects every check.
const CheckAll = "all"

// DefaultChecks returns the built-in checks.
func DefaultChecks() Checks {
	return Checks{
		"self":    SelfLinks,
		"paradup": DuplicateRefs,
	}
}

// Names returns the check names, sorted. Checks run in this order.
func (c Checks) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownCheckError reports check names that do not exist.
type UnknownCheckError struct {
	Names []string
}

func (e *UnknownCheckError) Error() string {
	return "unknown checks: " + strings.Join(e.Names, ", ")
}

// Select returns the checks called names. "all", or no names at all,
// selects every check.
func (c Checks) Select(names []string) (Checks, error) {
	selected := Checks{}
	var unknown []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
		case name == CheckAll:
			for n, fn := range c {
				selected[n] = fn
			}
		case c[name] != nil:
			selected[name] = c[name]
		default:
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnknownCheckError{Names: unknown}
	}
	if len(selected) == 0 {
		for n, fn := range c {
			selected[n] = fn
		}
	}
	return selected, nil
}

// SelfLinks reports references to the region that contains them and, when
// fixing, rewrites them so they no longer link.
func SelfLinks(w *Work) []Issue {
	var issues []Issue
	for s := range FindSelfLinks(w.Tree, WithLogger(w.logger())) {
		issue := Issue{
			Check:   "self",
			Line:    s.Node.Line,
			Message: fmt.Sprintf("self-link to %s '%s'", s.Region.Kind, s.Target()),
		}
		if w.Fix {
			issue.Fixed = w.fixReference(s)
			w.Changed = w.Changed || issue.Fixed
		}
		issues = append(issues, issue)
	}
	return issues
}

func (w *Work) fixReference(s SelfReference) bool {
	i := s.Node.Line - 1
	fixes := refFixes(w.Syntax, s.Node.Get(doctree.AttrRefDomain), s.Role(), s.Target())
	for _, fix := range fixes {
		if SubstituteLine(w.Lines, i, fix.re, fix.template) {
			return true
		}
	}

	text := ""
	if i >= 0 && i < len(w.Lines) {
		text = w.Lines[i]
	}
	patterns := make([]string, len(fixes))
	for k, fix := range fixes {
		patterns[k] = fix.re.String()
	}
	w.logger().Warn("could not fix self-link",
		"line", s.Node.Line,
		"role", s.Role(),
		"target", s.Target(),
		"pattern", strings.Join(patterns, " | "),
		"text", strings.TrimRight(text, "\r\n"),
	)
	return false
}

// DuplicateRefs reports every repeat of a cross-reference within one
// paragraph.
func DuplicateRefs(w *Work) []Issue {
	type key struct{ role, target string }

	var issues []Issue
	for para := range w.Tree.FindAll(doctree.KindParagraph) {
		seen := map[key]bool{}
		for ref := range para.FindAll(doctree.KindPendingXref) {
			k := key{ref.Get(doctree.AttrRefType), ref.Get(doctree.AttrRefTarget)}
			if k.role == "" || k.target == "" {
				continue
			}
			if seen[k] {
				issues = append(issues, Issue{
					Check:   "paradup",
					Line:    ref.Line,
					Message: fmt.Sprintf("duplicate :%s:`%s` in paragraph", k.role, k.target),
				})
			}
			seen[k] = true
		}
	}
	return issues
}
