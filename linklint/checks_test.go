package linklint

import (
	"errors"
	"strings"
	"testing"

	"github.com/arjunmahishi/linklint/doctree"
	"github.com/stretchr/testify/require"
)

func TestSelectChecks(t *testing.T) {
	checks := DefaultChecks()
	require.Equal(t, []string{"paradup", "self"}, checks.Names())

	all, err := checks.Select([]string{CheckAll})
	require.NoError(t, err)
	require.Equal(t, []string{"paradup", "self"}, all.Names())

	none, err := checks.Select(nil)
	require.NoError(t, err)
	require.Equal(t, []string{"paradup", "self"}, none.Names())

	one, err := checks.Select([]string{" self "})
	require.NoError(t, err)
	require.Equal(t, []string{"self"}, one.Names())

	_, err = checks.Select([]string{"self", "zzz", "aaa"})
	var unknown *UnknownCheckError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, []string{"aaa", "zzz"}, unknown.Names)
	require.EqualError(t, err, "unknown checks: aaa, zzz")
}

func TestLintContentCustomCheck(t *testing.T) {
	checks := Checks{
		"trailing": func(w *Work) []Issue {
			var issues []Issue
			for i, line := range w.Lines {
				body := strings.TrimRight(line, "\r\n")
				if strings.TrimRight(body, " ") == body {
					continue
				}
				issue := Issue{Check: "trailing", Line: i + 1, Message: "trailing whitespace"}
				if w.Fix {
					w.Lines[i] = strings.TrimRight(body, " ") + line[len(body):]
					w.Changed, issue.Fixed = true, true
				}
				issues = append(issues, issue)
			}
			return issues
		},
	}

	result, err := LintContent("Title  \n=====\n\nText. \n", RST, ContentOptions{Checks: checks, Fix: true})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Equal(t, "Title\n=====\n\nText.\n", result.Content)
	require.Len(t, result.Issues, 2)
	require.Equal(t, 1, result.Issues[0].Line)
	require.Equal(t, 4, result.Issues[1].Line)
}

func TestLintContentNoFix(t *testing.T) {
	src := ".. class:: Queue\n\n   See :class:`Queue`.\n"
	result, err := LintContent(src, RST, ContentOptions{})
	require.NoError(t, err)
	require.False(t, result.Changed)
	require.Equal(t, src, result.Content)
	require.Len(t, result.Issues, 1)
	require.Equal(t, Issue{Check: "self", Line: 3, Message: "self-link to class 'Queue'"}, result.Issues[0])
}

func TestSplitLines(t *testing.T) {
	require.Empty(t, SplitLines(""))
	require.Equal(t, []string{"a\n", "b"}, SplitLines("a\nb"))
	require.Equal(t, []string{"a\r\n", "\n"}, SplitLines("a\r\n\n"))
}

func TestFindSelfReferences(t *testing.T) {
	doc, err := RST.Parse([]byte(".. function:: spam()\n\n   Calls :func:`spam` and :func:`eggs`.\n\n.. function:: eggs()\n"))
	require.NoError(t, err)

	var targets []string
	for ref := range FindSelfReferences(doc) {
		targets = append(targets, ref.Get(doctree.AttrRefTarget))
	}
	require.Equal(t, []string{"spam"}, targets)
}
