package linklint

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/arjunmahishi/linklint/doctree"
)

// Work is the state a check operates on.
type Work struct {
	Tree *doctree.Node

	// Lines holds the source lines with their line endings.
	Lines []string

	Syntax Syntax

	// Fix asks checks to rewrite Lines for the issues they find.
	Fix bool

	// Changed is set by checks that edited Lines.
	Changed bool

	Logger *slog.Logger
}

func (w *Work) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

// ContentOptions configures the LintContent function.
type ContentOptions struct {
	// Checks to run. If nil, all default checks run.
	Checks Checks

	// Fix rewrites the content for fixable issues.
	Fix bool

	// Logger receives diagnostics. If nil, nothing is logged.
	Logger *slog.Logger
}

// Result is the outcome of linting one document.
type Result struct {
	// Content is the document text, rewritten when fixing.
	Content string

	Issues  []Issue
	Changed bool
}

// LintContent parses content with format and runs the checks over it.
func LintContent(content string, format Format, opts ContentOptions) (*Result, error) {
	if opts.Checks == nil {
		opts.Checks = DefaultChecks()
	}

	doc, err := format.Parse([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	w := &Work{
		Tree:   doc,
		Lines:  SplitLines(content),
		Syntax: format.Syntax(),
		Fix:    opts.Fix,
		Logger: opts.Logger,
	}

	var issues []Issue
	for _, name := range opts.Checks.Names() {
		issues = append(issues, opts.Checks[name](w)...)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Line < issues[j].Line
	})

	return &Result{
		Content: strings.Join(w.Lines, ""),
		Issues:  issues,
		Changed: w.Changed,
	}, nil
}

// SplitLines splits text after each newline, keeping the line endings.
func SplitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
