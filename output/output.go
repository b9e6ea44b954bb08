// Package output renders linklint results as text, tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/arjunmahishi/linklint/linklint"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Writer handles command output.
type Writer struct {
	out     io.Writer
	encoder *json.Encoder
	fix     bool

	path  *color.Color
	fixed *color.Color
	issue *color.Color
}

// Config holds output configuration.
type Config struct {
	// Compact disables JSON indentation.
	Compact bool

	// Color enables ANSI colors in text output.
	Color bool

	// Fix adds the number of fixed issues to the text summary.
	Fix bool

	// Output defaults to os.Stdout.
	Output io.Writer
}

// New creates a new output Writer.
func New(cfg Config) *Writer {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	enc := json.NewEncoder(cfg.Output)
	enc.SetEscapeHTML(false)
	if !cfg.Compact {
		enc.SetIndent("", "  ")
	}

	w := &Writer{
		out:     cfg.Output,
		encoder: enc,
		fix:     cfg.Fix,
		path:    color.New(color.Bold),
		fixed:   color.New(color.FgGreen),
		issue:   color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{w.path, w.fixed, w.issue} {
		if cfg.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return w
}

// UseColor resolves a color mode of "auto", "always" or "never". Auto
// colors only when stdout is a terminal.
func UseColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return !color.NoColor
	}
}

// Write outputs a value as JSON.
func (w *Writer) Write(v any) error {
	return w.encoder.Encode(v)
}

// Summary counts the results of a lint run.
type Summary struct {
	Files  int `json:"files"`
	Issues int `json:"issues"`
	Fixed  int `json:"fixed"`
}

// Summarize counts files, issues and fixed issues.
func Summarize(results []linklint.FileResult) Summary {
	s := Summary{Files: len(results)}
	for _, res := range results {
		s.Issues += len(res.Issues)
		for _, issue := range res.Issues {
			if issue.Fixed {
				s.Fixed++
			}
		}
	}
	return s
}

// Report is the JSON form of a lint run.
type Report struct {
	Files   []linklint.FileResult `json:"files"`
	Summary Summary               `json:"summary"`
}

// Issues writes one line per issue followed by the summary line.
func (w *Writer) Issues(results []linklint.FileResult) error {
	for _, res := range results {
		for _, issue := range res.Issues {
			line := fmt.Sprintf("%s:%d: %s",
				w.path.Sprint(res.Path), issue.Line, w.issue.Sprint(issue.Message))
			if issue.Fixed {
				line += " " + w.fixed.Sprint("(fixed)")
			}
			if _, err := fmt.Fprintln(w.out, line); err != nil {
				return err
			}
		}
	}

	s := Summarize(results)
	msg := fmt.Sprintf("Checked %s, found %s", plural(s.Files, "file"), plural(s.Issues, "issue"))
	if w.fix {
		msg += fmt.Sprintf(", fixed %d", s.Fixed)
	}
	_, err := fmt.Fprintln(w.out, msg+".")
	return err
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Regions writes regions as a table.
func (w *Writer) Regions(regions []linklint.Region) error {
	table := tablewriter.NewWriter(w.out)
	table.SetHeader([]string{"Kind", "Name", "Start", "End main", "End total"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetHeaderLine(false)
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})
	for _, r := range regions {
		table.Append([]string{
			r.Kind, r.Name,
			strconv.Itoa(r.Start), strconv.Itoa(r.EndMain), strconv.Itoa(r.EndTotal),
		})
	}
	table.Render()
	return nil
}

// Roles writes one line per role with the kinds it refers to.
func (w *Writer) Roles(roles map[string][]string, order []string) error {
	for _, role := range order {
		if _, err := fmt.Fprintf(w.out, "%s\t%s\n", role, strings.Join(roles[role], " ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteError writes err to w as a JSON object.
func WriteError(w io.Writer, err error) {
	enc := json.NewEncoder(w)
	_ = enc.Encode(map[string]any{
		"error": err.Error(),
	})
}
