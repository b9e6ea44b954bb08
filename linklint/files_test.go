package linklint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRunLintWorkers tests the worker pool for concurrency correctness.
// Run with -race flag to detect race conditions: go test -race
func TestRunLintWorkers(t *testing.T) {
	tests := []struct {
		name      string
		fileCount int
		jobs      int
	}{
		{"single_file_single_worker", 1, 1},
		{"multiple_files_single_worker", 5, 1},
		{"multiple_files_multiple_workers", 10, 4},
		{"more_workers_than_files", 3, 10},
		{"many_files_high_concurrency", 50, 16},
		{"zero_jobs_defaults_to_one", 5, 0},
		{"empty_files", 0, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			expected := generateTestFiles(t, tmpDir, tc.fileCount)

			files, err := newScanner(scannerConfig{
				root:     tmpDir,
				maxBytes: defaultMaxBytes,
			}).collect()
			require.NoError(t, err)
			require.Len(t, files, tc.fileCount)

			checks := DefaultChecks()
			results, err := runLintWorkers(context.Background(), files, tc.jobs, func(job fileJob) (FileResult, error) {
				return lintFile(job, checks, LintOptions{Logger: slog.New(slog.DiscardHandler)})
			})
			require.NoError(t, err)
			require.Len(t, results, tc.fileCount, "should have one result per file")

			var names []string
			for i, res := range results {
				require.Equal(t, files[i].DisplayPath, res.Path, "results keep input order")
				for _, issue := range res.Issues {
					names = append(names, issue.Message)
				}
			}
			sort.Strings(names)
			sort.Strings(expected)
			require.Equal(t, expected, names, "every self-link is found exactly once")
		})
	}
}

func TestRunLintWorkersError(t *testing.T) {
	files := make([]fileJob, 20)
	for i := range files {
		files[i] = fileJob{DisplayPath: fmt.Sprintf("f%d.rst", i)}
	}
	boom := errors.New("boom")

	var calls atomic.Int32
	_, err := runLintWorkers(context.Background(), files, 1, func(job fileJob) (FileResult, error) {
		calls.Add(1)
		if job.DisplayPath == "f2.rst" {
			return FileResult{}, boom
		}
		return FileResult{Path: job.DisplayPath}, nil
	})
	require.ErrorIs(t, err, boom)
	require.Less(t, int(calls.Load()), len(files), "remaining work is cancelled")
}

func TestLint(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "index.rst", "Spam\n====\n\n.. module:: spam\n\nSee :mod:`spam`.\n")
	writeFile(t, tmpDir, "guide/intro.md", "```{function} eggs()\nCalls {func}`eggs`.\n```\n")
	writeFile(t, tmpDir, "notes.txt", "Nothing here.\n")
	writeFile(t, tmpDir, "skip.py", "# :mod:`spam`\n")
	writeFile(t, tmpDir, "_build/out.rst", "Spam\n====\n\n.. module:: spam\n\nSee :mod:`spam`.\n")

	results, err := Lint(context.Background(), LintOptions{Paths: []string{tmpDir}, Jobs: 2})
	require.NoError(t, err)

	byPath := map[string]FileResult{}
	for _, res := range results {
		rel, err := filepath.Rel(tmpDir, filepath.FromSlash(res.Path))
		require.NoError(t, err)
		byPath[filepath.ToSlash(rel)] = res
	}
	require.Len(t, byPath, 3)
	require.Len(t, byPath["index.rst"].Issues, 1)
	require.Equal(t, "self-link to module 'spam'", byPath["index.rst"].Issues[0].Message)
	require.Len(t, byPath["guide/intro.md"].Issues, 1)
	require.Equal(t, 2, byPath["guide/intro.md"].Issues[0].Line)
	require.NotNil(t, byPath["notes.txt"].Issues)
	require.Empty(t, byPath["notes.txt"].Issues)

	// Nothing was written without Fix.
	data, err := os.ReadFile(filepath.Join(tmpDir, "index.rst"))
	require.NoError(t, err)
	require.Contains(t, string(data), ":mod:`spam`")
}

func TestLintFix(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "index.rst", "Spam\n====\n\n.. module:: spam\n\nSee :mod:`spam`.\n")
	require.NoError(t, os.Chmod(path, 0o600))

	results, err := Lint(context.Background(), LintOptions{Paths: []string{path}, Fix: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, path, results[0].Path)
	require.True(t, results[0].Changed)
	require.True(t, results[0].Issues[0].Fixed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Spam\n====\n\n.. module:: spam\n\nSee :mod:`!spam`.\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLintOptions(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.rst", "Text.\n")
	writeFile(t, tmpDir, "b.md", "Text.\n")
	writeFile(t, tmpDir, "vendor/c.rst", "Text.\n")

	t.Run("extensions", func(t *testing.T) {
		results, err := Lint(context.Background(), LintOptions{Paths: []string{tmpDir}, Extensions: []string{"MD"}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Equal(t, "b.md", filepath.Base(results[0].Path))
	})

	t.Run("ignore dirs", func(t *testing.T) {
		results, err := Lint(context.Background(), LintOptions{Paths: []string{tmpDir}, IgnoreDirs: []string{"vendor"}})
		require.NoError(t, err)
		require.Len(t, results, 2)
	})

	t.Run("max bytes", func(t *testing.T) {
		results, err := Lint(context.Background(), LintOptions{Paths: []string{tmpDir}, MaxBytes: 1})
		require.NoError(t, err)
		require.Empty(t, results)
	})

	t.Run("unknown check", func(t *testing.T) {
		_, err := Lint(context.Background(), LintOptions{Paths: []string{tmpDir}, Checks: []string{"nope"}})
		var unknown *UnknownCheckError
		require.ErrorAs(t, err, &unknown)
	})

	t.Run("unsupported file", func(t *testing.T) {
		path := writeFile(t, tmpDir, "x.py", "")
		_, err := Lint(context.Background(), LintOptions{Paths: []string{path}})
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Lint(context.Background(), LintOptions{Paths: []string{filepath.Join(tmpDir, "missing")}})
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRegions(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "doc.rst", ".. class:: B\n\n.. class:: A\n\n   .. method:: run()\n")

	regions, err := Regions(RegionsOptions{File: path})
	require.NoError(t, err)
	require.Equal(t, []string{"B", "A", "A.run"}, regionNames(regions))

	notes := writeFile(t, tmpDir, "doc.notes", "```{class} C\n```\n")
	_, err = Regions(RegionsOptions{File: notes})
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	regions, err = Regions(RegionsOptions{File: notes, Format: "myst"})
	require.NoError(t, err)
	require.Equal(t, []string{"C"}, regionNames(regions))

	_, err = Regions(RegionsOptions{File: notes, Format: "asciidoc"})
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Regions(RegionsOptions{})
	require.Error(t, err)
}

func regionNames(regions []Region) []string {
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name
	}
	return names
}

// generateTestFiles creates N rst files, each with one self-linking
// function. Returns the expected issue messages.
func generateTestFiles(t *testing.T, dir string, count int) []string {
	t.Helper()

	var expected []string
	for i := range count {
		funcName := fmt.Sprintf("func%d", i)
		content := fmt.Sprintf(".. function:: %s()\n\n   Calls :func:`%s` again.\n", funcName, funcName)
		writeFile(t, dir, fmt.Sprintf("file_%d.rst", i), content)
		expected = append(expected, fmt.Sprintf("self-link to function '%s'", funcName))
	}

	return expected
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
