package linklint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedFormat is returned for files no registered format claims.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FileResult is the outcome of linting one file.
type FileResult struct {
	Path    string  `json:"path"`
	Issues  []Issue `json:"issues"`
	Changed bool    `json:"changed"`
}

// Lint lints the documents under opts.Paths. Results are in the order the
// files were found.
func Lint(ctx context.Context, opts LintOptions) ([]FileResult, error) {
	if len(opts.Paths) == 0 {
		opts.Paths = []string{"."}
	}
	if len(opts.Checks) == 0 {
		opts.Checks = []string{CheckAll}
	}
	if opts.Jobs == 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	checks, err := DefaultChecks().Select(opts.Checks)
	if err != nil {
		return nil, err
	}

	files, err := collectFiles(opts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return []FileResult{}, nil
	}

	return runLintWorkers(ctx, files, opts.Jobs, func(job fileJob) (FileResult, error) {
		return lintFile(job, checks, opts)
	})
}

func collectFiles(opts LintOptions) ([]fileJob, error) {
	cfg := scannerConfig{
		registry: opts.Registry,
		maxBytes: opts.MaxBytes,
	}
	if len(opts.Extensions) > 0 {
		cfg.extensions = make(map[string]struct{}, len(opts.Extensions))
		for _, ext := range opts.Extensions {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cfg.extensions[ext] = struct{}{}
		}
	}
	if opts.IgnoreDirs != nil {
		cfg.ignoreDirs = toSet(opts.IgnoreDirs)
	}

	var files []fileJob
	for _, path := range opts.Paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat: %w", err)
		}
		if !info.IsDir() {
			job, err := newScanner(cfg).collectSingle(path)
			if err != nil {
				return nil, err
			}
			files = append(files, job)
			continue
		}
		cfg.root = path
		jobs, err := newScanner(cfg).collect()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		files = append(files, jobs...)
	}
	return files, nil
}

// runLintWorkers processes files with at most jobs goroutines. The first
// error cancels the remaining work.
func runLintWorkers(
	ctx context.Context, files []fileJob, jobs int, process func(fileJob) (FileResult, error),
) ([]FileResult, error) {
	results := make([]FileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, job := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := process(job)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func lintFile(job fileJob, checks Checks, opts LintOptions) (FileResult, error) {
	info, err := os.Stat(job.AbsPath)
	if err != nil {
		return FileResult{}, fmt.Errorf("%s: stat: %w", job.DisplayPath, err)
	}
	source, err := os.ReadFile(job.AbsPath)
	if err != nil {
		return FileResult{}, fmt.Errorf("%s: read file: %w", job.DisplayPath, err)
	}

	result, err := LintContent(string(source), job.Format, ContentOptions{
		Checks: checks,
		Fix:    opts.Fix,
		Logger: opts.Logger.With("file", job.DisplayPath),
	})
	if err != nil {
		return FileResult{}, fmt.Errorf("%s: %w", job.DisplayPath, err)
	}

	if opts.Fix && result.Changed {
		if err := os.WriteFile(job.AbsPath, []byte(result.Content), info.Mode().Perm()); err != nil {
			return FileResult{}, fmt.Errorf("%s: write file: %w", job.DisplayPath, err)
		}
	}

	issues := result.Issues
	if issues == nil {
		issues = []Issue{}
	}
	return FileResult{
		Path:    job.DisplayPath,
		Issues:  issues,
		Changed: result.Changed,
	}, nil
}

// Regions returns the regions of one document sorted by start line and
// name.
func Regions(opts RegionsOptions) ([]Region, error) {
	if opts.File == "" {
		return nil, errors.New("file is required")
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}

	format := opts.Registry.ByExtension(filepath.Ext(opts.File))
	if opts.Format != "" {
		format = opts.Registry.Get(opts.Format)
		if format == nil {
			return nil, fmt.Errorf("%s: %w", opts.Format, ErrUnsupportedFormat)
		}
	}
	if format == nil {
		return nil, fmt.Errorf("%s: %w", opts.File, ErrUnsupportedFormat)
	}

	source, err := os.ReadFile(opts.File)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	doc, err := format.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%s: parse: %w", opts.File, err)
	}

	regions := FindRegions(doc)
	SortRegions(regions)
	return regions, nil
}

// SortRegions sorts regions by start line, then name.
func SortRegions(regions []Region) {
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Start != regions[j].Start {
			return regions[i].Start < regions[j].Start
		}
		return regions[i].Name < regions[j].Name
	})
}
