package linklint

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultIgnoreDirs lists the directory names skipped while scanning.
var DefaultIgnoreDirs = []string{
	".git",
	".hg",
	".svn",
	".jj",
	".tox",
	".nox",
	".venv",
	"venv",
	"node_modules",
	"__pycache__",
	".mypy_cache",
	".pytest_cache",
	".cache",
	"_build",
	"build",
	"dist",
}

// fileJob is one document to lint.
type fileJob struct {
	AbsPath string

	// DisplayPath is the path as reported to the user.
	DisplayPath string

	Format Format
}

// scannerConfig holds scanner configuration.
type scannerConfig struct {
	root       string
	registry   *Registry
	extensions map[string]struct{}
	ignoreDirs map[string]struct{}
	maxBytes   int64
}

// scanner discovers documents for processing.
type scanner struct {
	cfg scannerConfig
}

// newScanner creates a new scanner with the given configuration.
func newScanner(cfg scannerConfig) *scanner {
	if cfg.ignoreDirs == nil {
		cfg.ignoreDirs = toSet(DefaultIgnoreDirs)
	}
	if cfg.registry == nil {
		cfg.registry = DefaultRegistry()
	}
	return &scanner{cfg: cfg}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// collect finds all matching documents under the root.
func (s *scanner) collect() ([]fileJob, error) {
	absRoot, err := filepath.Abs(s.cfg.root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	var jobs []fileJob
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if s.shouldIgnoreDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		format := s.formatFor(d.Name())
		if format == nil {
			return nil
		}

		if s.cfg.maxBytes > 0 {
			info, err := d.Info()
			if err != nil {
				// Skip files we can't stat
				return nil
			}
			if info.Size() > s.cfg.maxBytes {
				return nil
			}
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = path
		}

		jobs = append(jobs, fileJob{
			AbsPath:     path,
			DisplayPath: filepath.ToSlash(filepath.Join(s.cfg.root, rel)),
			Format:      format,
		})
		return nil
	})

	if err != nil {
		return nil, err
	}

	return jobs, nil
}

// collectSingle returns a single named file. Unlike directory scans it is
// not filtered by size or extension list, but its format must be known.
func (s *scanner) collectSingle(filePath string) (fileJob, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fileJob{}, fmt.Errorf("resolve path: %w", err)
	}

	format := s.cfg.registry.ByExtension(filepath.Ext(filePath))
	if format == nil {
		return fileJob{}, fmt.Errorf("%s: %w", filePath, ErrUnsupportedFormat)
	}

	return fileJob{
		AbsPath:     absPath,
		DisplayPath: filePath,
		Format:      format,
	}, nil
}

func (s *scanner) shouldIgnoreDir(name string) bool {
	_, ok := s.cfg.ignoreDirs[name]
	return ok
}

func (s *scanner) formatFor(name string) Format {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil
	}
	if s.cfg.extensions != nil {
		if _, ok := s.cfg.extensions[ext]; !ok {
			return nil
		}
	}
	return s.cfg.registry.ByExtension(ext)
}
