package linklint

import "log/slog"

// LintOptions configures the Lint function.
type LintOptions struct {
	// Paths are the files and directories to lint.
	// If empty, current directory is used.
	Paths []string

	// Checks names the checks to run, or "all".
	// Defaults to all checks.
	Checks []string

	// Fix rewrites files in place for fixable issues.
	Fix bool

	// Jobs is the number of parallel workers.
	// If 0, defaults to number of CPUs.
	Jobs int

	// MaxBytes skips files larger than this size when scanning directories.
	// If 0, defaults to 2 MiB.
	MaxBytes int64

	// Extensions limits directory scans to these file extensions.
	// If empty, every extension of a registered format is scanned.
	Extensions []string

	// IgnoreDirs replaces the default set of directory names skipped
	// while scanning.
	IgnoreDirs []string

	// Registry resolves file extensions to formats.
	// If nil, DefaultRegistry is used.
	Registry *Registry

	// Logger receives diagnostics. If nil, nothing is logged.
	Logger *slog.Logger
}

// RegionsOptions configures the Regions function.
type RegionsOptions struct {
	// File is the document to analyze (required).
	File string

	// Format names the format of File.
	// If empty, it is chosen by file extension.
	Format string

	// Registry resolves format names and extensions.
	// If nil, DefaultRegistry is used.
	Registry *Registry
}

const defaultMaxBytes = 2 * 1024 * 1024
