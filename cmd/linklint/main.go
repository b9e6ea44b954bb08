package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/arjunmahishi/linklint/config"
	"github.com/arjunmahishi/linklint/linklint"
	"github.com/arjunmahishi/linklint/output"
	"github.com/urfave/cli/v3"
)

// errIssuesFound makes the process exit with status 1 after a report that
// contains issues.
var errIssuesFound = errors.New("issues found")

func main() {
	os.Exit(run(context.Background(), os.Args))
}

func run(ctx context.Context, args []string) int {
	err := rootCommand().Run(ctx, args)
	if err == nil {
		return 0
	}
	if errors.Is(err, errIssuesFound) {
		return 1
	}
	output.WriteError(os.Stderr, err)
	var unknown *linklint.UnknownCheckError
	if errors.As(err, &unknown) {
		return 2
	}
	return 1
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:      "linklint",
		Usage:     "find Sphinx cross-references that link to their own documentation",
		ArgsUsage: "[PATH...]",
		Description: "Lint reStructuredText (.rst, .txt) and MyST (.md) documents.\n\n" +
			"Examples:\n" +
			"  linklint Doc/                      # report self-links under Doc/\n" +
			"  linklint --fix Doc/library/os.rst  # rewrite them as :func:`!name`\n" +
			"  linklint --check paradup --format json Doc/",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "check",
				Value: linklint.CheckAll,
				Usage: "comma-separated checks to run",
			},
			&cli.BoolFlag{
				Name:  "fix",
				Usage: "rewrite fixable issues in place",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "number of parallel workers (default: number of CPUs)",
			},
			&cli.Int64Flag{
				Name:  "max-bytes",
				Usage: "skip files larger than this when scanning directories",
			},
			formatFlag(),
			compactFlag(),
			colorFlag(),
			configFlag(),
			verboseFlag(),
		},
		Commands: []*cli.Command{
			regionsCommand(),
			rolesCommand(),
		},
		Action: runLint,
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Value: "text",
		Usage: "output format: text or json",
	}
}

func compactFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "compact",
		Usage: "do not indent JSON output",
	}
}

func colorFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "color",
		Value: "auto",
		Usage: "color text output: auto, always or never",
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "config",
		Usage: "configuration file (default: .linklint.toml, then $XDG_CONFIG_HOME/linklint/config.toml)",
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log debug messages",
	}
}

// loadConfig reads the configuration file and applies the flags the user
// set explicitly.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if cmd.IsSet("format") {
		cfg.Format = cmd.String("format")
	}
	if cmd.IsSet("color") {
		cfg.Color = cmd.String("color")
	}
	return cfg, nil
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runLint(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("check") {
		cfg.Checks = splitList(cmd.String("check"))
	}
	if cmd.IsSet("fix") {
		cfg.Fix = cmd.Bool("fix")
	}
	if cmd.IsSet("jobs") {
		cfg.Jobs = cmd.Int("jobs")
	}
	if cmd.IsSet("max-bytes") {
		cfg.MaxBytes = cmd.Int64("max-bytes")
	}

	results, err := linklint.Lint(ctx, linklint.LintOptions{
		Paths:      cmd.Args().Slice(),
		Checks:     cfg.Checks,
		Fix:        cfg.Fix,
		Jobs:       cfg.Jobs,
		MaxBytes:   cfg.MaxBytes,
		Extensions: cfg.Extensions,
		IgnoreDirs: nonEmpty(cfg.IgnoreDirs),
		Logger:     newLogger(cmd),
	})
	if err != nil {
		return err
	}

	w := output.New(output.Config{
		Compact: cmd.Bool("compact"),
		Color:   output.UseColor(cfg.Color),
		Fix:     cfg.Fix,
	})
	if cfg.Format == "json" {
		err = w.Write(output.Report{Files: results, Summary: output.Summarize(results)})
	} else {
		err = w.Issues(results)
	}
	if err != nil {
		return err
	}

	for _, res := range results {
		if len(res.Issues) > 0 {
			return errIssuesFound
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// nonEmpty keeps an empty configured list from replacing the defaults.
func nonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}
