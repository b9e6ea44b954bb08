package main

import (
	"context"
	"errors"

	"github.com/arjunmahishi/linklint/linklint"
	"github.com/arjunmahishi/linklint/output"
	"github.com/urfave/cli/v3"
)

func regionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "regions",
		Usage:     "list the regions of a document",
		ArgsUsage: "FILE",
		Description: "Print the module and object regions found in one document.\n\n" +
			"Examples:\n" +
			"  linklint regions Doc/library/lzma.rst\n" +
			"  linklint regions --markup myst notes.txt\n" +
			"  linklint regions --format json Doc/library/os.rst",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "markup",
				Usage: "document format: rst or myst (default: by file extension)",
			},
			formatFlag(),
			compactFlag(),
			configFlag(),
		},
		Action: runRegions,
	}
}

func runRegions(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("regions takes exactly one FILE")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	regions, err := linklint.Regions(linklint.RegionsOptions{
		File:   cmd.Args().First(),
		Format: cmd.String("markup"),
	})
	if err != nil {
		return err
	}

	w := output.New(output.Config{Compact: cmd.Bool("compact")})
	if cfg.Format == "json" {
		return w.Write(regions)
	}
	return w.Regions(regions)
}
