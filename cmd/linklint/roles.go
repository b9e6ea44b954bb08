package main

import (
	"context"

	"github.com/arjunmahishi/linklint/linklint"
	"github.com/arjunmahishi/linklint/output"
	"github.com/urfave/cli/v3"
)

func rolesCommand() *cli.Command {
	return &cli.Command{
		Name:  "roles",
		Usage: "show which region kinds each role refers to",
		Description: "Print one role per line followed by the kinds it resolves to,\n" +
			"in lookup order. Output is designed to be grep-friendly.\n\n" +
			"Examples:\n" +
			"  linklint roles\n" +
			"  linklint roles | grep class",
		Action: func(_ context.Context, _ *cli.Command) error {
			roles := linklint.Roles()
			kinds := make(map[string][]string, len(roles))
			for _, role := range roles {
				kinds[role] = linklint.RoleKinds(role)
			}
			return output.New(output.Config{}).Roles(kinds, roles)
		},
	}
}
