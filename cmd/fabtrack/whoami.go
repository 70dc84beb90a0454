package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xelth-com/fabtrack/internal/session"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami [token]",
		Short: "Show the user and role carried by a bearer token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := os.Getenv("FABTRACK_TOKEN")
			if len(args) == 1 {
				token = args[0]
			}
			id, err := session.DecodeToken(token)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user: %s\nrole: %s\nhome: %s\n", id.UserID, id.Role, id.Role.Home())
			return nil
		},
	}
}
