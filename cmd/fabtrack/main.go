package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xelth-com/fabtrack/internal/buildinfo"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fabtrack",
		Short:         "Fabtrack: shop-floor front end for order and piece tracking",
		Long:          "Fabtrack serves the admin, manager and worker screens on top of the fabrication API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLabelsCmd())
	cmd.AddCommand(newWhoamiCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fabtrack %s\n", buildinfo.Summary())
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
