package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/config"
	"github.com/xelth-com/fabtrack/internal/labels"
)

func newLabelsCmd() *cobra.Command {
	var orderID, out, token string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Write the QR label sheet of an order to a PDF file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("FABTRACK_TOKEN")
			}
			if token == "" {
				return fmt.Errorf("a bearer token is required (--token or FABTRACK_TOKEN)")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if out == "" {
				out = "labels-" + orderID + ".pdf"
			}

			client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout).WithToken(token)
			n, err := writeOrderLabels(cmd.Context(), client, orderID, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d labels to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&orderID, "order", "", "order id")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default labels-<order>.pdf)")
	cmd.Flags().StringVar(&token, "token", "", "API bearer token")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}

// writeOrderLabels renders every piece of the order onto label sheets
// and returns how many labels were written.
func writeOrderLabels(ctx context.Context, client *api.Client, orderID, path string) (int, error) {
	order, err := client.GetOrder(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("load order: %w", err)
	}
	pieces, err := client.OrderPieces(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("load pieces: %w", err)
	}
	pdf, err := labels.OrderSheetPDF(*order, pieces)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return len(pieces), nil
}
