package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/edelguur/admin-backend/internal/orders"
	"github.com/edelguur/admin-backend/pkg/outbox"
)

type exporter interface {
	ExportCSV(ctx context.Context, w io.Writer) error
	ExportXLSX(ctx context.Context, w io.Writer) error
}

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "orders", Short: "Work with storefront orders"}

	var format, out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write every order to a CSV or XLSX file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()

			svc, err := orders.NewService(orders.ServiceParams{DB: e.db, Outbox: outbox.Discard, Logger: e.logg})
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), svc, format, out, cmd.OutOrStdout())
		},
	}
	export.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	export.Flags().StringVar(&out, "out", "", "output path (defaults to the download filename)")

	cmd.AddCommand(export)
	return cmd
}

func runExport(ctx context.Context, svc exporter, format, path string, status io.Writer) (err error) {
	var render func(context.Context, io.Writer) error
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		render = svc.ExportCSV
		if path == "" {
			path = orders.CSVFilename
		}
	case "xlsx", "excel":
		render = svc.ExportXLSX
		if path == "" {
			path = orders.XLSXFilename
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	if err := render(ctx, f); err != nil {
		return err
	}
	fmt.Fprintf(status, "wrote %s\n", path)
	return nil
}
