package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"esfhub/internal/logger"
	"esfhub/internal/repository/postgres"
	"esfhub/internal/xlsxexport"
)

var (
	exportOutput string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored invoices to an .xlsx spreadsheet",
	Example: `  esfctl export
  esfctl export --output march.xlsx --limit 500`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("export")

		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		invoices, total, err := postgres.NewInvoiceRepo(db).List(cmd.Context(), 0, exportLimit)
		if err != nil {
			return fmt.Errorf("listing invoices: %w", err)
		}

		w, err := xlsxexport.NewWriter()
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()

		if err := w.WriteHeader(); err != nil {
			return err
		}
		if err := w.WriteInvoices(invoices); err != nil {
			return err
		}

		path := exportOutput
		if path == "" {
			path = xlsxexport.BuildFilename("invoices")
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()

		if _, err := w.WriteTo(f); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		log.Info().Str("file", path).Int("rows", len(invoices)).Int("total", total).Msg("export written")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default invoices_<date>.xlsx)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 10000, "maximum number of invoices to export")
}
