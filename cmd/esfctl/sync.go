package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"esfhub/internal/gateway/gns"
	"esfhub/internal/logger"
	"esfhub/internal/port"
	"esfhub/internal/repository/postgres"
	"esfhub/internal/service"
)

var (
	syncExchangeCode string
	syncParams       []string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull invoices from GNS and synchronize them in one transaction",
	Long: `Fetches invoices from the GNS gateway and writes them to the database.
Either the whole batch is saved or nothing is.`,
	Example: `  esfctl sync
  esfctl sync --exchange-code ABC123 --param dateFrom=2024-01-01`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("sync")

		filter := port.FetchFilter{ExchangeCode: syncExchangeCode}
		for _, p := range syncParams {
			key, value, ok := strings.Cut(p, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid --param %q, want key=value", p)
			}
			if filter.Params == nil {
				filter.Params = make(map[string]string)
			}
			filter.Params[key] = value
		}

		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		syncSvc := service.NewSyncService(postgres.NewUnitOfWork(db), gns.NewClient(cfg.GNS))
		result, syncErr := syncSvc.PullAndSync(cmd.Context(), filter)
		if result != nil {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
		}
		if syncErr != nil {
			return syncErr
		}

		log.Info().
			Int("saved", result.Saved).
			Int("created", result.Created).
			Int("updated", result.Updated).
			Msg("sync completed")
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncExchangeCode, "exchange-code", "", "exchange code (defaults to ESF_GNS_EXCHANGE_CODE)")
	syncCmd.Flags().StringArrayVar(&syncParams, "param", nil, "extra query parameter as key=value (repeatable)")
}
