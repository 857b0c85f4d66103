package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"esfhub/internal/config"
	"esfhub/internal/gnsmock"
	"esfhub/internal/httpserver"
	"esfhub/internal/logger"
)

func main() {
	var addr string

	cmd := &cobra.Command{
		Use:          "gnsmock",
		Short:        "Run an in-memory stand-in for the GNS gateway",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := logger.Setup(cfg.Log); err != nil {
				return err
			}
			server := cfg.Server
			server.Port = addr
			return httpserver.Run("gnsmock", server, gnsmock.NewRouter(gnsmock.NewStore()))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8003", "listen address")

	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("gnsmock exited")
		os.Exit(1)
	}
}
