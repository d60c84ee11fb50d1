/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/devtoolbox/mockapi/internal/app"
	"github.com/devtoolbox/mockapi/log"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, closeLogger := log.NewLogger(cfg.Log)
			defer closeLogger()

			if err = app.Run(cmd.Context(), cfg, logger); err != nil {
				logger.Error("service stopped with error", log.Error(err))
				return err
			}
			return nil
		},
	}
}

func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	return app.LoadConfig(path)
}
