/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package cli contains the mockapi command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

const flagConfig = "config"

// NewRootCmd creates the root command of the mockapi CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mockapi",
		Short:        "Mock REST API over static JSON fixtures",
		Long:         "mockapi serves fixture collections with pagination, filtering, sorting and per-client rate limiting.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String(flagConfig, "", "path to a YAML or JSON configuration file")

	root.AddCommand(
		newServeCmd(),
		newQueryCmd(),
		newResourcesCmd(),
	)
	return root
}
