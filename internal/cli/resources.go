/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/devtoolbox/mockapi/fixtures"
	"github.com/devtoolbox/mockapi/httpserver"
)

func newResourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List fixture collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := fixtures.Load(cfg.Fixtures)
			if err != nil {
				return fmt.Errorf("load fixtures: %w", err)
			}

			summaries := make([]httpserver.ResourceSummary, 0, len(store.Names()))
			for _, name := range store.Names() {
				collection, _ := store.Collection(name)
				summaries = append(summaries, httpserver.ResourceSummary{Name: name, Total: len(collection)})
			}
			if output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), httpserver.ResourcesResponseData{Resources: summaries})
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Resource", "Total", "Max limit"})
			for _, s := range summaries {
				t.AppendRow(table.Row{s.Name, s.Total, cfg.Fixtures.MaxLimit(s.Name)})
			}
			_, err = io.WriteString(cmd.OutOrStdout(), t.Render()+"\n")
			return err
		},
	}
	addOutputFlag(cmd)
	return cmd
}
