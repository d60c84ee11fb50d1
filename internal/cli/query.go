/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/devtoolbox/mockapi/fixtures"
	"github.com/devtoolbox/mockapi/query"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

const flagOutput = "output"

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <resource> [key=value ...]",
		Short: "Filter, sort and paginate a fixture collection without running the server",
		Example: `  mockapi query users firstName=alice sort=age order=desc
  mockapi query posts q=lorem limit=5 page=2 --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			resource := args[0]
			collection, ok := store.Collection(resource)
			if !ok {
				return fmt.Errorf("unknown resource %q, available: %s", resource, strings.Join(store.Names(), ", "))
			}
			res := query.Process(collection, parseArgParams(args[1:]), query.Opts{MaxLimit: cfg.Fixtures.MaxLimit(resource)})
			if output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					resource:     res.Items,
					"total":      res.Total,
					"page":       res.Page,
					"limit":      res.Limit,
					"totalPages": res.TotalPages,
				})
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderPage(res)+"\n")
			return err
		},
	}
	addOutputFlag(cmd)
	return cmd
}

// parseArgParams turns key=value arguments into query params keeping their order.
// An argument without "=" is a key with an empty value.
func parseArgParams(args []string) query.Params {
	params := make(query.Params, 0, len(args))
	for _, arg := range args {
		key, value, _ := strings.Cut(arg, "=")
		params = append(params, query.Param{Key: key, Value: value})
	}
	return params
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(flagOutput, "o", OutputTable, "output format (table, json)")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	output, err := cmd.Flags().GetString(flagOutput)
	if err != nil {
		return "", err
	}
	switch output = strings.ToLower(output); output {
	case OutputTable, OutputJSON:
		return output, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", output)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderPage(res query.PageResult) string {
	columns := recordColumns(res.Items)

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	header := make(table.Row, 0, len(columns))
	for _, col := range columns {
		header = append(header, col)
	}
	t.AppendHeader(header)
	for _, rec := range res.Items {
		row := make(table.Row, 0, len(columns))
		for _, col := range columns {
			row = append(row, cellValue(rec[col]))
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{fmt.Sprintf("page %d/%d, total %d", res.Page, res.TotalPages, res.Total)})
	return t.Render()
}

// recordColumns returns the union of record keys, "id" first and the rest sorted.
func recordColumns(items query.Collection) []string {
	seen := make(map[string]struct{})
	var columns []string
	for _, rec := range items {
		for key := range rec {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
		}
	}
	sort.Slice(columns, func(i, j int) bool {
		if columns[i] == fixtures.FieldID || columns[j] == fixtures.FieldID {
			return columns[i] == fixtures.FieldID
		}
		return columns[i] < columns[j]
	})
	return columns
}

func cellValue(v interface{}) string {
	switch v.(type) {
	case nil:
		return ""
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return s
	}
}
