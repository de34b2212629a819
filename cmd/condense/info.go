package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hokaccha/go-prettyjson"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/condense"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Report what an optimization pass would accomplish",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
	cmd.Flags().Bool("table", false, "Render the report as a table")
	return cmd
}

func runInfo(cmd *cobra.Command, args []string) error {
	configJSON, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	info, err := condense.OptimizationInfo(string(data), configJSON,
		condense.WithFilename(args[0]),
		condense.WithLogger(logger))
	if err != nil {
		return err
	}

	asTable, _ := cmd.Flags().GetBool("table")
	if asTable {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Field", "Value"})
		table.Append([]string{"fast_path_used", strconv.FormatBool(info.FastPathUsed)})
		table.Append([]string{"enabled_count", strconv.Itoa(info.EnabledCount)})
		table.Append([]string{"total_config_values", strconv.Itoa(info.TotalConfigValues)})
		table.Append([]string{"all_enabled", strconv.FormatBool(info.AllEnabled)})
		table.Append([]string{"should_optimize", strconv.FormatBool(info.ShouldOptimize)})
		table.Append([]string{"recommendations", strings.Join(info.Recommendations, "\n")})
		table.Render()
		return nil
	}

	if useColor() {
		out, err := prettyjson.Marshal(info)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
