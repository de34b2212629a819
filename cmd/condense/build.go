package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/deepnoodle-ai/condense"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [files...]",
		Short: "Preprocess JavaScript files against the configuration",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBuild,
	}
	cmd.Flags().StringP("out-dir", "o", "", "Write outputs into this directory")
	cmd.Flags().BoolP("write", "w", false, "Overwrite the input files in place")
	cmd.Flags().Bool("stats", false, "Print per-file statistics")
	return cmd
}

// loadConfig accepts either inline JSON or a path to a JSON file.
func loadConfig() (string, error) {
	raw := viper.GetString("config")
	if json.Valid([]byte(raw)) {
		return raw, nil
	}
	data, err := os.ReadFile(raw)
	if err != nil {
		return "", fmt.Errorf("config is neither valid JSON nor a readable file: %w", err)
	}
	return string(data), nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	configJSON, err := loadConfig()
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("out-dir")
	write, _ := cmd.Flags().GetBool("write")
	showStats, _ := cmd.Flags().GetBool("stats")

	if len(args) > 1 && outDir == "" && !write {
		return fmt.Errorf("multiple inputs require --out-dir or --write")
	}

	type output struct {
		file   string
		result *condense.Result
	}
	outputs := make([]*output, len(args))
	failures := make([]error, len(args))

	var g errgroup.Group
	for i, file := range args {
		g.Go(func() error {
			data, err := os.ReadFile(file)
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", file, err)
				return nil
			}
			result, err := condense.Run(string(data), configJSON,
				condense.WithFilename(file),
				condense.WithLogger(logger))
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", file, err)
				return nil
			}
			outputs[i] = &output{file: file, result: result}
			return nil
		})
	}
	_ = g.Wait()

	var errs *multierror.Error
	for _, err := range failures {
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if errs != nil {
		return errs
	}

	for _, out := range outputs {
		if out == nil {
			continue
		}
		switch {
		case write:
			if err := os.WriteFile(out.file, []byte(out.result.Code), 0o644); err != nil {
				errs = multierror.Append(errs, err)
			}
		case outDir != "":
			dest := filepath.Join(outDir, filepath.Base(out.file))
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			if err := os.WriteFile(dest, []byte(out.result.Code), 0o644); err != nil {
				errs = multierror.Append(errs, err)
			}
		default:
			fmt.Fprint(cmd.OutOrStdout(), out.result.Code)
		}
		if showStats {
			s := out.result.Stats
			logger.Info().
				Str("file", out.file).
				Int("original_size", s.OriginalSize).
				Int("optimized_size", s.OptimizedSize).
				Float64("reduction_percent", s.SizeReductionPercent).
				Int("regions_dropped", s.RegionsDropped).
				Int("sweep_passes", s.SweepPasses).
				Bool("fast_path", s.FastPathUsed).
				Msg("processed")
		}
	}
	return errs.ErrorOrNil()
}
