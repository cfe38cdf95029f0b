package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mderrick/schedgen/internal/config"
	"github.com/mderrick/schedgen/internal/export"
	"github.com/mderrick/schedgen/internal/gen"
	"github.com/mderrick/schedgen/internal/macro"
	"github.com/mderrick/schedgen/internal/store"
	"github.com/mderrick/schedgen/internal/telemetry"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate the scheduler tables and write them to the output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		res, em, err := runBuild(cmd, cfg)
		if err != nil {
			return err
		}
		defer em.Close()

		if err := export.Write(res, cfg.OutputDir, export.WriteOptions{Overwrite: force}); err != nil {
			return err
		}
		_ = em.Emit(telemetry.Event{Kind: telemetry.KindTableWritten, Data: cfg.OutputDir})

		reportRemoved(res.Removed)
		fmt.Fprintf(os.Stderr, "wrote %d defines, %d-entry command table, %d schedule periods to %s\n",
			len(res.Defines), len(res.Commands), len(res.Schedule), cfg.OutputDir)
		return nil
	},
}

func init() {
	buildCmd.Flags().Bool("force", false, "overwrite an existing output directory")
	rootCmd.AddCommand(buildCmd)
}

// runBuild opens the project and runs the generation pipeline with the
// configured dimensions, telemetry, and macro table. The returned emitter is
// nil unless telemetry is configured; the caller owns closing it and may
// emit follow-up events (such as table_written) on it.
func runBuild(cmd *cobra.Command, cfg config.Config) (*gen.Result, *telemetry.Emitter, error) {
	ctx := cmd.Context()

	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	exp, err := macro.Load(cfg.MacrosPath)
	if err != nil {
		return nil, nil, err
	}

	var em *telemetry.Emitter
	if cfg.TelemetryPath != "" {
		em, err = telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			return nil, nil, err
		}
	}

	params := gen.Params{
		SlotsPerPeriod:   cfg.SlotsPerPeriod,
		CommandsPerTable: cfg.CommandsPerTable,
		AppFieldName:     cfg.AppFieldName,
	}
	res, err := gen.Build(ctx, st, params, exp, em)
	if err != nil {
		em.Close()
		return nil, nil, err
	}
	return res, em, nil
}

// reportRemoved prints the single aggregate warning for applications pruned
// by validation. Individual removals are itemized in the telemetry stream,
// not here.
func reportRemoved(removed []string) {
	if len(removed) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "warning: invalid application scheduler applications detected; %d removed\n",
		len(removed))
}
