package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mderrick/schedgen/internal/config"
	"github.com/mderrick/schedgen/internal/export"
	"github.com/mderrick/schedgen/internal/telemetry"
	"github.com/mderrick/schedgen/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the scheduler tables whenever the project database changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		w, err := watch.New(cfg.DBPath, cfg.MacrosPath)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		// Initial build so the output exists before the first change.
		if err := rebuild(cmd, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		}

		fmt.Fprintf(os.Stderr, "watching %s and %s; ctrl-c to stop\n", cfg.DBPath, cfg.MacrosPath)
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case change, ok := <-w.Changes:
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "%s changed; rebuilding\n", change.Path)
				if err := rebuild(cmd, cfg); err != nil {
					// A mid-save database read can fail; the next change
					// triggers another attempt.
					fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// rebuild runs one full build and overwrites the output directory.
func rebuild(cmd *cobra.Command, cfg config.Config) error {
	res, em, err := runBuild(cmd, cfg)
	if err != nil {
		return err
	}
	defer em.Close()

	if err := export.Write(res, cfg.OutputDir, export.WriteOptions{Overwrite: true}); err != nil {
		return err
	}
	_ = em.Emit(telemetry.Event{Kind: telemetry.KindTableWritten, Data: cfg.OutputDir})
	reportRemoved(res.Removed)
	return nil
}
