package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mderrick/schedgen/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Reconcile the application roster against its authoritative records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		res, em, err := runBuild(cmd, cfg)
		if err != nil {
			return err
		}
		defer em.Close()

		if len(res.Removed) == 0 {
			fmt.Fprintln(os.Stderr, "✓ application roster is consistent")
			return nil
		}

		if cfg.Verbose {
			for _, name := range res.Removed {
				fmt.Fprintf(os.Stderr, "✗ %s: no matching record or stale schedule rate\n", name)
			}
		}
		reportRemoved(res.Removed)
		os.Exit(1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
