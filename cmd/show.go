package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mderrick/schedgen/internal/config"
	"github.com/mderrick/schedgen/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the generated schedule table as a text grid",
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

		reportRemoved(res.Removed)
		fmt.Fprint(os.Stdout, ui.RenderSchedule(res.Schedule))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
