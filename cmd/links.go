package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mderrick/schedgen/internal/config"
	"github.com/mderrick/schedgen/internal/ui"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Report telemetry link sizes, rates, and descriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		variable, _ := cmd.Flags().GetString("variable")
		useStream, _ := cmd.Flags().GetBool("stream")
		apps, _ := cmd.Flags().GetBool("apps")

		res, em, err := runBuild(cmd, cfg)
		if err != nil {
			return err
		}
		defer em.Close()

		if apps {
			if len(res.Apps) == 0 {
				fmt.Fprintln(os.Stderr, "no applications contribute link members")
				return nil
			}
			for _, name := range res.Apps {
				fmt.Fprintln(os.Stdout, name)
			}
			return nil
		}

		if variable != "" {
			memberships := res.Catalog.VariableLinks(variable, useStream)
			if len(memberships) == 0 {
				fmt.Fprintf(os.Stderr, "%s is not a member of any link\n", variable)
				return nil
			}
			for _, id := range memberships {
				fmt.Fprintf(os.Stdout, "%s\t%s\n", id.Rate, id.Name)
			}
			return nil
		}

		fmt.Fprint(os.Stdout, ui.RenderLinks(res.Links))
		return nil
	},
}

func init() {
	linksCmd.Flags().String("variable", "", "list the links the given variable belongs to")
	linksCmd.Flags().Bool("stream", false, "report data stream names instead of rate column names")
	linksCmd.Flags().Bool("apps", false, "list the applications whose tables contribute link members")
	rootCmd.AddCommand(linksCmd)
}
