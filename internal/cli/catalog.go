package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModulesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List learning modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tModule\tSigns")
			fmt.Fprintln(w, "--\t------\t-----")
			for _, m := range app.Catalog.Modules() {
				fmt.Fprintf(w, "%s\t%s %s\t%d\n", m.ID, m.Icon, m.Name, len(m.Items))
			}
			return w.Flush()
		},
	}
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the sign dictionary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := app.Catalog.Search(strings.Join(args, " "))
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No signs found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Sign\tCategory\tVideo")
			for _, item := range items {
				video := item.VideoURL
				if video == "" {
					video = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", item.Label, item.Category, video)
			}
			return w.Flush()
		},
	}
}
