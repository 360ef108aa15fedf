package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"isl-backend/internal/quiz"
)

func newProgressCmd(app *App, withStore storeRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show best quiz scores per module",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withStore(func(cmd *cobra.Command, args []string, store quiz.ProgressStore) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Module\tBest\tOf")
		for _, m := range app.Catalog.Modules() {
			best, err := store.GetBestScore(cmd.Context(), m.ID)
			if err != nil {
				return fmt.Errorf("❌ Error reading progress: %w", err)
			}
			fmt.Fprintf(w, "%s\t%d\t%d\n", m.Name, best, min(len(quiz.Eligible(m)), quiz.MaxQuestions))
		}
		return w.Flush()
	})
	return cmd
}

func newResetCmd(app *App, withStore storeRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset <module>",
		Short: "Forget the best score of a module",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withStore(func(cmd *cobra.Command, args []string, store quiz.ProgressStore) error {
		if _, ok := app.Catalog.ModuleByID(args[0]); !ok {
			return fmt.Errorf("❌ Unknown module %q", args[0])
		}
		if err := store.ResetScore(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("❌ Error resetting score: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔄 Reset best score for %s\n", args[0])
		return nil
	})
	return cmd
}
