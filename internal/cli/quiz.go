package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"isl-backend/internal/quiz"
)

type storeRunner func(fn func(cmd *cobra.Command, args []string, store quiz.ProgressStore) error) func(*cobra.Command, []string) error

func newQuizCmd(app *App, withStore storeRunner) *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "quiz <module>",
		Short: "Take a quiz on one module",
		Long: `Take a multiple-choice quiz. Each question shows a sign; pick the
matching word by number. A wrong guess disables that option and the
question no longer scores. Type q to quit without saving.`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible quiz")

	cmd.RunE = withStore(func(cmd *cobra.Command, args []string, store quiz.ProgressStore) error {
		module, ok := app.Catalog.ModuleByID(args[0])
		if !ok {
			return fmt.Errorf("❌ Unknown module %q (see islctl modules)", args[0])
		}

		if !cmd.Flags().Changed("seed") {
			seed = app.Seed()
		}

		questions := quiz.Generate(module, app.Catalog.AllItems(), quiz.NewSampler(seed))
		session := quiz.NewSession(module.ID, questions, 0)
		out := cmd.OutOrStdout()

		if len(questions) == 0 {
			fmt.Fprintln(out, "⚠️ This module has no playable signs yet.")
		} else {
			fmt.Fprintf(out, "📝 %s quiz: %d questions\n", module.Name, len(questions))
		}

		finished, err := play(bufio.NewReader(cmd.InOrStdin()), out, session)
		if err != nil {
			return err
		}
		if !finished {
			fmt.Fprintln(out, "\nQuiz abandoned, score not saved.")
			return nil
		}

		ctx := cmd.Context()
		newBest, err := quiz.Report(ctx, store, session)
		if err != nil {
			return fmt.Errorf("❌ Could not save score: %w", err)
		}

		fmt.Fprintf(out, "\n🎉 Score: %d/%d\n", session.Score, len(questions))
		if newBest {
			fmt.Fprintln(out, "🏆 New best score!")
		} else if best, err := store.GetBestScore(ctx, module.ID); err == nil {
			fmt.Fprintf(out, "Best so far: %d\n", best)
		}
		return nil
	})

	return cmd
}

// play drives a session from line-based input until it finishes or the
// learner quits. It reports whether the session finished.
func play(in *bufio.Reader, out io.Writer, s *quiz.Session) (bool, error) {
	for {
		q, st, ok := s.CurrentQuestion()
		if !ok {
			return s.Finished, nil
		}

		fmt.Fprintf(out, "\nQuestion %d/%d\n", s.Current+1, len(s.Questions))
		fmt.Fprintf(out, "Sign: %s\n", q.Target.MediaURL)
		if q.Target.VideoURL != "" {
			fmt.Fprintf(out, "Video: %s\n", q.Target.VideoURL)
		}
		for i, o := range q.Options {
			mark := " "
			for _, d := range st.Disabled {
				if d == o.ID {
					mark = "✗"
				}
			}
			fmt.Fprintf(out, "  %s %d) %s\n", mark, i+1, o.Label)
		}
		fmt.Fprintf(out, "Your answer (1-%d, q to quit): ", len(q.Options))

		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		line = strings.TrimSpace(line)
		if line == "" && errors.Is(err, io.EOF) {
			return false, nil
		}
		if strings.EqualFold(line, "q") {
			return false, nil
		}

		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > len(q.Options) {
			fmt.Fprintf(out, "⚠️ Enter a number between 1 and %d.\n", len(q.Options))
			continue
		}

		outcome, err := s.Submit(q.Options[n-1].ID, time.Now())
		switch {
		case errors.Is(err, quiz.ErrOptionDisabled):
			fmt.Fprintln(out, "⚠️ Already tried that one.")
			continue
		case err != nil:
			return false, err
		}

		if !outcome.Correct {
			fmt.Fprintln(out, "✗ Not quite, try again.")
			continue
		}
		if outcome.Credited {
			fmt.Fprintln(out, "✓ Correct! +1")
		} else {
			fmt.Fprintf(out, "✓ Correct, it was %s.\n", q.Target.Label)
		}
		s.Advance()
	}
}
