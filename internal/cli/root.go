// Package cli implements islctl, a terminal companion to the ISL API that
// browses the catalog and runs quizzes against a local progress database.
package cli

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"isl-backend/internal/catalog"
	"isl-backend/internal/config"
	"isl-backend/internal/database"
	"isl-backend/internal/quiz"
	"isl-backend/internal/repository"
)

// App holds what the commands share. Tests swap OpenStore and Seed.
type App struct {
	Catalog   *catalog.Catalog
	OpenStore func(memory bool) (quiz.ProgressStore, func() error, error)
	Seed      func() uint64
}

func DefaultApp() (*App, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	return &App{
		Catalog:   cat,
		OpenStore: openStore,
		Seed:      rand.Uint64,
	}, nil
}

func openStore(memory bool) (quiz.ProgressStore, func() error, error) {
	if memory {
		return quiz.NewMemoryProgressStore(), func() error { return nil }, nil
	}

	db, err := database.OpenSQLite(config.DataDir())
	if err != nil {
		return nil, nil, err
	}
	store, err := repository.NewSQLiteProgressStore(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}

func NewRootCmd(app *App) *cobra.Command {
	var memory bool

	root := &cobra.Command{
		Use:   "islctl",
		Short: "Practice Indian Sign Language from the terminal",
		Long: `islctl browses the ISL learning modules and runs multiple-choice
quizzes. Best scores are kept in a local SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	root.PersistentFlags().BoolVar(&memory, "memory", false, "Keep progress in memory only")

	withStore := func(fn func(cmd *cobra.Command, args []string, store quiz.ProgressStore) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := app.OpenStore(memory)
			if err != nil {
				return fmt.Errorf("❌ Database error: %w", err)
			}
			defer closeStore()
			return fn(cmd, args, store)
		}
	}

	root.AddCommand(
		newModulesCmd(app),
		newSearchCmd(app),
		newQuizCmd(app, withStore),
		newProgressCmd(app, withStore),
		newResetCmd(app, withStore),
	)
	return root
}
