package main

import (
	"context"
	"fmt"
	"os"

	"github.com/helpers-app/helpers-api/internal/config"
	"github.com/helpers-app/helpers-api/internal/migrate"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	migrationsDir string
	rollbackSteps int
)

var rootCmd = &cobra.Command{
	Use:   "helpers-migrate",
	Short: "Database migration tool for the Helpers API",
	Long: `helpers-migrate applies versioned SQL migrations to the Helpers database.

The connection string is read from DATABASE_URL (a .env file in the
working directory is loaded when present).

Examples:

  helpers-migrate up
  helpers-migrate status
  helpers-migrate down --steps=2
`,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Run: func(cmd *cobra.Command, args []string) {
		runner := newRunner(cmd.Context())
		defer runner.Close()

		applied, err := runner.Up(cmd.Context())
		for _, f := range applied {
			color.Green("applied: %s", f)
		}
		if err != nil {
			color.Red("migration failed: %v", err)
			os.Exit(1)
		}
		if len(applied) == 0 {
			color.Green("no pending migrations")
		} else {
			color.Green("applied %d migration(s)", len(applied))
		}
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migrations",
	Run: func(cmd *cobra.Command, args []string) {
		if rollbackSteps < 1 {
			color.Red("steps must be at least 1")
			os.Exit(1)
		}

		runner := newRunner(cmd.Context())
		defer runner.Close()

		rolledBack, err := runner.Down(cmd.Context(), rollbackSteps)
		for _, f := range rolledBack {
			color.Yellow("rolled back: %s", f)
		}
		if err != nil {
			color.Red("rollback failed: %v", err)
			os.Exit(1)
		}
		if len(rolledBack) == 0 {
			color.Green("no migrations to roll back")
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Run: func(cmd *cobra.Command, args []string) {
		runner := newRunner(cmd.Context())
		defer runner.Close()

		applied, pending, err := runner.Status(cmd.Context())
		if err != nil {
			color.Red("status failed: %v", err)
			os.Exit(1)
		}

		fmt.Println("Applied:")
		if len(applied) == 0 {
			fmt.Println("  (none)")
		}
		for _, rec := range applied {
			color.Green("  %s  %s", rec.AppliedAt.Format("2006-01-02 15:04:05"), rec.Filename)
		}

		fmt.Println("Pending:")
		if len(pending) == 0 {
			fmt.Println("  (none)")
		}
		for _, f := range pending {
			color.Yellow("  %s", f)
		}
	},
}

func newRunner(ctx context.Context) *migrate.Runner {
	_ = config.LoadDotEnv(".env")

	runner, err := migrate.NewRunner(ctx, os.Getenv("DATABASE_URL"), migrationsDir)
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
	return runner
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "Directory containing migration files")
	downCmd.Flags().IntVarP(&rollbackSteps, "steps", "s", 1, "Number of migrations to roll back")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}
