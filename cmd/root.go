package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/codedrill/internal/screens/practice"
	"github.com/abhisek/codedrill/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "codedrill",
	Short: "Generated coding practice in the terminal",
	Long:  "codedrill asks a problem generator for a learning path on a topic and lets you drill into any problem in a new session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, practice.Options{})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CODEDRILL_DB env var)")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(handoffCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CODEDRILL_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore resolves the database path and opens the store.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
