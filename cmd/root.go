package cmd

import (
	"github.com/abhisek/chartaudit/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chartaudit",
	Short: "Audit and self-correct procedure coding from clinical notes",
	Long: "Chartaudit derives procedure codes from clinical notes, audits them against\n" +
		"an independent classifier, and self-corrects evidence-backed omissions.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CHARTAUDIT_DB_PATH env var)")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(codesCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CHARTAUDIT_DB_PATH env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	p, err := store.DefaultDBPath()
	if err != nil {
		return "", err
	}
	return p, store.EnsureDir(p)
}
