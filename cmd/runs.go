package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/chartaudit/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		runs, err := s.RunRepo().ListRuns(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		fmt.Printf("%-19s  %-12s  %-16s  %-5s  %-6s  %s\n",
			"Timestamp", "Note", "Source", "Corr", "Review", "Codes")
		fmt.Println(strings.Repeat("─", 90))
		for _, r := range runs {
			review := ""
			if r.NeedsManualReview {
				review = "yes"
			}
			fmt.Printf("%-19s  %-12s  %-16s  %-5d  %-6s  %s\n",
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				shortHash(r.NoteSHA256),
				r.SourceLabel,
				r.Corrections,
				review,
				strings.Join(r.DerivedCodes, " "),
			)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
}
