package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/chartaudit/internal/codes"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List the procedure-code vocabulary and equivalence classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := codes.Validate(); err != nil {
			return err
		}

		fmt.Printf("%-7s  %-4s  %s\n", "Code", "AddOn", "Label")
		fmt.Println(strings.Repeat("─", 72))
		for _, d := range codes.All() {
			addOn := ""
			if d.AddOn {
				addOn = "yes"
			}
			fmt.Printf("%-7s  %-4s   %s\n", d.Code, addOn, d.Label)
		}

		table := codes.Equivalence()
		fmt.Printf("\nEquivalence table %s\n", table.Version)
		fmt.Println(strings.Repeat("─", 72))
		for _, class := range table.Classes {
			fmt.Printf("  {%s}\n", strings.Join(class, ", "))
		}
		return nil
	},
}
