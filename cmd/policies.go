package cmd

import (
	"fmt"

	"github.com/AnyUserName/imgsel-cli/internal/policy"
	"github.com/spf13/cobra"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List pixel policies",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		for _, name := range policy.Names() {
			p, _ := policy.Get(name)
			marker := " "
			if name == policy.DefaultName {
				marker = "*"
			}
			fmt.Printf("  %s %-12s %s\n", marker, name, p.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}
