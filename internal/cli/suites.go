package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/convocheck/internal/suite"
)

func init() {
	rootCmd.AddCommand(suitesCmd)
}

var suitesCmd = &cobra.Command{
	Use:   "suites",
	Short: "List builtin test suites",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range suite.List() {
			s, err := suite.Load(name)
			if err != nil {
				fmt.Printf("%-12s (unloadable: %v)\n", name, err)
				continue
			}
			fmt.Printf("%-12s %d categories, %d cases\n", name, len(s.Categories), len(s.Cases()))
		}
	},
}
