package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codesift/codesift/internal/lang"
)

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their validation paths",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-12s %-10s %-9s %s\n", "LANGUAGE", "FAMILY", "PATH", "EXTENSIONS")
		for _, p := range lang.Default().Profiles() {
			path := "fallback"
			if p.Grammar != nil {
				path = "ast"
			}
			fmt.Printf("%-12s %-10s %-9s %s\n", p.ID, p.Family, path, strings.Join(p.Extensions, " "))
		}
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
