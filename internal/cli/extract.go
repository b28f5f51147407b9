package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codesift/codesift/internal/engine"
	"github.com/codesift/codesift/internal/lang"
)

var (
	extractLanguage string
	extractJSON     bool
	extractAll      bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract code blocks from a single document or source file",
	Long: `Extract runs the hybrid pipeline over one file and prints the
resulting blocks. Mixed-content documents (markdown, docx, pdf, html,
plain text) are segmented first; source files are treated as one region.

Examples:
  # Extract blocks from a markdown document
  codesift extract notes.md

  # Force a language instead of detecting it
  codesift extract snippet.txt --language python

  # Machine-readable output
  codesift extract notes.md --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractLanguage, "language", "l", "", "treat the whole file as this language")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print the full result as JSON")
	extractCmd.Flags().BoolVarP(&extractAll, "all", "a", false, "include filler spans in text output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := engine.New(lang.Default(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer eng.Close()

	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	res, err := eng.Extract(context.Background(), engine.Input{
		Raw:              raw,
		Path:             path,
		DeclaredLanguage: extractLanguage,
	})
	if err != nil {
		return err
	}

	if extractJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printResult(res)
	return nil
}

func printResult(res *engine.Result) {
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	for _, b := range res.Blocks {
		fmt.Printf("--- %s [%s/%s] lines %d-%d confidence %.2f\n",
			b.Language, b.Type, b.Method, b.StartLine, b.EndLine, b.Confidence)
		fmt.Println(strings.TrimRight(b.Content, "\n"))
	}

	if extractAll {
		for _, f := range res.Filler {
			fmt.Printf("--- filler [%s] bytes %d-%d\n", f.Reason, f.StartOffset, f.EndOffset)
		}
	}

	fmt.Printf("\n%d blocks (%d ast, %d fallback)\n",
		res.Stats.TotalExtracted, res.Stats.ASTParsed, res.Stats.FallbackExtracted)
}
