package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codesift/codesift/internal/search"
)

var (
	searchLanguage string
	searchType     string
	searchLimit    int
	searchJSON     bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over extracted blocks",
	Long: `Search queries the persisted search index built by "ingest --save".
The query uses full-text query syntax: bare terms, quoted phrases,
field scoping, wildcards and boolean operators.

Examples:
  codesift search "def main"
  codesift search "interface" --language go
  codesift search "SELECT" --type fallback --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchLanguage, "language", "l", "", "only blocks in this language")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "only blocks of this type (ast or fallback)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 15, "maximum results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	idx, err := search.Open(cfg.Search.IndexPath)
	if err != nil {
		return fmt.Errorf("failed to open search index (run \"codesift ingest --save\" first): %w", err)
	}
	defer idx.Close()

	results, err := idx.Search(context.Background(), args[0], search.Options{
		Language:  searchLanguage,
		BlockType: searchType,
		Limit:     searchLimit,
	})
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s  %s [%s] confidence %.2f\n", shortID(r.BlockID), r.Path, r.Language, r.Confidence)
		for _, h := range r.Highlights {
			fmt.Printf("    %s\n", h)
		}
	}
	return nil
}
