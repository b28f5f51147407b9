package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codesift/codesift/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codesift",
	Short: "Codesift - hybrid code block extraction",
	Long: `Codesift extracts language-tagged code blocks from documents and
source trees. Each block carries a confidence score: grammar-validated
blocks score high, heuristic fallback blocks score low, and everything
in between is classified explicitly so nothing silently disappears.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .codesift/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig resolves configuration for a command run: the --config flag
// wins, otherwise the working directory's .codesift/config.yml with
// CODESIFT_* environment overrides.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.LoadConfigFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return cfg, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfigFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
