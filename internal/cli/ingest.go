package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codesift/codesift/internal/engine"
	"github.com/codesift/codesift/internal/git"
	"github.com/codesift/codesift/internal/ingest"
	"github.com/codesift/codesift/internal/lang"
	"github.com/codesift/codesift/internal/search"
	"github.com/codesift/codesift/internal/storage"
)

var (
	quietFlag bool
	saveFlag  bool
	repoFlag  string
	refFlag   string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Extract code blocks from an entire source tree",
	Long: `Ingest walks a directory, extracts every eligible file as a batch,
and optionally persists the blocks for review and search.

Files are processed whole: a file whose extension maps to a known
language goes through its grammar, everything else degrades to
heuristic extraction, and even unrecognized files yield at least one
low-confidence block.

Examples:
  # Ingest the current directory and print a summary
  codesift ingest

  # Ingest a tree and persist blocks to the store and search index
  codesift ingest /path/to/repo --save

  # Ingest without progress output
  codesift ingest --quiet

  # Clone a remote repository and ingest it
  codesift ingest --repo https://github.com/user/repo --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	ingestCmd.Flags().BoolVarP(&saveFlag, "save", "s", false, "Persist blocks to the store and search index")
	ingestCmd.Flags().StringVar(&repoFlag, "repo", "", "Clone this repository URL and ingest the clone")
	ingestCmd.Flags().StringVar(&refFlag, "ref", "", "Branch or tag to clone (with --repo)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling ingestion...")
		cancel()
	}()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	if repoFlag != "" {
		cloneDir, err := os.MkdirTemp("", "codesift-clone-*")
		if err != nil {
			return fmt.Errorf("failed to create clone directory: %w", err)
		}
		defer os.RemoveAll(cloneDir)

		ops := git.NewOperations()
		if !quietFlag {
			log.Printf("Cloning %s...\n", repoFlag)
		}
		if err := ops.Clone(ctx, repoFlag, refFlag, cloneDir); err != nil {
			return err
		}
		if !quietFlag && verbose {
			log.Printf("Cloned %s at %s\n", repoFlag, ops.HeadCommit(cloneDir))
		}
		root = cloneDir
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	root = absRoot

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := engine.New(lang.Default(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer eng.Close()

	ing, err := ingest.New(eng, cfg.Ingest)
	if err != nil {
		return err
	}

	if !quietFlag {
		log.Println("Collecting files...")
	}
	inputs, err := ing.Collect(root, nil)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no eligible files under %s", root)
	}
	if !quietFlag {
		log.Printf("Extracting %d files\n", len(inputs))
	}

	bar := newFileBar(len(inputs), quietFlag)

	opts := engine.BatchOptions{Workers: cfg.Ingest.FileWorkers}
	if cfg.Ingest.BatchTimeoutS > 0 {
		opts.Timeout = time.Duration(cfg.Ingest.BatchTimeoutS) * time.Second
	}
	batch, batchErr := eng.ExtractBatch(ctx, inputs, opts)
	if batchErr != nil && !errors.Is(batchErr, engine.ErrBatchTimeout) {
		return batchErr
	}

	var failed int
	for _, fr := range batch.Files {
		if bar != nil {
			bar.Add(1)
		}
		if fr.Err != nil {
			failed++
			if verbose {
				fmt.Fprintf(os.Stderr, "skip %s: %v\n", fr.Path, fr.Err)
			}
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if saveFlag {
		if err := persistBatch(ctx, cfg.Storage.Path, cfg.Search.IndexPath, batch); err != nil {
			return err
		}
	}

	if !quietFlag {
		fmt.Printf("✓ Ingestion complete: %d blocks from %d files (%d ast, %d fallback, %d failed)\n",
			batch.Aggregate.TotalExtracted, len(batch.Files)-failed,
			batch.Aggregate.ASTParsed, batch.Aggregate.FallbackExtracted, failed)
	}

	if errors.Is(batchErr, engine.ErrBatchTimeout) {
		return fmt.Errorf("batch budget expired: %d files unfinished", failed)
	}
	return nil
}

// persistBatch writes every completed result to the block store and the
// search index.
func persistBatch(ctx context.Context, storePath, indexPath string, batch *engine.BatchResult) error {
	if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	store, err := storage.Open(storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	idx, err := search.Open(indexPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	for _, fr := range batch.Files {
		if fr.Result == nil {
			continue
		}
		if err := store.SaveResult(fr.Result); err != nil {
			return err
		}
		if err := idx.IndexResult(ctx, fr.Result); err != nil {
			return err
		}
	}
	return nil
}
