package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codesift/codesift/internal/engine"
	"github.com/codesift/codesift/internal/storage"
)

var blocksStatus string

// blocksCmd groups review operations on persisted blocks.
var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Review persisted blocks: list, accept, reject, edit",
}

var blocksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted blocks by review status",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		blocks, err := store.BlocksByStatus(engine.Status(blocksStatus))
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			fmt.Printf("no %s blocks\n", blocksStatus)
			return nil
		}
		for _, b := range blocks {
			preview := strings.SplitN(b.Content, "\n", 2)[0]
			if len(preview) > 60 {
				preview = preview[:60] + "..."
			}
			fmt.Printf("%s  %-12s %-8s %.2f  %s\n", shortID(b.ID), b.Language, b.Type, b.Confidence, preview)
		}
		return nil
	},
}

var blocksAcceptCmd = &cobra.Command{
	Use:   "accept <block-id>",
	Short: "Mark a block as accepted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recordAction(args[0], storage.ActionAccept)
	},
}

var blocksRejectCmd = &cobra.Command{
	Use:   "reject <block-id>",
	Short: "Mark a block as rejected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recordAction(args[0], storage.ActionReject)
	},
}

var blocksEditCmd = &cobra.Command{
	Use:   "edit <block-id> <content-file>",
	Short: "Store corrected content as a new block linked to the original",
	Long: `Edit reads corrected content from a file and stores it as a new
block row pointing at the original. The original block, its content and
its confidence score are never modified; scores only come from
extraction.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContentFile(args[1])
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		newID, err := store.EditBlock(args[0], content)
		if err != nil {
			return err
		}
		fmt.Printf("created block %s (parent %s)\n", shortID(newID), shortID(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blocksCmd)
	blocksCmd.AddCommand(blocksListCmd, blocksAcceptCmd, blocksRejectCmd, blocksEditCmd)
	blocksListCmd.Flags().StringVar(&blocksStatus, "status", "pending", "review status to list (pending, accepted, rejected)")
}

func openStore() (*storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open block store (run \"codesift ingest --save\" first): %w", err)
	}
	return store, nil
}

func recordAction(blockID string, action storage.FeedbackAction) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RecordFeedback(blockID, action, ""); err != nil {
		return err
	}
	fmt.Printf("%s: %sed\n", shortID(blockID), action)
	return nil
}

func readContentFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(raw), nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

