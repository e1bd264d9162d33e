package main

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/contractlens/internal/chunker"
)

var chunksPreview int

// chunksCmd shows how a document would be split without calling a model.
var chunksCmd = &cobra.Command{
	Use:   "chunks FILE",
	Short: "Show how a contract is split into chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readDocument(args[0])
		if err != nil {
			return err
		}
		chunks := chunker.Split(text, chunker.Config{MaxTokens: cfg.ChunkTokenBudget})
		if chunksPreview > 0 {
			for i := range chunks {
				if r := []rune(chunks[i].Text); len(r) > chunksPreview {
					chunks[i].Text = string(r[:chunksPreview]) + "..."
				}
			}
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"document_length": len([]rune(text)),
			"token_budget":    cfg.ChunkTokenBudget,
			"chunks":          chunks,
		})
	},
}

func init() {
	chunksCmd.Flags().IntVar(&chunksPreview, "preview", 0, "truncate chunk text to this many characters (0 prints it all)")
	rootCmd.AddCommand(chunksCmd)
}
