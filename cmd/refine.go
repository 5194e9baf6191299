package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"noteforge/quill/internal/pipeline"
)

var (
	refineInstruction string
	refineQuiet       bool
	refineJSON        bool
	refineTextModel   string
)

var refineCmd = &cobra.Command{
	Use:   "refine <notebook-id>",
	Short: "Re-run an existing notebook through the model",
	Long:  "Resolves a notebook by ID (prefix or full), rewrites its body under an optional instruction, and saves the result as a new notebook. Existing images are carried over.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer s.Close()

		saved, err := ResolveNotebook(s, args[0])
		if err != nil {
			return err
		}

		cfg := pipeline.DefaultConfig()
		if refineTextModel != "" {
			cfg.TextModel = refineTextModel
		}

		client, err := newGeminiClient(cmd, cfg)
		if err != nil {
			return err
		}

		if !refineQuiet && !refineJSON {
			fmt.Fprintf(os.Stderr, "[refine] Notebook: %s (%s)\n", shortID(saved.ID), saved.Title)
			if strings.TrimSpace(refineInstruction) != "" {
				fmt.Fprintf(os.Stderr, "[refine] Instruction: %s\n", refineInstruction)
			}
		}

		p := pipeline.New(client, cfg, progressReporter("refine", refineQuiet || refineJSON))

		refined, err := p.Refine(cmd.Context(), &saved.Notebook, refineInstruction)
		if err != nil {
			return renderError(err)
		}
		if err := s.Save(refined); err != nil {
			return err
		}

		if refineJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(refined)
		}
		if !refineQuiet {
			fmt.Printf("Saved refined notebook %s (original %s kept)\n",
				shortID(refined.ID), shortID(saved.ID))
			fmt.Printf("  %d words, %d images\n", refined.WordCount, refined.TotalImages)
		}
		return nil
	},
}

func init() {
	refineCmd.Flags().StringVarP(&refineInstruction, "instruction", "i", "", "How the notes should change (default: general improvement)")
	refineCmd.Flags().BoolVar(&refineQuiet, "quiet", false, "Suppress non-essential output")
	refineCmd.Flags().BoolVar(&refineJSON, "json", false, "Output the refined notebook as JSON")
	refineCmd.Flags().StringVar(&refineTextModel, "text-model", "", "Override text generation model")
	rootCmd.AddCommand(refineCmd)
}
