package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"noteforge/quill/internal/gemini"
	"noteforge/quill/internal/pipeline"
)

var (
	generateAttach     []string
	generateMaxImages  int
	generateNoImages   bool
	generateQuiet      bool
	generateJSON       bool
	generateTextModel  string
	generateImageModel string
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate a new illustrated notebook from a prompt",
	Long:  "Plans a section structure, generates illustrations, writes the body, and saves the assembled notebook to the database.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")

		cfg := pipeline.DefaultConfig()
		if generateTextModel != "" {
			cfg.TextModel = generateTextModel
		}
		if generateImageModel != "" {
			cfg.ImageModel = generateImageModel
		}
		if cmd.Flags().Changed("max-images") {
			cfg.MaxImages = generateMaxImages
		}
		if generateNoImages {
			cfg.MaxImages = 0
		}

		client, err := newGeminiClient(cmd, cfg)
		if err != nil {
			return err
		}

		p := pipeline.New(client, cfg, progressReporter("generate", generateQuiet || generateJSON))

		nb, err := p.Generate(cmd.Context(), prompt, attachmentRefs(generateAttach))
		if err != nil {
			return renderError(err)
		}

		s, err := OpenOrCreateDatabase()
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Save(nb); err != nil {
			return err
		}

		if generateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(nb)
		}
		if !generateQuiet {
			fmt.Printf("Saved notebook %s\n", shortID(nb.ID))
			fmt.Printf("  %s\n", nb.Title)
			fmt.Printf("  %d sections, %d words, %d images\n",
				len(nb.Structure.Sections), nb.WordCount, nb.TotalImages)
		}
		return nil
	},
}

// newGeminiClient resolves the API key (.env first, then the environment)
// and builds the production client.
func newGeminiClient(cmd *cobra.Command, cfg pipeline.Config) (*gemini.Client, error) {
	_ = godotenv.Load()
	apiKey := os.Getenv("GEMINI_API_KEY")
	if strings.TrimSpace(apiKey) == "" {
		return nil, renderError(pipeline.ErrMissingCredential)
	}
	return gemini.NewClient(cmd.Context(), apiKey, cfg.TextModel, cfg.ImageModel, cfg.Temperature)
}

// progressReporter returns a stage callback writing to stderr, or nil when
// output is suppressed.
func progressReporter(stage string, quiet bool) pipeline.ProgressFunc {
	if quiet {
		return nil
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", stage, msg)
	}
}

// attachmentRefs turns --attach paths into file descriptors. Only names and
// sizes travel; file contents are never uploaded.
func attachmentRefs(paths []string) []pipeline.FileRef {
	var refs []pipeline.FileRef
	for _, path := range paths {
		ref := pipeline.FileRef{Name: filepath.Base(path), URI: path}
		if info, err := os.Stat(path); err == nil {
			ref.Size = info.Size()
		}
		refs = append(refs, ref)
	}
	return refs
}

// renderError appends the remediation hint so failures are actionable.
func renderError(err error) error {
	if hint := pipeline.Hint(err); hint != "" {
		return fmt.Errorf("%w\nhint: %s", err, hint)
	}
	return err
}

func init() {
	generateCmd.Flags().StringSliceVar(&generateAttach, "attach", nil, "File to mention alongside the prompt (repeatable)")
	generateCmd.Flags().IntVar(&generateMaxImages, "max-images", 5, "Maximum illustrations per notebook")
	generateCmd.Flags().BoolVar(&generateNoImages, "no-images", false, "Skip illustration generation entirely")
	generateCmd.Flags().BoolVar(&generateQuiet, "quiet", false, "Suppress non-essential output")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Output the notebook as JSON")
	generateCmd.Flags().StringVar(&generateTextModel, "text-model", "", "Override text generation model")
	generateCmd.Flags().StringVar(&generateImageModel, "image-model", "", "Override image generation model")
	rootCmd.AddCommand(generateCmd)
}
