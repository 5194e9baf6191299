package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"noteforge/quill/internal/api"
	"noteforge/quill/internal/pipeline"
)

var (
	serveAddr  string
	serveQuiet bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve notebooks and generation over HTTP",
	Long:  "Starts a REST API exposing stored notebooks plus generation and refinement. Generation requests are serialized; one runs at a time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := OpenOrCreateDatabase()
		if err != nil {
			return err
		}
		defer s.Close()

		cfg := pipeline.DefaultConfig()
		client, err := newGeminiClient(cmd, cfg)
		if err != nil {
			return err
		}
		p := pipeline.New(client, cfg, progressReporter("serve", serveQuiet))

		generate := func(ctx context.Context, prompt string, files []pipeline.FileRef) (*pipeline.Notebook, error) {
			return p.Generate(ctx, prompt, files)
		}
		refine := func(ctx context.Context, nb *pipeline.Notebook, instruction string) (*pipeline.Notebook, error) {
			return p.Refine(ctx, nb, instruction)
		}

		if serveQuiet {
			gin.SetMode(gin.ReleaseMode)
		}
		server := api.NewServer(s, generate, refine)

		if !serveQuiet {
			fmt.Fprintf(os.Stderr, "[serve] Database: %s\n", s.Path)
			fmt.Fprintf(os.Stderr, "[serve] Listening on %s\n", serveAddr)
		}
		return server.Router().Run(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8787", "Listen address")
	serveCmd.Flags().BoolVar(&serveQuiet, "quiet", false, "Suppress startup and progress output")
	rootCmd.AddCommand(serveCmd)
}
