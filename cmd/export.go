package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"noteforge/quill/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <notebook-id>",
	Short: "Export a notebook to Markdown, HTML, or PDF",
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

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		switch exportFormat {
		case "md", "markdown":
			_, err = fmt.Fprint(out, export.Markdown(&saved.Notebook))
		case "html":
			err = export.HTML(&saved.Notebook, out)
		case "pdf":
			if exportOutput == "" {
				return fmt.Errorf("pdf export requires --output (refusing to write binary to a terminal)")
			}
			err = export.PDF(&saved.Notebook, out)
		default:
			return fmt.Errorf("unknown format %q (want md, html, or pdf)", exportFormat)
		}
		if err != nil {
			return err
		}

		if exportOutput != "" {
			fmt.Fprintf(os.Stderr, "Exported %s to %s\n", shortID(saved.ID), exportOutput)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Output format: md, html, or pdf")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
