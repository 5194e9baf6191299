package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"noteforge/quill/internal/export"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <notebook-id>",
	Short: "Print a notebook as Markdown",
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

		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(saved)
		}

		fmt.Print(export.Markdown(&saved.Notebook))
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output the raw record as JSON")
	rootCmd.AddCommand(showCmd)
}
