package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved notebooks, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer s.Close()

		notebooks, err := s.List()
		if err != nil {
			return err
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(notebooks)
		}

		if len(notebooks) == 0 {
			fmt.Println("No notebooks saved yet. Run 'quill generate <prompt>' to create one.")
			return nil
		}

		for _, nb := range notebooks {
			fmt.Printf("%s  %s  %4dw %2dimg  %s\n",
				shortID(nb.ID),
				nb.CreatedAt.Local().Format("2006-01-02 15:04"),
				nb.WordCount, nb.TotalImages, nb.Title)
		}

		usage, err := s.Usage()
		if err == nil {
			fmt.Printf("\n%d notebooks, %.1f KB on disk\n", len(notebooks), float64(usage)/1024)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}
