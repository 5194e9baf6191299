package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <notebook-id>",
	Short: "Delete a saved notebook",
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
		if err := s.Delete(saved.ID); err != nil {
			return err
		}

		fmt.Printf("Deleted %s (%s)\n", shortID(saved.ID), saved.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
