package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete the current validation session",
	Long:  "Saves any pending decisions, re-checks the completion gate against a fresh preview, and closes the session on the backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(false)
		defer a.Close()

		if _, err := a.ClaimNext(cmd.Context()); err != nil {
			return err
		}
		if err := a.Complete(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Validation session completed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
}
