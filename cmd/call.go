package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/validator-cli/internal/workflow"
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Record a call attempt for the current assignment",
	Long:  "Re-fetches the caller's current assignment (the backend returns the in-progress provider when one is locked to this validator), applies the call-attempt policy, and records the attempt.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(false)
		defer a.Close()

		if _, err := a.ClaimNext(cmd.Context()); err != nil {
			return err
		}

		number, err := a.RecordCallAttempt(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Recorded call attempt %d of %d.\n", number, workflow.MaxCallAttempts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
}
