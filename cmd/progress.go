package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/validator-cli/internal/workflow"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show the workflow checklist for the current assignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(false)
		defer a.Close()

		if _, err := a.ClaimNext(cmd.Context()); err != nil {
			return err
		}
		preview, err := a.RefreshPreview(cmd.Context())
		if err != nil {
			return err
		}

		steps, current, percent := a.Progress()
		for i, step := range steps {
			marker := " "
			switch step.Status {
			case workflow.StepCompleted:
				marker = "x"
			case workflow.StepInProgress:
				marker = "~"
			}
			cursor := "  "
			if i == current {
				cursor = "> "
			}
			fmt.Printf("%s[%s] %s: %s\n", cursor, marker, step.Title, step.Description)
		}
		fmt.Printf("\nValidated %d of %d items (%d%%)\n",
			preview.TotalValidated, preview.TotalRequired, percent)
		if preview.Message != "" {
			fmt.Println(preview.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
}
