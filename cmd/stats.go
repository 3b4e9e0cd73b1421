package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the aggregate work-queue stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(false)
		defer a.Close()

		stats, err := a.RefreshStats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Pending:          %d\n", stats.TotalPending)
		fmt.Printf("In progress:      %d\n", stats.InProgress)
		fmt.Printf("Completed today:  %d\n", stats.CompletedToday)
		fmt.Printf("Inconclusive:     %d\n", stats.TotalInconclusive)
		fmt.Printf("Currently locked: %d\n", stats.CurrentlyLocked)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
