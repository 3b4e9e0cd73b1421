package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/validator-cli/internal/app"
	"github.com/sells-group/validator-cli/internal/format"
	"github.com/sells-group/validator-cli/internal/workflow"
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim the next provider record for validation",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(false)
		defer a.Close()

		data, err := a.ClaimNext(cmd.Context())
		if err != nil {
			if errors.Is(err, app.ErrNoProviders) {
				fmt.Println("No providers available - try again later.")
				return nil
			}
			return err
		}

		p := data.Provider
		fmt.Printf("Provider: %s (NPI %s)\n", p.ProviderName, p.NPI)
		fmt.Printf("Specialty: %s  Group: %s\n", p.Specialty, p.ProviderGroup)

		if s := data.ValidationSession; s != nil {
			fmt.Printf("Session #%d (%s)\n", s.ID, s.Status)
			d := workflow.CanAttempt(s, time.Now())
			if d.Allowed {
				fmt.Printf("Call attempt %d may be recorded now.\n", d.NextNumber)
			} else {
				fmt.Printf("Call attempt blocked: %s\n", d.Reason)
			}
		} else {
			fmt.Println("No validation session was opened for this claim.")
		}

		for i, group := range a.GroupedRecords() {
			addr := group[0].Address
			fmt.Printf("\n[%d] %s\n", i+1, format.Address(addr))
			fmt.Printf("    category: %s  address id: %d  verdict: %s\n",
				addr.AddressCategory, addr.ID, addr.IsCorrect)
			for _, rec := range group {
				if rec.Phone.NoPhone() {
					fmt.Println("    phone: none on file")
					continue
				}
				fmt.Printf("    phone %d: %s  verdict: %s\n",
					rec.Phone.ID, format.Phone(rec.Phone.Phone), rec.Phone.IsCorrect)
			}
		}

		if st := a.CachedStats(); st != nil {
			fmt.Printf("\nQueue: %d pending, %d in progress, %d completed today\n",
				st.TotalPending, st.InProgress, st.CompletedToday)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(claimCmd)
}
