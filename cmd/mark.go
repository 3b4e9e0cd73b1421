package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/validator-cli/internal/model"
)

var (
	markIncorrect bool

	markAddr1 string
	markAddr2 string
	markCity  string
	markState string
	markZip   string

	markPhone string
)

var markCmd = &cobra.Command{
	Use:   "mark",
	Short: "Record one validation verdict and save it immediately",
}

var markAddressCmd = &cobra.Command{
	Use:   "address <id>",
	Short: "Mark an address as correct or incorrect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Errorf("invalid address id %q", args[0])
		}

		a := newApp(false)
		defer a.Close()

		if _, err := a.ClaimNext(cmd.Context()); err != nil {
			return err
		}

		v := model.AddressValidation{
			AddressID: id,
			IsCorrect: !markIncorrect,
		}
		if markIncorrect {
			v.CorrectedAddress1 = markAddr1
			v.CorrectedAddress2 = markAddr2
			v.CorrectedCity = markCity
			v.CorrectedState = markState
			v.CorrectedZip = markZip
		}
		if err := a.SetAddressValidation(v); err != nil {
			return err
		}
		if err := a.Save(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Address %d marked %s and saved.\n", id, verdict(markIncorrect))
		return nil
	},
}

var markPhoneCmd = &cobra.Command{
	Use:   "phone <id>",
	Short: "Mark a phone as correct or incorrect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Errorf("invalid phone id %q", args[0])
		}

		a := newApp(false)
		defer a.Close()

		if _, err := a.ClaimNext(cmd.Context()); err != nil {
			return err
		}

		v := model.PhoneValidation{
			PhoneID:   id,
			IsCorrect: !markIncorrect,
		}
		if markIncorrect {
			v.CorrectedPhone = markPhone
		}
		if err := a.SetPhoneValidation(v); err != nil {
			return err
		}
		if err := a.Save(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Phone %d marked %s and saved.\n", id, verdict(markIncorrect))
		return nil
	},
}

var addAddressCmd = &cobra.Command{
	Use:   "add-address",
	Short: "Add a new address for the current provider and save it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(false)
		defer a.Close()

		if _, err := a.ClaimNext(cmd.Context()); err != nil {
			return err
		}

		addr := model.NewAddress{
			AddressCategory: model.AddressCategoryPractice,
			Address1:        markAddr1,
			Address2:        markAddr2,
			City:            markCity,
			State:           markState,
			Zip:             markZip,
		}
		if err := a.AddNewAddress(addr); err != nil {
			return err
		}
		if err := a.Save(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("New address saved.")
		return nil
	},
}

func verdict(incorrect bool) string {
	if incorrect {
		return "incorrect"
	}
	return "correct"
}

func init() {
	markCmd.PersistentFlags().BoolVar(&markIncorrect, "incorrect", false, "mark as incorrect (default marks correct)")

	for _, c := range []*cobra.Command{markAddressCmd, addAddressCmd} {
		c.Flags().StringVar(&markAddr1, "address1", "", "street line 1")
		c.Flags().StringVar(&markAddr2, "address2", "", "street line 2")
		c.Flags().StringVar(&markCity, "city", "", "city")
		c.Flags().StringVar(&markState, "state", "", "two-letter state")
		c.Flags().StringVar(&markZip, "zip", "", "ZIP code")
	}
	markPhoneCmd.Flags().StringVar(&markPhone, "corrected-phone", "", "replacement phone number")

	markCmd.AddCommand(markAddressCmd, markPhoneCmd)
	rootCmd.AddCommand(markCmd, addAddressCmd)
}
