package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the validation backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(false)
		defer a.Close()

		user, err := a.Login(cmd.Context(), authEmail, authPassword)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", user.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a validator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(false)
		defer a.Close()

		user, err := a.Register(cmd.Context(), authEmail, authPassword)
		if err != nil {
			return err
		}
		fmt.Printf("Registered and logged in as %s\n", user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(false)
		defer a.Close()

		if err := a.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated validator",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(false)
		defer a.Close()

		user, err := a.CurrentUser(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s (id %d)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
