package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"libraclient/internal/session"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Authenticate and store the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			user, err := a.session.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var roleFlag string

	cmd := &cobra.Command{
		Use:   "register <email> <name>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var role session.Role
			if roleFlag != "" {
				parsed, err := session.ParseRole(roleFlag)
				if err != nil {
					return err
				}
				role = parsed
			}

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			user, err := a.session.Register(cmd.Context(), args[0], args[1], password, role)
			if err != nil {
				return err
			}

			fmt.Printf("Welcome, %s! Registered as %s.\n", user.Name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&roleFlag, "role", "", "requested role (backend may override)")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireLogin(a)
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s> role=%s id=%s\n", user.Name, user.Email, user.Role, user.ID)
			return nil
		},
	}
}
