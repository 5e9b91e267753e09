package main

import (
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"libraclient/internal/session"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "libra",
		Short:         "Terminal client for the library backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Restore a previous session before any command runs. A stale
			// token is discarded here rather than surfacing as a 401 later.
			return a.session.Init(cmd.Context())
		},
	}

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newWhoamiCmd(a),
		newBooksCmd(a),
		newBorrowCmd(a),
		newReturnCmd(a),
		newBorrowingsCmd(a),
	)
	return root
}

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

// requireLogin fails fast when no session is active, before any network call.
func requireLogin(a *app) (*session.User, error) {
	user, ok := a.session.CurrentUser()
	if !ok {
		return nil, fmt.Errorf("not logged in; run 'libra login' first")
	}
	return user, nil
}

// requireCap resolves the capability check once when the command (the
// "view") is entered.
func requireCap(a *app, cap session.Capability) (*session.User, error) {
	user, err := requireLogin(a)
	if err != nil {
		return nil, err
	}
	if !a.session.Can(cap) {
		return nil, fmt.Errorf("your role (%s) does not allow this action", user.Role)
	}
	return user, nil
}

// parseDate accepts a YYYY-MM-DD argument.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}
