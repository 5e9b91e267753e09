package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"libraclient/internal/circulation"
	"libraclient/internal/session"
)

func newBorrowCmd(a *app) *cobra.Command {
	var userFlag, dueFlag string

	cmd := &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Borrow a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := requireCap(a, session.CapBorrowSelf)
			if err != nil {
				return err
			}

			bookID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			userID := user.ID
			if userFlag != "" {
				if _, err := requireCap(a, session.CapBorrowForOthers); err != nil {
					return err
				}
				userID, err = uuid.Parse(userFlag)
				if err != nil {
					return fmt.Errorf("invalid user id %q", userFlag)
				}
			}

			var dueDate *time.Time
			if dueFlag != "" {
				parsed, err := parseDate(dueFlag)
				if err != nil {
					return err
				}
				dueDate = &parsed
			}

			borrowing, book, err := a.circulation.Borrow(cmd.Context(), bookID, userID, dueDate)
			if err != nil {
				return err
			}

			fmt.Printf("Borrowed. Due %s.\n", borrowing.DueDate.Format(time.DateOnly))
			if book != nil {
				fmt.Printf("%q now has %d of %d copies available.\n", book.Title, book.AvailableCopies, book.TotalCopies)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "borrow on behalf of this user id (librarian/admin)")
	cmd.Flags().StringVar(&dueFlag, "due", "", "due date YYYY-MM-DD (default two weeks out)")
	return cmd
}

func newReturnCmd(a *app) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "return <borrowing-id>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireLogin(a); err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid borrowing id %q", args[0])
			}

			var returnDate *time.Time
			if dateFlag != "" {
				parsed, err := parseDate(dateFlag)
				if err != nil {
					return err
				}
				returnDate = &parsed
			}

			borrowing, book, err := a.circulation.Return(cmd.Context(), id, returnDate)
			if err != nil {
				return err
			}

			fmt.Printf("Returned on %s.\n", borrowing.ReturnDate.Format(time.DateOnly))
			if book != nil {
				fmt.Printf("%q now has %d of %d copies available.\n", book.Title, book.AvailableCopies, book.TotalCopies)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "return date YYYY-MM-DD (default today)")
	return cmd
}

func newBorrowingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "borrowings",
		Short: "Inspect and administer the borrowing ledger",
	}
	cmd.AddCommand(
		newBorrowingsMineCmd(a),
		newBorrowingsListCmd(a),
		newBorrowingsUserCmd(a),
		newBorrowingsOverdueCmd(a),
		newBorrowingsStatsCmd(a),
		newBorrowingsSweepCmd(a),
		newBorrowingsUpdateCmd(a),
		newBorrowingsDeleteCmd(a),
	)
	return cmd
}

func newBorrowingsMineCmd(a *app) *cobra.Command {
	var activeOnly bool
	var search string

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your own borrowings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireLogin(a); err != nil {
				return err
			}

			list, err := a.circulation.ListMine(cmd.Context(), activeOnly)
			if err != nil {
				return err
			}
			printBorrowings(circulation.Filter(list, search, time.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only loans not yet returned")
	cmd.Flags().StringVar(&search, "search", "", "filter by title/author/user/status")
	return cmd
}

func newBorrowingsListCmd(a *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every borrowing (librarian/admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapViewAllBorrowings); err != nil {
				return err
			}

			list, err := a.circulation.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			printBorrowings(circulation.Filter(list, search, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by title/author/user/status")
	return cmd
}

func newBorrowingsUserCmd(a *app) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "user <user-id>",
		Short: "List one user's borrowings (librarian/admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapViewAllBorrowings); err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			list, err := a.circulation.ListByUser(cmd.Context(), id, activeOnly)
			if err != nil {
				return err
			}
			printBorrowings(list)
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only loans not yet returned")
	return cmd
}

func newBorrowingsOverdueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List past-due borrowings (librarian/admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapViewAllBorrowings); err != nil {
				return err
			}

			list, err := a.circulation.ListOverdue(cmd.Context())
			if err != nil {
				return err
			}
			printBorrowings(list)
			return nil
		},
	}
}

func newBorrowingsStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger totals (librarian/admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapViewBorrowingStats); err != nil {
				return err
			}

			stats, err := a.circulation.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Total: %d  Active: %d  Returned: %d  Overdue: %d\n",
				stats.Total, stats.Active, stats.Returned, stats.Overdue)
			return nil
		},
	}
}

func newBorrowingsSweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark every past-due loan as overdue (librarian/admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapMarkOverdue); err != nil {
				return err
			}

			marked, err := a.circulation.MarkOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Marked %d borrowing(s) overdue. Re-list to see the changes.\n", marked)
			return nil
		},
	}
}

func newBorrowingsUpdateCmd(a *app) *cobra.Command {
	var statusFlag, returnDateFlag string

	cmd := &cobra.Command{
		Use:   "update <borrowing-id>",
		Short: "Patch a borrowing's status or return date (librarian/admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapUpdateBorrowing); err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid borrowing id %q", args[0])
			}

			var patch circulation.UpdatePatch
			if statusFlag != "" {
				status := circulation.Status(statusFlag)
				patch.Status = &status
			}
			if returnDateFlag != "" {
				parsed, err := parseDate(returnDateFlag)
				if err != nil {
					return err
				}
				patch.ReturnDate = &parsed
			}
			if patch.Status == nil && patch.ReturnDate == nil {
				return fmt.Errorf("nothing to update; pass --status and/or --return-date")
			}

			borrowing, err := a.circulation.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			fmt.Printf("Updated: status is now %q.\n", borrowing.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "new status (borrowed|returned|overdue)")
	cmd.Flags().StringVar(&returnDateFlag, "return-date", "", "return date YYYY-MM-DD")
	return cmd
}

func newBorrowingsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <borrowing-id>",
		Short: "Delete a borrowing record (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapDeleteBorrowing); err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid borrowing id %q", args[0])
			}

			if err := a.circulation.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

func printBorrowings(list []*circulation.Borrowing) {
	if len(list) == 0 {
		fmt.Println("No borrowings.")
		return
	}

	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BOOK\tBORROWER\tBORROWED\tDUE\tSTATUS\tID")
	for _, b := range list {
		title, borrower := b.BookID.String(), b.UserID.String()
		if b.Book != nil {
			title = b.Book.Title
		}
		if b.User != nil {
			borrower = b.User.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			title, borrower,
			b.BorrowDate.Format(time.DateOnly),
			b.DueDate.Format(time.DateOnly),
			circulation.StatusLabel(b, now),
			b.ID)
	}
	w.Flush()
}
