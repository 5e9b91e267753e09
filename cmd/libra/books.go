package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"libraclient/internal/catalog"
	"libraclient/internal/session"
)

func newBooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and manage the catalog",
	}
	cmd.AddCommand(
		newBooksListCmd(a),
		newBooksGetCmd(a),
		newBooksAddCmd(a),
		newBooksUpdateCmd(a),
		newBooksDeleteCmd(a),
	)
	return cmd
}

func newBooksListCmd(a *app) *cobra.Command {
	var page, limit int
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapBrowseCatalog); err != nil {
				return err
			}

			books, pg, err := a.catalog.Search(cmd.Context(), search, page, limit)
			if err != nil {
				return err
			}

			printBooks(books)
			fmt.Printf("Page %d of %d total books\n", pg.Page, pg.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().StringVar(&search, "search", "", "filter the fetched page by title/author/category/isbn")
	return cmd
}

func newBooksGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <book-id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapBrowseCatalog); err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			book, err := a.catalog.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("%s by %s\n", book.Title, book.Author)
			fmt.Printf("  ISBN:      %s\n", book.ISBN)
			if book.Category != "" {
				fmt.Printf("  Category:  %s\n", book.Category)
			}
			if book.PublishedYear != 0 {
				fmt.Printf("  Published: %d\n", book.PublishedYear)
			}
			if book.Location != "" {
				fmt.Printf("  Location:  %s\n", book.Location)
			}
			fmt.Printf("  Copies:    %d of %d available\n", book.AvailableCopies, book.TotalCopies)
			fmt.Printf("  ID:        %s\n", book.ID)
			return nil
		},
	}
}

func draftFlags(cmd *cobra.Command, draft *catalog.Draft) {
	cmd.Flags().StringVar(&draft.Title, "title", "", "book title")
	cmd.Flags().StringVar(&draft.Author, "author", "", "author name")
	cmd.Flags().StringVar(&draft.ISBN, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&draft.Category, "category", "", "category")
	cmd.Flags().IntVar(&draft.PublishedYear, "year", 0, "published year")
	cmd.Flags().IntVar(&draft.TotalCopies, "copies", 1, "total copies")
	cmd.Flags().StringVar(&draft.Location, "location", "", "shelf location")
}

func newBooksAddCmd(a *app) *cobra.Command {
	var draft catalog.Draft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapManageCatalog); err != nil {
				return err
			}

			book, err := a.catalog.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}

			fmt.Printf("Added %q (id %s)\n", book.Title, book.ID)
			return nil
		},
	}

	draftFlags(cmd, &draft)
	return cmd
}

func newBooksUpdateCmd(a *app) *cobra.Command {
	var draft catalog.Draft

	cmd := &cobra.Command{
		Use:   "update <book-id>",
		Short: "Update a book, keeping unspecified fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapManageCatalog); err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			// The endpoint is a full replace, so start from the current
			// record and overlay only the flags that were set.
			current, err := a.catalog.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			merged := catalog.Draft{
				ISBN:          current.ISBN,
				Title:         current.Title,
				Author:        current.Author,
				Category:      current.Category,
				PublishedYear: current.PublishedYear,
				TotalCopies:   current.TotalCopies,
				Location:      current.Location,
			}
			overlay := map[string]func(){
				"title":    func() { merged.Title = draft.Title },
				"author":   func() { merged.Author = draft.Author },
				"isbn":     func() { merged.ISBN = draft.ISBN },
				"category": func() { merged.Category = draft.Category },
				"year":     func() { merged.PublishedYear = draft.PublishedYear },
				"copies":   func() { merged.TotalCopies = draft.TotalCopies },
				"location": func() { merged.Location = draft.Location },
			}
			for name, apply := range overlay {
				if cmd.Flags().Changed(name) {
					apply()
				}
			}

			book, err := a.catalog.Update(cmd.Context(), id, merged)
			if err != nil {
				return err
			}

			fmt.Printf("Updated %q: %d of %d copies available\n", book.Title, book.AvailableCopies, book.TotalCopies)
			return nil
		},
	}

	draftFlags(cmd, &draft)
	return cmd
}

func newBooksDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <book-id>",
		Short: "Remove a book from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireCap(a, session.CapManageCatalog); err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			if err := a.catalog.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

func printBooks(books []*catalog.Book) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tAUTHOR\tISBN\tAVAILABLE\tID")
	for _, b := range books {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
			b.Title, b.Author, b.ISBN, b.AvailableCopies, b.TotalCopies, b.ID)
	}
	w.Flush()
}
