// Command stubserver runs the in-memory stub of the library backend so the
// CLI can be exercised without a real deployment. State lives in memory and
// is lost on exit.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"libraclient/internal/catalog"
	"libraclient/internal/session"
	"libraclient/internal/stubapi"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	server := stubapi.New()
	if err := seed(server); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}

	addr := ":" + getEnv("PORT", "8080")
	logger.Info("stub backend listening", "addr", addr)
	logger.Info("seeded accounts", "admin", "admin@example.com", "member", "member@example.com", "password", "password123")

	if err := http.ListenAndServe(addr, server); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func seed(server *stubapi.Server) error {
	if _, err := server.SeedUser("admin@example.com", "Ada Admin", session.RoleAdmin, "password123"); err != nil {
		return err
	}
	if _, err := server.SeedUser("librarian@example.com", "Lars Librarian", session.RoleLibrarian, "password123"); err != nil {
		return err
	}
	if _, err := server.SeedUser("member@example.com", "Mia Member", session.RoleMember, "password123"); err != nil {
		return err
	}

	server.SeedBook(catalog.Draft{
		ISBN: "9780134190440", Title: "The Go Programming Language",
		Author: "Alan A. A. Donovan", Category: "Programming",
		PublishedYear: 2015, TotalCopies: 3, Location: "A-12",
	})
	server.SeedBook(catalog.Draft{
		ISBN: "9780201616224", Title: "The Pragmatic Programmer",
		Author: "Andrew Hunt", Category: "Programming",
		PublishedYear: 1999, TotalCopies: 2, Location: "A-03",
	})
	server.SeedBook(catalog.Draft{
		ISBN: "9780141439518", Title: "Pride and Prejudice",
		Author: "Jane Austen", Category: "Fiction",
		PublishedYear: 1813, TotalCopies: 1, Location: "F-20",
	})
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
