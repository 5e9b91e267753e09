package circulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsOverdue_BorrowedPastDue(t *testing.T) {
	b := &Borrowing{
		BorrowDate: date("2024-01-01"),
		DueDate:    date("2024-01-15"),
		Status:     StatusBorrowed,
	}
	now := date("2024-01-20")

	assert.True(t, IsOverdue(b, now))
	assert.Equal(t, "overdue", StatusLabel(b, now))
}

func TestIsOverdue_ReturnedIsNeverOverdue(t *testing.T) {
	returned := date("2024-01-18")
	b := &Borrowing{
		BorrowDate: date("2024-01-01"),
		DueDate:    date("2024-01-15"),
		ReturnDate: &returned,
		Status:     StatusReturned,
	}

	// Regardless of how far the clock advances.
	for _, now := range []time.Time{date("2024-01-20"), date("2030-01-01")} {
		assert.False(t, IsOverdue(b, now))
		assert.Equal(t, "returned", StatusLabel(b, now))
	}
}

func TestIsOverdue_NotDueYet(t *testing.T) {
	b := &Borrowing{
		BorrowDate: date("2024-01-01"),
		DueDate:    date("2024-01-15"),
		Status:     StatusBorrowed,
	}
	now := date("2024-01-10")

	assert.False(t, IsOverdue(b, now))
	assert.Equal(t, "on loan", StatusLabel(b, now))
}

func TestIsOverdue_DueExactlyNow(t *testing.T) {
	due := date("2024-01-15")
	b := &Borrowing{DueDate: due, Status: StatusBorrowed}

	// Due means due at that instant, not before it.
	assert.False(t, IsOverdue(b, due))
}

func TestStatusLabel_SweptRecord(t *testing.T) {
	b := &Borrowing{DueDate: date("2024-01-15"), Status: StatusOverdue}

	assert.Equal(t, "overdue", StatusLabel(b, date("2024-01-20")))
}

func TestIsOverdue_Property(t *testing.T) {
	statuses := []Status{StatusBorrowed, StatusReturned, StatusOverdue}

	rapid.Check(t, func(t *rapid.T) {
		due := time.Unix(rapid.Int64Range(0, 1<<35).Draw(t, "due"), 0)
		now := time.Unix(rapid.Int64Range(0, 1<<35).Draw(t, "now"), 0)
		status := rapid.SampledFrom(statuses).Draw(t, "status")

		b := &Borrowing{DueDate: due, Status: status}
		want := status != StatusReturned && due.Before(now)
		if got := IsOverdue(b, now); got != want {
			t.Fatalf("IsOverdue = %v, want %v (status=%s due=%s now=%s)", got, want, status, due, now)
		}
	})
}
