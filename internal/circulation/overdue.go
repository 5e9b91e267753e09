package circulation

import "time"

// IsOverdue reports whether a borrowing is past due at the given instant: not
// returned, and due before now. It is a pure function of the record and the
// clock; callers pass now in so the result stays deterministic under test and
// is recomputed on every render rather than cached.
func IsOverdue(b *Borrowing, now time.Time) bool {
	return b.Status != StatusReturned && b.DueDate.Before(now)
}

// StatusLabel maps a borrowing's state to its display wording. A record still
// stored as "borrowed" but past due shows "overdue" without the stored status
// changing; the persisted field only catches up when a sweep runs.
func StatusLabel(b *Borrowing, now time.Time) string {
	if b.Status == StatusBorrowed && IsOverdue(b, now) {
		return "overdue"
	}
	switch b.Status {
	case StatusBorrowed:
		return "on loan"
	case StatusReturned:
		return "returned"
	case StatusOverdue:
		return "overdue"
	default:
		return string(b.Status)
	}
}
