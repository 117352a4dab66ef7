package domain

import "time"

// Comment is a reply on a ticket thread. Comments are owned by their
// parent ticket and are deleted with it.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time

	// Denormalized for responses.
	AuthorUsername string
	AuthorRole     UserRole
}
