package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
//
// The zero value TicketStatusUnset is a real pre-state, not a default: a
// freshly filed ticket has no status until staff first looks at it. It is
// stored as SQL NULL and rendered as JSON null.
type TicketStatus string

const (
	TicketStatusUnset      TicketStatus = ""
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// IsSet reports whether the ticket has left the pre-state.
func (s TicketStatus) IsSet() bool {
	return s != TicketStatusUnset
}

// Valid reports whether the status is an assignable lifecycle state.
// The unset pre-state is intentionally excluded: clients never write it.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// AssignableStatuses lists the states clients may filter or write.
func AssignableStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed}
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Valid reports whether the priority is a known level.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Priorities lists all priority levels.
func Priorities() []TicketPriority {
	return []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical}
}

// Ticket is the aggregate for reported bugs.
//
// ReporterID never changes after creation. Status and AssigneeID start
// unset together; the first qualifying staff interaction sets both.
// UpdatedAt moves forward on every mutation and on reporter comments, and
// is the inactivity signal the lifecycle sweep measures against.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	ReporterID  string
	AssigneeID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Denormalized for list/detail responses.
	ReporterUsername string
	AssigneeUsername *string
}

// AssignedTo reports whether the ticket is assigned to the given user.
func (t *Ticket) AssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
