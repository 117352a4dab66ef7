// Package policy holds the pure access-control decision tables.
//
// Decisions depend only on the actor's role, the actor's id, and the
// ownership fields of the target ticket or comment. No state, no I/O.
package policy

import "github.com/spec-kit/bugtracker/internal/domain"

// Operation tags the actions a role may perform.
type Operation string

const (
	OpTicketCreate         Operation = "ticket:create"
	OpTicketReadOwn        Operation = "ticket:read:own"
	OpTicketReadAssigned   Operation = "ticket:read:assigned"
	OpTicketReadAll        Operation = "ticket:read:all"
	OpTicketUpdateOwn      Operation = "ticket:update:own"
	OpTicketUpdateAssigned Operation = "ticket:update:assigned"
	OpTicketDeleteOwn      Operation = "ticket:delete:own"
	OpTicketDeleteAssigned Operation = "ticket:delete:assigned"
	OpCommentCreate        Operation = "comment:create"
	OpCommentRead          Operation = "comment:read"
	OpCommentDeleteOwn     Operation = "comment:delete:own"
	OpMetaRead             Operation = "meta:read"
	OpUserReadAll          Operation = "user:read:all"
	OpStatsRead            Operation = "stats:read"
)

// rolePermissions is the static role → operation table. Admin is strictly
// observational: read tags only, no create/update/delete of any kind.
var rolePermissions = map[domain.UserRole]map[Operation]struct{}{
	domain.RoleUser: toSet(
		OpTicketCreate,
		OpTicketReadOwn,
		OpTicketUpdateOwn,
		OpTicketDeleteOwn,
		OpCommentCreate,
		OpCommentRead,
		OpCommentDeleteOwn,
		OpMetaRead,
	),
	domain.RoleStaff: toSet(
		OpTicketReadAssigned,
		OpTicketUpdateAssigned,
		OpTicketDeleteAssigned,
		OpCommentCreate,
		OpCommentRead,
		OpCommentDeleteOwn,
		OpMetaRead,
		OpUserReadAll,
		OpStatsRead,
	),
	domain.RoleAdmin: toSet(
		OpTicketReadAll,
		OpCommentRead,
		OpMetaRead,
		OpUserReadAll,
		OpStatsRead,
	),
}

// writableTicketFields is the static role → field table for ticket updates.
var writableTicketFields = map[domain.UserRole]map[string]struct{}{
	domain.RoleUser:  toSet("title", "description"),
	domain.RoleStaff: toSet("status", "priority", "assignee_id"),
	domain.RoleAdmin: {},
}

// Allows reports whether the role carries the operation tag.
func Allows(role domain.UserRole, op Operation) bool {
	_, ok := rolePermissions[role][op]
	return ok
}

// AllowsAny reports whether the role carries at least one of the tags.
func AllowsAny(role domain.UserRole, ops ...Operation) bool {
	for _, op := range ops {
		if Allows(role, op) {
			return true
		}
	}
	return false
}

// FieldWritable reports whether the role may write the ticket field.
func FieldWritable(role domain.UserRole, field string) bool {
	_, ok := writableTicketFields[role][field]
	return ok
}

// WritableFields returns the role's writable ticket field set.
func WritableFields(role domain.UserRole) map[string]struct{} {
	fields := make(map[string]struct{}, len(writableTicketFields[role]))
	for f := range writableTicketFields[role] {
		fields[f] = struct{}{}
	}
	return fields
}

// CanViewTicket decides read access from role and relationship.
// Users see their own reports, staff see tickets assigned to them or not
// yet claimed, admins see everything.
func CanViewTicket(role domain.UserRole, actorID string, ticket *domain.Ticket) bool {
	switch role {
	case domain.RoleUser:
		return ticket.ReporterID == actorID
	case domain.RoleStaff:
		return ticket.AssigneeID == nil || *ticket.AssigneeID == actorID
	case domain.RoleAdmin:
		return true
	}
	return false
}

// CanModifyTicket decides update access. Staff must already hold the
// assignment; claiming happens through reads and comments, not updates.
func CanModifyTicket(role domain.UserRole, actorID string, ticket *domain.Ticket) bool {
	switch role {
	case domain.RoleUser:
		return ticket.ReporterID == actorID
	case domain.RoleStaff:
		return ticket.AssignedTo(actorID)
	}
	return false
}

// CanDeleteTicket decides delete access: reporter or current assignee only.
func CanDeleteTicket(role domain.UserRole, actorID string, ticket *domain.Ticket) bool {
	switch role {
	case domain.RoleUser:
		return ticket.ReporterID == actorID
	case domain.RoleStaff:
		return ticket.AssignedTo(actorID)
	}
	return false
}

// CanDeleteComment decides comment delete access: author only, never admin.
func CanDeleteComment(role domain.UserRole, actorID string, comment *domain.Comment) bool {
	if role == domain.RoleAdmin {
		return false
	}
	return comment.AuthorID == actorID
}

func toSet[T comparable](items ...T) map[T]struct{} {
	set := make(map[T]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
