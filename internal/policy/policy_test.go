package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/bugtracker/internal/domain"
)

func TestAllows(t *testing.T) {
	cases := []struct {
		role domain.UserRole
		op   Operation
		want bool
	}{
		{domain.RoleUser, OpTicketCreate, true},
		{domain.RoleUser, OpTicketReadOwn, true},
		{domain.RoleUser, OpTicketReadAll, false},
		{domain.RoleUser, OpStatsRead, false},
		{domain.RoleUser, OpUserReadAll, false},
		{domain.RoleStaff, OpTicketCreate, false},
		{domain.RoleStaff, OpTicketReadAssigned, true},
		{domain.RoleStaff, OpTicketUpdateAssigned, true},
		{domain.RoleStaff, OpStatsRead, true},
		{domain.RoleAdmin, OpTicketCreate, false},
		{domain.RoleAdmin, OpTicketReadAll, true},
		{domain.RoleAdmin, OpTicketUpdateOwn, false},
		{domain.RoleAdmin, OpTicketUpdateAssigned, false},
		{domain.RoleAdmin, OpTicketDeleteOwn, false},
		{domain.RoleAdmin, OpCommentCreate, false},
		{domain.RoleAdmin, OpCommentDeleteOwn, false},
		{domain.RoleAdmin, OpCommentRead, true},
		{domain.RoleAdmin, OpStatsRead, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Allows(tc.role, tc.op), "%s %s", tc.role, tc.op)
	}
}

func TestAllowsAny(t *testing.T) {
	assert.True(t, AllowsAny(domain.RoleUser, OpTicketReadOwn, OpTicketReadAll))
	assert.False(t, AllowsAny(domain.RoleUser, OpTicketReadAll, OpStatsRead))
	assert.False(t, AllowsAny(domain.UserRole("unknown"), OpTicketReadOwn))
}

func TestWritableFields(t *testing.T) {
	assert.True(t, FieldWritable(domain.RoleUser, "title"))
	assert.True(t, FieldWritable(domain.RoleUser, "description"))
	assert.False(t, FieldWritable(domain.RoleUser, "status"))
	assert.False(t, FieldWritable(domain.RoleUser, "assignee_id"))

	assert.True(t, FieldWritable(domain.RoleStaff, "status"))
	assert.True(t, FieldWritable(domain.RoleStaff, "priority"))
	assert.True(t, FieldWritable(domain.RoleStaff, "assignee_id"))
	assert.False(t, FieldWritable(domain.RoleStaff, "title"))

	assert.Empty(t, WritableFields(domain.RoleAdmin))
	assert.Len(t, WritableFields(domain.RoleUser), 2)
	assert.Len(t, WritableFields(domain.RoleStaff), 3)
}

func TestCanViewTicket(t *testing.T) {
	bobID := "bob"
	unclaimed := &domain.Ticket{ReporterID: "alice"}
	claimed := &domain.Ticket{ReporterID: "alice", AssigneeID: &bobID}

	assert.True(t, CanViewTicket(domain.RoleUser, "alice", unclaimed))
	assert.False(t, CanViewTicket(domain.RoleUser, "mallory", unclaimed))

	assert.True(t, CanViewTicket(domain.RoleStaff, "bob", unclaimed))
	assert.True(t, CanViewTicket(domain.RoleStaff, "carol", unclaimed))
	assert.True(t, CanViewTicket(domain.RoleStaff, "bob", claimed))
	assert.False(t, CanViewTicket(domain.RoleStaff, "carol", claimed))

	assert.True(t, CanViewTicket(domain.RoleAdmin, "root", claimed))
	assert.False(t, CanViewTicket(domain.UserRole("unknown"), "x", unclaimed))
}

func TestCanModifyTicket(t *testing.T) {
	bobID := "bob"
	unclaimed := &domain.Ticket{ReporterID: "alice"}
	claimed := &domain.Ticket{ReporterID: "alice", AssigneeID: &bobID}

	assert.True(t, CanModifyTicket(domain.RoleUser, "alice", unclaimed))
	assert.False(t, CanModifyTicket(domain.RoleUser, "mallory", unclaimed))

	// staff must hold the assignment; viewing unclaimed is not enough
	assert.False(t, CanModifyTicket(domain.RoleStaff, "bob", unclaimed))
	assert.True(t, CanModifyTicket(domain.RoleStaff, "bob", claimed))
	assert.False(t, CanModifyTicket(domain.RoleStaff, "carol", claimed))

	assert.False(t, CanModifyTicket(domain.RoleAdmin, "root", claimed))
}

func TestCanDeleteTicket(t *testing.T) {
	bobID := "bob"
	claimed := &domain.Ticket{ReporterID: "alice", AssigneeID: &bobID}

	assert.True(t, CanDeleteTicket(domain.RoleUser, "alice", claimed))
	assert.True(t, CanDeleteTicket(domain.RoleStaff, "bob", claimed))
	assert.False(t, CanDeleteTicket(domain.RoleStaff, "carol", claimed))
	assert.False(t, CanDeleteTicket(domain.RoleAdmin, "root", claimed))
}

func TestCanDeleteComment(t *testing.T) {
	comment := &domain.Comment{AuthorID: "alice"}

	assert.True(t, CanDeleteComment(domain.RoleUser, "alice", comment))
	assert.False(t, CanDeleteComment(domain.RoleUser, "bob", comment))
	assert.False(t, CanDeleteComment(domain.RoleStaff, "bob", comment))

	adminComment := &domain.Comment{AuthorID: "root"}
	assert.False(t, CanDeleteComment(domain.RoleAdmin, "root", adminComment))
}
