package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bugtracker/internal/domain"
)

// TicketFilter captures list parameters. Visibility scoping is the
// caller's job: handlers narrow the filter per the access policy before
// querying, the repository applies whatever it is given.
type TicketFilter struct {
	// ReporterID restricts to tickets filed by this user (user scope).
	ReporterID *string
	// ScopeStaffID restricts to tickets assigned to this user or not yet
	// assigned (staff scope).
	ScopeStaffID *string

	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	AssigneeID *string

	Limit  int
	Offset int
}

// TicketStats aggregates dashboard counts.
type TicketStats struct {
	Total      int
	Unassigned int
	ByStatus   map[string]int
	ByPriority map[string]int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	Touch(ctx context.Context, id string) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error)
	Delete(ctx context.Context, id string) error

	ListAutoResolvable(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
	ListAutoClosable(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
	UpdateStatusBatch(ctx context.Context, ids []string, status domain.TicketStatus) error
	ListStale(ctx context.Context, statuses []domain.TicketStatus, cutoff time.Time, limit int) ([]domain.Ticket, error)

	Stats(ctx context.Context) (*TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `
        t.id, t.title, t.description, t.status, t.priority, t.reporter_id,
        t.assignee_id, t.created_at, t.updated_at,
        r.username AS reporter_username, a.username AS assignee_username`

const ticketJoins = `
        FROM tickets t
        JOIN users r ON t.reporter_id = r.id
        LEFT JOIN users a ON t.assignee_id = a.id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, reporter_id, assignee_id)
        VALUES ($1, $2, NULL, $3, $4, NULL)
        RETURNING id, created_at, updated_at`
	return dbFromContext(ctx, r.pool).QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.ReporterID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ticketJoins + ` WHERE t.id=$1`
	var ticket domain.Ticket
	if err := scanTicket(dbFromContext(ctx, r.pool).QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4,
            assignee_id=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := dbFromContext(ctx, r.pool).Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		statusParam(ticket.Status),
		ticket.Priority,
		ticket.AssigneeID,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Touch refreshes updated_at only. Used when a reporter comment resets the
// inactivity clock without changing any ticket field.
func (r *ticketRepository) Touch(ctx context.Context, id string) error {
	cmd, err := dbFromContext(ctx, r.pool).Exec(ctx, `UPDATE tickets SET updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("t.reporter_id=$%d", len(args)))
	}
	if filter.ScopeStaffID != nil {
		args = append(args, *filter.ScopeStaffID)
		clauses = append(clauses, fmt.Sprintf("(t.assignee_id=$%d OR t.assignee_id IS NULL)", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.assignee_id=$%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")
	db := dbFromContext(ctx, r.pool)

	// The count query shares the predicate set so pagination totals always
	// match the filtered page.
	var total int
	countQuery := `SELECT COUNT(*) FROM tickets t WHERE ` + where
	if err := db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT%s%s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, ticketJoins, where, limit, offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// Delete removes the ticket and its comments. The schema cascades too;
// the explicit comments-then-ticket order keeps the no-orphan invariant
// independent of backend support.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	db := dbFromContext(ctx, r.pool)
	if _, err := db.Exec(ctx, `DELETE FROM comments WHERE ticket_id=$1`, id); err != nil {
		return err
	}
	cmd, err := db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// sweepPredicate matches tickets whose reference time, the later of
// updated_at and the latest reporter comment, is older than the cutoff.
const sweepPredicate = `
        t.updated_at < $1
        AND COALESCE((
            SELECT MAX(c.created_at) FROM comments c
            WHERE c.ticket_id = t.id AND c.author_id = t.reporter_id
        ), 'epoch'::timestamptz) < $1`

func (r *ticketRepository) ListAutoResolvable(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ticketJoins + `
        WHERE t.status IN ('open', 'in_progress') AND` + sweepPredicate
	return r.queryTickets(ctx, query, cutoff)
}

func (r *ticketRepository) ListAutoClosable(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ticketJoins + `
        WHERE t.status = 'resolved' AND` + sweepPredicate
	return r.queryTickets(ctx, query, cutoff)
}

func (r *ticketRepository) UpdateStatusBatch(ctx context.Context, ids []string, status domain.TicketStatus) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id = ANY($2)`
	_, err := dbFromContext(ctx, r.pool).Exec(ctx, query, status, ids)
	return err
}

func (r *ticketRepository) ListStale(ctx context.Context, statuses []domain.TicketStatus, cutoff time.Time, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 10
	}
	placeholders := make([]string, len(statuses))
	args := []any{cutoff}
	for i, status := range statuses {
		args = append(args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`SELECT%s%s
        WHERE t.status IN (%s) AND t.updated_at < $1
        ORDER BY t.updated_at ASC LIMIT %d`,
		ticketColumns, ticketJoins, strings.Join(placeholders, ","), limit)
	return r.queryTickets(ctx, query, args...)
}

func (r *ticketRepository) Stats(ctx context.Context) (*TicketStats, error) {
	db := dbFromContext(ctx, r.pool)
	stats := &TicketStats{
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}

	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&stats.Total); err != nil {
		return nil, err
	}
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE assignee_id IS NULL`).Scan(&stats.Unassigned); err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, `SELECT COALESCE(status, 'unset'), COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := db.Query(ctx, `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var priority string
		var count int
		if err := prows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		stats.ByPriority[priority] = count
	}
	return stats, prows.Err()
}

func (r *ticketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := dbFromContext(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	var status *string
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&status,
		&ticket.Priority,
		&ticket.ReporterID,
		&ticket.AssigneeID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ReporterUsername,
		&ticket.AssigneeUsername,
	); err != nil {
		return err
	}
	if status != nil {
		ticket.Status = domain.TicketStatus(*status)
	} else {
		ticket.Status = domain.TicketStatusUnset
	}
	return nil
}

// statusParam maps the unset pre-state to SQL NULL.
func statusParam(status domain.TicketStatus) any {
	if !status.IsSet() {
		return nil
	}
	return status
}
