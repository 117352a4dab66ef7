package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bugtracker/internal/domain"
)

// CommentRepository encapsulates comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
	Delete(ctx context.Context, id string) error
	LatestByAuthor(ctx context.Context, ticketID, authorID string) (*time.Time, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates the repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, author_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return dbFromContext(ctx, r.pool).QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.author_id, c.content, c.created_at,
               u.username, u.role
        FROM comments c
        JOIN users u ON c.author_id = u.id
        WHERE c.id=$1`
	var comment domain.Comment
	if err := scanComment(dbFromContext(ctx, r.pool).QueryRow(ctx, query, id), &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.author_id, c.content, c.created_at,
               u.username, u.role
        FROM comments c
        JOIN users u ON c.author_id = u.id
        WHERE c.ticket_id=$1
        ORDER BY c.created_at ASC`

	rows, err := dbFromContext(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := scanComment(rows, &comment); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := dbFromContext(ctx, r.pool).Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// LatestByAuthor returns the newest comment time by the author on the
// ticket, or nil when they never commented.
func (r *commentRepository) LatestByAuthor(ctx context.Context, ticketID, authorID string) (*time.Time, error) {
	const query = `SELECT MAX(created_at) FROM comments WHERE ticket_id=$1 AND author_id=$2`
	var latest *time.Time
	if err := dbFromContext(ctx, r.pool).QueryRow(ctx, query, ticketID, authorID).Scan(&latest); err != nil {
		return nil, err
	}
	return latest, nil
}

func scanComment(row pgx.Row, comment *domain.Comment) error {
	return row.Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.AuthorID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.AuthorUsername,
		&comment.AuthorRole,
	)
}
