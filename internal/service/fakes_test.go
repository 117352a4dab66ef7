package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bugtracker/internal/domain"
	"github.com/spec-kit/bugtracker/internal/repository"
)

// fakeTicketRepo is an in-memory TicketRepository for service tests.
// reporterCommentAt stands in for the latest reporter comment per ticket,
// which the real implementation resolves with a subquery.
type fakeTicketRepo struct {
	mu                sync.Mutex
	seq               int
	tickets           map[string]*domain.Ticket
	reporterCommentAt map[string]time.Time
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:           make(map[string]*domain.Ticket),
		reporterCommentAt: make(map[string]time.Time),
	}
}

func (f *fakeTicketRepo) seed(ticket domain.Ticket) *domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ticket.ID == "" {
		f.seq++
		ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	}
	copied := ticket
	f.tickets[copied.ID] = &copied
	return &copied
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	copied.UpdatedAt = time.Now()
	f.tickets[ticket.ID] = &copied
	ticket.UpdatedAt = copied.UpdatedAt
	return nil
}

func (f *fakeTicketRepo) Touch(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	return nil
}

func (f *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.ReporterID != nil && ticket.ReporterID != *filter.ReporterID {
			continue
		}
		if filter.ScopeStaffID != nil && ticket.AssigneeID != nil && *ticket.AssigneeID != *filter.ScopeStaffID {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		if filter.AssigneeID != nil && (ticket.AssigneeID == nil || *ticket.AssigneeID != *filter.AssigneeID) {
			continue
		}
		matched = append(matched, *ticket)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.tickets, id)
	return nil
}

func (f *fakeTicketRepo) ListAutoResolvable(_ context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	return f.sweepCandidates(cutoff, domain.TicketStatusOpen, domain.TicketStatusInProgress), nil
}

func (f *fakeTicketRepo) ListAutoClosable(_ context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	return f.sweepCandidates(cutoff, domain.TicketStatusResolved), nil
}

func (f *fakeTicketRepo) sweepCandidates(cutoff time.Time, statuses ...domain.TicketStatus) []domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []domain.Ticket
	for _, ticket := range f.tickets {
		statusMatch := false
		for _, status := range statuses {
			if ticket.Status == status {
				statusMatch = true
			}
		}
		if !statusMatch {
			continue
		}
		if !ticket.UpdatedAt.Before(cutoff) {
			continue
		}
		if latest, ok := f.reporterCommentAt[ticket.ID]; ok && !latest.Before(cutoff) {
			continue
		}
		matched = append(matched, *ticket)
	}
	return matched
}

func (f *fakeTicketRepo) UpdateStatusBatch(_ context.Context, ids []string, status domain.TicketStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if ticket, ok := f.tickets[id]; ok {
			ticket.Status = status
			ticket.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (f *fakeTicketRepo) ListStale(_ context.Context, statuses []domain.TicketStatus, cutoff time.Time, limit int) ([]domain.Ticket, error) {
	matched := f.sweepCandidates(cutoff, statuses...)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.Before(matched[j].UpdatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeTicketRepo) Stats(_ context.Context) (*repository.TicketStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &repository.TicketStats{
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}
	for _, ticket := range f.tickets {
		stats.Total++
		if ticket.AssigneeID == nil {
			stats.Unassigned++
		}
		key := string(ticket.Status)
		if !ticket.Status.IsSet() {
			key = "unset"
		}
		stats.ByStatus[key]++
		stats.ByPriority[string(ticket.Priority)]++
	}
	return stats, nil
}

// fakeCommentRepo is an in-memory CommentRepository.
type fakeCommentRepo struct {
	mu       sync.Mutex
	seq      int
	comments map[string]*domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*domain.Comment)}
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	comment.ID = fmt.Sprintf("comment-%d", f.seq)
	comment.CreatedAt = time.Now()
	copied := *comment
	f.comments[comment.ID] = &copied
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment, ok := f.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *comment
	return &copied, nil
}

func (f *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Comment
	for _, comment := range f.comments {
		if comment.TicketID == ticketID {
			result = append(result, *comment)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentRepo) LatestByAuthor(_ context.Context, ticketID, authorID string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *time.Time
	for _, comment := range f.comments {
		if comment.TicketID != ticketID || comment.AuthorID != authorID {
			continue
		}
		if latest == nil || comment.CreatedAt.After(*latest) {
			at := comment.CreatedAt
			latest = &at
		}
	}
	return latest, nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.User
	for _, user := range f.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})
	return result, nil
}

// fakeTxManager runs the function without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
