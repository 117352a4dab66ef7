package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/bugtracker/internal/domain"
)

var testThresholds = SweepThresholds{Resolve: 24 * time.Hour, Close: 48 * time.Hour}

func newSweepFixture() (*fakeTicketRepo, *SweepService) {
	repo := newFakeTicketRepo()
	return repo, NewSweepService(repo, zap.NewNop())
}

func TestSweepResolvesInactiveTickets(t *testing.T) {
	ctx := context.Background()
	repo, svc := newSweepFixture()

	stale := repo.seed(domain.Ticket{Title: "stale", ReporterID: "alice", Status: domain.TicketStatusOpen, UpdatedAt: time.Now().Add(-25 * time.Hour)})
	staleWork := repo.seed(domain.Ticket{Title: "stale work", ReporterID: "alice", Status: domain.TicketStatusInProgress, UpdatedAt: time.Now().Add(-30 * time.Hour)})
	fresh := repo.seed(domain.Ticket{Title: "fresh", ReporterID: "alice", Status: domain.TicketStatusOpen, UpdatedAt: time.Now().Add(-1 * time.Hour)})
	untouched := repo.seed(domain.Ticket{Title: "untouched", ReporterID: "alice", UpdatedAt: time.Now().Add(-100 * time.Hour)})

	summary, err := svc.Run(ctx, testThresholds)
	require.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.Len(t, summary.Resolved, 2)
	assert.Empty(t, summary.Closed)

	for _, id := range []string{stale.ID, staleWork.ID} {
		stored, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusResolved, stored.Status)
	}

	stored, _ := repo.GetByID(ctx, fresh.ID)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)

	// unset-status tickets are not in the lifecycle yet
	stored, _ = repo.GetByID(ctx, untouched.ID)
	assert.False(t, stored.Status.IsSet())
}

func TestSweepClosesInactiveResolvedTickets(t *testing.T) {
	ctx := context.Background()
	repo, svc := newSweepFixture()

	old := repo.seed(domain.Ticket{Title: "old", ReporterID: "alice", Status: domain.TicketStatusResolved, UpdatedAt: time.Now().Add(-49 * time.Hour)})
	recent := repo.seed(domain.Ticket{Title: "recent", ReporterID: "alice", Status: domain.TicketStatusResolved, UpdatedAt: time.Now().Add(-25 * time.Hour)})

	summary, err := svc.Run(ctx, testThresholds)
	require.NoError(t, err)
	assert.Len(t, summary.Closed, 1)
	assert.Equal(t, old.ID, summary.Closed[0].ID)

	stored, _ := repo.GetByID(ctx, recent.ID)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)
}

func TestSweepReporterCommentBlocksTransition(t *testing.T) {
	ctx := context.Background()
	repo, svc := newSweepFixture()

	active := repo.seed(domain.Ticket{Title: "active", ReporterID: "alice", Status: domain.TicketStatusOpen, UpdatedAt: time.Now().Add(-30 * time.Hour)})
	repo.reporterCommentAt[active.ID] = time.Now().Add(-2 * time.Hour)

	summary, err := svc.Run(ctx, testThresholds)
	require.NoError(t, err)
	assert.Zero(t, summary.Total())

	stored, _ := repo.GetByID(ctx, active.ID)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestSweepIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, svc := newSweepFixture()

	repo.seed(domain.Ticket{Title: "stale", ReporterID: "alice", Status: domain.TicketStatusOpen, UpdatedAt: time.Now().Add(-25 * time.Hour)})

	first, err := svc.Run(ctx, testThresholds)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Total())

	// the transition bumped updated_at, so nothing is eligible now
	second, err := svc.Run(ctx, testThresholds)
	require.NoError(t, err)
	assert.Zero(t, second.Total())
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestSweepResolvedIsNotClosedInSameWindow(t *testing.T) {
	ctx := context.Background()
	repo, svc := newSweepFixture()

	ticket := repo.seed(domain.Ticket{Title: "stale", ReporterID: "alice", Status: domain.TicketStatusOpen, UpdatedAt: time.Now().Add(-72 * time.Hour)})

	summary, err := svc.Run(ctx, testThresholds)
	require.NoError(t, err)
	require.Len(t, summary.Resolved, 1)
	assert.Empty(t, summary.Closed)

	stored, _ := repo.GetByID(ctx, ticket.ID)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)
}

func TestSweepPreview(t *testing.T) {
	ctx := context.Background()
	repo, svc := newSweepFixture()

	repo.seed(domain.Ticket{Title: "near resolve", ReporterID: "alice", Status: domain.TicketStatusOpen, UpdatedAt: time.Now().Add(-26 * time.Hour)})
	repo.seed(domain.Ticket{Title: "near close", ReporterID: "alice", Status: domain.TicketStatusResolved, UpdatedAt: time.Now().Add(-50 * time.Hour)})
	repo.seed(domain.Ticket{Title: "fresh", ReporterID: "alice", Status: domain.TicketStatusOpen, UpdatedAt: time.Now()})

	preview, err := svc.Preview(ctx, testThresholds)
	require.NoError(t, err)
	require.Len(t, preview.NearResolve, 1)
	assert.Equal(t, "near resolve", preview.NearResolve[0].Title)
	assert.Greater(t, preview.NearResolve[0].HoursSinceUpdate, 24.0)
	require.Len(t, preview.NearClose, 1)
	assert.Equal(t, "near close", preview.NearClose[0].Title)
	assert.Equal(t, 2, preview.ByStatus["open"])
	assert.Equal(t, 1, preview.ByStatus["resolved"])
}
