package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/campusfolio/platform/internal/records"
)

func pendingAnnouncement() records.Announcement {
	now := time.Unix(1700000000, 0).UTC()
	return records.Announcement{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		Title:       "Inter-College Hackathon 2025",
		Body:        "48-hour hackathon.",
		Category:    records.CategoryCompetition,
		SourceURL:   "https://demo.edu/events/hackathon-2025",
		ExternalKey: "hackathon-2025",
		Status:      records.StatusPending,
		CreatedBy:   uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateIfAbsentReportsCreated(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewAnnouncementStore(mock)
	a := pendingAnnouncement()

	mock.ExpectExec("INSERT INTO announcements").
		WithArgs(announcementArgs(a)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := store.CreateIfAbsent(context.Background(), a)
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAbsentReportsSkippedOnConflict(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewAnnouncementStore(mock)
	a := pendingAnnouncement()

	// ON CONFLICT DO NOTHING yields zero affected rows.
	mock.ExpectExec("INSERT INTO announcements").
		WithArgs(announcementArgs(a)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	created, err := store.CreateIfAbsent(context.Background(), a)
	require.NoError(t, err)
	require.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionFromPendingUpdatesGuardedRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewAnnouncementStore(mock)
	a := pendingAnnouncement()
	reviewer := uuid.New()
	at := time.Unix(1700000100, 0).UTC()
	a.Status = records.StatusApproved
	a.ReviewedBy = &reviewer
	a.ReviewedAt = &at
	a.UpdatedAt = at

	mock.ExpectExec("UPDATE announcements").
		WithArgs(a.ID, "approved", a.SourceURL, a.EndsAt, a.ReviewedBy, a.ReviewedAt, a.RejectionReason, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.TransitionFromPending(context.Background(), a))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionFromPendingConflictWhenAlreadyProcessed(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewAnnouncementStore(mock)
	a := pendingAnnouncement()
	a.Status = records.StatusApproved

	mock.ExpectExec("UPDATE announcements").
		WithArgs(a.ID, "approved", a.SourceURL, a.EndsAt, a.ReviewedBy, a.ReviewedAt, a.RejectionReason, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM announcements").
		WithArgs(a.ID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("approved"))

	err = store.TransitionFromPending(context.Background(), a)
	require.True(t, records.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingAnnouncementIsNotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewAnnouncementStore(mock)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM announcements").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.ErrorIs(t, store.Delete(context.Background(), id), records.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
