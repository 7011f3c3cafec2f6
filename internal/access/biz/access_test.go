package biz

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldersonarchive/archive-backend/internal/auth"
)

// memoryAccessRepo mimics the store contract: append-only, listings ordered
// by access date descending with access id as tie-break.
type memoryAccessRepo struct {
	events  []*AccessEvent
	nextID  int64
	failAll bool
}

func newMemoryAccessRepo() *memoryAccessRepo {
	return &memoryAccessRepo{nextID: 1}
}

var errStoreDown = errors.New("store unavailable")

func (r *memoryAccessRepo) Append(_ context.Context, event *AccessEvent) error {
	if r.failAll {
		return errStoreDown
	}
	clone := *event
	clone.ID = r.nextID
	r.nextID++
	r.events = append(r.events, &clone)
	event.ID = clone.ID
	return nil
}

func (r *memoryAccessRepo) sorted() []*AccessEvent {
	out := make([]*AccessEvent, len(r.events))
	copy(out, r.events)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AccessDate.Equal(out[j].AccessDate) {
			return out[i].AccessDate.After(out[j].AccessDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *memoryAccessRepo) toView(e *AccessEvent) *AccessEventView {
	name := e.AccessorName
	return &AccessEventView{
		AccessID:     e.ID,
		AccessDate:   e.AccessDate,
		AccessType:   e.Type,
		AccessorName: e.AccessorName,
		IPAddress:    e.IPAddress,
		ItemID:       e.ItemID,
		Username:     &name,
	}
}

func (r *memoryAccessRepo) ListRecent(_ context.Context, limit int) ([]*AccessEventView, error) {
	if r.failAll {
		return nil, errStoreDown
	}
	var views []*AccessEventView
	for _, e := range r.sorted() {
		if len(views) == limit {
			break
		}
		views = append(views, r.toView(e))
	}
	return views, nil
}

func (r *memoryAccessRepo) ListByItem(_ context.Context, itemID int64) ([]*AccessEventView, error) {
	if r.failAll {
		return nil, errStoreDown
	}
	var views []*AccessEventView
	for _, e := range r.sorted() {
		if e.ItemID != nil && *e.ItemID == itemID {
			views = append(views, r.toView(e))
		}
	}
	return views, nil
}

func (r *memoryAccessRepo) Statistics(_ context.Context) ([]*AccessStatistic, error) {
	if r.failAll {
		return nil, errStoreDown
	}
	byItem := map[int64]*AccessStatistic{}
	uniq := map[int64]map[int64]struct{}{}
	for _, e := range r.events {
		if e.ItemID == nil {
			continue
		}
		id := *e.ItemID
		stat, ok := byItem[id]
		if !ok {
			stat = &AccessStatistic{ItemID: id}
			byItem[id] = stat
			uniq[id] = map[int64]struct{}{}
		}
		stat.TotalAccesses++
		if e.UserID != nil {
			uniq[id][*e.UserID] = struct{}{}
		}
		switch e.Type {
		case AccessTypeView:
			stat.ViewCount++
		case AccessTypeDownload:
			stat.DownloadCount++
		}
		if e.AccessDate.After(stat.LastAccessed) {
			stat.LastAccessed = e.AccessDate
		}
	}

	var stats []*AccessStatistic
	for id, stat := range byItem {
		stat.UniqueUsers = int64(len(uniq[id]))
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].TotalAccesses > stats[j].TotalAccesses
	})
	return stats, nil
}

var (
	alice = auth.Identity{UserID: 1, Username: "alice", Role: auth.RoleUser}
	bob   = auth.Identity{UserID: 2, Username: "bob", Role: auth.RoleUser}
	admin = auth.Identity{UserID: 9, Username: "root", Role: auth.RoleAdmin}
)

func newTestUseCase() (*AccessUseCase, *memoryAccessRepo) {
	repo := newMemoryAccessRepo()
	return NewAccessUseCase(repo), repo
}

func TestRecordThenListForItem(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	require.NoError(t, uc.Record(ctx, 42, alice, AccessTypeView, "10.0.0.1"))

	views, err := uc.ListForItem(ctx, alice.Role, 42)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, AccessTypeView, views[0].AccessType)
	assert.Equal(t, "alice", views[0].AccessorName)
	assert.Equal(t, "10.0.0.1", views[0].IPAddress)
	assert.False(t, views[0].AccessDate.IsZero())
}

func TestRecordInvalidType(t *testing.T) {
	uc, repo := newTestUseCase()

	err := uc.Record(context.Background(), 1, alice, AccessType("edit"), "")
	assert.ErrorIs(t, err, ErrInvalidAccessType)
	assert.Empty(t, repo.events)
}

func TestRecordUnauthenticated(t *testing.T) {
	uc, repo := newTestUseCase()

	err := uc.Record(context.Background(), 1, auth.Identity{}, AccessTypeView, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, repo.events)
}

func TestRecordWriteFailure(t *testing.T) {
	uc, repo := newTestUseCase()
	repo.failAll = true

	err := uc.Record(context.Background(), 1, alice, AccessTypeView, "")
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestStatisticsViewAndDownload(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	require.NoError(t, uc.Record(ctx, 7, bob, AccessTypeView, ""))
	require.NoError(t, uc.Record(ctx, 7, bob, AccessTypeDownload, ""))

	stats, err := uc.Statistics(ctx, admin.Role)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.Equal(t, int64(7), stats[0].ItemID)
	assert.Equal(t, int64(2), stats[0].TotalAccesses)
	assert.Equal(t, int64(1), stats[0].ViewCount)
	assert.Equal(t, int64(1), stats[0].DownloadCount)
	assert.Equal(t, int64(1), stats[0].UniqueUsers)
	assert.False(t, stats[0].LastAccessed.IsZero())
}

func TestStatisticsUniqueUsers(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	require.NoError(t, uc.Record(ctx, 9, alice, AccessTypeView, ""))
	require.NoError(t, uc.Record(ctx, 9, bob, AccessTypeView, ""))

	stats, err := uc.Statistics(ctx, admin.Role)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(2), stats[0].TotalAccesses)
	assert.Equal(t, int64(2), stats[0].UniqueUsers)
}

func TestStatisticsOmitsItemsWithoutEvents(t *testing.T) {
	uc, _ := newTestUseCase()

	stats, err := uc.Statistics(context.Background(), admin.Role)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestStatisticsConsistentWithListing(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	require.NoError(t, uc.Record(ctx, 3, alice, AccessTypeView, ""))
	require.NoError(t, uc.Record(ctx, 3, bob, AccessTypeDownload, ""))
	require.NoError(t, uc.Record(ctx, 3, alice, AccessTypeDownload, ""))

	views, err := uc.ListForItem(ctx, alice.Role, 3)
	require.NoError(t, err)

	stats, err := uc.Statistics(ctx, admin.Role)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.Equal(t, int64(len(views)), stats[0].TotalAccesses)
	assert.Equal(t, stats[0].TotalAccesses, stats[0].ViewCount+stats[0].DownloadCount)
}

func TestListRecentForbiddenForNonAdmin(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.ListRecent(context.Background(), alice.Role, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.Statistics(context.Background(), alice.Role)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListRecentLimitClamped(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	for i := 0; i < DefaultListLimit+20; i++ {
		require.NoError(t, uc.Record(ctx, int64(i%5), alice, AccessTypeView, ""))
	}

	views, err := uc.ListRecent(ctx, admin.Role, 0)
	require.NoError(t, err)
	assert.Len(t, views, DefaultListLimit)

	views, err = uc.ListRecent(ctx, admin.Role, 10_000)
	require.NoError(t, err)
	assert.Len(t, views, DefaultListLimit)

	views, err = uc.ListRecent(ctx, admin.Role, 5)
	require.NoError(t, err)
	assert.Len(t, views, 5)
}

func TestOrderingNewestFirstWithTieBreak(t *testing.T) {
	uc, repo := newTestUseCase()
	ctx := context.Background()

	// Freeze the clock so consecutive records share a timestamp and the
	// access id tie-break decides.
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return frozen }

	require.NoError(t, uc.Record(ctx, 1, alice, AccessTypeView, ""))
	require.NoError(t, uc.Record(ctx, 1, bob, AccessTypeDownload, ""))

	uc.now = func() time.Time { return frozen.Add(time.Minute) }
	require.NoError(t, uc.Record(ctx, 1, alice, AccessTypeDownload, ""))

	views, err := uc.ListForItem(ctx, alice.Role, 1)
	require.NoError(t, err)
	require.Len(t, views, 3)

	// newest timestamp first, then higher id among equals
	assert.Equal(t, int64(3), views[0].AccessID)
	assert.Equal(t, int64(2), views[1].AccessID)
	assert.Equal(t, int64(1), views[2].AccessID)

	// append-only: recording never rewrote earlier events
	require.Len(t, repo.events, 3)
	assert.Equal(t, "alice", repo.events[0].AccessorName)
}

func TestIdempotentReads(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	require.NoError(t, uc.Record(ctx, 4, alice, AccessTypeView, ""))
	require.NoError(t, uc.Record(ctx, 4, bob, AccessTypeDownload, ""))

	first, err := uc.ListForItem(ctx, alice.Role, 4)
	require.NoError(t, err)
	second, err := uc.ListForItem(ctx, alice.Role, 4)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	s1, err := uc.Statistics(ctx, admin.Role)
	require.NoError(t, err)
	s2, err := uc.Statistics(ctx, admin.Role)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}

func TestReadFailure(t *testing.T) {
	uc, repo := newTestUseCase()
	repo.failAll = true

	_, err := uc.ListForItem(context.Background(), alice.Role, 1)
	assert.ErrorIs(t, err, ErrReadFailed)

	_, err = uc.ListRecent(context.Background(), admin.Role, 0)
	assert.ErrorIs(t, err, ErrReadFailed)

	_, err = uc.Statistics(context.Background(), admin.Role)
	assert.ErrorIs(t, err, ErrReadFailed)
}
