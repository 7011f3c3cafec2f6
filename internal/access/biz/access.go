package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aldersonarchive/archive-backend/internal/auth"
	"github.com/aldersonarchive/archive-backend/internal/pkg/validator"
)

var (
	ErrForbidden         = errors.New("administrator role required")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrWriteFailed       = errors.New("failed to record access event")
	ErrReadFailed        = errors.New("failed to read access log")
	ErrInvalidAccessType = errors.New("invalid access type")
)

// AccessType is the kind of access being recorded. The set is closed.
type AccessType string

const (
	AccessTypeView     AccessType = "view"
	AccessTypeDownload AccessType = "download"
)

// Valid reports whether t is a member of the closed set
func (t AccessType) Valid() bool {
	return t == AccessTypeView || t == AccessTypeDownload
}

// AccessEvent is one immutable access fact. Events are only ever appended;
// nothing in this package updates or deletes them. AccessorName and
// IPAddress are snapshots taken at record time so the event stays meaningful
// if the user record is later changed or removed.
type AccessEvent struct {
	ID           int64
	ItemID       *int64
	UserID       *int64
	AccessorName string
	IPAddress    string
	Type         AccessType
	AccessDate   time.Time
}

// AccessEventView is an event enriched with whatever related records still
// exist. ItemTitle, Username and Email are nil when the referenced row is
// gone; that is not an error.
type AccessEventView struct {
	AccessID     int64
	AccessDate   time.Time
	AccessType   AccessType
	AccessorName string
	IPAddress    string
	ItemID       *int64
	ItemTitle    *string
	Username     *string
	Email        *string
}

// AccessStatistic is the per-item aggregate over the event log. It is always
// computed from the current events, never stored, so it cannot drift.
type AccessStatistic struct {
	ItemID        int64
	ItemTitle     *string
	TotalAccesses int64
	UniqueUsers   int64
	ViewCount     int64
	DownloadCount int64
	LastAccessed  time.Time
}

// DefaultListLimit caps the global listing; callers cannot request
// unbounded history through ListRecent.
const DefaultListLimit = 100

// AccessRepo defines the append-only event store. Append must be atomic:
// either the whole event becomes visible or none of it does. Listings order
// by access_date descending, ties broken by access_id descending.
type AccessRepo interface {
	Append(ctx context.Context, event *AccessEvent) error
	ListRecent(ctx context.Context, limit int) ([]*AccessEventView, error)
	ListByItem(ctx context.Context, itemID int64) ([]*AccessEventView, error)
	Statistics(ctx context.Context) ([]*AccessStatistic, error)
}

// AccessUseCase implements the audit recorder, reader and aggregator. The
// caller's verified role is an explicit argument on every read operation;
// no ambient session state is consulted.
type AccessUseCase struct {
	repo AccessRepo
	now  func() time.Time
}

func NewAccessUseCase(repo AccessRepo) *AccessUseCase {
	return &AccessUseCase{
		repo: repo,
		now:  time.Now,
	}
}

// Record appends exactly one event for a qualifying action. The timestamp is
// assigned here, never supplied by the caller. A failure is reported as
// ErrWriteFailed; it is the caller's decision whether that blocks anything,
// and Record is never retried internally.
func (uc *AccessUseCase) Record(ctx context.Context, itemID int64, actor auth.Identity, accessType AccessType, ip string) error {
	if actor.UserID == 0 {
		return ErrUnauthenticated
	}
	if !accessType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccessType, accessType)
	}

	userID := actor.UserID
	event := &AccessEvent{
		ItemID:       &itemID,
		UserID:       &userID,
		AccessorName: actor.Username,
		IPAddress:    validator.GetIPOrDefault(ip, ""),
		Type:         accessType,
		AccessDate:   uc.now().UTC(),
	}

	if err := uc.repo.Append(ctx, event); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// ListRecent returns up to limit most recent events across all items,
// administrators only. limit <= 0 means the default; requests above the
// default are clamped.
func (uc *AccessUseCase) ListRecent(ctx context.Context, role string, limit int) ([]*AccessEventView, error) {
	if role != auth.RoleAdmin {
		return nil, ErrForbidden
	}

	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	views, err := uc.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return views, nil
}

// ListForItem returns all events for one item, newest first. Any
// authenticated subject may call it.
func (uc *AccessUseCase) ListForItem(ctx context.Context, role string, itemID int64) ([]*AccessEventView, error) {
	if role == "" {
		return nil, ErrUnauthenticated
	}

	views, err := uc.repo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return views, nil
}

// Statistics returns the per-item aggregates ordered by total accesses
// descending, administrators only. Items with no events are omitted.
func (uc *AccessUseCase) Statistics(ctx context.Context, role string) ([]*AccessStatistic, error) {
	if role != auth.RoleAdmin {
		return nil, ErrForbidden
	}

	stats, err := uc.repo.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return stats, nil
}
