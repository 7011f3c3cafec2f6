package data

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/aldersonarchive/archive-backend/internal/access/biz"
)

// AccessEventPO represents the append-only access event row. Rows are only
// ever inserted; there is no update or delete path in this repository.
type AccessEventPO struct {
	ID           int64     `gorm:"column:access_id;primaryKey;autoIncrement"`
	ItemID       *int64    `gorm:"column:item_id;index:idx_access_events_item_id"`
	UserID       *int64    `gorm:"column:user_id;index"`
	AccessorName string    `gorm:"size:100;not null"`
	IPAddress    string    `gorm:"size:45"`
	AccessType   string    `gorm:"size:20;not null"`
	AccessDate   time.Time `gorm:"not null;index:idx_access_events_access_date,sort:desc"`
}

func (AccessEventPO) TableName() string {
	return "access_events"
}

// accessEventRow is the scan target for the enriched listing queries
type accessEventRow struct {
	AccessID     int64     `gorm:"column:access_id"`
	AccessDate   time.Time `gorm:"column:access_date"`
	AccessType   string    `gorm:"column:access_type"`
	AccessorName string    `gorm:"column:accessor_name"`
	IPAddress    string    `gorm:"column:ip_address"`
	ItemID       *int64    `gorm:"column:item_id"`
	ItemTitle    *string   `gorm:"column:item_title"`
	Username     *string   `gorm:"column:username"`
	Email        *string   `gorm:"column:email"`
}

type statisticRow struct {
	ItemID        int64     `gorm:"column:item_id"`
	ItemTitle     *string   `gorm:"column:item_title"`
	TotalAccesses int64     `gorm:"column:total_accesses"`
	UniqueUsers   int64     `gorm:"column:unique_users"`
	ViewCount     int64     `gorm:"column:view_count"`
	DownloadCount int64     `gorm:"column:download_count"`
	LastAccessed  time.Time `gorm:"column:last_accessed"`
}

// AccessRepo implements biz.AccessRepo on PostgreSQL
type AccessRepo struct {
	db *gorm.DB
}

func NewAccessRepo(db *gorm.DB) biz.AccessRepo {
	return &AccessRepo{db: db}
}

// Append inserts one event. The insert is a single-row transaction, so the
// event becomes visible atomically at commit and access_id is assigned by
// the store.
func (r *AccessRepo) Append(ctx context.Context, event *biz.AccessEvent) error {
	po := &AccessEventPO{
		ItemID:       event.ItemID,
		UserID:       event.UserID,
		AccessorName: event.AccessorName,
		IPAddress:    event.IPAddress,
		AccessType:   string(event.Type),
		AccessDate:   event.AccessDate,
	}

	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return err
	}

	event.ID = po.ID
	return nil
}

func (r *AccessRepo) ListRecent(ctx context.Context, limit int) ([]*biz.AccessEventView, error) {
	var rows []accessEventRow
	err := r.db.WithContext(ctx).
		Table("access_events AS a").
		Select(`a.access_id, a.access_date, a.access_type, a.accessor_name, a.ip_address,
			a.item_id, ai.title AS item_title, u.username, u.email`).
		Joins("LEFT JOIN archive_items ai ON ai.item_id = a.item_id").
		Joins("LEFT JOIN users u ON u.user_id = a.user_id").
		Order("a.access_date DESC, a.access_id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return toViews(rows), nil
}

func (r *AccessRepo) ListByItem(ctx context.Context, itemID int64) ([]*biz.AccessEventView, error) {
	var rows []accessEventRow
	err := r.db.WithContext(ctx).
		Table("access_events AS a").
		Select(`a.access_id, a.access_date, a.access_type, a.accessor_name, a.ip_address,
			a.item_id, ai.title AS item_title, u.username, u.email`).
		Joins("LEFT JOIN archive_items ai ON ai.item_id = a.item_id").
		Joins("LEFT JOIN users u ON u.user_id = a.user_id").
		Where("a.item_id = ?", itemID).
		Order("a.access_date DESC, a.access_id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return toViews(rows), nil
}

// Statistics aggregates the event log per item. COUNT(DISTINCT user_id)
// ignores NULLs, matching the "distinct non-null accessors" semantics.
func (r *AccessRepo) Statistics(ctx context.Context) ([]*biz.AccessStatistic, error) {
	var rows []statisticRow
	err := r.db.WithContext(ctx).
		Table("access_events AS a").
		Select(`a.item_id, ai.title AS item_title,
			COUNT(*) AS total_accesses,
			COUNT(DISTINCT a.user_id) AS unique_users,
			COUNT(*) FILTER (WHERE a.access_type = 'view') AS view_count,
			COUNT(*) FILTER (WHERE a.access_type = 'download') AS download_count,
			MAX(a.access_date) AS last_accessed`).
		Joins("LEFT JOIN archive_items ai ON ai.item_id = a.item_id").
		Where("a.item_id IS NOT NULL").
		Group("a.item_id, ai.title").
		Order("total_accesses DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]*biz.AccessStatistic, len(rows))
	for i, row := range rows {
		stats[i] = &biz.AccessStatistic{
			ItemID:        row.ItemID,
			ItemTitle:     row.ItemTitle,
			TotalAccesses: row.TotalAccesses,
			UniqueUsers:   row.UniqueUsers,
			ViewCount:     row.ViewCount,
			DownloadCount: row.DownloadCount,
			LastAccessed:  row.LastAccessed,
		}
	}
	return stats, nil
}

func toViews(rows []accessEventRow) []*biz.AccessEventView {
	views := make([]*biz.AccessEventView, len(rows))
	for i, row := range rows {
		views[i] = &biz.AccessEventView{
			AccessID:     row.AccessID,
			AccessDate:   row.AccessDate,
			AccessType:   biz.AccessType(row.AccessType),
			AccessorName: row.AccessorName,
			IPAddress:    row.IPAddress,
			ItemID:       row.ItemID,
			ItemTitle:    row.ItemTitle,
			Username:     row.Username,
			Email:        row.Email,
		}
	}
	return views
}
