package data

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aldersonarchive/archive-backend/internal/catalog/biz"
)

type ItemPO struct {
	ID              int64      `gorm:"column:item_id;primaryKey;autoIncrement"`
	Title           string     `gorm:"size:255;not null;index"`
	Description     string     `gorm:"type:text"`
	CreationDate    *time.Time `gorm:"column:creation_date"`
	AcquisitionDate *time.Time `gorm:"column:acquisition_date"`
	Location        string     `gorm:"size:255"`
	FileKey         string     `gorm:"column:file_key;size:512"`
	ItemTypeID      *int64     `gorm:"column:item_type_id;index"`
	CollectionID    *int64     `gorm:"column:collection_id;index"`
	ContributorID   *int64     `gorm:"column:contributor_id;index"`
	AddedBy         int64      `gorm:"column:added_by"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (ItemPO) TableName() string {
	return "archive_items"
}

type CollectionPO struct {
	ID          int64  `gorm:"column:collection_id;primaryKey;autoIncrement"`
	Name        string `gorm:"size:255;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

func (CollectionPO) TableName() string {
	return "collections"
}

type ItemTypePO struct {
	ID   int64  `gorm:"column:item_type_id;primaryKey;autoIncrement"`
	Name string `gorm:"size:100;not null;uniqueIndex"`
}

func (ItemTypePO) TableName() string {
	return "item_types"
}

// itemDetailsRow is the scan target for listings joined with related names
type itemDetailsRow struct {
	ItemID          int64      `gorm:"column:item_id"`
	Title           string     `gorm:"column:title"`
	Description     string     `gorm:"column:description"`
	CreationDate    *time.Time `gorm:"column:creation_date"`
	AcquisitionDate *time.Time `gorm:"column:acquisition_date"`
	Location        string     `gorm:"column:location"`
	FileKey         string     `gorm:"column:file_key"`
	ItemTypeID      *int64     `gorm:"column:item_type_id"`
	CollectionID    *int64     `gorm:"column:collection_id"`
	ContributorID   *int64     `gorm:"column:contributor_id"`
	AddedBy         int64      `gorm:"column:added_by"`
	TypeName        *string    `gorm:"column:type_name"`
	CollectionName  *string    `gorm:"column:collection_name"`
	ContributorName *string    `gorm:"column:contributor_name"`
	AddedByName     *string    `gorm:"column:added_by_name"`
}

type ItemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) biz.ItemRepo {
	return &ItemRepo{db: db}
}

const itemDetailsSelect = `i.item_id, i.title, i.description, i.creation_date,
	i.acquisition_date, i.location, i.file_key, i.item_type_id, i.collection_id,
	i.contributor_id, i.added_by,
	it.name AS type_name, c.name AS collection_name,
	ct.name AS contributor_name, u.username AS added_by_name`

func (r *ItemRepo) detailsQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("archive_items AS i").
		Select(itemDetailsSelect).
		Joins("LEFT JOIN item_types it ON it.item_type_id = i.item_type_id").
		Joins("LEFT JOIN collections c ON c.collection_id = i.collection_id").
		Joins("LEFT JOIN contributors ct ON ct.contributor_id = i.contributor_id").
		Joins("LEFT JOIN users u ON u.user_id = i.added_by")
}

func (r *ItemRepo) Create(ctx context.Context, item *biz.Item) error {
	po := toItemPO(item)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return err
	}
	item.ID = po.ID
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id int64) (*biz.ItemDetails, error) {
	var row itemDetailsRow
	err := r.detailsQuery(ctx).
		Where("i.item_id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrItemNotFound
		}
		return nil, err
	}
	return toDetails(&row), nil
}

func (r *ItemRepo) List(ctx context.Context) ([]*biz.ItemDetails, error) {
	var rows []itemDetailsRow
	err := r.detailsQuery(ctx).
		Order("i.item_id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDetailsList(rows), nil
}

func (r *ItemRepo) Search(ctx context.Context, filter biz.SearchFilter) ([]*biz.ItemDetails, error) {
	query := r.detailsQuery(ctx)

	if filter.Type != "" {
		query = query.Where("it.name = ?", filter.Type)
	}
	if filter.Collection != "" {
		query = query.Where("c.name = ?", filter.Collection)
	}
	if filter.Contributor != "" {
		query = query.Where("ct.name ILIKE ?", "%"+filter.Contributor+"%")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("i.title ILIKE ? OR i.description ILIKE ?", pattern, pattern)
	}

	var rows []itemDetailsRow
	if err := query.Order("i.item_id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toDetailsList(rows), nil
}

func (r *ItemRepo) Update(ctx context.Context, item *biz.Item) error {
	result := r.db.WithContext(ctx).
		Model(&ItemPO{}).
		Where("item_id = ?", item.ID).
		Updates(map[string]interface{}{
			"title":            item.Title,
			"description":      item.Description,
			"creation_date":    item.CreationDate,
			"acquisition_date": item.AcquisitionDate,
			"location":         item.Location,
			"file_key":         item.FileKey,
			"item_type_id":     item.ItemTypeID,
			"collection_id":    item.CollectionID,
			"contributor_id":   item.ContributorID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return biz.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&ItemPO{}, "item_id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return biz.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepo) ListCollections(ctx context.Context) ([]*biz.Collection, error) {
	var pos []CollectionPO
	if err := r.db.WithContext(ctx).Order("name").Find(&pos).Error; err != nil {
		return nil, err
	}

	collections := make([]*biz.Collection, len(pos))
	for i, po := range pos {
		collections[i] = &biz.Collection{
			ID:          po.ID,
			Name:        po.Name,
			Description: po.Description,
		}
	}
	return collections, nil
}

func (r *ItemRepo) ListItemTypes(ctx context.Context) ([]*biz.ItemType, error) {
	var pos []ItemTypePO
	if err := r.db.WithContext(ctx).Order("name").Find(&pos).Error; err != nil {
		return nil, err
	}

	types := make([]*biz.ItemType, len(pos))
	for i, po := range pos {
		types[i] = &biz.ItemType{ID: po.ID, Name: po.Name}
	}
	return types, nil
}

func toItemPO(item *biz.Item) *ItemPO {
	return &ItemPO{
		ID:              item.ID,
		Title:           item.Title,
		Description:     item.Description,
		CreationDate:    item.CreationDate,
		AcquisitionDate: item.AcquisitionDate,
		Location:        item.Location,
		FileKey:         item.FileKey,
		ItemTypeID:      item.ItemTypeID,
		CollectionID:    item.CollectionID,
		ContributorID:   item.ContributorID,
		AddedBy:         item.AddedBy,
	}
}

func toDetails(row *itemDetailsRow) *biz.ItemDetails {
	return &biz.ItemDetails{
		Item: biz.Item{
			ID:              row.ItemID,
			Title:           row.Title,
			Description:     row.Description,
			CreationDate:    row.CreationDate,
			AcquisitionDate: row.AcquisitionDate,
			Location:        row.Location,
			FileKey:         row.FileKey,
			ItemTypeID:      row.ItemTypeID,
			CollectionID:    row.CollectionID,
			ContributorID:   row.ContributorID,
			AddedBy:         row.AddedBy,
		},
		TypeName:        row.TypeName,
		CollectionName:  row.CollectionName,
		ContributorName: row.ContributorName,
		AddedByName:     row.AddedByName,
	}
}

func toDetailsList(rows []itemDetailsRow) []*biz.ItemDetails {
	details := make([]*biz.ItemDetails, len(rows))
	for i := range rows {
		details[i] = toDetails(&rows[i])
	}
	return details
}
