package biz

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrItemNoFile   = errors.New("item has no stored file")
)

// Item is one archive record. FileKey is the object key in the file store;
// empty means the item was catalogued without a digital copy.
type Item struct {
	ID              int64
	Title           string
	Description     string
	CreationDate    *time.Time
	AcquisitionDate *time.Time
	Location        string
	FileKey         string
	ItemTypeID      *int64
	CollectionID    *int64
	ContributorID   *int64
	AddedBy         int64
}

// ItemDetails is an item joined with the names of its related records. The
// name fields are nil when the reference is unset or the row is gone.
type ItemDetails struct {
	Item
	TypeName        *string
	CollectionName  *string
	ContributorName *string
	AddedByName     *string
}

// SearchFilter narrows a listing. Zero-value fields are not applied. Type and
// Collection match exactly; Contributor and Search are substring matches,
// Search against both title and description.
type SearchFilter struct {
	Type        string
	Collection  string
	Contributor string
	Search      string
}

type Collection struct {
	ID          int64
	Name        string
	Description string
}

type ItemType struct {
	ID   int64
	Name string
}

type ItemRepo interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id int64) (*ItemDetails, error)
	List(ctx context.Context) ([]*ItemDetails, error)
	Search(ctx context.Context, filter SearchFilter) ([]*ItemDetails, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	ListCollections(ctx context.Context) ([]*Collection, error)
	ListItemTypes(ctx context.Context) ([]*ItemType, error)
}

// FileStore hands out short-lived download URLs for stored objects
type FileStore interface {
	PresignedGetURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

type ItemUseCase struct {
	repo      ItemRepo
	files     FileStore
	urlExpiry time.Duration
}

func NewItemUseCase(repo ItemRepo, files FileStore, urlExpiry time.Duration) *ItemUseCase {
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &ItemUseCase{
		repo:      repo,
		files:     files,
		urlExpiry: urlExpiry,
	}
}

func (uc *ItemUseCase) CreateItem(ctx context.Context, item *Item) error {
	if err := uc.repo.Create(ctx, item); err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (uc *ItemUseCase) GetItem(ctx context.Context, id int64) (*ItemDetails, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *ItemUseCase) ListItems(ctx context.Context) ([]*ItemDetails, error) {
	return uc.repo.List(ctx)
}

func (uc *ItemUseCase) SearchItems(ctx context.Context, filter SearchFilter) ([]*ItemDetails, error) {
	return uc.repo.Search(ctx, filter)
}

func (uc *ItemUseCase) UpdateItem(ctx context.Context, item *Item) error {
	if _, err := uc.repo.GetByID(ctx, item.ID); err != nil {
		return err
	}
	return uc.repo.Update(ctx, item)
}

func (uc *ItemUseCase) DeleteItem(ctx context.Context, id int64) error {
	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// GetDownloadURL resolves the item and presigns a GET for its stored object.
// The URL expires after the configured window.
func (uc *ItemUseCase) GetDownloadURL(ctx context.Context, id int64) (string, error) {
	details, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if details.FileKey == "" {
		return "", ErrItemNoFile
	}

	url, err := uc.files.PresignedGetURL(ctx, details.FileKey, uc.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download for item %d: %w", id, err)
	}
	return url, nil
}

func (uc *ItemUseCase) ListCollections(ctx context.Context) ([]*Collection, error) {
	return uc.repo.ListCollections(ctx)
}

func (uc *ItemUseCase) ListItemTypes(ctx context.Context) ([]*ItemType, error) {
	return uc.repo.ListItemTypes(ctx)
}
