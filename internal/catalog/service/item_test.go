package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessbiz "github.com/aldersonarchive/archive-backend/internal/access/biz"
	"github.com/aldersonarchive/archive-backend/internal/auth"
	"github.com/aldersonarchive/archive-backend/internal/catalog/biz"
	"github.com/aldersonarchive/archive-backend/internal/pkg/logger"
)

type memoryItemRepo struct {
	items  map[int64]*biz.Item
	nextID int64
}

func newMemoryItemRepo() *memoryItemRepo {
	return &memoryItemRepo{items: map[int64]*biz.Item{}, nextID: 1}
}

func (r *memoryItemRepo) Create(_ context.Context, item *biz.Item) error {
	clone := *item
	clone.ID = r.nextID
	r.nextID++
	r.items[clone.ID] = &clone
	item.ID = clone.ID
	return nil
}

func (r *memoryItemRepo) GetByID(_ context.Context, id int64) (*biz.ItemDetails, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, biz.ErrItemNotFound
	}
	return &biz.ItemDetails{Item: *item}, nil
}

func (r *memoryItemRepo) List(_ context.Context) ([]*biz.ItemDetails, error) {
	var out []*biz.ItemDetails
	for _, item := range r.items {
		out = append(out, &biz.ItemDetails{Item: *item})
	}
	return out, nil
}

func (r *memoryItemRepo) Search(_ context.Context, _ biz.SearchFilter) ([]*biz.ItemDetails, error) {
	return r.List(context.Background())
}

func (r *memoryItemRepo) Update(_ context.Context, item *biz.Item) error {
	if _, ok := r.items[item.ID]; !ok {
		return biz.ErrItemNotFound
	}
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *memoryItemRepo) Delete(_ context.Context, id int64) error {
	delete(r.items, id)
	return nil
}

func (r *memoryItemRepo) ListCollections(_ context.Context) ([]*biz.Collection, error) {
	return nil, nil
}

func (r *memoryItemRepo) ListItemTypes(_ context.Context) ([]*biz.ItemType, error) {
	return nil, nil
}

type fakeFileStore struct{}

func (fakeFileStore) PresignedGetURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://files.example.com/" + objectKey, nil
}

type fakeRecorder struct {
	recorded []accessbiz.AccessType
	fail     bool
}

func (r *fakeRecorder) Record(_ context.Context, _ int64, _ auth.Identity, accessType accessbiz.AccessType, _ string) error {
	if r.fail {
		return accessbiz.ErrWriteFailed
	}
	r.recorded = append(r.recorded, accessType)
	return nil
}

func newItemTestRouter(t *testing.T) (*gin.Engine, *memoryItemRepo, *fakeRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemoryItemRepo()
	recorder := &fakeRecorder{}
	log, err := logger.New(nil)
	require.NoError(t, err)

	svc := NewItemService(biz.NewItemUseCase(repo, fakeFileStore{}, 0), recorder, log)

	identity := auth.Identity{UserID: 5, Username: "curator", Role: auth.RoleAdmin}
	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		c.Set("identity", identity)
		c.Next()
	})
	svc.RegisterRoutes(api, passThrough)
	return router, repo, recorder
}

func passThrough(c *gin.Context) { c.Next() }

func TestGetItemRecordsView(t *testing.T) {
	router, repo, recorder := newItemTestRouter(t)

	item := &biz.Item{Title: "Shipping ledger"}
	require.NoError(t, repo.Create(context.Background(), item))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []accessbiz.AccessType{accessbiz.AccessTypeView}, recorder.recorded)
	assert.Contains(t, w.Body.String(), "Shipping ledger")
}

func TestGetItemSucceedsWhenRecordingFails(t *testing.T) {
	router, repo, recorder := newItemTestRouter(t)
	recorder.fail = true

	item := &biz.Item{Title: "Shipping ledger"}
	require.NoError(t, repo.Create(context.Background(), item))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Shipping ledger")
}

func TestGetItemNotFoundRecordsNothing(t *testing.T) {
	router, _, recorder := newItemTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/404", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, recorder.recorded)
}

func TestDownloadPresignsAndRecords(t *testing.T) {
	router, repo, recorder := newItemTestRouter(t)

	item := &biz.Item{Title: "Map of 1901", FileKey: "items/map-1901.tif"}
	require.NoError(t, repo.Create(context.Background(), item))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/1/download", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://files.example.com/items/map-1901.tif")
	assert.Equal(t, []accessbiz.AccessType{accessbiz.AccessTypeDownload}, recorder.recorded)
}

func TestDownloadWithoutFile(t *testing.T) {
	router, repo, recorder := newItemTestRouter(t)

	item := &biz.Item{Title: "Uncatalogued box"}
	require.NoError(t, repo.Create(context.Background(), item))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/1/download", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, recorder.recorded)
}

func TestCreateItem(t *testing.T) {
	router, repo, _ := newItemTestRouter(t)

	body := `{"title":"Town charter","creation_date":"1887-06-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.items, 1)
	created := repo.items[1]
	assert.Equal(t, "Town charter", created.Title)
	assert.Equal(t, int64(5), created.AddedBy)
	require.NotNil(t, created.CreationDate)
	assert.Equal(t, 1887, created.CreationDate.Year())
}

func TestCreateItemRejectsBadDate(t *testing.T) {
	router, repo, _ := newItemTestRouter(t)

	body := `{"title":"Town charter","creation_date":"June 1887"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.items)
}

func TestDeleteItem(t *testing.T) {
	router, repo, _ := newItemTestRouter(t)

	item := &biz.Item{Title: "Duplicate scan"}
	require.NoError(t, repo.Create(context.Background(), item))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/items/1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.items)
}
