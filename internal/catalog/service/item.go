package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	accessbiz "github.com/aldersonarchive/archive-backend/internal/access/biz"
	"github.com/aldersonarchive/archive-backend/internal/auth"
	"github.com/aldersonarchive/archive-backend/internal/auth/middleware"
	"github.com/aldersonarchive/archive-backend/internal/catalog/biz"
	apperrors "github.com/aldersonarchive/archive-backend/internal/pkg/errors"
	"github.com/aldersonarchive/archive-backend/internal/pkg/logger"
	"github.com/aldersonarchive/archive-backend/internal/pkg/response"
)

// AccessRecorder logs that an item was viewed or downloaded. Recording is
// best effort here: a recorder failure never blocks the catalog response.
type AccessRecorder interface {
	Record(ctx context.Context, itemID int64, actor auth.Identity, accessType accessbiz.AccessType, ip string) error
}

type ItemService struct {
	uc       *biz.ItemUseCase
	recorder AccessRecorder
	logger   *logger.Logger
}

func NewItemService(uc *biz.ItemUseCase, recorder AccessRecorder, log *logger.Logger) *ItemService {
	return &ItemService{
		uc:       uc,
		recorder: recorder,
		logger:   log,
	}
}

const dateLayout = "2006-01-02"

type ItemRequest struct {
	Title           string `json:"title" binding:"required,max=255"`
	Description     string `json:"description"`
	CreationDate    string `json:"creation_date"`
	AcquisitionDate string `json:"acquisition_date"`
	Location        string `json:"location"`
	FileKey         string `json:"file_key"`
	ItemTypeID      *int64 `json:"item_type_id"`
	CollectionID    *int64 `json:"collection_id"`
	ContributorID   *int64 `json:"contributor_id"`
}

type ItemResponse struct {
	ItemID          int64   `json:"item_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	CreationDate    *string `json:"creation_date"`
	AcquisitionDate *string `json:"acquisition_date"`
	Location        string  `json:"location"`
	FileKey         string  `json:"file_key,omitempty"`
	ItemTypeID      *int64  `json:"item_type_id"`
	CollectionID    *int64  `json:"collection_id"`
	ContributorID   *int64  `json:"contributor_id"`
	TypeName        *string `json:"type_name"`
	CollectionName  *string `json:"collection_name"`
	ContributorName *string `json:"contributor_name"`
	AddedByName     *string `json:"added_by_name"`
}

type CollectionResponse struct {
	CollectionID int64  `json:"collection_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

type ItemTypeResponse struct {
	ItemTypeID int64  `json:"item_type_id"`
	Name       string `json:"name"`
}

func (r *ItemRequest) toItem(id, addedBy int64) (*biz.Item, error) {
	item := &biz.Item{
		ID:            id,
		Title:         r.Title,
		Description:   r.Description,
		Location:      r.Location,
		FileKey:       r.FileKey,
		ItemTypeID:    r.ItemTypeID,
		CollectionID:  r.CollectionID,
		ContributorID: r.ContributorID,
		AddedBy:       addedBy,
	}

	if r.CreationDate != "" {
		d, err := time.Parse(dateLayout, r.CreationDate)
		if err != nil {
			return nil, err
		}
		item.CreationDate = &d
	}
	if r.AcquisitionDate != "" {
		d, err := time.Parse(dateLayout, r.AcquisitionDate)
		if err != nil {
			return nil, err
		}
		item.AcquisitionDate = &d
	}
	return item, nil
}

func (s *ItemService) ListItems(c *gin.Context) {
	items, err := s.uc.ListItems(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": toItemResponses(items)})
}

func (s *ItemService) SearchItems(c *gin.Context) {
	filter := biz.SearchFilter{
		Type:        c.Query("type"),
		Collection:  c.Query("collection"),
		Contributor: c.Query("contributor"),
		Search:      c.Query("search"),
	}

	items, err := s.uc.SearchItems(c.Request.Context(), filter)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": toItemResponses(items)})
}

// GetItem returns one item's details and records a view. The view is only
// recorded after the item resolves, and a recording failure never turns a
// successful lookup into an error.
func (s *ItemService) GetItem(c *gin.Context) {
	itemID, ok := s.itemID(c)
	if !ok {
		return
	}

	details, err := s.uc.GetItem(c.Request.Context(), itemID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.recordAccess(c, itemID, accessbiz.AccessTypeView)

	response.Success(c, toItemResponse(details))
}

func (s *ItemService) CreateItem(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := req.toItem(0, identity.UserID)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrItemInvalidInput, "invalid date, expected YYYY-MM-DD")
		return
	}

	if err := s.uc.CreateItem(c.Request.Context(), item); err != nil {
		s.handleError(c, err)
		return
	}

	response.Created(c, gin.H{"item_id": item.ID})
}

func (s *ItemService) UpdateItem(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	itemID, ok := s.itemID(c)
	if !ok {
		return
	}

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := req.toItem(itemID, identity.UserID)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrItemInvalidInput, "invalid date, expected YYYY-MM-DD")
		return
	}

	if err := s.uc.UpdateItem(c.Request.Context(), item); err != nil {
		s.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "item updated successfully", nil)
}

func (s *ItemService) DeleteItem(c *gin.Context) {
	itemID, ok := s.itemID(c)
	if !ok {
		return
	}

	if err := s.uc.DeleteItem(c.Request.Context(), itemID); err != nil {
		s.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "item deleted successfully", nil)
}

// Download presigns a GET URL for the item's stored file and records a
// download event. The URL is still returned if recording fails; the failure
// is only logged.
func (s *ItemService) Download(c *gin.Context) {
	itemID, ok := s.itemID(c)
	if !ok {
		return
	}

	url, err := s.uc.GetDownloadURL(c.Request.Context(), itemID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.recordAccess(c, itemID, accessbiz.AccessTypeDownload)

	response.Success(c, gin.H{"download_url": url})
}

func (s *ItemService) ListCollections(c *gin.Context) {
	collections, err := s.uc.ListCollections(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	resp := make([]*CollectionResponse, len(collections))
	for i, col := range collections {
		resp[i] = &CollectionResponse{
			CollectionID: col.ID,
			Name:         col.Name,
			Description:  col.Description,
		}
	}
	response.Success(c, gin.H{"collections": resp})
}

func (s *ItemService) ListItemTypes(c *gin.Context) {
	types, err := s.uc.ListItemTypes(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	resp := make([]*ItemTypeResponse, len(types))
	for i, it := range types {
		resp[i] = &ItemTypeResponse{ItemTypeID: it.ID, Name: it.Name}
	}
	response.Success(c, gin.H{"types": resp})
}

func (s *ItemService) itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "invalid item id")
		return 0, false
	}
	return id, true
}

func (s *ItemService) recordAccess(c *gin.Context, itemID int64, accessType accessbiz.AccessType) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return
	}

	err := s.recorder.Record(c.Request.Context(), itemID, identity, accessType, c.ClientIP())
	if err != nil {
		s.logger.Warn("failed to record item access",
			zap.Error(err),
			zap.Int64("item_id", itemID),
			zap.String("access_type", string(accessType)))
	}
}

func (s *ItemService) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, biz.ErrItemNotFound):
		response.ErrorWithCode(c, apperrors.ErrItemNotFound)
	case errors.Is(err, biz.ErrItemNoFile):
		response.ErrorWithCode(c, apperrors.ErrItemNoFile)
	default:
		s.logger.Error("catalog item error", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
	}
}

func toItemResponse(d *biz.ItemDetails) *ItemResponse {
	resp := &ItemResponse{
		ItemID:          d.ID,
		Title:           d.Title,
		Description:     d.Description,
		Location:        d.Location,
		FileKey:         d.FileKey,
		ItemTypeID:      d.ItemTypeID,
		CollectionID:    d.CollectionID,
		ContributorID:   d.ContributorID,
		TypeName:        d.TypeName,
		CollectionName:  d.CollectionName,
		ContributorName: d.ContributorName,
		AddedByName:     d.AddedByName,
	}
	if d.CreationDate != nil {
		v := d.CreationDate.Format(dateLayout)
		resp.CreationDate = &v
	}
	if d.AcquisitionDate != nil {
		v := d.AcquisitionDate.Format(dateLayout)
		resp.AcquisitionDate = &v
	}
	return resp
}

func toItemResponses(details []*biz.ItemDetails) []*ItemResponse {
	resp := make([]*ItemResponse, len(details))
	for i, d := range details {
		resp[i] = toItemResponse(d)
	}
	return resp
}

// RegisterRoutes wires the item routes. Mutating routes additionally require
// the administrator role.
func (s *ItemService) RegisterRoutes(r *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	items := r.Group("/items")
	{
		items.GET("", s.ListItems)
		items.GET("/search", s.SearchItems)
		items.GET("/meta/collections", s.ListCollections)
		items.GET("/meta/types", s.ListItemTypes)
		items.GET("/:id", s.GetItem)
		items.GET("/:id/download", s.Download)

		items.POST("", requireAdmin, s.CreateItem)
		items.PUT("/:id", requireAdmin, s.UpdateItem)
		items.DELETE("/:id", requireAdmin, s.DeleteItem)
	}
}
