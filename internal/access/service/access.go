package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aldersonarchive/archive-backend/internal/access/biz"
	"github.com/aldersonarchive/archive-backend/internal/auth/middleware"
	apperrors "github.com/aldersonarchive/archive-backend/internal/pkg/errors"
	"github.com/aldersonarchive/archive-backend/internal/pkg/logger"
	"github.com/aldersonarchive/archive-backend/internal/pkg/response"
)

type AccessService struct {
	uc     *biz.AccessUseCase
	logger *logger.Logger
}

func NewAccessService(uc *biz.AccessUseCase, log *logger.Logger) *AccessService {
	return &AccessService{
		uc:     uc,
		logger: log,
	}
}

type AccessEventResponse struct {
	AccessID     int64   `json:"access_id"`
	AccessDate   string  `json:"access_date"`
	AccessType   string  `json:"access_type"`
	AccessorName string  `json:"accessor_name"`
	IPAddress    string  `json:"ip_address,omitempty"`
	ItemID       *int64  `json:"item_id"`
	ItemTitle    *string `json:"item_title"`
	Username     *string `json:"username"`
	Email        *string `json:"email"`
}

type AccessStatisticResponse struct {
	ItemID        int64   `json:"item_id"`
	ItemTitle     *string `json:"item_title"`
	TotalAccesses int64   `json:"total_accesses"`
	UniqueUsers   int64   `json:"unique_users"`
	ViewCount     int64   `json:"view_count"`
	DownloadCount int64   `json:"download_count"`
	LastAccessed  string  `json:"last_accessed"`
}

// ListRecent returns the most recent events across all items (admin only)
func (s *AccessService) ListRecent(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	views, err := s.uc.ListRecent(c.Request.Context(), identity.Role, limit)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, gin.H{"logs": toEventResponses(views)})
}

// ListForItem returns all events for one item (any authenticated subject)
func (s *AccessService) ListForItem(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "invalid item id")
		return
	}

	views, err := s.uc.ListForItem(c.Request.Context(), identity.Role, itemID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, gin.H{"logs": toEventResponses(views)})
}

// Statistics returns the per-item usage aggregates (admin only)
func (s *AccessService) Statistics(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	stats, err := s.uc.Statistics(c.Request.Context(), identity.Role)
	if err != nil {
		s.handleError(c, err)
		return
	}

	resp := make([]*AccessStatisticResponse, len(stats))
	for i, stat := range stats {
		resp[i] = &AccessStatisticResponse{
			ItemID:        stat.ItemID,
			ItemTitle:     stat.ItemTitle,
			TotalAccesses: stat.TotalAccesses,
			UniqueUsers:   stat.UniqueUsers,
			ViewCount:     stat.ViewCount,
			DownloadCount: stat.DownloadCount,
			LastAccessed:  stat.LastAccessed.Format(time.RFC3339),
		}
	}

	response.Success(c, gin.H{"statistics": resp})
}

type LogDownloadRequest struct {
	ItemID int64 `json:"itemId" binding:"required"`
}

// LogDownload records a download event. Here the record IS the requested
// action, so a write failure is reported to the caller.
func (s *AccessService) LogDownload(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	var req LogDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := s.uc.Record(c.Request.Context(), req.ItemID, identity, biz.AccessTypeDownload, c.ClientIP())
	if err != nil {
		s.logger.Error("failed to log download",
			zap.Error(err),
			zap.Int64("item_id", req.ItemID),
			zap.Int64("user_id", identity.UserID))
		s.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "download logged successfully", nil)
}

func (s *AccessService) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, biz.ErrForbidden):
		response.ErrorWithCode(c, apperrors.ErrAccessForbidden)
	case errors.Is(err, biz.ErrUnauthenticated):
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
	case errors.Is(err, biz.ErrInvalidAccessType):
		response.ErrorWithCode(c, apperrors.ErrAccessInvalidType)
	case errors.Is(err, biz.ErrWriteFailed):
		response.ErrorWithCode(c, apperrors.ErrAccessWriteFailed)
	case errors.Is(err, biz.ErrReadFailed):
		s.logger.Error("access log read failed", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrAccessReadFailed)
	default:
		s.logger.Error("unexpected access log error", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
	}
}

func toEventResponses(views []*biz.AccessEventView) []*AccessEventResponse {
	resp := make([]*AccessEventResponse, len(views))
	for i, v := range views {
		resp[i] = &AccessEventResponse{
			AccessID:     v.AccessID,
			AccessDate:   v.AccessDate.Format(time.RFC3339),
			AccessType:   string(v.AccessType),
			AccessorName: v.AccessorName,
			IPAddress:    v.IPAddress,
			ItemID:       v.ItemID,
			ItemTitle:    v.ItemTitle,
			Username:     v.Username,
			Email:        v.Email,
		}
	}
	return resp
}

// RegisterRoutes wires the access log routes. Role checks happen inside the
// use case against the caller's verified role, so only authentication is
// required at the router level.
func (s *AccessService) RegisterRoutes(r *gin.RouterGroup) {
	access := r.Group("/access")
	{
		access.GET("", s.ListRecent)
		access.GET("/item/:id", s.ListForItem)
		access.GET("/statistics", s.Statistics)
		access.POST("/log-download", s.LogDownload)
	}
}
