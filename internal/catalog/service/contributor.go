package service

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aldersonarchive/archive-backend/internal/catalog/biz"
	apperrors "github.com/aldersonarchive/archive-backend/internal/pkg/errors"
	"github.com/aldersonarchive/archive-backend/internal/pkg/logger"
	"github.com/aldersonarchive/archive-backend/internal/pkg/response"
)

type ContributorService struct {
	uc     *biz.ContributorUseCase
	logger *logger.Logger
}

func NewContributorService(uc *biz.ContributorUseCase, log *logger.Logger) *ContributorService {
	return &ContributorService{
		uc:     uc,
		logger: log,
	}
}

type ContributorRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	ContactInfo string `json:"contact_info"`
	Affiliation string `json:"affiliation"`
	Expertise   string `json:"expertise"`
}

type ContributorResponse struct {
	ContributorID int64  `json:"contributor_id"`
	Name          string `json:"name"`
	ContactInfo   string `json:"contact_info"`
	Affiliation   string `json:"affiliation"`
	Expertise     string `json:"expertise"`
}

func (s *ContributorService) ListContributors(c *gin.Context) {
	contributors, err := s.uc.ListContributors(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"contributors": toContributorResponses(contributors)})
}

func (s *ContributorService) GetContributor(c *gin.Context) {
	id, ok := s.contributorID(c)
	if !ok {
		return
	}

	contributor, err := s.uc.GetContributor(c.Request.Context(), id)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, toContributorResponse(contributor))
}

func (s *ContributorService) CreateContributor(c *gin.Context) {
	var req ContributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	contributor := &biz.Contributor{
		Name:        req.Name,
		ContactInfo: req.ContactInfo,
		Affiliation: req.Affiliation,
		Expertise:   req.Expertise,
	}
	if err := s.uc.CreateContributor(c.Request.Context(), contributor); err != nil {
		s.handleError(c, err)
		return
	}

	response.Created(c, gin.H{"contributor_id": contributor.ID})
}

func (s *ContributorService) UpdateContributor(c *gin.Context) {
	id, ok := s.contributorID(c)
	if !ok {
		return
	}

	var req ContributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	contributor := &biz.Contributor{
		ID:          id,
		Name:        req.Name,
		ContactInfo: req.ContactInfo,
		Affiliation: req.Affiliation,
		Expertise:   req.Expertise,
	}
	if err := s.uc.UpdateContributor(c.Request.Context(), contributor); err != nil {
		s.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "contributor updated successfully", nil)
}

func (s *ContributorService) DeleteContributor(c *gin.Context) {
	id, ok := s.contributorID(c)
	if !ok {
		return
	}

	if err := s.uc.DeleteContributor(c.Request.Context(), id); err != nil {
		s.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "contributor deleted successfully", nil)
}

func (s *ContributorService) contributorID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "invalid contributor id")
		return 0, false
	}
	return id, true
}

func (s *ContributorService) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, biz.ErrContributorNotFound):
		response.ErrorWithCode(c, apperrors.ErrContributorNotFound)
	default:
		s.logger.Error("catalog contributor error", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
	}
}

func toContributorResponse(c *biz.Contributor) *ContributorResponse {
	return &ContributorResponse{
		ContributorID: c.ID,
		Name:          c.Name,
		ContactInfo:   c.ContactInfo,
		Affiliation:   c.Affiliation,
		Expertise:     c.Expertise,
	}
}

func toContributorResponses(contributors []*biz.Contributor) []*ContributorResponse {
	resp := make([]*ContributorResponse, len(contributors))
	for i, c := range contributors {
		resp[i] = toContributorResponse(c)
	}
	return resp
}

func (s *ContributorService) RegisterRoutes(r *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	contributors := r.Group("/contributors")
	{
		contributors.GET("", s.ListContributors)
		contributors.GET("/:id", s.GetContributor)

		contributors.POST("", requireAdmin, s.CreateContributor)
		contributors.PUT("/:id", requireAdmin, s.UpdateContributor)
		contributors.DELETE("/:id", requireAdmin, s.DeleteContributor)
	}
}
