package service

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aldersonarchive/archive-backend/internal/auth/middleware"
	apperrors "github.com/aldersonarchive/archive-backend/internal/pkg/errors"
	"github.com/aldersonarchive/archive-backend/internal/pkg/logger"
	"github.com/aldersonarchive/archive-backend/internal/pkg/response"
	"github.com/aldersonarchive/archive-backend/internal/user/biz"
)

type UserService struct {
	uc     *biz.UserUseCase
	logger *logger.Logger
}

func NewUserService(uc *biz.UserUseCase, log *logger.Logger) *UserService {
	return &UserService{
		uc:     uc,
		logger: log,
	}
}

type UserResponse struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// ListUsers returns all users, newest first (admin only)
func (s *UserService) ListUsers(c *gin.Context) {
	users, err := s.uc.ListUsers(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
		return
	}

	resp := make([]*UserResponse, len(users))
	for i, user := range users {
		resp[i] = toResponse(user)
	}

	response.Success(c, gin.H{"users": resp})
}

// GetProfile returns the calling user's own record
func (s *UserService) GetProfile(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := s.uc.GetUser(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, biz.ErrUserNotFound) {
			response.ErrorWithCode(c, apperrors.ErrUserNotFound)
			return
		}
		s.logger.Error("failed to load profile", zap.Error(err), zap.Int64("user_id", identity.UserID))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
		return
	}

	response.Success(c, toResponse(user))
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole changes a user's role (admin only)
func (s *UserService) UpdateRole(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "invalid user id")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := s.uc.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		switch {
		case errors.Is(err, biz.ErrInvalidRole):
			response.ErrorWithCode(c, apperrors.ErrUserInvalidInput, "invalid role")
		case errors.Is(err, biz.ErrUserNotFound):
			response.ErrorWithCode(c, apperrors.ErrUserNotFound)
		default:
			s.logger.Error("failed to update user role", zap.Error(err), zap.Int64("user_id", id))
			response.ErrorWithCode(c, apperrors.ErrInternalServer)
		}
		return
	}

	response.SuccessWithMessage(c, "user role updated successfully", nil)
}

// DeleteUser removes a user (admin only, never the caller itself)
func (s *UserService) DeleteUser(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, "invalid user id")
		return
	}

	if err := s.uc.DeleteUser(c.Request.Context(), identity.UserID, id); err != nil {
		if errors.Is(err, biz.ErrSelfDeletion) {
			response.ErrorWithCode(c, apperrors.ErrUserInvalidInput, "cannot delete your own account")
			return
		}
		s.logger.Error("failed to delete user", zap.Error(err), zap.Int64("user_id", id))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
		return
	}

	response.SuccessWithMessage(c, "user deleted successfully", nil)
}

func toResponse(user *biz.User) *UserResponse {
	return &UserResponse{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// RegisterRoutes wires user routes. Admin-only routes carry RequireAdmin.
func (s *UserService) RegisterRoutes(r *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	users := r.Group("/users")
	{
		users.GET("/me", s.GetProfile)
		users.GET("", requireAdmin, s.ListUsers)
		users.PUT("/:id/role", requireAdmin, s.UpdateRole)
		users.DELETE("/:id", requireAdmin, s.DeleteUser)
	}
}
