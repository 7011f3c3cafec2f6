package service

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aldersonarchive/archive-backend/internal/auth/biz"
	apperrors "github.com/aldersonarchive/archive-backend/internal/pkg/errors"
	"github.com/aldersonarchive/archive-backend/internal/pkg/logger"
	"github.com/aldersonarchive/archive-backend/internal/pkg/response"
)

type AuthService struct {
	authUC *biz.AuthUseCase
	logger *logger.Logger
}

func NewAuthService(authUC *biz.AuthUseCase, log *logger.Logger) *AuthService {
	return &AuthService{
		authUC: authUC,
		logger: log,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

func (s *AuthService) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := s.authUC.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, biz.ErrUserAlreadyExists) {
			response.ErrorWithCode(c, apperrors.ErrAuthUserExists)
			return
		}
		s.logger.Error("failed to register user", zap.Error(err), zap.String("username", req.Username))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
		return
	}

	response.Created(c, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"message":  "user registered successfully",
	})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.authUC.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, biz.ErrInvalidCredentials) {
			s.logger.Warn("login failed",
				zap.String("username", req.Username),
				zap.String("ip", c.ClientIP()))
			response.ErrorWithCode(c, apperrors.ErrAuthInvalidCredentials)
			return
		}
		s.logger.Error("login error", zap.Error(err), zap.String("username", req.Username))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
		return
	}

	response.Success(c, gin.H{
		"token": result.Token,
		"user": gin.H{
			"user_id":  result.User.ID,
			"username": result.User.Username,
			"email":    result.User.Email,
			"role":     result.User.Role,
		},
	})
}

// RegisterRoutes wires the public auth routes. Rate limiters are passed in
// so tests can omit them.
func (s *AuthService) RegisterRoutes(r *gin.RouterGroup, registerLimiter, loginLimiter gin.HandlerFunc) {
	authGroup := r.Group("/auth")
	{
		if registerLimiter != nil {
			authGroup.POST("/register", registerLimiter, s.Register)
		} else {
			authGroup.POST("/register", s.Register)
		}
		if loginLimiter != nil {
			authGroup.POST("/login", loginLimiter, s.Login)
		} else {
			authGroup.POST("/login", s.Login)
		}
	}
}
