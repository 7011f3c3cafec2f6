package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aldersonarchive/archive-backend/internal/auth"
	apperrors "github.com/aldersonarchive/archive-backend/internal/pkg/errors"
	"github.com/aldersonarchive/archive-backend/internal/pkg/logger"
	"github.com/aldersonarchive/archive-backend/internal/pkg/response"
)

const identityKey = "identity"

// JWTAuth verifies the bearer token and injects the caller's identity into
// the gin context. Requests without a valid token get 401.
func JWTAuth(jwtManager *auth.JWTManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithCode(c, apperrors.ErrUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		token, err := auth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		identity, err := jwtManager.VerifyToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			response.ErrorWithCode(c, apperrors.ErrAuthInvalidToken)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAdmin rejects callers whose verified role is not administrator.
// Must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			response.ErrorWithCode(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !identity.IsAdmin() {
			response.ErrorWithCode(c, apperrors.ErrForbidden, "administrator role required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetIdentity returns the verified identity injected by JWTAuth
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

// CORS handles cross-origin requests
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
