package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aldersonarchive/archive-backend/internal/auth"
	userbiz "github.com/aldersonarchive/archive-backend/internal/user/biz"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserAlreadyExists  = errors.New("username or email already exists")
)

// UserRepo is the slice of the user repository the auth flow needs
type UserRepo interface {
	Create(ctx context.Context, user *userbiz.User) error
	GetByUsername(ctx context.Context, username string) (*userbiz.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// LoginResult carries the issued token and the authenticated user
type LoginResult struct {
	Token string
	User  *userbiz.User
}

// AuthUseCase implements registration and login
type AuthUseCase struct {
	userRepo   UserRepo
	jwtManager *auth.JWTManager
}

func NewAuthUseCase(userRepo UserRepo, jwtManager *auth.JWTManager) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Register creates a new ordinary user with a bcrypt-hashed password
func (uc *AuthUseCase) Register(ctx context.Context, username, email, password string) (*userbiz.User, error) {
	exists, err := uc.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &userbiz.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         auth.RoleUser,
		CreatedAt:    time.Now(),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a signed token
func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userbiz.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := uc.jwtManager.GenerateToken(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}
