package biz

import (
	"context"
	"errors"
	"time"

	"github.com/aldersonarchive/archive-backend/internal/auth"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidRole      = errors.New("invalid role")
	ErrSelfDeletion     = errors.New("cannot delete your own account")
	ErrUserAlreadyExist = errors.New("username or email already exists")
)

// User represents the domain model
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// UserRepo defines the interface for user data operations
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context) ([]*User, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	Delete(ctx context.Context, id int64) error
}

// UserUseCase contains business logic for user administration
type UserUseCase struct {
	repo UserRepo
}

func NewUserUseCase(repo UserRepo) *UserUseCase {
	return &UserUseCase{repo: repo}
}

func (uc *UserUseCase) GetUser(ctx context.Context, id int64) (*User, error) {
	return uc.repo.GetByID(ctx, id)
}

// ListUsers returns all users, newest first
func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*User, error) {
	return uc.repo.List(ctx)
}

// UpdateRole changes a user's role. Only the known roles are accepted.
func (uc *UserUseCase) UpdateRole(ctx context.Context, id int64, role string) error {
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return ErrInvalidRole
	}
	return uc.repo.UpdateRole(ctx, id, role)
}

// DeleteUser removes a user. Administrators may not delete themselves.
func (uc *UserUseCase) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDeletion
	}
	return uc.repo.Delete(ctx, id)
}
