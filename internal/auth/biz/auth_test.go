package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aldersonarchive/archive-backend/internal/auth"
	userbiz "github.com/aldersonarchive/archive-backend/internal/user/biz"
)

type memoryUserRepo struct {
	users  map[string]*userbiz.User
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*userbiz.User), nextID: 1}
}

func (r *memoryUserRepo) Create(_ context.Context, user *userbiz.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.Username] = user
	return nil
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*userbiz.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, userbiz.ErrUserNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func newTestUseCase() (*AuthUseCase, *memoryUserRepo) {
	repo := newMemoryUserRepo()
	uc := NewAuthUseCase(repo, auth.NewJWTManager("test-secret", ""))
	return uc, repo
}

func TestRegister(t *testing.T) {
	uc, repo := newTestUseCase()

	user, err := uc.Register(context.Background(), "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	assert.Equal(t, auth.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))

	_, ok := repo.users["alice"]
	assert.True(t, ok)
}

func TestRegisterDuplicate(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.Register(context.Background(), "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), "alice", "other@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.Register(context.Background(), "bob", "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)

	result, err := uc.Login(context.Background(), "bob", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	// token must carry the verified identity
	identity, err := auth.NewJWTManager("test-secret", "").VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "bob", identity.Username)
	assert.Equal(t, auth.RoleUser, identity.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.Register(context.Background(), "bob", "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), "bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
