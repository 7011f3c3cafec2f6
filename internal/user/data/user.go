package data

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aldersonarchive/archive-backend/internal/user/biz"
)

// UserPO represents the database model
type UserPO struct {
	ID           int64     `gorm:"column:user_id;primaryKey;autoIncrement"`
	Username     string    `gorm:"size:100;not null;uniqueIndex"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	Role         string    `gorm:"size:20;not null;default:user"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (UserPO) TableName() string {
	return "users"
}

// UserRepo implements biz.UserRepo
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) biz.UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *biz.User) error {
	po := &UserPO{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return err
	}

	user.ID = po.ID
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*biz.User, error) {
	var po UserPO
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrUserNotFound
		}
		return nil, err
	}
	return toUser(&po), nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*biz.User, error) {
	var po UserPO
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrUserNotFound
		}
		return nil, err
	}
	return toUser(&po), nil
}

func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserPO{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*biz.User, error) {
	var pos []UserPO
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&pos).Error; err != nil {
		return nil, err
	}

	users := make([]*biz.User, len(pos))
	for i := range pos {
		users[i] = toUser(&pos[i])
	}
	return users, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	res := r.db.WithContext(ctx).Model(&UserPO{}).
		Where("user_id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return biz.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", id).Delete(&UserPO{}).Error
}

func toUser(po *UserPO) *biz.User {
	return &biz.User{
		ID:           po.ID,
		Username:     po.Username,
		Email:        po.Email,
		PasswordHash: po.PasswordHash,
		Role:         po.Role,
		CreatedAt:    po.CreatedAt,
	}
}
