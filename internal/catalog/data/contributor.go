package data

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aldersonarchive/archive-backend/internal/catalog/biz"
)

type ContributorPO struct {
	ID          int64  `gorm:"column:contributor_id;primaryKey;autoIncrement"`
	Name        string `gorm:"size:255;not null;index"`
	ContactInfo string `gorm:"column:contact_info;size:255"`
	Affiliation string `gorm:"size:255"`
	Expertise   string `gorm:"size:255"`
}

func (ContributorPO) TableName() string {
	return "contributors"
}

type ContributorRepo struct {
	db *gorm.DB
}

func NewContributorRepo(db *gorm.DB) biz.ContributorRepo {
	return &ContributorRepo{db: db}
}

func (r *ContributorRepo) Create(ctx context.Context, contributor *biz.Contributor) error {
	po := toContributorPO(contributor)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return err
	}
	contributor.ID = po.ID
	return nil
}

func (r *ContributorRepo) GetByID(ctx context.Context, id int64) (*biz.Contributor, error) {
	var po ContributorPO
	err := r.db.WithContext(ctx).Take(&po, "contributor_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrContributorNotFound
		}
		return nil, err
	}
	return toContributor(&po), nil
}

func (r *ContributorRepo) List(ctx context.Context) ([]*biz.Contributor, error) {
	var pos []ContributorPO
	if err := r.db.WithContext(ctx).Order("name").Find(&pos).Error; err != nil {
		return nil, err
	}

	contributors := make([]*biz.Contributor, len(pos))
	for i := range pos {
		contributors[i] = toContributor(&pos[i])
	}
	return contributors, nil
}

func (r *ContributorRepo) Update(ctx context.Context, contributor *biz.Contributor) error {
	result := r.db.WithContext(ctx).
		Model(&ContributorPO{}).
		Where("contributor_id = ?", contributor.ID).
		Updates(map[string]interface{}{
			"name":         contributor.Name,
			"contact_info": contributor.ContactInfo,
			"affiliation":  contributor.Affiliation,
			"expertise":    contributor.Expertise,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return biz.ErrContributorNotFound
	}
	return nil
}

func (r *ContributorRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&ContributorPO{}, "contributor_id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return biz.ErrContributorNotFound
	}
	return nil
}

func toContributorPO(c *biz.Contributor) *ContributorPO {
	return &ContributorPO{
		ID:          c.ID,
		Name:        c.Name,
		ContactInfo: c.ContactInfo,
		Affiliation: c.Affiliation,
		Expertise:   c.Expertise,
	}
}

func toContributor(po *ContributorPO) *biz.Contributor {
	return &biz.Contributor{
		ID:          po.ID,
		Name:        po.Name,
		ContactInfo: po.ContactInfo,
		Affiliation: po.Affiliation,
		Expertise:   po.Expertise,
	}
}
