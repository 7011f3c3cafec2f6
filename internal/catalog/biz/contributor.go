package biz

import (
	"context"
	"errors"
)

var ErrContributorNotFound = errors.New("contributor not found")

type Contributor struct {
	ID          int64
	Name        string
	ContactInfo string
	Affiliation string
	Expertise   string
}

type ContributorRepo interface {
	Create(ctx context.Context, contributor *Contributor) error
	GetByID(ctx context.Context, id int64) (*Contributor, error)
	List(ctx context.Context) ([]*Contributor, error)
	Update(ctx context.Context, contributor *Contributor) error
	Delete(ctx context.Context, id int64) error
}

type ContributorUseCase struct {
	repo ContributorRepo
}

func NewContributorUseCase(repo ContributorRepo) *ContributorUseCase {
	return &ContributorUseCase{repo: repo}
}

func (uc *ContributorUseCase) CreateContributor(ctx context.Context, contributor *Contributor) error {
	return uc.repo.Create(ctx, contributor)
}

func (uc *ContributorUseCase) GetContributor(ctx context.Context, id int64) (*Contributor, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *ContributorUseCase) ListContributors(ctx context.Context) ([]*Contributor, error) {
	return uc.repo.List(ctx)
}

func (uc *ContributorUseCase) UpdateContributor(ctx context.Context, contributor *Contributor) error {
	if _, err := uc.repo.GetByID(ctx, contributor.ID); err != nil {
		return err
	}
	return uc.repo.Update(ctx, contributor)
}

func (uc *ContributorUseCase) DeleteContributor(ctx context.Context, id int64) error {
	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}
