package services

import (
	"context"
	"errors"

	"taxonomy-service/internal/models"
	"taxonomy-service/internal/repository"

	"github.com/google/uuid"
)

// lookup describes a parsed node being matched against the store
type lookup struct {
	Name     string
	Slug     string
	Locale   string
	ParentID uuid.UUID
}

// matcher returns the stored record for q, or nil when it has no opinion
type matcher[T any] func(ctx context.Context, repo repository.TaxonomyRepositoryInterface, q lookup) (*T, error)

// firstMatch tries matchers in order and returns the first hit
func firstMatch[T any](ctx context.Context, repo repository.TaxonomyRepositoryInterface, matchers []matcher[T], q lookup) (*T, error) {
	for _, match := range matchers {
		found, err := match(ctx, repo, q)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, nil
}

func missing[T any](found *T, err error) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return found, err
}

var categoryMatchers = []matcher[models.Category]{
	matchCategoryBySlug,
	matchCategoryByName,
}

var subcategoryMatchers = []matcher[models.Subcategory]{
	matchSubcategoryBySlug,
	matchSubcategoryByName,
}

func matchCategoryBySlug(ctx context.Context, repo repository.TaxonomyRepositoryInterface, q lookup) (*models.Category, error) {
	if q.Slug == "" {
		return nil, nil
	}
	found, err := repo.FindCategoryBySlug(ctx, q.Slug)
	return missing(found, err)
}

func matchCategoryByName(ctx context.Context, repo repository.TaxonomyRepositoryInterface, q lookup) (*models.Category, error) {
	found, err := repo.FindCategoryByName(ctx, q.Locale, q.Name)
	return missing(found, err)
}

// matchSubcategoryBySlug ignores a slug owned by a subcategory of another
// category so that a match never moves a node between parents.
func matchSubcategoryBySlug(ctx context.Context, repo repository.TaxonomyRepositoryInterface, q lookup) (*models.Subcategory, error) {
	if q.Slug == "" {
		return nil, nil
	}
	found, err := repo.FindSubcategoryBySlug(ctx, q.Slug)
	if found, err = missing(found, err); err != nil || found == nil {
		return nil, err
	}
	if found.CategoryID != q.ParentID {
		return nil, nil
	}
	return found, nil
}

func matchSubcategoryByName(ctx context.Context, repo repository.TaxonomyRepositoryInterface, q lookup) (*models.Subcategory, error) {
	found, err := repo.FindSubcategoryByName(ctx, q.ParentID, q.Locale, q.Name)
	return missing(found, err)
}
