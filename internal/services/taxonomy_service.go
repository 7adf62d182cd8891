package services

import (
	"context"
	"fmt"

	"taxonomy-service/internal/models"
	"taxonomy-service/internal/repository"
	"taxonomy-service/internal/taxonomy"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TaxonomyService covers the admin operations around the import: listing,
// export, manual creation and visibility toggles.
type TaxonomyService struct {
	repo   repository.TaxonomyRepositoryInterface
	locale string
	logger *logrus.Entry
}

// NewTaxonomyService creates the admin service for locale
func NewTaxonomyService(repo repository.TaxonomyRepositoryInterface, locale string, logger *logrus.Logger) *TaxonomyService {
	if locale == "" {
		locale = models.DefaultLocale
	}
	return &TaxonomyService{
		repo:   repo,
		locale: locale,
		logger: logger.WithField("component", "services.taxonomy"),
	}
}

// Locale returns the canonical locale used for names
func (s *TaxonomyService) Locale() string {
	return s.locale
}

// List returns the taxonomy tree in sort order
func (s *TaxonomyService) List(ctx context.Context, includeInactive bool) ([]models.CategoryNode, error) {
	return s.repo.ListTaxonomy(ctx, s.locale, includeInactive)
}

// ExportRows renders the active taxonomy as a list-layout grid that the
// importer reads back unchanged. Categories without subcategories get a row
// with an empty second cell.
func (s *TaxonomyService) ExportRows(ctx context.Context) ([][]string, error) {
	tree, err := s.repo.ListTaxonomy(ctx, s.locale, false)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"category_" + s.locale, "subcategory_" + s.locale}}
	for _, category := range tree {
		if len(category.Subcategories) == 0 {
			rows = append(rows, []string{category.Name, ""})
			continue
		}
		for _, sub := range category.Subcategories {
			rows = append(rows, []string{category.Name, sub.Name})
		}
	}
	return rows, nil
}

// CreateCategory creates a category with a unique slug. Sort order defaults
// to one past the current maximum.
func (s *TaxonomyService) CreateCategory(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	name := taxonomy.NormalizeWhitespace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	slugBase := taxonomy.Slugify(name)
	if req.Slug != nil && taxonomy.Slugify(*req.Slug) != "" {
		slugBase = taxonomy.Slugify(*req.Slug)
	}

	var category *models.Category
	err := s.repo.WithTransaction(ctx, func(txRepo repository.TaxonomyRepositoryInterface) error {
		slug, err := NewSlugAssigner(txRepo.CategorySlugExists).Assign(ctx, slugBase, nil)
		if err != nil {
			return err
		}
		sortOrder, err := nextSortOrder(req.SortOrder, func() (int, error) {
			return txRepo.MaxCategorySortOrder(ctx)
		})
		if err != nil {
			return err
		}

		category = &models.Category{
			Slug:      slug,
			SortOrder: sortOrder,
			IsActive:  req.IsActive == nil || *req.IsActive,
			Translations: []models.CategoryTranslation{
				{Locale: s.locale, Name: name},
			},
		}
		return txRepo.CreateCategory(ctx, category)
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"category_id": category.ID, "name": name}).Info("Category created")
	return category, nil
}

// CreateSubcategory creates a subcategory under an existing category. The
// slug is derived from both names, as import does.
func (s *TaxonomyService) CreateSubcategory(ctx context.Context, req models.CreateSubcategoryRequest) (*models.Subcategory, error) {
	name := taxonomy.NormalizeWhitespace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	var subcategory *models.Subcategory
	err := s.repo.WithTransaction(ctx, func(txRepo repository.TaxonomyRepositoryInterface) error {
		parent, err := txRepo.GetCategory(ctx, req.CategoryID)
		if err != nil {
			return err
		}

		slugBase := taxonomy.Slugify(parentName(parent, s.locale) + "-" + name)
		if req.Slug != nil && taxonomy.Slugify(*req.Slug) != "" {
			slugBase = taxonomy.Slugify(*req.Slug)
		}
		slug, err := NewSlugAssigner(txRepo.SubcategorySlugExists).Assign(ctx, slugBase, nil)
		if err != nil {
			return err
		}
		sortOrder, err := nextSortOrder(req.SortOrder, func() (int, error) {
			return txRepo.MaxSubcategorySortOrder(ctx, parent.ID)
		})
		if err != nil {
			return err
		}

		subcategory = &models.Subcategory{
			CategoryID: parent.ID,
			Slug:       slug,
			SortOrder:  sortOrder,
			IsActive:   req.IsActive == nil || *req.IsActive,
			Translations: []models.SubcategoryTranslation{
				{Locale: s.locale, Name: name},
			},
		}
		return txRepo.CreateSubcategory(ctx, subcategory)
	})
	if err != nil {
		return nil, fmt.Errorf("create subcategory: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"subcategory_id": subcategory.ID,
		"category_id":    subcategory.CategoryID,
		"name":           name,
	}).Info("Subcategory created")
	return subcategory, nil
}

// SetCategoryActive shows or hides a category. Nothing is ever deleted.
func (s *TaxonomyService) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) (*models.Category, error) {
	if err := s.repo.SetCategoryActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.repo.GetCategory(ctx, id)
}

// SetSubcategoryActive shows or hides a subcategory. Nothing is ever deleted.
func (s *TaxonomyService) SetSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) (*models.Subcategory, error) {
	if err := s.repo.SetSubcategoryActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.repo.GetSubcategory(ctx, id)
}

func nextSortOrder(requested *int, currentMax func() (int, error)) (int, error) {
	if requested != nil {
		return *requested, nil
	}
	highest, err := currentMax()
	if err != nil {
		return 0, err
	}
	return highest + 1, nil
}

func parentName(parent *models.Category, locale string) string {
	if name := parent.NameIn(locale); name != "" {
		return name
	}
	if len(parent.Translations) > 0 {
		return parent.Translations[0].Name
	}
	return ""
}
