package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taxonomy-service/internal/models"
	"taxonomy-service/internal/repository"
	"taxonomy-service/internal/taxonomy"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ImportService reconciles parsed taxonomy trees against the store
type ImportService struct {
	repo   repository.TaxonomyRepositoryInterface
	locale string
	gate   *importGate
	logger *logrus.Entry
}

// NewImportService creates an import service writing translations for locale.
// lockWait bounds how long an import waits for a running one.
func NewImportService(repo repository.TaxonomyRepositoryInterface, locale string, lockWait time.Duration, logger *logrus.Logger) *ImportService {
	if locale == "" {
		locale = models.DefaultLocale
	}
	return &ImportService{
		repo:   repo,
		locale: locale,
		gate:   newImportGate(lockWait),
		logger: logger.WithField("component", "services.import"),
	}
}

// Import runs the reconciler for mode. Preview never touches the store. Parse
// errors return ErrParseFailed together with a response carrying them. Store
// errors roll back the whole import.
func (s *ImportService) Import(ctx context.Context, parsed taxonomy.ParseResult, mode Mode) (*models.ImportResponse, error) {
	report := NewReportBuilder(parsed)

	if !mode.Mutates() {
		return report.Response(parsed, ModePreview), nil
	}
	if parsed.HasErrors() {
		return report.Response(parsed, mode), ErrParseFailed
	}

	if err := s.gate.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.gate.release()

	started := time.Now()
	err := s.repo.WithTransaction(ctx, func(txRepo repository.TaxonomyRepositoryInterface) error {
		report = NewReportBuilder(parsed)
		return newReconcileRun(txRepo, s.locale, report).apply(ctx, parsed.Categories, mode)
	})
	if err != nil {
		if errors.Is(err, repository.ErrLockTimeout) {
			return nil, ErrImportInProgress
		}
		s.logger.WithError(err).WithField("mode", mode).Error("Taxonomy import rolled back")
		return nil, fmt.Errorf("reconcile taxonomy: %w", err)
	}

	result := report.Response(parsed, mode)
	s.logger.WithFields(logrus.Fields{
		"mode":                   mode,
		"duration_ms":            time.Since(started).Milliseconds(),
		"created_categories":     result.Report.Created.Categories,
		"created_subcategories":  result.Report.Created.Subcategories,
		"updated_categories":     result.Report.Updated.Categories,
		"updated_subcategories":  result.Report.Updated.Subcategories,
		"deactivated_categories": result.Report.Deactivated.Categories,
	}).Info("Taxonomy import committed")
	return result, nil
}

// reconcileRun is the state of one reconciliation inside a transaction
type reconcileRun struct {
	repo             repository.TaxonomyRepositoryInterface
	locale           string
	report           *ReportBuilder
	categorySlugs    *SlugAssigner
	subcategorySlugs *SlugAssigner
	categoryIDs      *idSet
	subcategoryIDs   *idSet
}

func newReconcileRun(repo repository.TaxonomyRepositoryInterface, locale string, report *ReportBuilder) *reconcileRun {
	return &reconcileRun{
		repo:             repo,
		locale:           locale,
		report:           report,
		categorySlugs:    NewSlugAssigner(repo.CategorySlugExists),
		subcategorySlugs: NewSlugAssigner(repo.SubcategorySlugExists),
		categoryIDs:      newIDSet(),
		subcategoryIDs:   newIDSet(),
	}
}

func (r *reconcileRun) apply(ctx context.Context, categories []taxonomy.ParsedCategory, mode Mode) error {
	for _, parsed := range categories {
		name := taxonomy.NormalizeWhitespace(parsed.Name)
		if name == "" {
			r.report.Skipped(KindCategory)
			continue
		}

		categoryID, err := r.reconcileCategory(ctx, name, parsed.SortOrder)
		if err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}

		for _, sub := range parsed.Subcategories {
			subName := taxonomy.NormalizeWhitespace(sub.Name)
			if subName == "" {
				r.report.Skipped(KindSubcategory)
				continue
			}
			if err := r.reconcileSubcategory(ctx, categoryID, name, subName, sub.SortOrder); err != nil {
				return fmt.Errorf("subcategory %q of %q: %w", subName, name, err)
			}
		}
	}

	if mode == ModeSync {
		return r.sync(ctx)
	}
	return nil
}

func (r *reconcileRun) reconcileCategory(ctx context.Context, name string, sortOrder int) (uuid.UUID, error) {
	slugBase := taxonomy.Slugify(name)
	existing, err := firstMatch(ctx, r.repo, categoryMatchers, lookup{Name: name, Slug: slugBase, Locale: r.locale})
	if err != nil {
		return uuid.Nil, err
	}

	if existing != nil {
		var slug *string
		if existing.Slug == nil {
			if slug, err = r.categorySlugs.Assign(ctx, slugBase, &existing.ID); err != nil {
				return uuid.Nil, err
			}
		} else {
			r.categorySlugs.Claim(*existing.Slug)
		}
		if err := r.repo.UpdateCategoryForImport(ctx, existing.ID, sortOrder, slug); err != nil {
			return uuid.Nil, err
		}
		if err := r.repo.UpsertCategoryTranslation(ctx, existing.ID, r.locale, name); err != nil {
			return uuid.Nil, err
		}
		r.report.Updated(KindCategory)
		r.categoryIDs.add(existing.ID)
		return existing.ID, nil
	}

	slug, err := r.categorySlugs.Assign(ctx, slugBase, nil)
	if err != nil {
		return uuid.Nil, err
	}
	category := &models.Category{
		Slug:      slug,
		SortOrder: sortOrder,
		IsActive:  true,
		Translations: []models.CategoryTranslation{
			{Locale: r.locale, Name: name},
		},
	}
	if err := r.repo.CreateCategory(ctx, category); err != nil {
		return uuid.Nil, err
	}
	r.report.Created(KindCategory)
	r.categoryIDs.add(category.ID)
	return category.ID, nil
}

func (r *reconcileRun) reconcileSubcategory(ctx context.Context, categoryID uuid.UUID, categoryName, name string, sortOrder int) error {
	slugBase := taxonomy.Slugify(categoryName + "-" + name)
	q := lookup{Name: name, Slug: slugBase, Locale: r.locale, ParentID: categoryID}
	existing, err := firstMatch(ctx, r.repo, subcategoryMatchers, q)
	if err != nil {
		return err
	}

	if existing != nil {
		var slug *string
		if existing.Slug == nil {
			if slug, err = r.subcategorySlugs.Assign(ctx, slugBase, &existing.ID); err != nil {
				return err
			}
		} else {
			r.subcategorySlugs.Claim(*existing.Slug)
		}
		if err := r.repo.UpdateSubcategoryForImport(ctx, existing.ID, sortOrder, slug); err != nil {
			return err
		}
		if err := r.repo.UpsertSubcategoryTranslation(ctx, existing.ID, r.locale, name); err != nil {
			return err
		}
		r.report.Updated(KindSubcategory)
		r.subcategoryIDs.add(existing.ID)
		return nil
	}

	slug, err := r.subcategorySlugs.Assign(ctx, slugBase, nil)
	if err != nil {
		return err
	}
	subcategory := &models.Subcategory{
		CategoryID: categoryID,
		Slug:       slug,
		SortOrder:  sortOrder,
		IsActive:   true,
		Translations: []models.SubcategoryTranslation{
			{Locale: r.locale, Name: name},
		},
	}
	if err := r.repo.CreateSubcategory(ctx, subcategory); err != nil {
		return err
	}
	r.report.Created(KindSubcategory)
	r.subcategoryIDs.add(subcategory.ID)
	return nil
}

// sync makes the file the complete source of truth: everything not imported
// in this run is deactivated, everything imported is active.
func (r *reconcileRun) sync(ctx context.Context) error {
	categories := r.categoryIDs.list()
	flipped, err := r.repo.DeactivateCategoriesExcept(ctx, categories)
	if err != nil {
		return fmt.Errorf("deactivate categories: %w", err)
	}
	r.report.Deactivated(KindCategory, flipped)
	if err := r.repo.ActivateCategories(ctx, categories); err != nil {
		return fmt.Errorf("activate categories: %w", err)
	}

	subcategories := r.subcategoryIDs.list()
	flipped, err = r.repo.DeactivateSubcategoriesExcept(ctx, subcategories)
	if err != nil {
		return fmt.Errorf("deactivate subcategories: %w", err)
	}
	r.report.Deactivated(KindSubcategory, flipped)
	if err := r.repo.ActivateSubcategories(ctx, subcategories); err != nil {
		return fmt.Errorf("activate subcategories: %w", err)
	}
	return nil
}

// idSet is an insertion-ordered set of record IDs
type idSet struct {
	seen  map[uuid.UUID]struct{}
	order []uuid.UUID
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[uuid.UUID]struct{})}
}

func (s *idSet) add(id uuid.UUID) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *idSet) list() []uuid.UUID {
	return s.order
}
