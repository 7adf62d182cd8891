package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taxonomy-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cache TTL constants
const (
	TaxonomyCacheTTL = 15 * time.Minute
)

const (
	treeCachePrefix = "taxonomy:tree:"

	// importLockKey identifies the taxonomy import in pg_advisory_xact_lock.
	importLockKey int64 = 0x7461786f6e6f6d79

	pgLockNotAvailable = "55P03"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrLockTimeout = errors.New("timed out waiting for the taxonomy import lock")
)

// TaxonomyRepositoryInterface is the store contract the import engine and the
// admin handlers depend on.
type TaxonomyRepositoryInterface interface {
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindCategoryByName(ctx context.Context, locale, name string) (*models.Category, error)
	FindSubcategoryBySlug(ctx context.Context, slug string) (*models.Subcategory, error)
	FindSubcategoryByName(ctx context.Context, categoryID uuid.UUID, locale, name string) (*models.Subcategory, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetSubcategory(ctx context.Context, id uuid.UUID) (*models.Subcategory, error)

	CategorySlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	SubcategorySlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	MaxCategorySortOrder(ctx context.Context) (int, error)
	MaxSubcategorySortOrder(ctx context.Context, categoryID uuid.UUID) (int, error)

	CreateCategory(ctx context.Context, category *models.Category) error
	CreateSubcategory(ctx context.Context, subcategory *models.Subcategory) error
	UpdateCategoryForImport(ctx context.Context, id uuid.UUID, sortOrder int, slug *string) error
	UpdateSubcategoryForImport(ctx context.Context, id uuid.UUID, sortOrder int, slug *string) error
	UpsertCategoryTranslation(ctx context.Context, categoryID uuid.UUID, locale, name string) error
	UpsertSubcategoryTranslation(ctx context.Context, subcategoryID uuid.UUID, locale, name string) error

	DeactivateCategoriesExcept(ctx context.Context, keep []uuid.UUID) (int64, error)
	DeactivateSubcategoriesExcept(ctx context.Context, keep []uuid.UUID) (int64, error)
	ActivateCategories(ctx context.Context, ids []uuid.UUID) error
	ActivateSubcategories(ctx context.Context, ids []uuid.UUID) error
	SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error
	SetSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) error

	ListTaxonomy(ctx context.Context, locale string, includeInactive bool) ([]models.CategoryNode, error)
	InvalidateCache(ctx context.Context)

	// WithTransaction runs fn in one database transaction holding the taxonomy
	// import lock. Caches are invalidated after a successful commit.
	WithTransaction(ctx context.Context, fn func(txRepo TaxonomyRepositoryInterface) error) error
}

// TaxonomyRepository is the gorm implementation of TaxonomyRepositoryInterface
type TaxonomyRepository struct {
	db          *gorm.DB
	redis       *redis.Client
	cacheTTL    time.Duration
	lockTimeout time.Duration
	inTx        bool
}

// NewTaxonomyRepository creates a repository. redis may be nil to disable caching.
func NewTaxonomyRepository(db *gorm.DB, redis *redis.Client, cacheTTL, lockTimeout time.Duration) *TaxonomyRepository {
	if cacheTTL <= 0 {
		cacheTTL = TaxonomyCacheTTL
	}
	return &TaxonomyRepository{
		db:          db,
		redis:       redis,
		cacheTTL:    cacheTTL,
		lockTimeout: lockTimeout,
	}
}

var _ TaxonomyRepositoryInterface = (*TaxonomyRepository)(nil)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Lookups ---

func (r *TaxonomyRepository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Where("slug = ?", slug).
		Take(&category).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

// FindCategoryByName matches the translation name in locale case-insensitively.
// The oldest category wins when several share a name.
func (r *TaxonomyRepository) FindCategoryByName(ctx context.Context, locale, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Joins("JOIN category_translations ct ON ct.category_id = categories.id").
		Where("ct.locale = ? AND ct.name_key = ?", locale, models.NameKey(name)).
		Order("categories.created_at ASC, categories.id ASC").
		Take(&category).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (r *TaxonomyRepository) FindSubcategoryBySlug(ctx context.Context, slug string) (*models.Subcategory, error) {
	var subcategory models.Subcategory
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Where("slug = ?", slug).
		Take(&subcategory).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &subcategory, nil
}

// FindSubcategoryByName is FindCategoryByName scoped to one parent category.
func (r *TaxonomyRepository) FindSubcategoryByName(ctx context.Context, categoryID uuid.UUID, locale, name string) (*models.Subcategory, error) {
	var subcategory models.Subcategory
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Joins("JOIN subcategory_translations st ON st.subcategory_id = subcategories.id").
		Where("subcategories.category_id = ? AND st.locale = ? AND st.name_key = ?", categoryID, locale, models.NameKey(name)).
		Order("subcategories.created_at ASC, subcategories.id ASC").
		Take(&subcategory).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &subcategory, nil
}

func (r *TaxonomyRepository) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Preload("Translations").Where("id = ?", id).Take(&category).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (r *TaxonomyRepository) GetSubcategory(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	var subcategory models.Subcategory
	err := r.db.WithContext(ctx).Preload("Translations").Where("id = ?", id).Take(&subcategory).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &subcategory, nil
}

// CategorySlugExists checks active and inactive categories, optionally ignoring excludeID
func (r *TaxonomyRepository) CategorySlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return r.slugExists(ctx, &models.Category{}, slug, excludeID)
}

// SubcategorySlugExists checks active and inactive subcategories, optionally ignoring excludeID
func (r *TaxonomyRepository) SubcategorySlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return r.slugExists(ctx, &models.Subcategory{}, slug, excludeID)
}

func (r *TaxonomyRepository) slugExists(ctx context.Context, model any, slug string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(model).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// MaxCategorySortOrder returns -1 when there are no categories
func (r *TaxonomyRepository) MaxCategorySortOrder(ctx context.Context) (int, error) {
	var maxOrder int
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Select("COALESCE(MAX(sort_order), -1)").
		Row().Scan(&maxOrder)
	return maxOrder, err
}

// MaxSubcategorySortOrder returns -1 when the category has no subcategories
func (r *TaxonomyRepository) MaxSubcategorySortOrder(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var maxOrder int
	err := r.db.WithContext(ctx).Model(&models.Subcategory{}).
		Where("category_id = ?", categoryID).
		Select("COALESCE(MAX(sort_order), -1)").
		Row().Scan(&maxOrder)
	return maxOrder, err
}

// --- Writes ---

// CreateCategory inserts the category and its translations
func (r *TaxonomyRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return err
	}
	r.invalidateUnlessTx(ctx)
	return nil
}

// CreateSubcategory inserts the subcategory and its translations
func (r *TaxonomyRepository) CreateSubcategory(ctx context.Context, subcategory *models.Subcategory) error {
	if err := r.db.WithContext(ctx).Create(subcategory).Error; err != nil {
		return err
	}
	r.invalidateUnlessTx(ctx)
	return nil
}

// UpdateCategoryForImport refreshes sort order and reactivates the category.
// slug is written only when non-nil.
func (r *TaxonomyRepository) UpdateCategoryForImport(ctx context.Context, id uuid.UUID, sortOrder int, slug *string) error {
	return r.updateForImport(ctx, &models.Category{}, id, sortOrder, slug)
}

// UpdateSubcategoryForImport refreshes sort order and reactivates the subcategory.
// slug is written only when non-nil.
func (r *TaxonomyRepository) UpdateSubcategoryForImport(ctx context.Context, id uuid.UUID, sortOrder int, slug *string) error {
	return r.updateForImport(ctx, &models.Subcategory{}, id, sortOrder, slug)
}

func (r *TaxonomyRepository) updateForImport(ctx context.Context, model any, id uuid.UUID, sortOrder int, slug *string) error {
	updates := map[string]any{
		"sort_order": sortOrder,
		"is_active":  true,
	}
	if slug != nil {
		updates["slug"] = *slug
	}

	result := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidateUnlessTx(ctx)
	return nil
}

// UpsertCategoryTranslation sets the category name for one locale, leaving other locales untouched
func (r *TaxonomyRepository) UpsertCategoryTranslation(ctx context.Context, categoryID uuid.UUID, locale, name string) error {
	translation := models.CategoryTranslation{CategoryID: categoryID, Locale: locale, Name: name}
	return r.upsertTranslation(ctx, &translation, "category_id")
}

// UpsertSubcategoryTranslation sets the subcategory name for one locale, leaving other locales untouched
func (r *TaxonomyRepository) UpsertSubcategoryTranslation(ctx context.Context, subcategoryID uuid.UUID, locale, name string) error {
	translation := models.SubcategoryTranslation{SubcategoryID: subcategoryID, Locale: locale, Name: name}
	return r.upsertTranslation(ctx, &translation, "subcategory_id")
}

func (r *TaxonomyRepository) upsertTranslation(ctx context.Context, translation any, ownerColumn string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: ownerColumn}, {Name: "locale"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "name_key", "updated_at"}),
	}).Create(translation).Error
	if err != nil {
		return err
	}
	r.invalidateUnlessTx(ctx)
	return nil
}

// DeactivateCategoriesExcept flips every active category not in keep to
// inactive and returns how many were flipped
func (r *TaxonomyRepository) DeactivateCategoriesExcept(ctx context.Context, keep []uuid.UUID) (int64, error) {
	return r.deactivateExcept(ctx, &models.Category{}, keep)
}

// DeactivateSubcategoriesExcept flips every active subcategory not in keep to
// inactive and returns how many were flipped
func (r *TaxonomyRepository) DeactivateSubcategoriesExcept(ctx context.Context, keep []uuid.UUID) (int64, error) {
	return r.deactivateExcept(ctx, &models.Subcategory{}, keep)
}

func (r *TaxonomyRepository) deactivateExcept(ctx context.Context, model any, keep []uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Model(model).Where("is_active = ?", true)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	result := query.Update("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		r.invalidateUnlessTx(ctx)
	}
	return result.RowsAffected, nil
}

func (r *TaxonomyRepository) ActivateCategories(ctx context.Context, ids []uuid.UUID) error {
	return r.activate(ctx, &models.Category{}, ids)
}

func (r *TaxonomyRepository) ActivateSubcategories(ctx context.Context, ids []uuid.UUID) error {
	return r.activate(ctx, &models.Subcategory{}, ids)
}

func (r *TaxonomyRepository) activate(ctx context.Context, model any, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Update("is_active", true).Error
	if err != nil {
		return err
	}
	r.invalidateUnlessTx(ctx)
	return nil
}

// SetCategoryActive toggles visibility of one category. Records are never deleted.
func (r *TaxonomyRepository) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.setActive(ctx, &models.Category{}, id, active)
}

// SetSubcategoryActive toggles visibility of one subcategory. Records are never deleted.
func (r *TaxonomyRepository) SetSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.setActive(ctx, &models.Subcategory{}, id, active)
}

func (r *TaxonomyRepository) setActive(ctx context.Context, model any, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidateUnlessTx(ctx)
	return nil
}

// --- Listing ---

// ListTaxonomy returns the category tree in sort order with names in locale.
// Results are cached in Redis outside transactions.
func (r *TaxonomyRepository) ListTaxonomy(ctx context.Context, locale string, includeInactive bool) ([]models.CategoryNode, error) {
	cacheKey := fmt.Sprintf("%s%s:%t", treeCachePrefix, locale, includeInactive)
	useCache := r.redis != nil && !r.inTx

	if useCache {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var nodes []models.CategoryNode
			if err := json.Unmarshal([]byte(val), &nodes); err == nil {
				return nodes, nil
			}
		}
	}

	activeOnly := func(db *gorm.DB) *gorm.DB {
		if !includeInactive {
			db = db.Where("is_active = ?", true)
		}
		return db.Order("sort_order ASC").Order("created_at ASC")
	}

	var categories []models.Category
	err := r.db.WithContext(ctx).
		Scopes(activeOnly).
		Preload("Translations").
		Preload("Subcategories", activeOnly).
		Preload("Subcategories.Translations").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}

	nodes := make([]models.CategoryNode, 0, len(categories))
	for _, category := range categories {
		node := models.CategoryNode{
			ID:            category.ID,
			Slug:          category.Slug,
			Name:          displayName(category.NameIn(locale), category.Translations),
			SortOrder:     category.SortOrder,
			IsActive:      category.IsActive,
			Subcategories: make([]models.SubcategoryNode, 0, len(category.Subcategories)),
		}
		for _, sub := range category.Subcategories {
			node.Subcategories = append(node.Subcategories, models.SubcategoryNode{
				ID:        sub.ID,
				Slug:      sub.Slug,
				Name:      subDisplayName(sub.NameIn(locale), sub.Translations),
				SortOrder: sub.SortOrder,
				IsActive:  sub.IsActive,
			})
		}
		nodes = append(nodes, node)
	}

	if useCache {
		if data, err := json.Marshal(nodes); err == nil {
			r.redis.Set(ctx, cacheKey, data, r.cacheTTL)
		}
	}
	return nodes, nil
}

// displayName falls back to any translation when locale has none
func displayName(name string, translations []models.CategoryTranslation) string {
	if name == "" && len(translations) > 0 {
		return translations[0].Name
	}
	return name
}

func subDisplayName(name string, translations []models.SubcategoryTranslation) string {
	if name == "" && len(translations) > 0 {
		return translations[0].Name
	}
	return name
}

// InvalidateCache drops every cached taxonomy tree
func (r *TaxonomyRepository) InvalidateCache(ctx context.Context) {
	if r.redis == nil {
		return
	}
	keys, _ := r.redis.Keys(ctx, treeCachePrefix+"*").Result()
	if len(keys) > 0 {
		r.redis.Del(ctx, keys...)
	}
}

func (r *TaxonomyRepository) invalidateUnlessTx(ctx context.Context) {
	if !r.inTx {
		r.InvalidateCache(ctx)
	}
}

// --- Transactions ---

func (r *TaxonomyRepository) WithTransaction(ctx context.Context, fn func(txRepo TaxonomyRepositoryInterface) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockImport(tx); err != nil {
			return err
		}
		return fn(&TaxonomyRepository{
			db:          tx,
			redis:       r.redis,
			cacheTTL:    r.cacheTTL,
			lockTimeout: r.lockTimeout,
			inTx:        true,
		})
	})
	if err != nil {
		return err
	}
	r.InvalidateCache(ctx)
	return nil
}

// lockImport takes a transaction-scoped advisory lock on PostgreSQL. Other
// dialects rely on the caller's in-process serialisation.
func (r *TaxonomyRepository) lockImport(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if r.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}
	err := tx.Exec("SELECT pg_advisory_xact_lock(?)", importLockKey).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return ErrLockTimeout
	}
	if err != nil {
		return fmt.Errorf("acquire import lock: %w", err)
	}
	return nil
}
