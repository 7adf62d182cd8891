package services

import (
	"context"
	"testing"
	"time"

	"taxonomy-service/internal/models"
	"taxonomy-service/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTaxonomyService(t *testing.T) (*TaxonomyService, *repository.TaxonomyRepository) {
	t.Helper()
	repo, _ := newTestStore(t)
	return NewTaxonomyService(repo, "", quietLogger()), repo
}

func TestTaxonomyService_DefaultLocale(t *testing.T) {
	svc, _ := newTestTaxonomyService(t)
	assert.Equal(t, models.DefaultLocale, svc.Locale())
}

func TestCreateCategory_AppendsWithUniqueSlug(t *testing.T) {
	svc, _ := newTestTaxonomyService(t)
	ctx := context.Background()

	first, err := svc.CreateCategory(ctx, models.CreateCategoryRequest{Name: "  Смесители "})
	require.NoError(t, err)
	second, err := svc.CreateCategory(ctx, models.CreateCategoryRequest{Name: "Смесители"})
	require.NoError(t, err)

	assert.Equal(t, "smesiteli", *first.Slug)
	assert.Equal(t, "smesiteli-2", *second.Slug)
	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)
	assert.True(t, first.IsActive)
	assert.Equal(t, "Смесители", first.NameIn("ru"))
}

func TestCreateCategory_HonoursRequestFields(t *testing.T) {
	svc, _ := newTestTaxonomyService(t)
	order := 7
	inactive := false
	slug := "Mixers & Taps"

	category, err := svc.CreateCategory(context.Background(), models.CreateCategoryRequest{
		Name:      "Смесители",
		Slug:      &slug,
		SortOrder: &order,
		IsActive:  &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "mixers-taps", *category.Slug)
	assert.Equal(t, 7, category.SortOrder)
	assert.False(t, category.IsActive)
}

func TestCreateCategory_RequiresName(t *testing.T) {
	svc, _ := newTestTaxonomyService(t)
	_, err := svc.CreateCategory(context.Background(), models.CreateCategoryRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestCreateSubcategory(t *testing.T) {
	svc, _ := newTestTaxonomyService(t)
	ctx := context.Background()

	parent, err := svc.CreateCategory(ctx, models.CreateCategoryRequest{Name: "Трубы"})
	require.NoError(t, err)

	first, err := svc.CreateSubcategory(ctx, models.CreateSubcategoryRequest{CategoryID: parent.ID, Name: "ПВХ"})
	require.NoError(t, err)
	second, err := svc.CreateSubcategory(ctx, models.CreateSubcategoryRequest{CategoryID: parent.ID, Name: "ПНД"})
	require.NoError(t, err)

	assert.Equal(t, parent.ID, first.CategoryID)
	assert.Equal(t, "truby-pvh", *first.Slug)
	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)
}

func TestCreateSubcategory_UnknownParent(t *testing.T) {
	svc, _ := newTestTaxonomyService(t)
	_, err := svc.CreateSubcategory(context.Background(), models.CreateSubcategoryRequest{CategoryID: uuid.New(), Name: "ПВХ"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExportRows(t *testing.T) {
	svc, repo := newTestTaxonomyService(t)
	ctx := context.Background()

	importer := NewImportService(repo, "ru", time.Second, quietLogger())
	_, err := importer.Import(ctx, parseCSV(t, plumbingCSV), ModeImport)
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, models.CreateCategoryRequest{Name: "Трубы"})
	require.NoError(t, err)

	rows, err := svc.ExportRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"category_ru", "subcategory_ru"},
		{"Смесители", "Джойстики"},
		{"Смесители", "Картриджи"},
		{"Сифоны", "Трапы"},
		{"Трубы", ""},
	}, rows)
}

func TestSetActive(t *testing.T) {
	svc, _ := newTestTaxonomyService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, models.CreateCategoryRequest{Name: "Трубы"})
	require.NoError(t, err)
	sub, err := svc.CreateSubcategory(ctx, models.CreateSubcategoryRequest{CategoryID: category.ID, Name: "ПВХ"})
	require.NoError(t, err)

	hidden, err := svc.SetCategoryActive(ctx, category.ID, false)
	require.NoError(t, err)
	assert.False(t, hidden.IsActive)

	hiddenSub, err := svc.SetSubcategoryActive(ctx, sub.ID, false)
	require.NoError(t, err)
	assert.False(t, hiddenSub.IsActive)

	visible, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Subcategories, 1)

	_, err = svc.SetCategoryActive(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
