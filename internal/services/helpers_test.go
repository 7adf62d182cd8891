package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"taxonomy-service/internal/models"
	"taxonomy-service/internal/repository"
	"taxonomy-service/internal/taxonomy"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) (*repository.TaxonomyRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return repository.NewTaxonomyRepository(db, nil, 0, 0), db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

func parseCSV(t *testing.T, lines string) taxonomy.ParseResult {
	t.Helper()
	result := taxonomy.NewParser(taxonomy.DefaultDescriptionFilter()).ParseCSV([]byte(lines))
	require.Empty(t, result.Errors)
	return result
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

var errDiskFull = errors.New("disk full")

// failingRepo fails every subcategory insert, inside transactions too
type failingRepo struct {
	repository.TaxonomyRepositoryInterface
}

func (f *failingRepo) CreateSubcategory(context.Context, *models.Subcategory) error {
	return errDiskFull
}

func (f *failingRepo) WithTransaction(ctx context.Context, fn func(txRepo repository.TaxonomyRepositoryInterface) error) error {
	return f.TaxonomyRepositoryInterface.WithTransaction(ctx, func(txRepo repository.TaxonomyRepositoryInterface) error {
		return fn(&failingRepo{TaxonomyRepositoryInterface: txRepo})
	})
}
