package models

import "gorm.io/gorm"

// Migrate creates or updates the taxonomy tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Category{},
		&CategoryTranslation{},
		&Subcategory{},
		&SubcategoryTranslation{},
	)
}
