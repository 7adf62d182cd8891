package models

import (
	"strings"
	"time"

	"taxonomy-service/internal/taxonomy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultLocale is the locale import writes translations for unless configured otherwise
const DefaultLocale = "ru"

// NameKey returns the case-insensitive lookup key for a display name
func NameKey(name string) string {
	return strings.ToLower(taxonomy.NormalizeWhitespace(name))
}

// Category is a top-level taxonomy node. Display names live in CategoryTranslation.
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Slug      *string   `json:"slug,omitempty" gorm:"size:120;uniqueIndex"`
	SortOrder int       `json:"sortOrder" gorm:"not null"`
	IsActive  bool      `json:"isActive" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relationships
	Translations  []CategoryTranslation `json:"translations,omitempty" gorm:"foreignKey:CategoryID"`
	Subcategories []Subcategory         `json:"subcategories,omitempty" gorm:"foreignKey:CategoryID"`
}

// CategoryTranslation is the display name of a category in one locale
type CategoryTranslation struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `json:"categoryId" gorm:"type:uuid;not null;uniqueIndex:idx_category_translation_locale"`
	Locale     string    `json:"locale" gorm:"size:10;not null;uniqueIndex:idx_category_translation_locale"`
	Name       string    `json:"name" gorm:"not null"`
	NameKey    string    `json:"-" gorm:"not null;index"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Subcategory belongs to exactly one Category
type Subcategory struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `json:"categoryId" gorm:"type:uuid;not null;index"`
	Slug       *string   `json:"slug,omitempty" gorm:"size:220;uniqueIndex"`
	SortOrder  int       `json:"sortOrder" gorm:"not null"`
	IsActive   bool      `json:"isActive" gorm:"not null;index"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Translations []SubcategoryTranslation `json:"translations,omitempty" gorm:"foreignKey:SubcategoryID"`
}

// SubcategoryTranslation is the display name of a subcategory in one locale
type SubcategoryTranslation struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SubcategoryID uuid.UUID `json:"subcategoryId" gorm:"type:uuid;not null;uniqueIndex:idx_subcategory_translation_locale"`
	Locale        string    `json:"locale" gorm:"size:10;not null;uniqueIndex:idx_subcategory_translation_locale"`
	Name          string    `json:"name" gorm:"not null"`
	NameKey       string    `json:"-" gorm:"not null;index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (t *CategoryTranslation) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *CategoryTranslation) BeforeSave(tx *gorm.DB) error {
	t.NameKey = NameKey(t.Name)
	return nil
}

func (s *Subcategory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (t *SubcategoryTranslation) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *SubcategoryTranslation) BeforeSave(tx *gorm.DB) error {
	t.NameKey = NameKey(t.Name)
	return nil
}

// NameIn returns the category name for locale, or "" when it has no such translation
func (c Category) NameIn(locale string) string {
	for _, t := range c.Translations {
		if t.Locale == locale {
			return t.Name
		}
	}
	return ""
}

// NameIn returns the subcategory name for locale, or "" when it has no such translation
func (s Subcategory) NameIn(locale string) string {
	for _, t := range s.Translations {
		if t.Locale == locale {
			return t.Name
		}
	}
	return ""
}

// CreateCategoryRequest represents a request to create a category by hand
type CreateCategoryRequest struct {
	Name      string  `json:"name" binding:"required"`
	Slug      *string `json:"slug,omitempty"`
	SortOrder *int    `json:"sortOrder,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// CreateSubcategoryRequest represents a request to create a subcategory by hand
type CreateSubcategoryRequest struct {
	CategoryID uuid.UUID `json:"categoryId" binding:"required"`
	Name       string    `json:"name" binding:"required"`
	Slug       *string   `json:"slug,omitempty"`
	SortOrder  *int      `json:"sortOrder,omitempty"`
	IsActive   *bool     `json:"isActive,omitempty"`
}

// UpdateStatusRequest flips the active flag of a category or subcategory
type UpdateStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// SubcategoryNode is a subcategory in the taxonomy listing
type SubcategoryNode struct {
	ID        uuid.UUID `json:"id"`
	Slug      *string   `json:"slug,omitempty"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
}

// CategoryNode is a category with its subcategories in the taxonomy listing
type CategoryNode struct {
	ID            uuid.UUID         `json:"id"`
	Slug          *string           `json:"slug,omitempty"`
	Name          string            `json:"name"`
	SortOrder     int               `json:"sortOrder"`
	IsActive      bool              `json:"isActive"`
	Subcategories []SubcategoryNode `json:"subcategories"`
}

// CategoryResponse represents a single category response
type CategoryResponse struct {
	Success bool      `json:"success"`
	Data    *Category `json:"data"`
	Message *string   `json:"message,omitempty"`
}

// SubcategoryResponse represents a single subcategory response
type SubcategoryResponse struct {
	Success bool         `json:"success"`
	Data    *Subcategory `json:"data"`
	Message *string      `json:"message,omitempty"`
}

// TaxonomyResponse represents the taxonomy tree listing
type TaxonomyResponse struct {
	Success bool           `json:"success"`
	Locale  string         `json:"locale"`
	Data    []CategoryNode `json:"data"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Error represents error details
type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// TableName returns the table name for the CategoryTranslation model
func (CategoryTranslation) TableName() string {
	return "category_translations"
}

// TableName returns the table name for the Subcategory model
func (Subcategory) TableName() string {
	return "subcategories"
}

// TableName returns the table name for the SubcategoryTranslation model
func (SubcategoryTranslation) TableName() string {
	return "subcategory_translations"
}
