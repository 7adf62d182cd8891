package services

import (
	"taxonomy-service/internal/models"
	"taxonomy-service/internal/taxonomy"
)

// EntityKind selects which counter of a models.Counts pair to bump
type EntityKind int

const (
	KindCategory EntityKind = iota
	KindSubcategory
)

// ReportBuilder accumulates reconciliation counters
type ReportBuilder struct {
	report models.ReconciliationReport
}

// NewReportBuilder starts a report whose totals describe the parsed tree
func NewReportBuilder(parsed taxonomy.ParseResult) *ReportBuilder {
	return &ReportBuilder{
		report: models.ReconciliationReport{
			Totals: models.Counts{
				Categories:    parsed.CategoryCount(),
				Subcategories: parsed.SubcategoryCount(),
			},
		},
	}
}

func bump(c *models.Counts, kind EntityKind, n int) {
	switch kind {
	case KindCategory:
		c.Categories += n
	case KindSubcategory:
		c.Subcategories += n
	}
}

func (b *ReportBuilder) Created(kind EntityKind) { bump(&b.report.Created, kind, 1) }
func (b *ReportBuilder) Updated(kind EntityKind) { bump(&b.report.Updated, kind, 1) }
func (b *ReportBuilder) Skipped(kind EntityKind) { bump(&b.report.Skipped, kind, 1) }

// Deactivated records how many rows the sync pass flipped to inactive
func (b *ReportBuilder) Deactivated(kind EntityKind, n int64) {
	bump(&b.report.Deactivated, kind, int(n))
}

// Build returns a copy of the accumulated report
func (b *ReportBuilder) Build() models.ReconciliationReport {
	return b.report
}

// Response wraps the report with the parse diagnostics, passed through unchanged
func (b *ReportBuilder) Response(parsed taxonomy.ParseResult, mode Mode) *models.ImportResponse {
	warnings := parsed.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	errs := parsed.Errors
	if errs == nil {
		errs = []string{}
	}
	return &models.ImportResponse{
		Success:  len(errs) == 0 || mode == ModePreview,
		Preview:  mode == ModePreview,
		Mode:     string(mode),
		Layout:   string(parsed.Layout),
		Warnings: warnings,
		Errors:   errs,
		Report:   b.Build(),
	}
}
