package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"taxonomy-service/internal/events"
	"taxonomy-service/internal/models"
	"taxonomy-service/internal/repository"
	"taxonomy-service/internal/services"
	"taxonomy-service/internal/taxonomy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TaxonomyHandler struct {
	service         *services.TaxonomyService
	eventsPublisher *events.Publisher
	logger          *logrus.Entry
}

func NewTaxonomyHandler(service *services.TaxonomyService, eventsPublisher *events.Publisher, logger *logrus.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{
		service:         service,
		eventsPublisher: eventsPublisher,
		logger:          logger.WithField("component", "handlers.taxonomy"),
	}
}

// GetTaxonomy returns the category tree
// GET /api/v1/taxonomy?includeInactive=1
func (h *TaxonomyHandler) GetTaxonomy(c *gin.Context) {
	includeInactive := queryFlag(c, "includeInactive")

	tree, err := h.service.List(c.Request.Context(), includeInactive)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list taxonomy")
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to load taxonomy")
		return
	}

	c.JSON(http.StatusOK, models.TaxonomyResponse{
		Success: true,
		Locale:  h.service.Locale(),
		Data:    tree,
	})
}

// ExportTaxonomy downloads the active taxonomy in the import list layout
// GET /api/v1/taxonomy/export?format=csv|xlsx
func (h *TaxonomyHandler) ExportTaxonomy(c *gin.Context) {
	var format taxonomy.Format
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		format = taxonomy.FormatCSV
	case "xlsx":
		format = taxonomy.FormatXLSX
	default:
		respondError(c, http.StatusBadRequest, "INVALID_FORMAT", "Format must be csv or xlsx")
		return
	}

	rows, err := h.service.ExportRows(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load taxonomy for export")
		respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export taxonomy")
		return
	}
	data, err := taxonomy.Write(format, rows)
	if err != nil {
		h.logger.WithError(err).Error("Failed to render taxonomy export")
		respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export taxonomy")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=taxonomy_export.%s", format))
	c.Data(http.StatusOK, taxonomy.ContentType(format), data)
}

// CreateCategory creates a category outside of an import
func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.respondWriteError(c, err, "Failed to create category")
		return
	}

	// Publish category created event for audit trail
	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishEntity(
			c.Request.Context(),
			events.CategoryCreated,
			category.ID.String(),
			"",
			category.NameIn(h.service.Locale()),
			deref(category.Slug),
			category.IsActive,
			actorFrom(c),
		)
	}

	c.JSON(http.StatusCreated, models.CategoryResponse{Success: true, Data: category})
}

// CreateSubcategory creates a subcategory under an existing category
func (h *TaxonomyHandler) CreateSubcategory(c *gin.Context) {
	var req models.CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}

	subcategory, err := h.service.CreateSubcategory(c.Request.Context(), req)
	if err != nil {
		h.respondWriteError(c, err, "Failed to create subcategory")
		return
	}

	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishEntity(
			c.Request.Context(),
			events.SubcategoryCreated,
			subcategory.ID.String(),
			subcategory.CategoryID.String(),
			subcategory.NameIn(h.service.Locale()),
			deref(subcategory.Slug),
			subcategory.IsActive,
			actorFrom(c),
		)
	}

	c.JSON(http.StatusCreated, models.SubcategoryResponse{Success: true, Data: subcategory})
}

// UpdateCategoryStatus shows or hides a category
func (h *TaxonomyHandler) UpdateCategoryStatus(c *gin.Context) {
	id, active, ok := bindStatus(c)
	if !ok {
		return
	}

	category, err := h.service.SetCategoryActive(c.Request.Context(), id, active)
	if err != nil {
		h.respondWriteError(c, err, "Failed to update category status")
		return
	}

	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishEntity(
			c.Request.Context(),
			events.CategoryStatusChanged,
			category.ID.String(),
			"",
			category.NameIn(h.service.Locale()),
			deref(category.Slug),
			category.IsActive,
			actorFrom(c),
		)
	}

	message := statusMessage("Category", active)
	c.JSON(http.StatusOK, models.CategoryResponse{Success: true, Data: category, Message: &message})
}

// UpdateSubcategoryStatus shows or hides a subcategory
func (h *TaxonomyHandler) UpdateSubcategoryStatus(c *gin.Context) {
	id, active, ok := bindStatus(c)
	if !ok {
		return
	}

	subcategory, err := h.service.SetSubcategoryActive(c.Request.Context(), id, active)
	if err != nil {
		h.respondWriteError(c, err, "Failed to update subcategory status")
		return
	}

	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishEntity(
			c.Request.Context(),
			events.SubcategoryStatusChanged,
			subcategory.ID.String(),
			subcategory.CategoryID.String(),
			subcategory.NameIn(h.service.Locale()),
			deref(subcategory.Slug),
			subcategory.IsActive,
			actorFrom(c),
		)
	}

	message := statusMessage("Subcategory", active)
	c.JSON(http.StatusOK, models.SubcategoryResponse{Success: true, Data: subcategory, Message: &message})
}

func (h *TaxonomyHandler) respondWriteError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrNameRequired):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Name is required",
				Field:   "name",
			},
		})
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Category or subcategory not found")
	default:
		h.logger.WithError(err).Error(message)
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", message)
	}
}

func bindStatus(c *gin.Context) (uuid.UUID, bool, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID format")
		return uuid.Nil, false, false
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return uuid.Nil, false, false
	}
	return id, *req.IsActive, true
}

func statusMessage(entity string, active bool) string {
	if active {
		return entity + " activated"
	}
	return entity + " deactivated"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
