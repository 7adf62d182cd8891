package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"taxonomy-service/internal/events"
	"taxonomy-service/internal/models"
	"taxonomy-service/internal/services"
	"taxonomy-service/internal/taxonomy"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DefaultUploadMaxBytes caps taxonomy uploads
const DefaultUploadMaxBytes int64 = 5 << 20

// multipartOverhead is allowed on top of the file limit for form boundaries and headers
const multipartOverhead int64 = 64 << 10

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Example     string `json:"example"`
}

// ImportTemplate describes the list layout accepted by the importer
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Layout     string                 `json:"layout"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData [][]string             `json:"sampleData"`
}

type ImportHandler struct {
	importService   *services.ImportService
	parser          *taxonomy.Parser
	locale          string
	maxBytes        int64
	eventsPublisher *events.Publisher
	logger          *logrus.Entry
}

func NewImportHandler(importService *services.ImportService, parser *taxonomy.Parser, locale string, maxBytes int64, eventsPublisher *events.Publisher, logger *logrus.Logger) *ImportHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	if locale == "" {
		locale = models.DefaultLocale
	}
	return &ImportHandler{
		importService:   importService,
		parser:          parser,
		locale:          locale,
		maxBytes:        maxBytes,
		eventsPublisher: eventsPublisher,
		logger:          logger.WithField("component", "handlers.import"),
	}
}

// TaxonomyImportTemplate returns the list-layout template for locale
func TaxonomyImportTemplate(locale string) ImportTemplate {
	category := "category_" + locale
	subcategory := "subcategory_" + locale
	return ImportTemplate{
		Entity:  "taxonomy",
		Version: "1.0",
		Layout:  string(taxonomy.LayoutList),
		Columns: []ImportTemplateColumn{
			{Name: category, Description: "Category name, repeated on every row of its subcategories", Required: true, Example: "Смесители"},
			{Name: subcategory, Description: "Subcategory name, empty for a category without subcategories", Required: false, Example: "Картриджи"},
		},
		SampleData: [][]string{
			{"Смесители", "Джойстики"},
			{"Смесители", "Картриджи"},
			{"Сифоны", "Трапы"},
		},
	}
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/taxonomy/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	template := TaxonomyImportTemplate(h.locale)

	var format taxonomy.Format
	switch c.DefaultQuery("format", "json") {
	case "csv":
		format = taxonomy.FormatCSV
	case "xlsx":
		format = taxonomy.FormatXLSX
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
		return
	}

	rows := make([][]string, 0, len(template.SampleData)+1)
	header := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		header[i] = col.Name
	}
	rows = append(rows, header)
	rows = append(rows, template.SampleData...)

	data, err := taxonomy.Write(format, rows)
	if err != nil {
		h.logger.WithError(err).Error("Failed to render import template")
		respondError(c, http.StatusInternalServerError, "TEMPLATE_FAILED", "Failed to generate import template")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=taxonomy_import_template.%s", format))
	c.Data(http.StatusOK, taxonomy.ContentType(format), data)
}

// ImportTaxonomy parses an uploaded CSV or Excel file and reconciles it
// against the stored taxonomy.
// POST /api/v1/taxonomy/import?mode=preview|import|sync
func (h *ImportHandler) ImportTaxonomy(c *gin.Context) {
	mode, err := services.ParseMode(c.Query("mode"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_MODE", "Mode must be one of: preview, import, sync")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondTooLarge(c)
			return
		}
		respondError(c, http.StatusBadRequest, "FILE_REQUIRED", "Please upload a CSV or Excel file")
		return
	}
	if header.Size > h.maxBytes {
		h.respondTooLarge(c)
		return
	}

	format, ok := taxonomy.DetectFormat(header.Filename, header.Header.Get("Content-Type"))
	if !ok {
		respondError(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE", "Only CSV and XLSX files are supported")
		return
	}

	data, err := readUpload(header)
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_UNREADABLE", "The uploaded file could not be read")
		return
	}

	parsed := h.parser.Parse(format, data)
	result, err := h.importService.Import(c.Request.Context(), parsed, mode)
	switch {
	case errors.Is(err, services.ErrParseFailed):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "PARSE_FAILED",
				Message: "The taxonomy file could not be parsed",
				Details: result.Errors,
			},
		})
		return
	case errors.Is(err, services.ErrImportInProgress):
		respondError(c, http.StatusConflict, "IMPORT_IN_PROGRESS", "Another taxonomy import is running, try again later")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "IMPORT_FAILED", "Failed to import taxonomy")
		return
	}

	// Publish import event for audit trail
	if mode.Mutates() && h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishImport(
			c.Request.Context(),
			string(mode),
			result.Report,
			len(result.Warnings),
			actorFrom(c),
		)
	}

	c.JSON(http.StatusOK, result)
}

func (h *ImportHandler) respondTooLarge(c *gin.Context) {
	respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
		fmt.Sprintf("File exceeds the %d byte limit", h.maxBytes))
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
