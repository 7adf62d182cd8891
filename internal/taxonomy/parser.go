// Package taxonomy turns merchant-supplied CSV and XLSX files into a two-level
// category tree. Parsing is pure: it never touches storage and reports problems
// as data in ParseResult instead of returning errors.
package taxonomy

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the physical encoding of an uploaded taxonomy file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Messages reported in ParseResult.
const (
	MsgParseFailed  = "Failed to parse taxonomy file."
	MsgNoSheets     = "Taxonomy file has no sheets."
	MsgNoRows       = "No rows found in taxonomy file."
	MsgNoCategories = "No categories detected in taxonomy file."
)

// DetectFormat selects the reader for an upload from its file name and
// content type. The extension wins over the content type.
func DetectFormat(filename, contentType string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx":
		return FormatXLSX, true
	}
	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "csv"):
		return FormatCSV, true
	case strings.HasPrefix(contentType, xlsxContentType):
		return FormatXLSX, true
	}
	return "", false
}

// ParseResult is the normalized tree plus any parse diagnostics. A non-empty
// Errors slice means the tree must not be reconciled.
type ParseResult struct {
	Categories []ParsedCategory `json:"categories"`
	Layout     LayoutKind       `json:"layout,omitempty"`
	Warnings   []string         `json:"warnings"`
	Errors     []string         `json:"errors"`
}

// CategoryCount returns the number of parsed categories.
func (r ParseResult) CategoryCount() int {
	return len(r.Categories)
}

// SubcategoryCount returns the number of parsed subcategories across all categories.
func (r ParseResult) SubcategoryCount() int {
	total := 0
	for _, category := range r.Categories {
		total += len(category.Subcategories)
	}
	return total
}

// HasErrors reports whether the result is unusable.
func (r ParseResult) HasErrors() bool {
	return len(r.Errors) > 0
}

func newResult() ParseResult {
	return ParseResult{
		Categories: make([]ParsedCategory, 0),
		Warnings:   make([]string, 0),
		Errors:     make([]string, 0),
	}
}

func failed(msg string) ParseResult {
	result := newResult()
	result.Errors = append(result.Errors, msg)
	return result
}

// Parser builds taxonomy trees from raw uploads.
type Parser struct {
	filter DescriptionFilter
}

// NewParser creates a parser using the given description filter.
func NewParser(filter DescriptionFilter) *Parser {
	return &Parser{filter: filter}
}

// Parse dispatches to the reader for format.
func (p *Parser) Parse(format Format, data []byte) ParseResult {
	switch format {
	case FormatCSV:
		return p.ParseCSV(data)
	case FormatXLSX:
		return p.ParseWorkbook(data)
	default:
		return failed(fmt.Sprintf("Unsupported taxonomy file format %q.", format))
	}
}

// ParseCSV parses delimited text.
func (p *Parser) ParseCSV(data []byte) ParseResult {
	rows, err := ReadDelimited(data)
	if err != nil {
		return failed(MsgParseFailed)
	}
	return p.ParseRows(rows)
}

// ParseWorkbook parses the first sheet of an XLSX workbook.
func (p *Parser) ParseWorkbook(data []byte) ParseResult {
	rows, err := ReadWorkbook(data)
	if err != nil {
		if errors.Is(err, ErrNoSheets) {
			return failed(MsgNoSheets)
		}
		return failed(MsgParseFailed)
	}
	return p.ParseRows(rows)
}

// ParseRows classifies an already tokenized grid and builds the tree.
func (p *Parser) ParseRows(raw [][]string) ParseResult {
	result := newResult()

	rows := dropBlankRows(raw)
	if len(rows) == 0 {
		result.Warnings = append(result.Warnings, MsgNoRows)
		return result
	}

	layout := DetectLayout(rows)
	result.Layout = layout.Kind()
	result.Categories = layout.build(rows, p.filter)

	if layout.Kind() == LayoutColumn && len(result.Categories) == 1 && len(rows) > 1 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Layout not recognised; row %d was read as a single category header.", layout.Header()+1))
	}
	if len(result.Categories) == 0 {
		result.Warnings = append(result.Warnings, MsgNoCategories)
	}
	return result
}
