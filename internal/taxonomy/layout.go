package taxonomy

import "strings"

// LayoutKind names the shape of an uploaded taxonomy grid.
type LayoutKind string

const (
	// LayoutList is one (category, subcategory) pair per row in two fixed columns.
	LayoutList LayoutKind = "list"
	// LayoutColumn has one category per header cell and its subcategories below it.
	LayoutColumn LayoutKind = "column"
)

// headerScanLimit bounds how many leading rows are considered as a column header.
const headerScanLimit = 10

var (
	categoryHeaderTokens    = []string{"category", "катег"}
	subcategoryHeaderTokens = []string{"subcategory", "подкат"}
)

// Layout is the result of layout detection. The only implementations are
// ListLayout and ColumnLayout.
type Layout interface {
	Kind() LayoutKind
	Header() int
	build(rows [][]string, filter DescriptionFilter) []ParsedCategory
}

// ListLayout is a grid with a category/subcategory header row at HeaderIndex.
type ListLayout struct {
	HeaderIndex int
}

// ColumnLayout is a grid whose row at HeaderIndex lists category names.
type ColumnLayout struct {
	HeaderIndex int
}

func (ListLayout) Kind() LayoutKind { return LayoutList }
func (l ListLayout) Header() int { return l.HeaderIndex }
func (ColumnLayout) Kind() LayoutKind { return LayoutColumn }
func (l ColumnLayout) Header() int { return l.HeaderIndex }

// DetectLayout classifies normalized, non-blank rows. A recognised
// category/subcategory header anywhere in the grid selects the list layout;
// everything else falls through to the column layout.
func DetectLayout(rows [][]string) Layout {
	for i, row := range rows {
		if isListHeader(row) {
			return ListLayout{HeaderIndex: i}
		}
	}
	return ColumnLayout{HeaderIndex: pickHeaderRow(rows)}
}

func isListHeader(row []string) bool {
	if len(row) < 2 {
		return false
	}
	left := strings.ToLower(NormalizeWhitespace(row[0]))
	right := strings.ToLower(NormalizeWhitespace(row[1]))
	return containsAny(left, categoryHeaderTokens) && containsAny(right, subcategoryHeaderTokens)
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

// pickHeaderRow returns the index of the densest row among the first
// headerScanLimit rows. Ties go to the earliest row.
func pickHeaderRow(rows [][]string) int {
	best, bestCount := 0, 0
	limit := min(len(rows), headerScanLimit)
	for i := 0; i < limit; i++ {
		count := 0
		for _, cell := range rows[i] {
			if cell != "" {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = i, count
		}
	}
	return best
}
