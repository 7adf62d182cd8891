package taxonomy

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// invisibleRunes drops byte-order marks and zero-width characters.
var invisibleRunes = strings.NewReplacer(
	"\uFEFF", "",
	"\u200B", "",
	"\u200C", "",
	"\u200D", "",
)

// NormalizeWhitespace trims s, removes byte-order marks and zero-width
// characters, and collapses every run of whitespace (including NBSP, tabs and
// line breaks) into a single space.
func NormalizeWhitespace(s string) string {
	if s == "" {
		return ""
	}
	s = invisibleRunes.Replace(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// NormalizeCell converts an arbitrary cell value into its canonical string form.
// It never panics: unknown types are rendered with fmt.
func NormalizeCell(v any) string {
	return NormalizeWhitespace(cellString(v))
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case fmt.Stringer:
		return safeStringer(val)
	case error:
		return val.Error()
	default:
		return fmt.Sprint(val)
	}
}

func safeStringer(s fmt.Stringer) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	return s.String()
}

// NormalizeRow normalizes every cell of a raw row.
func NormalizeRow[T any](row []T) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = NormalizeCell(cell)
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// dropBlankRows normalizes rows and removes the ones with no content left.
func dropBlankRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		normalized := NormalizeRow(row)
		if len(normalized) == 0 || isBlankRow(normalized) {
			continue
		}
		out = append(out, normalized)
	}
	return out
}
