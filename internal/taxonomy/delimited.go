package taxonomy

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	utf8BOM   = []byte("\xef\xbb\xbf")
	lineBreak = regexp.MustCompile(`\r?\n`)
)

// SniffDelimiter picks the field separator for a delimited text file. Only the
// first non-blank line is inspected: later lines may legitimately contain commas
// inside values. Semicolon wins only when it strictly outnumbers commas.
func SniffDelimiter(text string) rune {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}
		return ','
	}
	return ','
}

// decodeText returns the file content as UTF-8 without a byte-order mark.
// Input that is not valid UTF-8 is treated as Windows-1251.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode windows-1251: %w", err)
	}
	return string(decoded), nil
}

// ReadDelimited tokenizes a CSV-like file into raw rows, one row per line.
// A quote toggles quoted state wherever it appears and a doubled quote inside
// quotes is a literal quote. Quoted state never carries over to the next line.
func ReadDelimited(data []byte) ([][]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	delimiter := SniffDelimiter(text)
	var rows [][]string
	for _, line := range lineBreak.Split(text, -1) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitLine(line, delimiter))
	}
	return rows, nil
}

func splitLine(line string, delimiter rune) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == delimiter && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	return append(fields, field.String())
}
