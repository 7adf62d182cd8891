package taxonomy

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnreadableWorkbook = errors.New("failed to open workbook")
	ErrNoSheets           = errors.New("workbook has no sheets")
)

// ReadWorkbook returns the cells of the first sheet as a raw grid. Other sheets
// are ignored.
func ReadWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrUnreadableWorkbook, sheets[0], err)
	}
	return rows, nil
}
