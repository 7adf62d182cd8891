package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}

	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "Категория"))
	require.NoError(t, f.SetCellValue("Notes", "B1", "Подкатегория"))
	require.NoError(t, f.SetCellValue("Notes", "A2", "Игнорируется"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadWorkbook_FirstSheetOnly(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Категория", "Подкатегория"},
		{"Трубы", "ПВХ"},
	})

	rows, err := ReadWorkbook(data)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Категория", "Подкатегория"}, {"Трубы", "ПВХ"}}, rows)
}

func TestParseWorkbook_ListLayout(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Категория", "Подкатегория"},
		{"Трубы", "ПВХ"},
		{"Трубы", 110},
		{" Фитинги ", "Муфты"},
	})

	result := newTestParser().ParseWorkbook(data)

	require.Empty(t, result.Errors)
	assert.Equal(t, LayoutList, result.Layout)
	require.Len(t, result.Categories, 2)
	assert.Equal(t, []string{"ПВХ", "110"}, subNames(result.Categories[0]))
	assert.Equal(t, "Фитинги", result.Categories[1].Name)
}

func TestParseWorkbook_ColumnLayout(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Трубы", "Фитинги"},
		{"ПВХ", "Муфты"},
		{"ПНД"},
	})

	result := newTestParser().ParseWorkbook(data)

	require.Empty(t, result.Errors)
	assert.Equal(t, LayoutColumn, result.Layout)
	require.Len(t, result.Categories, 2)
	assert.Equal(t, []string{"ПВХ", "ПНД"}, subNames(result.Categories[0]))
	assert.Equal(t, []string{"Муфты"}, subNames(result.Categories[1]))
}

func TestParseWorkbook_Corrupt(t *testing.T) {
	result := newTestParser().ParseWorkbook([]byte("definitely not a zip archive"))

	assert.Equal(t, []string{MsgParseFailed}, result.Errors)
	assert.Empty(t, result.Categories)
}

func TestParse_DispatchesWorkbook(t *testing.T) {
	data := buildWorkbook(t, [][]any{{"category", "subcategory"}, {"A", "B"}})

	result := newTestParser().Parse(FormatXLSX, data)

	require.Len(t, result.Categories, 1)
	assert.Equal(t, "A", result.Categories[0].Name)
}
