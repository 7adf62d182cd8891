package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want Layout
	}{
		{
			name: "english header",
			rows: [][]string{{"category_ru", "subcategory_ru"}, {"A", "B"}},
			want: ListLayout{HeaderIndex: 0},
		},
		{
			name: "case insensitive",
			rows: [][]string{{"CATEGORY", "SubCategory"}},
			want: ListLayout{HeaderIndex: 0},
		},
		{
			name: "russian header after title",
			rows: [][]string{{"Каталог 2024"}, {"Категория", "Подкатегория"}, {"Трубы", "ПВХ"}},
			want: ListLayout{HeaderIndex: 1},
		},
		{
			name: "swapped header is not a list",
			rows: [][]string{{"Подкатегория", "Категория"}, {"ПВХ", "Трубы"}},
			want: ColumnLayout{HeaderIndex: 0},
		},
		{
			name: "column grid",
			rows: [][]string{{"Трубы", "Фитинги"}, {"ПВХ", "Муфты"}, {"ПНД", ""}},
			want: ColumnLayout{HeaderIndex: 0},
		},
		{
			name: "densest row wins",
			rows: [][]string{{"Прайс"}, {"Трубы", "Фитинги", "Краны"}, {"ПВХ", "", ""}},
			want: ColumnLayout{HeaderIndex: 1},
		},
		{
			name: "tie goes to earliest row",
			rows: [][]string{{"A", "B"}, {"C", "D"}},
			want: ColumnLayout{HeaderIndex: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectLayout(tt.rows)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, DetectLayout(tt.rows))
		})
	}
}

func TestPickHeaderRow_ScansOnlyLeadingRows(t *testing.T) {
	rows := make([][]string, 0, headerScanLimit+1)
	for i := 0; i < headerScanLimit; i++ {
		rows = append(rows, []string{"x"})
	}
	rows = append(rows, []string{"a", "b", "c", "d"})

	assert.Equal(t, 0, pickHeaderRow(rows))
}

func TestDetectLayout_ColumnGridKeepsFirstRowAsHeader(t *testing.T) {
	rows := [][]string{{"Трубы", "Фитинги"}, {"ПВХ", "Муфты"}, {"ПНД", ""}}

	layout := DetectLayout(rows)

	assert.Equal(t, LayoutColumn, layout.Kind())
	assert.Equal(t, 0, layout.Header())
	assert.Equal(t, 0, pickHeaderRow(rows))
}

func TestLayoutKinds(t *testing.T) {
	assert.Equal(t, LayoutList, ListLayout{}.Kind())
	assert.Equal(t, LayoutColumn, ColumnLayout{}.Kind())
	assert.Equal(t, 3, ColumnLayout{HeaderIndex: 3}.Header())
}
