package taxonomy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(DefaultDescriptionFilter())
}

func subNames(c ParsedCategory) []string {
	names := make([]string, 0, len(c.Subcategories))
	for _, sub := range c.Subcategories {
		names = append(names, sub.Name)
	}
	return names
}

func TestParseCSV_ListLayout(t *testing.T) {
	data := "category_ru;subcategory_ru\n" +
		"Смесители;Джойстики\n" +
		"Смесители;Картриджи\n" +
		"Сифоны;Трапы\n"

	result := newTestParser().ParseCSV([]byte(data))

	require.Empty(t, result.Errors)
	assert.Equal(t, LayoutList, result.Layout)
	require.Len(t, result.Categories, 2)
	assert.Equal(t, 3, result.SubcategoryCount())

	assert.Equal(t, "Смесители", result.Categories[0].Name)
	assert.Equal(t, 0, result.Categories[0].SortOrder)
	assert.Equal(t, []string{"Джойстики", "Картриджи"}, subNames(result.Categories[0]))
	assert.Equal(t, 1, result.Categories[0].Subcategories[1].SortOrder)

	assert.Equal(t, "Сифоны", result.Categories[1].Name)
	assert.Equal(t, 1, result.Categories[1].SortOrder)
	assert.Equal(t, []string{"Трапы"}, subNames(result.Categories[1]))
}

func TestParseRows_ColumnLayout(t *testing.T) {
	rows := [][]string{
		{"Трубы", "Фитинги"},
		{"ПВХ", "Муфты"},
		{"ПНД", ""},
	}

	result := newTestParser().ParseRows(rows)

	require.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, LayoutColumn, result.Layout)
	require.Len(t, result.Categories, 2)
	assert.Equal(t, "Трубы", result.Categories[0].Name)
	assert.Equal(t, []string{"ПВХ", "ПНД"}, subNames(result.Categories[0]))
	assert.Equal(t, "Фитинги", result.Categories[1].Name)
	assert.Equal(t, 1, result.Categories[1].SortOrder)
	assert.Equal(t, []string{"Муфты"}, subNames(result.Categories[1]))
}

func TestParseRows_ListLayoutSkipsBlankCategoryAndDuplicates(t *testing.T) {
	rows := [][]string{
		{"Прайс-лист"},
		{"Категория", "Подкатегория"},
		{"Трубы", "ПВХ"},
		{"", "Сирота"},
		{"Трубы", "ПВХ"},
		{"Трубы", "пвх"},
		{"Фитинги", ""},
	}

	result := newTestParser().ParseRows(rows)

	require.Len(t, result.Categories, 2)
	assert.Equal(t, []string{"ПВХ", "пвх"}, subNames(result.Categories[0]))
	assert.Equal(t, "Фитинги", result.Categories[1].Name)
	assert.Empty(t, result.Categories[1].Subcategories)
}

func TestParseRows_FiltersDescriptions(t *testing.T) {
	longText := "Эта подкатегория содержит очень много слов и явно является описанием товара а не меткой"
	rows := [][]string{
		{"category", "subcategory"},
		{"Трубы", longText},
		{"Трубы", "ПНД"},
	}

	result := newTestParser().ParseRows(rows)

	require.Len(t, result.Categories, 1)
	assert.Equal(t, []string{"ПНД"}, subNames(result.Categories[0]))
}

func TestParseRows_ColumnLayoutFiltersDescriptions(t *testing.T) {
	rows := [][]string{
		{"Трубы"},
		{"ПВХ"},
		{"Отличные трубы для дома. Подходят для любых задач"},
	}

	result := newTestParser().ParseRows(rows)

	require.Len(t, result.Categories, 1)
	assert.Equal(t, []string{"ПВХ"}, subNames(result.Categories[0]))
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "single category header")
}

func TestParseRows_Empty(t *testing.T) {
	result := newTestParser().ParseRows([][]string{{"", " "}, {}})

	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Categories)
	assert.Equal(t, []string{MsgNoRows}, result.Warnings)
}

func TestParseRows_NoCategoriesWarning(t *testing.T) {
	rows := [][]string{
		{"category", "subcategory"},
		{"", "ПВХ"},
	}

	result := newTestParser().ParseRows(rows)

	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Categories)
	assert.Equal(t, []string{MsgNoCategories}, result.Warnings)
}

func TestParseRows_Deterministic(t *testing.T) {
	rows := [][]string{
		{"category", "subcategory"},
		{"Я", "б"},
		{"А", "в"},
		{"Я", "а"},
	}

	first := newTestParser().ParseRows(rows)
	second := newTestParser().ParseRows(rows)

	assert.Equal(t, first, second)
	assert.Equal(t, "Я", first.Categories[0].Name)
	assert.Equal(t, []string{"б", "а"}, subNames(first.Categories[0]))
}

func TestParse_UnsupportedFormat(t *testing.T) {
	result := newTestParser().Parse(Format("ods"), []byte("x"))

	require.Len(t, result.Errors, 1)
	assert.True(t, result.HasErrors())
}

func TestParseCSV_CustomFilter(t *testing.T) {
	parser := NewParser(DescriptionFilter{MaxWords: 3})
	data := "category,subcategory\nТрубы,один два три\nТрубы,один два\n"

	result := parser.ParseCSV([]byte(data))

	require.Len(t, result.Categories, 1)
	assert.Equal(t, []string{"один два"}, subNames(result.Categories[0]))
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        Format
		ok          bool
	}{
		{"csv extension", "Taxonomy.CSV", "application/octet-stream", FormatCSV, true},
		{"xlsx extension", "taxonomy.xlsx", "", FormatXLSX, true},
		{"csv content type", "upload", "text/csv; charset=utf-8", FormatCSV, true},
		{"xlsx content type", "upload", xlsxContentType, FormatXLSX, true},
		{"unsupported", "taxonomy.xls", "application/vnd.ms-excel", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectFormat(tt.filename, tt.contentType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptionFilter(t *testing.T) {
	filter := DefaultDescriptionFilter()

	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"ПВХ", false},
		{"Муфты, тройники", false},
		{"один два три четыре пять шесть семь восемь девять десять одиннадцать", false},
		{"один два три четыре пять шесть семь восемь девять десять одиннадцать двенадцать", true},
		{strings.Repeat("я", 79), false},
		{strings.Repeat("я", 80), true},
		{"Хороший товар. Берите пока есть", false},
		{"Хороший товар. Берите пока есть скидка", true},
		{"трубы, фитинги, муфты, краны, тройники, отводы, заглушки", false},
		{"трубы, фитинги, муфты, краны, тройники, отводы, заглушки, хомуты", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, filter.IsDescription(tt.value), "value %q", tt.value)
	}
}
