package taxonomy

// ParsedSubcategory is a subcategory label in file order.
type ParsedSubcategory struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

// ParsedCategory is a category with its de-duplicated subcategories.
type ParsedCategory struct {
	Name          string              `json:"name"`
	SortOrder     int                 `json:"sortOrder"`
	Subcategories []ParsedSubcategory `json:"subcategories"`
}

// addSubcategory appends name unless an identical label is already present.
func (c *ParsedCategory) addSubcategory(name string) {
	for _, sub := range c.Subcategories {
		if sub.Name == name {
			return
		}
	}
	c.Subcategories = append(c.Subcategories, ParsedSubcategory{
		Name:      name,
		SortOrder: len(c.Subcategories),
	})
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func (l ListLayout) build(rows [][]string, filter DescriptionFilter) []ParsedCategory {
	categories := make([]ParsedCategory, 0)
	index := make(map[string]int)

	for _, row := range rows[l.HeaderIndex+1:] {
		name := cellAt(row, 0)
		if name == "" {
			continue
		}
		pos, ok := index[name]
		if !ok {
			pos = len(categories)
			index[name] = pos
			categories = append(categories, ParsedCategory{
				Name:          name,
				SortOrder:     pos,
				Subcategories: make([]ParsedSubcategory, 0),
			})
		}
		if sub := cellAt(row, 1); filter.Accepts(sub) {
			categories[pos].addSubcategory(sub)
		}
	}
	return categories
}

func (l ColumnLayout) build(rows [][]string, filter DescriptionFilter) []ParsedCategory {
	categories := make([]ParsedCategory, 0)
	if l.HeaderIndex >= len(rows) {
		return categories
	}

	for col, name := range rows[l.HeaderIndex] {
		if name == "" {
			continue
		}
		category := ParsedCategory{
			Name:          name,
			SortOrder:     len(categories),
			Subcategories: make([]ParsedSubcategory, 0),
		}
		for _, row := range rows[l.HeaderIndex+1:] {
			if cell := cellAt(row, col); filter.Accepts(cell) {
				category.addSubcategory(cell)
			}
		}
		categories = append(categories, category)
	}
	return categories
}
