package service

import "sheetdiff-service/internal/diff/model"

// classifier собирает записи об изменениях и стили ячеек.
type classifier struct {
	a, b    model.Table
	columns []string // общие колонки без номеров строк
	common  []string
	res     *model.Result
}

func newClassifier(a, b model.Table, common []string, ks keySet, res *model.Result) *classifier {
	cols := make([]string, 0, len(common))
	for _, c := range common {
		if !ks.isOrdinal(c) {
			cols = append(cols, c)
		}
	}
	return &classifier{a: a, b: b, columns: cols, common: common, res: res}
}

// compareCells: поячеечное сравнение пары. Различие только в номере строки
// изменением не считается.
func (c *classifier) compareCells(m model.Match) {
	ra, rb := c.a.Rows[m.Old], c.b.Rows[m.New]
	for _, col := range c.columns {
		va, vb := ra.Get(col), rb.Get(col)
		if NormalizeValue(va) == NormalizeValue(vb) {
			continue
		}
		c.res.Differences = append(c.res.Differences,
			model.NewModified(col, m.Old, m.New, va, vb, m.Similarity))
		c.res.StylesA = append(c.res.StylesA, model.StyleMark{Column: col, Row: m.Old, Tag: model.Modified})
		c.res.StylesB = append(c.res.StylesB, model.StyleMark{Column: col, Row: m.New, Tag: model.Modified})
		c.res.Stats.ModifiedCells++
	}
}

func (c *classifier) deleted(i int) {
	vals := c.presentValues(c.a.Rows[i])
	c.res.Differences = append(c.res.Differences, model.NewDeleted(i, vals))
	c.res.StylesA = append(c.res.StylesA, c.marks(vals, i, model.Deleted)...)
	c.res.Stats.Deleted++
}

func (c *classifier) added(j int) {
	vals := c.presentValues(c.b.Rows[j])
	c.res.Differences = append(c.res.Differences, model.NewAdded(j, vals))
	c.res.StylesB = append(c.res.StylesB, c.marks(vals, j, model.Added)...)
	c.res.Stats.Added++
}

// presentValues: значения общих колонок строки без Missing.
func (c *classifier) presentValues(r model.Row) map[string]model.Value {
	out := make(map[string]model.Value, len(c.common))
	for _, col := range c.common {
		if v := r.Get(col); !v.IsMissing() {
			out[col] = v
		}
	}
	return out
}

// marks: стили ячеек в порядке общих колонок.
func (c *classifier) marks(vals map[string]model.Value, row int, tag model.ChangeType) []model.StyleMark {
	out := make([]model.StyleMark, 0, len(vals))
	for _, col := range c.common {
		if _, ok := vals[col]; ok {
			out = append(out, model.StyleMark{Column: col, Row: row, Tag: tag})
		}
	}
	return out
}
