package report

import (
	excelize "github.com/xuri/excelize/v2"

	"sheetdiff-service/internal/diff/model"
)

// SummaryRow: строка сводки изменений: одна запись на Difference.
// CellOld/CellNew: ссылки вида B7 (для добавленной/удалённой строки, диапазон A7:D7).
type SummaryRow struct {
	Type       model.ChangeType `json:"type"`
	Column     string           `json:"column,omitempty"`
	CellOld    string           `json:"cellOld,omitempty"`
	CellNew    string           `json:"cellNew,omitempty"`
	ValueOld   string           `json:"valueOld,omitempty"`
	ValueNew   string           `json:"valueNew,omitempty"`
	Similarity float64          `json:"similarity"`
}

// CellRef: ссылка на ячейку исходного листа: буква колонки + номер строки.
// Пусто, если колонки нет в таблице.
func CellRef(t model.Table, col string, row int) string {
	c := t.ColumnIndex(col)
	if c < 0 || row < 0 {
		return ""
	}
	ref, err := excelize.CoordinatesToCellName(c+1, t.RowNumber(row))
	if err != nil {
		return ""
	}
	return ref
}

// RowRange: диапазон занятых ячеек строки по колонкам из vals.
func RowRange(t model.Table, vals map[string]model.Value, row int) string {
	first, last := -1, -1
	for i, col := range t.Columns {
		if _, ok := vals[col]; !ok {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		first, last = 0, len(t.Columns)-1
	}
	if last < 0 {
		return ""
	}
	from := CellRef(t, t.Columns[first], row)
	if first == last {
		return from
	}
	return from + ":" + CellRef(t, t.Columns[last], row)
}

// Summary строит сводку в порядке записей результата.
func Summary(res model.Result) []SummaryRow {
	out := make([]SummaryRow, 0, len(res.Differences))
	for _, d := range res.Differences {
		s := SummaryRow{Type: d.Type, Column: d.Column, Similarity: d.Similarity}
		switch d.Type {
		case model.Modified:
			s.CellOld = CellRef(res.TableA, d.Column, d.RowOld)
			s.CellNew = CellRef(res.TableB, d.Column, d.RowNew)
			s.ValueOld = d.ValueOld.String()
			s.ValueNew = d.ValueNew.String()
		case model.Deleted:
			s.CellOld = RowRange(res.TableA, d.Values, d.RowOld)
		case model.Added:
			s.CellNew = RowRange(res.TableB, d.Values, d.RowNew)
		}
		out = append(out, s)
	}
	return out
}
