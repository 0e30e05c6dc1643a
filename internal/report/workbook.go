package report

import (
	"fmt"
	"io"
	"strings"

	excelize "github.com/xuri/excelize/v2"

	"sheetdiff-service/internal/diff/model"
)

const (
	SheetA       = "File1"
	SheetB       = "File2"
	SheetSummary = "Summary"
	SheetShapes  = "Shapes"
)

// Цвета заливки по категории изменения.
var fills = map[model.ChangeType]string{
	model.Added:    "D4EDDA",
	model.Deleted:  "F8D7DA",
	model.Modified: "FFF3CD",
}

var summaryHeader = []any{"Type", "Column", "Cell (A)", "Cell (B)", "Old value", "New value", "Similarity"}

var shapesHeader = []any{"Type", "Index (A)", "Index (B)", "Object", "X", "Y", "Changed"}

// WriteWorkbook пишет xlsx-отчёт: обе таблицы с подсветкой ячеек, сводку
// и (если есть) изменения фигур. Таблицы кладутся на те же строки, что и в
// исходных листах, чтобы ссылки из сводки совпадали.
func WriteWorkbook(w io.Writer, res model.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetA); err != nil {
		return err
	}
	for _, name := range []string{SheetB, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	styles, err := fillStyles(f)
	if err != nil {
		return err
	}

	if err := writeTable(f, SheetA, res.TableA, res.StylesA, styles); err != nil {
		return fmt.Errorf("%s: %w", SheetA, err)
	}
	if err := writeTable(f, SheetB, res.TableB, res.StylesB, styles); err != nil {
		return fmt.Errorf("%s: %w", SheetB, err)
	}
	if err := writeSummary(f, Summary(res), styles); err != nil {
		return fmt.Errorf("%s: %w", SheetSummary, err)
	}
	if len(res.Shapes) > 0 {
		if err := writeShapes(f, res.Shapes, styles); err != nil {
			return fmt.Errorf("%s: %w", SheetShapes, err)
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func fillStyles(f *excelize.File) (map[model.ChangeType]int, error) {
	out := make(map[model.ChangeType]int, len(fills))
	for tag, color := range fills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return nil, err
		}
		out[tag] = id
	}
	return out, nil
}

func writeTable(f *excelize.File, sheet string, t model.Table, marks []model.StyleMark, styles map[model.ChangeType]int) error {
	header := t.HeaderRow
	if header <= 0 {
		header = 1
	}
	hdr := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		hdr[i] = c
	}
	if err := f.SetSheetRow(sheet, cellName(1, header), &hdr); err != nil {
		return err
	}

	for i, r := range t.Rows {
		vals := make([]any, len(t.Columns))
		for c, col := range t.Columns {
			vals[c] = r.Get(col).Any()
		}
		if err := f.SetSheetRow(sheet, cellName(1, t.RowNumber(i)), &vals); err != nil {
			return err
		}
	}

	for _, m := range marks {
		ref := CellRef(t, m.Column, m.Row)
		if ref == "" {
			continue
		}
		if err := f.SetCellStyle(sheet, ref, ref, styles[m.Tag]); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, rows []SummaryRow, styles map[model.ChangeType]int) error {
	if err := f.SetSheetRow(SheetSummary, "A1", &summaryHeader); err != nil {
		return err
	}
	for i, s := range rows {
		vals := []any{string(s.Type), s.Column, s.CellOld, s.CellNew, s.ValueOld, s.ValueNew, s.Similarity}
		cell := cellName(1, i+2)
		if err := f.SetSheetRow(SheetSummary, cell, &vals); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetSummary, cell, cell, styles[s.Type]); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "G", 16)
}

func writeShapes(f *excelize.File, diffs []model.ShapeDifference, styles map[model.ChangeType]int) error {
	if _, err := f.NewSheet(SheetShapes); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetShapes, "A1", &shapesHeader); err != nil {
		return err
	}
	for i, d := range diffs {
		s := d.New
		if s == nil {
			s = d.Old
		}
		var kind string
		var x, y any
		if s != nil {
			kind, x, y = s.Type, s.X, s.Y
		}
		vals := []any{string(d.Type), shapeIndex(d.IndexOld), shapeIndex(d.IndexNew), kind, x, y, strings.Join(d.Fields, ", ")}
		cell := cellName(1, i+2)
		if err := f.SetSheetRow(SheetShapes, cell, &vals); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetShapes, cell, cell, styles[d.Type]); err != nil {
			return err
		}
	}
	return nil
}

func shapeIndex(i int) any {
	if i == model.NoRow {
		return nil
	}
	return i
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
