package fileio

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	excelize "github.com/xuri/excelize/v2"

	"sheetdiff-service/internal/diff/model"
)

// readXLSX читает лист с сохранением типов: числа остаются числами,
// строковые ячейки остаются текстом (даже если похожи на число).
func readXLSX(b []byte, sheet string) ([][]model.Value, string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, "", fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", err
	}

	grid := make([][]model.Value, len(rows))
	for r, row := range rows {
		vals := make([]model.Value, len(row))
		for c, raw := range row {
			if raw == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				vals[c] = InferValue(raw)
				continue
			}
			typ, err := f.GetCellType(sheet, cell)
			if err != nil {
				typ = excelize.CellTypeUnset
			}
			vals[c] = xlsxValue(raw, typ)
		}
		grid[r] = vals
	}
	return grid, sheet, nil
}

// xlsxValue: значение по типу ячейки OOXML. Ячейки без типа и формулы
// с числовым результатом хранятся как числа.
func xlsxValue(raw string, typ excelize.CellType) model.Value {
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.Text(raw)
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return model.Int(int64(f))
		}
		return model.Float(f)
	default:
		return model.Text(raw)
	}
}
