// Надёжный парсер .xls: фиксируем ширину таблицы сами и читаем все ячейки до неё.
package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	xls "github.com/extrame/xls"

	"sheetdiff-service/internal/diff/model"
)

var cellSpaces = strings.NewReplacer("\u00A0", " ", "\u202F", " ")

func normalizeCell(s string) string {
	return strings.TrimSpace(cellSpaces.Replace(s))
}

// вычисляем "реальную" ширину: пробегаем разумное число колонок и ищем непустые
func computeMaxCols(sheet *xls.WorkSheet) int {
	const probeMax = 512
	maxCols := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		for j := probeMax - 1; j >= maxCols; j-- {
			if normalizeCell(r.Col(j)) != "" {
				maxCols = j + 1
				break
			}
		}
	}
	return maxCols
}

func readXLS(b []byte, name string) ([][]model.Value, string, error) {
	// .xls из 1С чаще всего cp1251, но иногда UTF-8/KOI8-R
	var wb *xls.WorkBook
	var lastErr error
	for _, ch := range []string{"windows-1251", "utf-8", "koi8-r"} {
		w, err := xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && w != nil {
			wb = w
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return nil, "", lastErr
	}

	sheet := wb.GetSheet(0)
	if name != "" {
		sheet = nil
		for i := 0; i < wb.NumSheets(); i++ {
			if s := wb.GetSheet(i); s != nil && s.Name == name {
				sheet = s
				break
			}
		}
		if sheet == nil {
			return nil, "", fmt.Errorf("%w: %s", ErrSheetNotFound, name)
		}
	}
	if sheet == nil {
		return nil, "", ErrEmptySheet
	}

	// не полагаемся на Row.LastCol()
	maxCols := computeMaxCols(sheet)
	grid := make([][]model.Value, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, maxCols)
		if row != nil {
			for j := 0; j < maxCols; j++ {
				cols[j] = normalizeCell(row.Col(j))
			}
		}
		grid = append(grid, inferRow(cols))
	}
	return grid, sheet.Name, nil
}
