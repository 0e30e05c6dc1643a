package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"sheetdiff-service/internal/diff/model"
	"sheetdiff-service/internal/utils"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file")
	ErrEmptySheet      = errors.New("empty sheet")
	ErrSheetNotFound   = errors.New("sheet not found")
)

// LoadOptions: параметры чтения одного файла.
type LoadOptions struct {
	HeaderRow int    // строка заголовков (1-based)
	Sheet     string // имя листа; пусто = первый лист
	Shapes    bool   // извлекать графические объекты (только xlsx)
}

// Document: таблица и графические объекты листа.
// ShapeErr не мешает сравнению данных: фигуры при ошибке просто пустые.
type Document struct {
	Name     string
	Sheet    string
	Table    model.Table
	Shapes   []model.Shape
	ShapeErr error
}

// Load: выберет парсер по расширению и прочитает таблицу (и фигуры для xlsx).
func Load(r io.Reader, filename string, opt LoadOptions) (Document, error) {
	if opt.HeaderRow <= 0 {
		opt.HeaderRow = 1
	}
	doc := Document{Name: filepath.Base(filename)}

	b, err := io.ReadAll(r)
	if err != nil {
		return doc, err
	}

	var grid [][]model.Value
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		grid, doc.Sheet, err = readXLSX(b, opt.Sheet)
	case ".xls":
		grid, doc.Sheet, err = readXLS(b, opt.Sheet)
	case ".csv", ".txt":
		grid, err = readCSV(bytes.NewReader(b))
	default:
		return doc, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", doc.Name, err)
	}

	doc.Table, err = buildTable(grid, opt.HeaderRow)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", doc.Name, err)
	}

	if opt.Shapes && ext != ".xls" && ext != ".csv" && ext != ".txt" {
		doc.Shapes, doc.ShapeErr = ReadShapes(b, doc.Sheet)
		if doc.ShapeErr != nil {
			doc.Shapes = []model.Shape{}
		}
	}
	return doc, nil
}

// buildTable: заголовок из строки headerRow, данные ниже.
// Пустые строки в середине сохраняются (ссылки на ячейки не съезжают), хвостовые отбрасываются.
func buildTable(grid [][]model.Value, headerRow int) (model.Table, error) {
	idx := headerRow - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(grid) {
		return model.Table{}, ErrEmptySheet
	}

	width := 0
	for r := idx; r < len(grid); r++ {
		width = max(width, lastFilled(grid[r])+1)
	}
	if width == 0 {
		return model.Table{}, ErrEmptySheet
	}

	names := make([]string, width)
	for c := 0; c < width && c < len(grid[idx]); c++ {
		names[c] = grid[idx][c].String()
	}
	headers := pickHeader(names)

	last := len(grid) - 1
	for last > idx && lastFilled(grid[last]) < 0 {
		last--
	}

	t := model.Table{
		Columns:   headers,
		Rows:      make([]model.Row, 0, last-idx),
		HeaderRow: idx + 1,
	}
	for r := idx + 1; r <= last; r++ {
		row := model.Row{}
		for c, v := range grid[r] {
			if c < width && !v.IsMissing() {
				row[headers[c]] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func lastFilled(row []model.Value) int {
	for c := len(row) - 1; c >= 0; c-- {
		if !row[c].IsMissing() {
			return c
		}
	}
	return -1
}

// pickHeader: подставляет "Column N" для пустых заголовков и разводит дубли: "Имя", "Имя_2".
func pickHeader(h []string) []string {
	out := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, v := range h {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		base := v
		for n := seen[base]; ; n++ {
			if n > 0 {
				v = base + "_" + strconv.Itoa(n+1)
			}
			if _, dup := seen[v]; !dup {
				seen[base] = n + 1
				break
			}
		}
		seen[v] = max(seen[v], 1)
		out[i] = v
	}
	return out
}

// InferValue: типизация текстовой ячейки (CSV, XLS): пусто → Missing,
// целое → Int, число → Float, иначе текст. Коды с ведущим нулём ("007") остаются текстом.
func InferValue(s string) model.Value {
	t := strings.TrimSpace(s)
	if t == "" {
		return model.Missing()
	}
	if hasLeadingZero(t) {
		return model.Text(s)
	}
	if i, ok := utils.ParseInt(t); ok {
		return model.Int(i)
	}
	if f, ok := utils.ParseNumber(t); ok {
		return model.Float(f)
	}
	return model.Text(s)
}

func hasLeadingZero(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9'
}

func inferRow(rec []string) []model.Value {
	out := make([]model.Value, len(rec))
	for i, s := range rec {
		out[i] = InferValue(s)
	}
	return out
}
