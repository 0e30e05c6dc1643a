package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrEmptyColumnName = errors.New("empty column name")
	ErrUnknownColumn   = errors.New("row references unknown column")
	ErrInvalidOptions  = errors.New("invalid options")
)

// TableError: структурная ошибка входной таблицы.
type TableError struct {
	Side   string // "A" | "B"
	Row    int    // -1, если ошибка в заголовке
	Column string
	Err    error
}

func (e *TableError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("table %s: column %q: %v", e.Side, e.Column, e.Err)
	}
	return fmt.Sprintf("table %s: row %d column %q: %v", e.Side, e.Row, e.Column, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }

// Validate проверяет таблицу на структурную корректность:
// непустые и уникальные имена колонок, строки без чужих колонок.
func (t Table) Validate(side string) error {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if c == "" {
			return &TableError{Side: side, Row: -1, Column: c, Err: ErrEmptyColumnName}
		}
		if _, dup := seen[c]; dup {
			return &TableError{Side: side, Row: -1, Column: c, Err: ErrDuplicateColumn}
		}
		seen[c] = struct{}{}
	}
	for i, r := range t.Rows {
		// ключи по порядку: при нескольких чужих колонках ошибка одна и та же
		for _, c := range slices.Sorted(maps.Keys(r)) {
			if _, ok := seen[c]; !ok {
				return &TableError{Side: side, Row: i, Column: c, Err: ErrUnknownColumn}
			}
		}
	}
	return nil
}
