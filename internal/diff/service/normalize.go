package service

import (
	"math"
	"strconv"
	"strings"

	"sheetdiff-service/internal/diff/model"
)

// NormalizeValue: каноническая строка значения для сравнения:
//
//	Missing        → ""
//	целое (и float без дробной части) → "5"
//	float          → 6 знаков после точки, хвостовые нули и точка срезаны
//	текст          → без крайних пробелов, нижний регистр; пробелы внутри значимы
func NormalizeValue(v model.Value) string {
	switch v.Kind {
	case model.KindMissing:
		return ""
	case model.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case model.KindFloat:
		return formatFloat(v.Float)
	case model.KindText:
		return strings.ToLower(strings.TrimSpace(v.Text))
	default:
		return strings.TrimSpace(v.String())
	}
}

// граница точного представления int64 во float64
const maxExactInt = 1 << 53

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 0):
		return strconv.FormatFloat(f, 'f', -1, 64)
	case f == math.Trunc(f) && math.Abs(f) <= maxExactInt:
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// Схлопывание пробелов
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normHeader: имя колонки без регистра и лишних пробелов (для эвристик).
func normHeader(s string) string {
	return strings.ToLower(collapseSpaces(s))
}
