package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// число: знак, цифры (с разделителями тысяч), дробная часть, экспонента
var rxNumber = regexp.MustCompile(`^[-+]?(\d+|\d{1,3}( \d{3})+)?([.,]\d+)?([eE][-+]?\d+)?$`)

// "1,234": запятая перед ровно тремя цифрами может быть и разделителем тысяч, и дробной частью
var rxAmbiguousComma = regexp.MustCompile(`^[-+]?[1-9]\d{0,2},\d{3}$`)

var spaceRepl = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\u2009", " ", "\t", " ")

// ParseNumber распознаёт числа вида "42", "-3.5", "1 234,50", "1e3", "(12)".
// В отличие от грубой чистки строк, текст с буквами числом не считается: "A12" → false.
// Неоднозначные "1,234" тоже не число: остаются текстом как в исходной ячейке.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(spaceRepl.Replace(s))
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if !rxNumber.MatchString(s) || strings.Trim(s, "+-") == "" || rxAmbiguousComma.MatchString(s) {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// ParseInt: целое без дробной части и экспоненты ("007" тоже целое: 7).
func ParseInt(s string) (int64, bool) {
	s = strings.TrimSpace(spaceRepl.Replace(s))
	if s == "" || strings.ContainsAny(s, ".,eE") || !rxNumber.MatchString(s) {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	i, err := strconv.ParseInt(s, 10, 64)
	return i, err == nil
}
