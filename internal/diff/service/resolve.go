package service

import (
	"regexp"
	"strings"
)

var rxHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeaderKey: имя колонки для нестрогого сравнения: нижний регистр,
// без знаков препинания, ё→е, одиночные пробелы.
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "ё", "е").Replace(s)
	s = rxHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ResolveColumn ищет реальное имя колонки по желаемому.
// Варианты через "|" ("Артикул|Код"): сначала точное совпадение, затем
// нормализованное, затем вхождение одного в другое (побеждает самый длинный вариант).
// "": если ничего не подошло.
func ResolveColumn(columns []string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	norm := make([]string, 0, len(alts))
	for _, a := range alts {
		a = strings.TrimSpace(a)
		for _, c := range columns {
			if c == a {
				return c
			}
		}
		if n := normHeaderKey(a); n != "" {
			norm = append(norm, n)
		}
	}

	for _, c := range columns {
		nc := normHeaderKey(c)
		for _, n := range norm {
			if nc == n {
				return c
			}
		}
	}

	best, bestScore := "", 0
	for _, c := range columns {
		nc := normHeaderKey(c)
		if nc == "" {
			continue
		}
		score := 0
		for _, n := range norm {
			if strings.Contains(nc, n) || strings.Contains(n, nc) {
				score = max(score, len(n))
			}
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// ResolveColumns: ResolveColumn для списка; ненайденные и повторы отбрасываются.
func ResolveColumns(columns []string, wants []string) []string {
	out := make([]string, 0, len(wants))
	seen := make(map[string]bool, len(wants))
	for _, w := range wants {
		c := ResolveColumn(columns, w)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
