package service

import (
	"sort"
	"strings"

	"sheetdiff-service/internal/diff/model"
)

// keySet: ключевые колонки сравнения.
type keySet struct {
	columns     []string // неординальные ключевые колонки, по убыванию приоритета
	fingerprint []string // подмножество columns, из которого строится отпечаток
	ordinal     []string // колонки-номера строк («No», «番号»)
}

func (ks keySet) isOrdinal(col string) bool {
	for _, c := range ks.ordinal {
		if c == col {
			return true
		}
	}
	return false
}

// commonColumns: пересечение колонок, в порядке таблицы A.
func commonColumns(a, b model.Table) []string {
	inB := make(map[string]struct{}, len(b.Columns))
	for _, c := range b.Columns {
		inB[c] = struct{}{}
	}
	out := make([]string, 0, len(a.Columns))
	for _, c := range a.Columns {
		if _, ok := inB[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func isOrdinalName(col string, opt model.Options) bool {
	n := normHeader(col)
	for _, o := range opt.OrdinalNames {
		if n == normHeader(o) {
			return true
		}
	}
	return false
}

// patternRank: индекс первого шаблона, входящего в имя колонки, или -1.
func patternRank(col string, patterns []string) int {
	n := normHeader(col)
	for i, p := range patterns {
		p = normHeader(p)
		if p != "" && strings.Contains(n, p) {
			return i
		}
	}
	return -1
}

// selectKeys выбирает ключевые колонки среди общих.
//
// Явно заданные opt.KeyColumns имеют приоритет. Иначе берутся колонки, имя которых
// содержит один из opt.KeyPatterns; они упорядочены по приоритету шаблона, а в отпечаток
// идут только колонки самого приоритетного найденного шаблона (id важнее name).
// Если ничего не подошло, берутся первые opt.MaxFallbackKeys колонок.
// Эвристика может ошибаться на таблицах без «говорящих» имён колонок.
func selectKeys(common []string, opt model.Options) keySet {
	var ks keySet
	plain := make([]string, 0, len(common))
	for _, c := range common {
		if isOrdinalName(c, opt) {
			ks.ordinal = append(ks.ordinal, c)
			continue
		}
		plain = append(plain, c)
	}

	if len(opt.KeyColumns) > 0 {
		isPlain := make(map[string]bool, len(plain))
		for _, c := range plain {
			isPlain[c] = true
		}
		for _, k := range opt.KeyColumns {
			if isPlain[k] {
				ks.columns = append(ks.columns, k)
				isPlain[k] = false
			}
		}
		if len(ks.columns) > 0 {
			ks.fingerprint = ks.columns
			return ks
		}
	}

	type ranked struct {
		col  string
		rank int
	}
	var hits []ranked
	for _, c := range plain {
		if r := patternRank(c, opt.KeyPatterns); r >= 0 {
			hits = append(hits, ranked{c, r})
		}
	}
	if len(hits) > 0 {
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })
		top := hits[0].rank
		for _, h := range hits {
			ks.columns = append(ks.columns, h.col)
			if h.rank == top {
				ks.fingerprint = append(ks.fingerprint, h.col)
			}
		}
		return ks
	}

	n := opt.MaxFallbackKeys
	if n > len(plain) {
		n = len(plain)
	}
	ks.columns = append([]string(nil), plain[:n]...)
	ks.fingerprint = ks.columns
	return ks
}

// columnWeights: веса колонок для оценки похожести строк.
func columnWeights(common []string, ks keySet, opt model.Options) map[string]float64 {
	w := make(map[string]float64, len(common))
	for _, c := range common {
		w[c] = opt.BaseWeight
	}
	for i, c := range ks.columns {
		if i < opt.TopKeyCount {
			w[c] = opt.KeyWeightTop
		} else {
			w[c] = opt.KeyWeight
		}
	}
	for _, c := range ks.ordinal {
		w[c] = opt.OrdinalWeight
	}
	return w
}
