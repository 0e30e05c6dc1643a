package service

import (
	"math"

	"sheetdiff-service/internal/diff/model"
)

// scorer: взвешенная доля совпадения колонок двух строк.
type scorer struct {
	columns []string
	weights map[string]float64
	total   float64
	metric  model.StringMetric
}

func newScorer(common []string, weights map[string]float64, metric model.StringMetric) scorer {
	s := scorer{columns: common, weights: weights, metric: metric}
	for _, c := range common {
		s.total += weights[c]
	}
	return s
}

// score возвращает значение в [0..1]; без общих колонок (или с нулевым весом), 0.
func (s scorer) score(a, b model.Row) float64 {
	if len(s.columns) == 0 || s.total <= 0 {
		return 0
	}
	sum := 0.0
	for _, c := range s.columns {
		sum += s.weights[c] * cellSimilarity(a.Get(c), b.Get(c), s.metric)
	}
	return clamp01(sum / s.total)
}

func cellSimilarity(a, b model.Value, metric model.StringMetric) float64 {
	switch {
	case a.IsMissing() && b.IsMissing():
		return 1
	case a.IsMissing() || b.IsMissing():
		return 0
	}
	if x, ok := a.Number(); ok {
		if y, ok := b.Number(); ok {
			return numericSimilarity(x, y)
		}
	}
	na, nb := NormalizeValue(a), NormalizeValue(b)
	if na == nb {
		return 1
	}
	if metric == model.MetricDamerau {
		return damerauSimilarity(na, nb)
	}
	return positionalSimilarity(na, nb)
}

// numericSimilarity: 1 - |a-b|/max(|a|,|b|), не меньше 0.
func numericSimilarity(a, b float64) float64 {
	if a == b {
		return 1
	}
	d := math.Abs(a-b) / math.Max(math.Abs(a), math.Abs(b))
	if math.IsNaN(d) {
		return 0
	}
	return clamp01(1 - d)
}

// positionalSimilarity: число совпавших символов на одинаковых позициях,
// делённое на длину более длинной строки. Это не расстояние редактирования:
// вставка символа в начало обнуляет похожесть.
func positionalSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	same := 0
	for i := 0; i < len(ra) && i < len(rb); i++ {
		if ra[i] == rb[i] {
			same++
		}
	}
	return float64(same) / float64(longest)
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
