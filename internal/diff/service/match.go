package service

import "sheetdiff-service/internal/diff/model"

// greedyPass: нечёткое сопоставление оставшихся строк.
// Для каждой свободной строки A (по порядку) берём самую похожую свободную строку B;
// при равенстве берётся меньший индекс. Пара принимается, если score >= threshold.
// O(n·m), без оптимального назначения.
func greedyPass(a, b model.Table, usedA, usedB []bool, sc scorer, threshold float64) []model.Match {
	var out []model.Match
	for i, ra := range a.Rows {
		if usedA[i] {
			continue
		}
		best, bestJ := -1.0, -1
		for j, rb := range b.Rows {
			if usedB[j] {
				continue
			}
			if s := sc.score(ra, rb); s > best {
				best, bestJ = s, j
			}
		}
		if bestJ < 0 || best < threshold {
			continue
		}
		usedA[i], usedB[bestJ] = true, true
		out = append(out, model.Match{Old: i, New: bestJ, Similarity: best, Method: model.MethodSimilar})
	}
	return out
}
