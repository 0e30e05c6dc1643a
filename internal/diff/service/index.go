package service

import "sheetdiff-service/internal/diff/model"

// fingerprintIndex: отпечаток → индексы строк B в исходном порядке.
type fingerprintIndex map[string][]int

func buildIndexB(fps []string) fingerprintIndex {
	idx := make(fingerprintIndex, len(fps))
	for i, fp := range fps {
		idx[fp] = append(idx[fp], i)
	}
	return idx
}

// take возвращает первую ещё не использованную строку B с данным отпечатком.
func (idx fingerprintIndex) take(fp string, usedB []bool) (int, bool) {
	list := idx[fp]
	for len(list) > 0 {
		j := list[0]
		list = list[1:]
		if !usedB[j] {
			idx[fp] = list
			return j, true
		}
	}
	idx[fp] = list
	return 0, false
}

// exactPass сопоставляет строки с равными отпечатками.
// Порядок строк A решает, кому достаются дубли.
func exactPass(fpA, fpB []string, usedA, usedB []bool) []model.Match {
	idxB := buildIndexB(fpB)
	var out []model.Match
	for i, fp := range fpA {
		if usedA[i] {
			continue
		}
		j, ok := idxB.take(fp, usedB)
		if !ok {
			continue
		}
		usedA[i], usedB[j] = true, true
		out = append(out, model.Match{Old: i, New: j, Similarity: 1, Method: model.MethodExact})
	}
	return out
}
