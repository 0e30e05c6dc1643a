package service

import (
	"math"
	"strings"

	"sheetdiff-service/internal/diff/model"
)

// CompareShapes сопоставляет фигуры по (x, y, type) с допуском tol по координатам.
// Пары с разной шириной/высотой/текстом дают modified, несопоставленные из A
// дают deleted, из B дают added. Совпавшие без изменений не попадают в результат.
func CompareShapes(a, b []model.Shape, tol float64) []model.ShapeDifference {
	out := []model.ShapeDifference{}
	usedB := make([]bool, len(b))
	usedA := make([]bool, len(a))

	for i := range a {
		for j := range b {
			if usedB[j] || !sameAnchor(a[i], b[j], tol) {
				continue
			}
			usedA[i], usedB[j] = true, true
			if fields := changedShapeFields(a[i], b[j], tol); len(fields) > 0 {
				out = append(out, model.ShapeDifference{
					Type:     model.Modified,
					IndexOld: i,
					IndexNew: j,
					Old:      &a[i],
					New:      &b[j],
					Fields:   fields,
				})
			}
			break
		}
	}
	for i := range a {
		if !usedA[i] {
			out = append(out, model.ShapeDifference{Type: model.Deleted, IndexOld: i, IndexNew: model.NoRow, Old: &a[i]})
		}
	}
	for j := range b {
		if !usedB[j] {
			out = append(out, model.ShapeDifference{Type: model.Added, IndexOld: model.NoRow, IndexNew: j, New: &b[j]})
		}
	}
	return out
}

func sameAnchor(a, b model.Shape, tol float64) bool {
	return strings.EqualFold(a.Type, b.Type) &&
		math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol
}

func changedShapeFields(a, b model.Shape, tol float64) []string {
	var f []string
	if !sameSize(a.Width, b.Width, tol) {
		f = append(f, "width")
	}
	if !sameSize(a.Height, b.Height, tol) {
		f = append(f, "height")
	}
	if collapseSpaces(a.Text) != collapseSpaces(b.Text) {
		f = append(f, "text")
	}
	return f
}

func sameSize(a, b *float64, tol float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return math.Abs(*a-*b) <= tol
}
