package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetdiff-service/internal/diff/model"
)

func ptr(f float64) *float64 { return &f }

func TestCompareShapes(t *testing.T) {
	a := []model.Shape{
		{X: 1, Y: 2, Type: "image", Width: ptr(3), Height: ptr(2)},
		{X: 5, Y: 5, Type: "chart", Text: "Sales"},
		{X: 9, Y: 9, Type: "shape"},
	}
	b := []model.Shape{
		{X: 1.05, Y: 2, Type: "Image", Width: ptr(3.02), Height: ptr(2)},
		{X: 5, Y: 5, Type: "chart", Text: "Revenue"},
		{X: 3, Y: 3, Type: "shape"},
	}

	got := CompareShapes(a, b, model.DefaultShapeTolerance)
	require.Len(t, got, 3)

	assert.Equal(t, model.Modified, got[0].Type)
	assert.Equal(t, 1, got[0].IndexOld)
	assert.Equal(t, 1, got[0].IndexNew)
	assert.Equal(t, []string{"text"}, got[0].Fields)

	assert.Equal(t, model.Deleted, got[1].Type)
	assert.Equal(t, 2, got[1].IndexOld)
	assert.Equal(t, model.NoRow, got[1].IndexNew)

	assert.Equal(t, model.Added, got[2].Type)
	assert.Equal(t, 2, got[2].IndexNew)
}

func TestCompareShapesSizeAndTolerance(t *testing.T) {
	tests := []struct {
		name   string
		a, b   model.Shape
		tol    float64
		fields []string
		kinds  []model.ChangeType
	}{
		{
			name:  "outside tolerance",
			a:     model.Shape{X: 1, Y: 1, Type: "image"},
			b:     model.Shape{X: 1.2, Y: 1, Type: "image"},
			tol:   0.1,
			kinds: []model.ChangeType{model.Deleted, model.Added},
		},
		{
			name:  "different type",
			a:     model.Shape{X: 1, Y: 1, Type: "image"},
			b:     model.Shape{X: 1, Y: 1, Type: "chart"},
			tol:   0.1,
			kinds: []model.ChangeType{model.Deleted, model.Added},
		},
		{
			name:   "resized",
			a:      model.Shape{X: 1, Y: 1, Type: "image", Width: ptr(2), Height: ptr(2)},
			b:      model.Shape{X: 1, Y: 1, Type: "image", Width: ptr(4)},
			tol:    0.1,
			fields: []string{"width", "height"},
			kinds:  []model.ChangeType{model.Modified},
		},
		{
			name: "unchanged",
			a:    model.Shape{X: 1, Y: 1, Type: "image", Text: " logo "},
			b:    model.Shape{X: 1, Y: 1, Type: "image", Text: "logo"},
			tol:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareShapes([]model.Shape{tt.a}, []model.Shape{tt.b}, tt.tol)
			var kinds []model.ChangeType
			for _, d := range got {
				kinds = append(kinds, d.Type)
			}
			assert.Equal(t, tt.kinds, kinds)
			if tt.fields != nil {
				assert.Equal(t, tt.fields, got[0].Fields)
			}
		})
	}
}

func TestCompareShapesEmpty(t *testing.T) {
	assert.Empty(t, CompareShapes(nil, nil, 0.1))
}
