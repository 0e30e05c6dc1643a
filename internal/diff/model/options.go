package model

import (
	"fmt"
	"math"
)

// StringMetric: метрика похожести строк при нечётком сопоставлении.
type StringMetric string

const (
	// MetricPositional: доля совпавших символов на одинаковых позициях
	// (грубое приближение, не расстояние редактирования).
	MetricPositional StringMetric = "positional"
	// MetricDamerau: нормализованное расстояние Дамерау-Левенштейна.
	MetricDamerau StringMetric = "damerau"
)

type Options struct {
	Threshold       float64      `json:"threshold"`       // порог похожести строк (0..1), пара принимается при score >= Threshold
	KeyWeightTop    float64      `json:"keyWeightTop"`    // вес первых TopKeyCount ключевых колонок
	KeyWeight       float64      `json:"keyWeight"`       // вес прочих ключевых колонок
	BaseWeight      float64      `json:"baseWeight"`      // вес обычных колонок
	OrdinalWeight   float64      `json:"ordinalWeight"`   // вес колонок-номеров строк
	TopKeyCount     int          `json:"topKeyCount"`
	MaxFallbackKeys int          `json:"maxFallbackKeys"` // сколько первых колонок брать ключом, если эвристика ничего не нашла
	KeyPatterns     []string     `json:"keyPatterns"`     // подстроки имён колонок-идентификаторов, по убыванию приоритета
	OrdinalNames    []string     `json:"ordinalNames"`    // точные (без регистра/пробелов) имена колонок-номеров
	KeyColumns      []string     `json:"keyColumns,omitempty"`
	StringMetric    StringMetric `json:"stringMetric"`
	ShapeTolerance  float64      `json:"shapeTolerance"` // допуск координат фигур (в ячейках)
	CompareShapes   bool         `json:"compareShapes"`
}

const (
	DefaultThreshold      = 0.7
	DefaultKeyWeightTop   = 3.0
	DefaultKeyWeight      = 2.0
	DefaultBaseWeight     = 1.0
	DefaultOrdinalWeight  = 0.1
	DefaultTopKeyCount    = 2
	DefaultFallbackKeys   = 3
	DefaultShapeTolerance = 0.1
)

func DefaultOptions() Options {
	return Options{
		Threshold:       DefaultThreshold,
		KeyWeightTop:    DefaultKeyWeightTop,
		KeyWeight:       DefaultKeyWeight,
		BaseWeight:      DefaultBaseWeight,
		OrdinalWeight:   DefaultOrdinalWeight,
		TopKeyCount:     DefaultTopKeyCount,
		MaxFallbackKeys: DefaultFallbackKeys,
		KeyPatterns:     []string{"id", "code", "key", "name", "no", "番号"},
		OrdinalNames:    []string{"no", "no.", "番号"},
		StringMetric:    MetricPositional,
		ShapeTolerance:  DefaultShapeTolerance,
		CompareShapes:   true,
	}
}

func (o Options) Validate() error {
	bad := func(field string, v any) error {
		return fmt.Errorf("%w: %s=%v", ErrInvalidOptions, field, v)
	}
	if math.IsNaN(o.Threshold) || o.Threshold < 0 || o.Threshold > 1 {
		return bad("threshold", o.Threshold)
	}
	for name, w := range map[string]float64{
		"keyWeightTop":  o.KeyWeightTop,
		"keyWeight":     o.KeyWeight,
		"baseWeight":    o.BaseWeight,
		"ordinalWeight": o.OrdinalWeight,
	} {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return bad(name, w)
		}
	}
	if o.TopKeyCount < 0 {
		return bad("topKeyCount", o.TopKeyCount)
	}
	if o.MaxFallbackKeys < 0 {
		return bad("maxFallbackKeys", o.MaxFallbackKeys)
	}
	switch o.StringMetric {
	case MetricPositional, MetricDamerau, "":
	default:
		return bad("stringMetric", o.StringMetric)
	}
	if math.IsNaN(o.ShapeTolerance) || o.ShapeTolerance < 0 {
		return bad("shapeTolerance", o.ShapeTolerance)
	}
	return nil
}
