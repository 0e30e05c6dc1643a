package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sheetdiff-service/internal/diff/model"
)

// Comparer: сравнение двух таблиц. Без состояния между вызовами;
// входные таблицы не изменяются.
type Comparer struct {
	opt model.Options
	log zerolog.Logger
}

// New проверяет опции. Логгер получает отладочные события проходов.
func New(opt model.Options, logger zerolog.Logger) (*Comparer, error) {
	if opt.StringMetric == "" {
		opt.StringMetric = model.MetricPositional
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return &Comparer{opt: opt, log: logger}, nil
}

// Run: сравнение с опциями и без логгера.
func Run(a, b model.Table, opt model.Options) (model.Result, error) {
	c, err := New(opt, zerolog.Nop())
	if err != nil {
		return model.Result{}, err
	}
	return c.Compare(a, b)
}

func (c *Comparer) Options() model.Options { return c.opt }

// Compare: основная сверка: отпечатки → точные пары → нечёткие пары → классификация.
// Порядок записей: изменения точных пар, изменения нечётких пар, удалённые (по A), добавленные (по B).
func (c *Comparer) Compare(a, b model.Table) (model.Result, error) {
	if err := a.Validate("A"); err != nil {
		return model.Result{}, err
	}
	if err := b.Validate("B"); err != nil {
		return model.Result{}, err
	}
	start := time.Now()
	opt := c.opt

	common := commonColumns(a, b)
	ks := selectKeys(common, opt)

	res := model.Result{
		TableA:      a,
		TableB:      b,
		StylesA:     []model.StyleMark{},
		StylesB:     []model.StyleMark{},
		Differences: []model.Difference{},
		Matches:     []model.Match{},
		Opts:        opt,
		Stats: model.Stats{
			RowsA:          len(a.Rows),
			RowsB:          len(b.Rows),
			CommonColumns:  common,
			KeyColumns:     append([]string{}, ks.columns...),
			OrdinalColumns: append([]string{}, ks.ordinal...),
		},
	}

	usedA := make([]bool, len(a.Rows))
	usedB := make([]bool, len(b.Rows))
	cls := newClassifier(a, b, common, ks, &res)

	// без общих колонок сопоставлять нечего: всё удалено и всё добавлено
	if len(common) > 0 {
		c.log.Debug().
			Strs("key_columns", ks.columns).
			Strs("fingerprint_columns", ks.fingerprint).
			Strs("ordinal_columns", ks.ordinal).
			Msg("fingerprint pass start")
		fpA, fbA := buildFingerprints(a, "A", ks, opt, c.log)
		fpB, fbB := buildFingerprints(b, "B", ks, opt, c.log)
		if fbA {
			res.Stats.FingerprintFallback = append(res.Stats.FingerprintFallback, "A")
		}
		if fbB {
			res.Stats.FingerprintFallback = append(res.Stats.FingerprintFallback, "B")
		}
		c.log.Debug().Msg("fingerprint pass end")

		exact := exactPass(fpA, fpB, usedA, usedB)
		for _, m := range exact {
			cls.compareCells(m)
		}
		res.Matches = append(res.Matches, exact...)
		res.Stats.ExactMatches = len(exact)
		c.log.Debug().Int("matches", len(exact)).Msg("exact pass end")

		c.log.Debug().
			Int("left_a", len(a.Rows)-len(exact)).
			Int("left_b", len(b.Rows)-len(exact)).
			Float64("threshold", opt.Threshold).
			Msg("similarity pass start")
		sc := newScorer(common, columnWeights(common, ks, opt), opt.StringMetric)
		similar := greedyPass(a, b, usedA, usedB, sc, opt.Threshold)
		for _, m := range similar {
			cls.compareCells(m)
		}
		res.Matches = append(res.Matches, similar...)
		res.Stats.SimilarMatches = len(similar)
		c.log.Debug().Int("matches", len(similar)).Msg("similarity pass end")
	}

	for i := range a.Rows {
		if !usedA[i] {
			cls.deleted(i)
		}
	}
	for j := range b.Rows {
		if !usedB[j] {
			cls.added(j)
		}
	}

	c.log.Debug().
		Int("added", res.Stats.Added).
		Int("deleted", res.Stats.Deleted).
		Int("modified_cells", res.Stats.ModifiedCells).
		Dur("elapsed", time.Since(start)).
		Msg("classification end")
	return res, nil
}

// CompareWithShapes: сравнение таблиц и фигур. Сбой сравнения фигур не мешает
// результату по данным: он попадает в ShapeError.
func (c *Comparer) CompareWithShapes(a, b model.Table, shapesA, shapesB []model.Shape) (model.Result, error) {
	res, err := c.Compare(a, b)
	if err != nil {
		return res, err
	}
	if !c.opt.CompareShapes {
		return res, nil
	}
	shapes, err := c.safeCompareShapes(shapesA, shapesB)
	if err != nil {
		c.log.Warn().Err(err).Msg("shape comparison skipped")
		res.ShapeError = err.Error()
		return res, nil
	}
	res.Shapes = shapes
	return res, nil
}

func (c *Comparer) safeCompareShapes(a, b []model.Shape) (out []model.ShapeDifference, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("shape diff: %v", rec)
		}
	}()
	return CompareShapes(a, b, c.opt.ShapeTolerance), nil
}
