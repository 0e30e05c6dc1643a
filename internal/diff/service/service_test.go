package service

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetdiff-service/internal/diff/model"
)

func table(cols []string, rows ...map[string]any) model.Table {
	t := model.Table{Columns: cols}
	for _, r := range rows {
		row := model.Row{}
		for k, v := range r {
			row[k] = model.FromAny(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func compare(t *testing.T, a, b model.Table) model.Result {
	t.Helper()
	res, err := Run(a, b, model.DefaultOptions())
	require.NoError(t, err)
	return res
}

// каждая строка A, ровно в одной категории: пара (old) или deleted; для B, пара (new) или added
func assertComplete(t *testing.T, res model.Result) {
	t.Helper()
	seenA := make(map[int]int)
	seenB := make(map[int]int)
	for _, m := range res.Matches {
		seenA[m.Old]++
		seenB[m.New]++
		assert.GreaterOrEqual(t, m.Similarity, 0.0)
		assert.LessOrEqual(t, m.Similarity, 1.0)
	}
	for _, d := range res.Differences {
		switch d.Type {
		case model.Deleted:
			seenA[d.RowOld]++
		case model.Added:
			seenB[d.RowNew]++
		}
	}
	for i := range res.TableA.Rows {
		assert.Equal(t, 1, seenA[i], "row %d of A", i)
	}
	for j := range res.TableB.Rows {
		assert.Equal(t, 1, seenB[j], "row %d of B", j)
	}
	common := make(map[string]bool)
	for _, c := range res.Stats.CommonColumns {
		common[c] = true
	}
	for _, d := range res.Differences {
		if d.Type == model.Modified {
			assert.True(t, common[d.Column], "column %q is not common", d.Column)
		}
		for c := range d.Values {
			assert.True(t, common[c], "column %q is not common", c)
		}
	}
}

func TestCompareScenarios(t *testing.T) {
	t.Run("identical rows", func(t *testing.T) {
		a := table([]string{"id", "name"}, map[string]any{"id": 1, "name": "Alice"})
		b := table([]string{"id", "name"}, map[string]any{"id": 1, "name": "Alice"})
		res := compare(t, a, b)
		assert.Empty(t, res.Differences)
		assert.Empty(t, res.StylesA)
		assert.Empty(t, res.StylesB)
		assertComplete(t, res)
	})

	t.Run("modified cell on exact key", func(t *testing.T) {
		a := table([]string{"id", "name"}, map[string]any{"id": 1, "name": "Alice"})
		b := table([]string{"id", "name"}, map[string]any{"id": 1, "name": "Alicia"})
		res := compare(t, a, b)
		require.Len(t, res.Differences, 1)
		d := res.Differences[0]
		assert.Equal(t, model.Modified, d.Type)
		assert.Equal(t, "name", d.Column)
		assert.Equal(t, model.Text("Alice"), d.ValueOld)
		assert.Equal(t, model.Text("Alicia"), d.ValueNew)
		assert.Equal(t, 1.0, d.Similarity)
		assert.Equal(t, 0, d.RowOld)
		assert.Equal(t, 0, d.RowNew)
		assert.Equal(t, []model.StyleMark{{Column: "name", Row: 0, Tag: model.Modified}}, res.StylesA)
		assert.Equal(t, []model.StyleMark{{Column: "name", Row: 0, Tag: model.Modified}}, res.StylesB)
		assert.Equal(t, 1, res.Stats.ExactMatches)
		assertComplete(t, res)
	})

	t.Run("added row", func(t *testing.T) {
		a := table([]string{"id", "v"}, map[string]any{"id": 1, "v": "x"})
		b := table([]string{"id", "v"},
			map[string]any{"id": 1, "v": "x"},
			map[string]any{"id": 2, "v": "y"})
		res := compare(t, a, b)
		require.Len(t, res.Differences, 1)
		d := res.Differences[0]
		assert.Equal(t, model.Added, d.Type)
		assert.Equal(t, 1, d.RowNew)
		assert.Equal(t, model.NoRow, d.RowOld)
		assert.Equal(t, map[string]model.Value{"id": model.Int(2), "v": model.Text("y")}, d.Values)
		assert.Len(t, res.StylesB, 2)
		assertComplete(t, res)
	})

	t.Run("deleted row", func(t *testing.T) {
		a := table([]string{"id", "v"},
			map[string]any{"id": 1, "v": "x"},
			map[string]any{"id": 2, "v": "y"})
		b := table([]string{"id", "v"}, map[string]any{"id": 1, "v": "x"})
		res := compare(t, a, b)
		require.Len(t, res.Differences, 1)
		d := res.Differences[0]
		assert.Equal(t, model.Deleted, d.Type)
		assert.Equal(t, 1, d.RowOld)
		assert.Equal(t, map[string]model.Value{"id": model.Int(2), "v": model.Text("y")}, d.Values)
		assert.Equal(t, []model.StyleMark{
			{Column: "id", Row: 1, Tag: model.Deleted},
			{Column: "v", Row: 1, Tag: model.Deleted},
		}, res.StylesA)
		assertComplete(t, res)
	})

	t.Run("fuzzy match without key-like columns", func(t *testing.T) {
		a := table([]string{"a", "b", "c"}, map[string]any{"a": 1, "b": 2, "c": 3})
		b := table([]string{"a", "b", "c"}, map[string]any{"a": 1, "b": 2, "c": 30})
		res := compare(t, a, b)
		require.Len(t, res.Differences, 1)
		d := res.Differences[0]
		assert.Equal(t, model.Modified, d.Type)
		assert.Equal(t, "c", d.Column)
		assert.Equal(t, model.Int(3), d.ValueOld)
		assert.Equal(t, model.Int(30), d.ValueNew)
		// (3·1 + 3·1 + 2·0.1) / 8
		assert.InDelta(t, 0.775, d.Similarity, 1e-9)
		assert.Equal(t, 1, res.Stats.SimilarMatches)
		assertComplete(t, res)
	})
}

func TestCompareIdempotent(t *testing.T) {
	tbl := table([]string{"No", "code", "title", "price"},
		map[string]any{"No": 1, "code": "A1", "title": "Bolt", "price": 0.25},
		map[string]any{"No": 2, "code": "A1", "title": "Bolt", "price": 0.25},
		map[string]any{"No": 3, "code": "B7", "title": nil, "price": 12},
		map[string]any{"No": 4, "code": nil, "title": "Nut", "price": nil},
	)
	res := compare(t, tbl, tbl)
	assert.Empty(t, res.Differences)
	assert.Equal(t, 4, res.Stats.ExactMatches)
	assertComplete(t, res)

	again := compare(t, tbl, tbl)
	assert.Equal(t, res.Matches, again.Matches)
}

func TestCompareSymmetry(t *testing.T) {
	cols := []string{"id", "name", "qty"}
	a := table(cols,
		map[string]any{"id": 1, "name": "Alice", "qty": 10},
		map[string]any{"id": 2, "name": "Bob", "qty": 4},
		map[string]any{"id": 3, "name": "Carol", "qty": 7},
	)
	b := table(cols,
		map[string]any{"id": 1, "name": "Alicia", "qty": 10},
		map[string]any{"id": 3, "name": "Carol", "qty": 8},
		map[string]any{"id": 4, "name": "Dan", "qty": 1},
	)
	fwd := compare(t, a, b)
	rev := compare(t, b, a)
	assertComplete(t, fwd)
	assertComplete(t, rev)

	type cell struct {
		col      string
		old, new int
	}
	mods := func(res model.Result, swap bool) map[cell]bool {
		out := make(map[cell]bool)
		for _, d := range res.Differences {
			if d.Type != model.Modified {
				continue
			}
			c := cell{d.Column, d.RowOld, d.RowNew}
			if swap {
				c.old, c.new = c.new, c.old
			}
			out[c] = true
		}
		return out
	}
	rows := func(res model.Result, tp model.ChangeType) []int {
		var out []int
		for _, d := range res.Differences {
			switch {
			case d.Type == tp && tp == model.Added:
				out = append(out, d.RowNew)
			case d.Type == tp && tp == model.Deleted:
				out = append(out, d.RowOld)
			}
		}
		return out
	}

	assert.Equal(t, mods(fwd, false), mods(rev, true))
	assert.Equal(t, rows(fwd, model.Added), rows(rev, model.Deleted))
	assert.Equal(t, rows(fwd, model.Deleted), rows(rev, model.Added))
	assert.Equal(t, []int{2}, rows(fwd, model.Added))
	assert.Equal(t, []int{1}, rows(fwd, model.Deleted))
}

func TestCompareOrdinalShift(t *testing.T) {
	cols := []string{"No", "Name", "Price"}
	a := table(cols,
		map[string]any{"No": 1, "Name": "apple", "Price": 100},
		map[string]any{"No": 2, "Name": "banana", "Price": 200},
		map[string]any{"No": 3, "Name": "cherry", "Price": 300},
	)
	b := table(cols,
		map[string]any{"No": 1, "Name": "avocado", "Price": 50},
		map[string]any{"No": 2, "Name": "apple", "Price": 100},
		map[string]any{"No": 3, "Name": "banana", "Price": 250},
		map[string]any{"No": 4, "Name": "cherry", "Price": 300},
	)
	res := compare(t, a, b)
	assertComplete(t, res)
	assert.Equal(t, []string{"No"}, res.Stats.OrdinalColumns)
	assert.Equal(t, 0, res.Stats.ExactMatches)
	assert.Equal(t, 3, res.Stats.SimilarMatches)

	require.Len(t, res.Differences, 2)
	mod := res.Differences[0]
	assert.Equal(t, model.Modified, mod.Type)
	assert.Equal(t, "Price", mod.Column)
	assert.Equal(t, 1, mod.RowOld)
	assert.Equal(t, 2, mod.RowNew)
	assert.Less(t, mod.Similarity, 1.0)

	add := res.Differences[1]
	assert.Equal(t, model.Added, add.Type)
	assert.Equal(t, 0, add.RowNew)
}

func TestCompareEmissionOrder(t *testing.T) {
	cols := []string{"id", "name", "qty"}
	a := table(cols,
		map[string]any{"id": "A-101", "name": "widget", "qty": 10},
		map[string]any{"id": "A-102", "name": "gadget", "qty": 5},
		map[string]any{"id": "Z-900", "name": "doohickey", "qty": 7},
	)
	b := table(cols,
		map[string]any{"id": "A-101", "name": "widget", "qty": 12},
		map[string]any{"id": "A-104", "name": "gadget", "qty": 6},
		map[string]any{"id": "B-500", "name": "thingamajig", "qty": 1},
	)
	res := compare(t, a, b)
	assertComplete(t, res)

	type rec struct {
		tp       model.ChangeType
		col      string
		old, new int
	}
	var got []rec
	for _, d := range res.Differences {
		got = append(got, rec{d.Type, d.Column, d.RowOld, d.RowNew})
	}
	assert.Equal(t, []rec{
		{model.Modified, "qty", 0, 0},
		{model.Modified, "id", 1, 1},
		{model.Modified, "qty", 1, 1},
		{model.Deleted, "", 2, model.NoRow},
		{model.Added, "", model.NoRow, 2},
	}, got)
	assert.Equal(t, 1.0, res.Differences[0].Similarity)
	assert.Less(t, res.Differences[1].Similarity, 1.0)
	assert.Equal(t, res.Differences[1].Similarity, res.Differences[2].Similarity)
}

func TestCompareDuplicateFingerprintsFirstComeFirstServed(t *testing.T) {
	cols := []string{"id", "v"}
	a := table(cols, map[string]any{"id": 1, "v": "x"}, map[string]any{"id": 1, "v": "y"})
	b := table(cols, map[string]any{"id": 1, "v": "y"}, map[string]any{"id": 1, "v": "x"})
	res := compare(t, a, b)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, model.Match{Old: 0, New: 0, Similarity: 1, Method: model.MethodExact}, res.Matches[0])
	assert.Equal(t, model.Match{Old: 1, New: 1, Similarity: 1, Method: model.MethodExact}, res.Matches[1])
	assert.Len(t, res.Differences, 2)
}

func TestGreedyPassTieTakesLowestIndexB(t *testing.T) {
	cols := []string{"name"}
	a := table(cols, map[string]any{"name": "abcd"})
	b := table(cols, map[string]any{"name": "zzzz"}, map[string]any{"name": "abcx"}, map[string]any{"name": "abcx"})
	sc := newScorer(cols, map[string]float64{"name": 1}, model.MetricPositional)
	require.Equal(t, sc.score(a.Rows[0], b.Rows[1]), sc.score(a.Rows[0], b.Rows[2]))

	usedA, usedB := make([]bool, 1), make([]bool, 3)
	got := greedyPass(a, b, usedA, usedB, sc, 0.7)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Old)
	assert.Equal(t, 1, got[0].New)
	assert.InDelta(t, 0.75, got[0].Similarity, 1e-9)
	assert.Equal(t, []bool{false, true, false}, usedB)

	res := compare(t, a, b)
	assertComplete(t, res)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, model.MethodSimilar, res.Matches[0].Method)
	assert.Equal(t, 1, res.Matches[0].New)
}

func TestCompareNoCommonColumns(t *testing.T) {
	a := table([]string{"left"}, map[string]any{"left": 1}, map[string]any{"left": 2})
	b := table([]string{"right"}, map[string]any{"right": 1})
	opt := model.DefaultOptions()
	opt.Threshold = 0
	res, err := Run(a, b, opt)
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Equal(t, 2, res.Stats.Deleted)
	assert.Equal(t, 1, res.Stats.Added)
	for _, d := range res.Differences {
		assert.Empty(t, d.Values)
	}
	assertComplete(t, res)
}

func TestCompareMissingValues(t *testing.T) {
	cols := []string{"id", "note"}
	a := table(cols, map[string]any{"id": 1, "note": nil})
	b := table(cols, map[string]any{"id": 1, "note": "later"}, map[string]any{"id": 9})
	res := compare(t, a, b)
	assertComplete(t, res)
	require.Len(t, res.Differences, 2)
	assert.Equal(t, model.Modified, res.Differences[0].Type)
	assert.Equal(t, model.Missing(), res.Differences[0].ValueOld)
	assert.Equal(t, model.Added, res.Differences[1].Type)
	assert.Equal(t, map[string]model.Value{"id": model.Int(9)}, res.Differences[1].Values)
	assert.Equal(t, []model.StyleMark{{Column: "id", Row: 1, Tag: model.Added}}, res.StylesB[1:])
}

func TestCompareThreshold(t *testing.T) {
	a := table([]string{"a", "b", "c"}, map[string]any{"a": 1, "b": 2, "c": 3})
	b := table([]string{"a", "b", "c"}, map[string]any{"a": 1, "b": 2, "c": 30})

	opt := model.DefaultOptions()
	opt.Threshold = 0.8
	res, err := Run(a, b, opt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Added)
	assert.Equal(t, 1, res.Stats.Deleted)

	opt.Threshold = 0.77
	res, err = Run(a, b, opt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.SimilarMatches)
}

func TestCompareInvalidInput(t *testing.T) {
	dup := model.Table{Columns: []string{"id", "id"}}
	_, err := Run(dup, model.Table{}, model.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDuplicateColumn))
	var te *model.TableError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "A", te.Side)

	stray := model.Table{Columns: []string{"id"}, Rows: []model.Row{{"id": model.Int(1), "x": model.Int(2)}}}
	_, err = Run(model.Table{}, stray, model.DefaultOptions())
	assert.True(t, errors.Is(err, model.ErrUnknownColumn))

	opt := model.DefaultOptions()
	opt.Threshold = 1.5
	_, err = New(opt, zerolog.Nop())
	assert.True(t, errors.Is(err, model.ErrInvalidOptions))
}

func TestScorerBounds(t *testing.T) {
	cols := []string{"id", "name", "qty", "No"}
	opt := model.DefaultOptions()
	ks := selectKeys(cols, opt)
	sc := newScorer(cols, columnWeights(cols, ks, opt), model.MetricPositional)

	rnd := rand.New(rand.NewSource(42))
	values := []model.Value{
		model.Missing(), model.Int(0), model.Int(-3), model.Float(2.5),
		model.Text("abc"), model.Text(""), model.Text("ABC "), model.Float(1e9),
	}
	randomRow := func() model.Row {
		r := model.Row{}
		for _, c := range cols {
			r[c] = values[rnd.Intn(len(values))]
		}
		return r
	}
	for i := 0; i < 500; i++ {
		x, y := randomRow(), randomRow()
		s := sc.score(x, y)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.Equal(t, 1.0, sc.score(x, x))
	}

	empty := newScorer(nil, nil, model.MetricPositional)
	assert.Equal(t, 0.0, empty.score(randomRow(), randomRow()))
}

func TestCellSimilarity(t *testing.T) {
	tests := []struct {
		name   string
		a, b   model.Value
		metric model.StringMetric
		want   float64
	}{
		{"both missing", model.Missing(), model.Missing(), model.MetricPositional, 1},
		{"one missing", model.Int(1), model.Missing(), model.MetricPositional, 0},
		{"both zero", model.Int(0), model.Float(0), model.MetricPositional, 1},
		{"half", model.Int(10), model.Int(5), model.MetricPositional, 0.5},
		{"opposite signs clamp", model.Int(-5), model.Int(5), model.MetricPositional, 0},
		{"text equal after normalize", model.Text(" Foo"), model.Text("foo"), model.MetricPositional, 1},
		{"positional", model.Text("abcd"), model.Text("abxd"), model.MetricPositional, 0.75},
		{"positional shift", model.Text("xabc"), model.Text("abc"), model.MetricPositional, 0},
		{"transposition positional", model.Text("abc"), model.Text("acb"), model.MetricPositional, 1.0 / 3},
		{"transposition damerau", model.Text("abc"), model.Text("acb"), model.MetricDamerau, 2.0 / 3},
		{"number vs text", model.Int(12), model.Text("12"), model.MetricPositional, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cellSimilarity(tt.a, tt.b, tt.metric), 1e-9)
		})
	}
}

func TestDamerauLevenshtein(t *testing.T) {
	assert.Equal(t, 0, damerauLevenshtein("", ""))
	assert.Equal(t, 3, damerauLevenshtein("", "abc"))
	assert.Equal(t, 1, damerauLevenshtein("ca", "ac"))
	assert.Equal(t, 3, damerauLevenshtein("kitten", "sitting"))
	assert.Equal(t, 2, damerauLevenshtein("болт м8", "болт м10"))
}

func TestCompareWithShapesDegrades(t *testing.T) {
	c, err := New(model.DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)
	a := table([]string{"id"}, map[string]any{"id": 1})

	res, err := c.CompareWithShapes(a, a,
		[]model.Shape{{X: 1, Y: 1, Type: "image"}},
		nil)
	require.NoError(t, err)
	assert.Empty(t, res.Differences)
	require.Len(t, res.Shapes, 1)
	assert.Equal(t, model.Deleted, res.Shapes[0].Type)
	assert.Empty(t, res.ShapeError)
}
