package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"sheetdiff-service/internal/diff/model"
)

// разделитель частей отпечатка; в данных не встречается
const fpSep = "\x1f"

// маркер значения колонки-номера строки
const ordinalMarker = "#"

// fingerprint: ключ строки: "вес:значение" по ключевым колонкам.
// Ранние колонки весят больше (n - позиция), номера строк, opt.OrdinalWeight.
func fingerprint(row model.Row, ks keySet, opt model.Options) string {
	parts := make([]string, 0, len(ks.fingerprint)+len(ks.ordinal))
	n := len(ks.fingerprint)
	for i, c := range ks.fingerprint {
		parts = append(parts, strconv.Itoa(n-i)+":"+NormalizeValue(row.Get(c)))
	}
	ow := strconv.FormatFloat(opt.OrdinalWeight, 'g', -1, 64)
	for _, c := range ks.ordinal {
		parts = append(parts, ow+":"+ordinalMarker+NormalizeValue(row.Get(c)))
	}
	return strings.Join(parts, fpSep)
}

// positionalFingerprints: отпечатки по позиции строки. Префикс стороны гарантирует,
// что такие отпечатки не совпадут ни с чем из другой таблицы.
func positionalFingerprints(side string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = side + fpSep + "row:" + strconv.Itoa(i)
	}
	return out
}

// buildFingerprints считает отпечатки всех строк таблицы. Любая паника внутри
// переводит всю таблицу на позиционные отпечатки (совпадений по содержимому не будет).
func buildFingerprints(t model.Table, side string, ks keySet, opt model.Options, log zerolog.Logger) (fps []string, fallback bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Warn().
				Str("table", side).
				Str("panic", fmt.Sprint(rec)).
				Msg("fingerprint failed, falling back to row positions")
			fps = positionalFingerprints(side, len(t.Rows))
			fallback = true
		}
	}()

	fps = make([]string, len(t.Rows))
	for i, r := range t.Rows {
		fps[i] = fingerprint(r, ks, opt)
	}
	return fps, false
}
