package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"sheetdiff-service/internal/diff/model"
)

// Форматы отчёта.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

type jsonReport struct {
	model.Result
	Summary []SummaryRow `json:"summary"`
}

// WriteJSON: результат целиком плюс сводка со ссылками на ячейки.
func WriteJSON(w io.Writer, res model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Result: res, Summary: Summary(res)})
}

// WriteText: человекочитаемая сводка для терминала.
func WriteText(w io.Writer, res model.Result) error {
	st := res.Stats
	if _, err := fmt.Fprintf(w, "rows: %d -> %d, matched exact %d, similar %d; added %d, deleted %d, modified cells %d\n",
		st.RowsA, st.RowsB, st.ExactMatches, st.SimilarMatches, st.Added, st.Deleted, st.ModifiedCells); err != nil {
		return err
	}
	if len(st.KeyColumns) > 0 {
		fmt.Fprintf(w, "key columns: %v\n", st.KeyColumns)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := Summary(res)
	if len(rows) > 0 {
		fmt.Fprintln(tw, "TYPE\tCOLUMN\tCELL A\tCELL B\tOLD\tNEW\tSIM")
	}
	for _, s := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\n",
			s.Type, dash(s.Column), dash(s.CellOld), dash(s.CellNew), dash(s.ValueOld), dash(s.ValueNew), s.Similarity)
	}
	for _, d := range res.Shapes {
		fmt.Fprintf(tw, "shape %s\t#%d -> #%d\t%v\n", d.Type, d.IndexOld, d.IndexNew, d.Fields)
	}
	if res.ShapeError != "" {
		fmt.Fprintf(tw, "shapes skipped: %s\n", res.ShapeError)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
