package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sheetdiff-service/internal/config"
	"sheetdiff-service/internal/diff/model"
	"sheetdiff-service/internal/diff/service"
	"sheetdiff-service/internal/fileio"
	"sheetdiff-service/internal/report"
)

const (
	xlsxMime   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	reportName = "comparison_report.xlsx"
)

// Compare возвращает http.HandlerFunc для
// r.Post("/compare", diffHnd.Compare(cfg, logger)).
//
// multipart: fileA, fileB; поля a_header_row, b_header_row, a_sheet, b_sheet,
// key_columns ("id, Артикул|Код"), threshold, metric, shapes, shape_tolerance, format=json|xlsx.
func Compare(cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := logger
		if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
			log = *l
		}

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
			return
		}
		defer r.MultipartForm.RemoveAll()

		format := strings.ToLower(strings.TrimSpace(r.FormValue("format")))
		switch format {
		case "":
			format = report.FormatJSON
		case report.FormatJSON, report.FormatXLSX:
		default:
			writeError(w, http.StatusBadRequest, "unknown format: "+format)
			return
		}

		opt := formOptions(r, cfg.DiffOptions())
		optA := fileio.LoadOptions{
			HeaderRow: atoi(r.FormValue("a_header_row"), cfg.HeaderRow),
			Sheet:     r.FormValue("a_sheet"),
			Shapes:    opt.CompareShapes,
		}
		optB := fileio.LoadOptions{
			HeaderRow: atoi(r.FormValue("b_header_row"), cfg.HeaderRow),
			Sheet:     r.FormValue("b_sheet"),
			Shapes:    opt.CompareShapes,
		}

		docA, docB, err := loadPair(r.Context(), r, optA, optB)
		if err != nil {
			log.Warn().Err(err).Msg("load failed")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		for _, d := range []fileio.Document{docA, docB} {
			if d.ShapeErr != nil {
				log.Warn().Err(d.ShapeErr).Str("file", d.Name).Msg("shapes not extracted")
			}
		}

		if keys := splitList(r.FormValue("key_columns")); len(keys) > 0 {
			opt.KeyColumns = service.ResolveColumns(docA.Table.Columns, keys)
			log.Debug().Strs("requested", keys).Strs("resolved", opt.KeyColumns).Msg("key columns")
		}

		cmp, err := service.New(opt, log)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err := cmp.CompareWithShapes(docA.Table, docB.Table, docA.Shapes, docB.Shapes)
		if err != nil {
			log.Warn().Err(err).Msg("compare failed")
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if res.ShapeError == "" {
			res.ShapeError = shapeError(docA, docB)
		}

		w.Header().Set("Cache-Control", "no-store")
		switch format {
		case report.FormatXLSX:
			var buf bytes.Buffer
			if err := report.WriteWorkbook(&buf, res); err != nil {
				log.Error().Err(err).Msg("write xlsx")
				writeError(w, http.StatusInternalServerError, "failed to build report")
				return
			}
			w.Header().Set("Content-Type", xlsxMime)
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportName))
			_, _ = buf.WriteTo(w)
		default:
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			if err := report.WriteJSON(w, res); err != nil {
				log.Error().Err(err).Msg("write json")
				return
			}
		}

		log.Info().
			Str("fileA", docA.Name).
			Str("fileB", docB.Name).
			Int("rowsA", res.Stats.RowsA).
			Int("rowsB", res.Stats.RowsB).
			Int("added", res.Stats.Added).
			Int("deleted", res.Stats.Deleted).
			Int("modified_cells", res.Stats.ModifiedCells).
			Dur("elapsed", time.Since(start)).
			Msg("compare done")
	}
}

// formOptions: опции процесса, переопределённые полями формы.
func formOptions(r *http.Request, opt model.Options) model.Options {
	opt.Threshold = toFloat(r.FormValue("threshold"), opt.Threshold)
	if m := strings.ToLower(strings.TrimSpace(r.FormValue("metric"))); m != "" {
		opt.StringMetric = model.StringMetric(m)
	}
	opt.CompareShapes = toBool(r.FormValue("shapes"), opt.CompareShapes)
	opt.ShapeTolerance = toFloat(r.FormValue("shape_tolerance"), opt.ShapeTolerance)
	return opt
}

// loadPair читает оба файла параллельно.
func loadPair(ctx context.Context, r *http.Request, optA, optB fileio.LoadOptions) (fileio.Document, fileio.Document, error) {
	var docA, docB fileio.Document

	fa, ha, err := r.FormFile("fileA")
	if err != nil {
		return docA, docB, fmt.Errorf("missing fileA: %w", err)
	}
	defer fa.Close()
	fb, hb, err := r.FormFile("fileB")
	if err != nil {
		return docA, docB, fmt.Errorf("missing fileB: %w", err)
	}
	defer fb.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		docA, err = loadOne(ctx, fa, ha, optA)
		return err
	})
	g.Go(func() (err error) {
		docB, err = loadOne(ctx, fb, hb, optB)
		return err
	})
	return docA, docB, g.Wait()
}

func loadOne(ctx context.Context, f multipart.File, h *multipart.FileHeader, opt fileio.LoadOptions) (fileio.Document, error) {
	if err := ctx.Err(); err != nil {
		return fileio.Document{}, err
	}
	return fileio.Load(f, h.Filename, opt)
}

func shapeError(docs ...fileio.Document) string {
	var msgs []string
	for _, d := range docs {
		if d.ShapeErr != nil {
			msgs = append(msgs, d.Name+": "+d.ShapeErr.Error())
		}
	}
	return strings.Join(msgs, "; ")
}
