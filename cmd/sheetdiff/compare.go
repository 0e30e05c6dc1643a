package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sheetdiff-service/internal/config"
	"sheetdiff-service/internal/diff/model"
	"sheetdiff-service/internal/diff/service"
	"sheetdiff-service/internal/fileio"
	"sheetdiff-service/internal/report"
)

type compareFlags struct {
	output     string
	format     string
	threshold  float64
	metric     string
	keys       []string
	shapes     bool
	tolerance  float64
	headerA    int
	headerB    int
	sheetA     string
	sheetB     string
	failOnDiff bool
}

func newCompareCmd() *cobra.Command {
	cfg := config.Load()
	f := compareFlags{}

	cmd := &cobra.Command{
		Use:   "compare <fileA> <fileB>",
		Short: "Compare two tables and print or save the difference report",
		Long: `Rows are matched by key columns (explicit --keys or detected from column names),
then by weighted similarity for the rest. The report lists added, deleted and modified
cells with spreadsheet references.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, _ := cmd.Flags().GetString("log-level")
			logger := config.SetupCLILogger(lvl)
			return runCompare(cmd.OutOrStdout(), args[0], args[1], f, cfg, logger)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fl.StringVarP(&f.format, "format", "f", "", "report format: text, json, xlsx (default: by --output extension, else text)")
	fl.Float64Var(&f.threshold, "threshold", cfg.SimilarityThreshold, "minimum row similarity for a fuzzy match (0..1)")
	fl.StringVar(&f.metric, "metric", cfg.StringMetric, "string similarity: positional or damerau")
	fl.StringSliceVarP(&f.keys, "keys", "k", nil, `key columns, alternatives with "|" (e.g. "id,Артикул|Код")`)
	fl.BoolVar(&f.shapes, "shapes", cfg.CompareShapes, "compare images and shapes (xlsx)")
	fl.Float64Var(&f.tolerance, "shape-tolerance", cfg.ShapeTolerance, "anchor tolerance for shapes, in cells")
	fl.IntVar(&f.headerA, "a-header-row", cfg.HeaderRow, "header row of fileA (1-based)")
	fl.IntVar(&f.headerB, "b-header-row", cfg.HeaderRow, "header row of fileB (1-based)")
	fl.StringVar(&f.sheetA, "a-sheet", "", "sheet of fileA (default: first)")
	fl.StringVar(&f.sheetB, "b-sheet", "", "sheet of fileB (default: first)")
	fl.BoolVar(&f.failOnDiff, "fail-on-diff", false, "exit with status 1 when differences are found")
	return cmd
}

func runCompare(stdout io.Writer, pathA, pathB string, f compareFlags, cfg config.Config, logger zerolog.Logger) error {
	format, err := pickFormat(f.format, f.output)
	if err != nil {
		return err
	}
	if format == report.FormatXLSX && f.output == "" {
		return fmt.Errorf("xlsx report needs --output")
	}

	opt := cfg.DiffOptions()
	opt.Threshold = f.threshold
	opt.StringMetric = model.StringMetric(strings.ToLower(f.metric))
	opt.CompareShapes = f.shapes
	opt.ShapeTolerance = f.tolerance

	var docA, docB fileio.Document
	var g errgroup.Group
	g.Go(func() (err error) {
		docA, err = loadFile(pathA, fileio.LoadOptions{HeaderRow: f.headerA, Sheet: f.sheetA, Shapes: f.shapes})
		return err
	})
	g.Go(func() (err error) {
		docB, err = loadFile(pathB, fileio.LoadOptions{HeaderRow: f.headerB, Sheet: f.sheetB, Shapes: f.shapes})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if len(f.keys) > 0 {
		opt.KeyColumns = service.ResolveColumns(docA.Table.Columns, f.keys)
		if len(opt.KeyColumns) == 0 {
			logger.Warn().Strs("keys", f.keys).Msg("no key column resolved, using detected keys")
		}
	}

	cmp, err := service.New(opt, logger)
	if err != nil {
		return err
	}
	res, err := cmp.CompareWithShapes(docA.Table, docB.Table, docA.Shapes, docB.Shapes)
	if err != nil {
		return err
	}
	for _, d := range []fileio.Document{docA, docB} {
		if d.ShapeErr != nil {
			logger.Warn().Err(d.ShapeErr).Str("file", d.Name).Msg("shapes not extracted")
		}
	}

	var buf bytes.Buffer
	switch format {
	case report.FormatXLSX:
		err = report.WriteWorkbook(&buf, res)
	case report.FormatJSON:
		err = report.WriteJSON(&buf, res)
	default:
		err = report.WriteText(&buf, res)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if f.output == "" {
		_, err = buf.WriteTo(stdout)
	} else {
		err = os.WriteFile(f.output, buf.Bytes(), 0o644)
	}
	if err != nil {
		return err
	}

	logger.Info().
		Int("added", res.Stats.Added).
		Int("deleted", res.Stats.Deleted).
		Int("modified_cells", res.Stats.ModifiedCells).
		Msg("compare done")

	if f.failOnDiff && (len(res.Differences) > 0 || len(res.Shapes) > 0) {
		return errDifferent
	}
	return nil
}

func loadFile(path string, opt fileio.LoadOptions) (fileio.Document, error) {
	fh, err := os.Open(path)
	if err != nil {
		return fileio.Document{}, err
	}
	defer fh.Close()
	return fileio.Load(fh, path, opt)
}

func pickFormat(format, output string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case report.FormatText, report.FormatJSON, report.FormatXLSX:
		return format, nil
	case "":
	default:
		return "", fmt.Errorf("unknown format %q (text, json, xlsx)", format)
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".xlsx":
		return report.FormatXLSX, nil
	case ".json":
		return report.FormatJSON, nil
	default:
		return report.FormatText, nil
	}
}
