package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"sheetdiff-service/internal/diff/model"
)

// readCSV reads CSV auto-detecting encoding (UTF-8, Windows-1251, KOI8-R)
// and delimiter (comma or semicolon).
func readCSV(r io.Reader) ([][]model.Value, error) {
	br := bufio.NewReader(r)

	// Peek a bit to detect encoding
	peek, _ := br.Peek(2048)
	cs := "utf-8"
	if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader = br
	switch cs {
	case "windows-1251", "cp1251":
		dec = transform.NewReader(br, charmap.Windows1251.NewDecoder())
	case "koi8-r":
		dec = transform.NewReader(br, charmap.KOI8R.NewDecoder())
	default:
		// assume UTF-8, drop BOM
		if bytes.HasPrefix(peek, []byte("\xef\xbb\xbf")) {
			_, _ = br.Discard(3)
			peek = peek[3:]
		}
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffDelimiter(peek)

	var grid [][]model.Value
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		grid = append(grid, inferRow(rec))
	}
	if len(grid) == 0 {
		return nil, ErrEmptySheet
	}
	return grid, nil
}

// sniffDelimiter: ';' если в первой строке точек с запятой больше, чем запятых.
func sniffDelimiter(peek []byte) rune {
	line := peek
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		line = peek[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
