package fileio

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"sheetdiff-service/internal/diff/model"
)

// Размер ячейки по умолчанию в EMU: 64px x 20px.
const (
	emuPerCol = 609600
	emuPerRow = 190500
)

const relDrawing = "/drawing"

var ErrNoWorkbook = errors.New("xlsx: workbook.xml not found")

type xmlRels struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xmlWorkbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

type xdrMarker struct {
	Col    int64 `xml:"col"`
	ColOff int64 `xml:"colOff"`
	Row    int64 `xml:"row"`
	RowOff int64 `xml:"rowOff"`
}

type xdrProps struct {
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"`
}

type xdrNode struct {
	Sp    xdrProps `xml:"nvSpPr>cNvPr"`
	Pic   xdrProps `xml:"nvPicPr>cNvPr"`
	Frame xdrProps `xml:"nvGraphicFramePr>cNvPr"`
	Cxn   xdrProps `xml:"nvCxnSpPr>cNvPr"`
	Grp   xdrProps `xml:"nvGrpSpPr>cNvPr"`
	Texts []string `xml:"txBody>p>r>t"`
}

func (n *xdrNode) props() xdrProps {
	for _, p := range []xdrProps{n.Sp, n.Pic, n.Frame, n.Cxn, n.Grp} {
		if p.Name != "" || p.Descr != "" {
			return p
		}
	}
	return xdrProps{}
}

type xdrAnchor struct {
	From *xdrMarker `xml:"from"`
	To   *xdrMarker `xml:"to"`
	Pos  *struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"pos"`
	Ext *struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"ext"`

	Sp           *xdrNode `xml:"sp"`
	CxnSp        *xdrNode `xml:"cxnSp"`
	Pic          *xdrNode `xml:"pic"`
	GraphicFrame *xdrNode `xml:"graphicFrame"`
	GrpSp        *xdrNode `xml:"grpSp"`
}

// ReadShapes извлекает графические объекты листа из xlsx (drawingML).
// Лист без drawing даёт пустой список без ошибки. Пустое имя означает первый лист.
func ReadShapes(b []byte, sheet string) ([]model.Shape, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}

	sheetPath, err := sheetPart(zr, sheet)
	if err != nil {
		return nil, err
	}
	drawing, err := drawingPart(zr, sheetPath)
	if err != nil {
		return nil, err
	}
	if drawing == "" {
		return []model.Shape{}, nil
	}

	data, err := readZipFile(zr, drawing)
	if err != nil {
		return nil, err
	}
	return parseDrawing(data)
}

// sheetPart: путь к xml листа по имени (workbook.xml + rels).
func sheetPart(zr *zip.Reader, sheet string) (string, error) {
	wbData, err := readZipFile(zr, "xl/workbook.xml")
	if err != nil {
		return "", ErrNoWorkbook
	}
	var wb xmlWorkbook
	if err := xml.Unmarshal(wbData, &wb); err != nil {
		return "", fmt.Errorf("workbook.xml: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return "", ErrEmptySheet
	}

	rid := ""
	for _, s := range wb.Sheets {
		if sheet == "" || s.Name == sheet {
			rid = s.RID
			break
		}
	}
	if rid == "" {
		return "", fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	rels, err := readRels(zr, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return "", err
	}
	for _, r := range rels.Rels {
		if r.ID == rid {
			return resolvePart("xl/workbook.xml", r.Target), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
}

// drawingPart: путь к drawing листа; "" если у листа нет рисунков.
func drawingPart(zr *zip.Reader, sheetPath string) (string, error) {
	relsPath := path.Join(path.Dir(sheetPath), "_rels", path.Base(sheetPath)+".rels")
	if findZipFile(zr, relsPath) == nil {
		return "", nil
	}
	rels, err := readRels(zr, relsPath)
	if err != nil {
		return "", err
	}
	for _, r := range rels.Rels {
		if strings.HasSuffix(r.Type, relDrawing) {
			return resolvePart(sheetPath, r.Target), nil
		}
	}
	return "", nil
}

func readRels(zr *zip.Reader, name string) (xmlRels, error) {
	var rels xmlRels
	data, err := readZipFile(zr, name)
	if err != nil {
		return rels, err
	}
	if err := xml.Unmarshal(data, &rels); err != nil {
		return rels, fmt.Errorf("%s: %w", name, err)
	}
	return rels, nil
}

// resolvePart: Target из rels относительно части-владельца; "/xl/..." считается от корня пакета.
func resolvePart(owner, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(owner), target)
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	f := findZipFile(zr, name)
	if f == nil {
		return nil, fmt.Errorf("%s: %w", name, io.ErrUnexpectedEOF)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseDrawing проходит по якорям в порядке документа.
func parseDrawing(data []byte) ([]model.Shape, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	shapes := []model.Shape{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "twoCellAnchor", "oneCellAnchor", "absoluteAnchor":
			var a xdrAnchor
			if err := dec.DecodeElement(&a, &se); err != nil {
				return nil, err
			}
			if s, ok := anchorShape(&a); ok {
				shapes = append(shapes, s)
			}
		}
	}
	return shapes, nil
}

func anchorShape(a *xdrAnchor) (model.Shape, bool) {
	var s model.Shape
	var node *xdrNode
	switch {
	case a.Pic != nil:
		s.Type, node = "image", a.Pic
	case a.GraphicFrame != nil:
		s.Type, node = "chart", a.GraphicFrame
	case a.CxnSp != nil:
		s.Type, node = "connector", a.CxnSp
	case a.GrpSp != nil:
		s.Type, node = "group", a.GrpSp
	case a.Sp != nil:
		s.Type, node = "shape", a.Sp
	default:
		return s, false
	}

	switch {
	case a.From != nil:
		s.X, s.Y = gridX(a.From), gridY(a.From)
	case a.Pos != nil:
		s.X, s.Y = float64(a.Pos.X)/emuPerCol, float64(a.Pos.Y)/emuPerRow
	}
	switch {
	case a.From != nil && a.To != nil:
		w, h := gridX(a.To)-s.X, gridY(a.To)-s.Y
		s.Width, s.Height = &w, &h
	case a.Ext != nil:
		w, h := float64(a.Ext.Cx)/emuPerCol, float64(a.Ext.Cy)/emuPerRow
		s.Width, s.Height = &w, &h
	}

	p := node.props()
	s.Name = p.Name
	s.Text = strings.TrimSpace(strings.Join(node.Texts, ""))
	if s.Text == "" {
		s.Text = strings.TrimSpace(p.Descr)
	}
	return s, true
}

func gridX(m *xdrMarker) float64 { return float64(m.Col) + float64(m.ColOff)/emuPerCol }
func gridY(m *xdrMarker) float64 { return float64(m.Row) + float64(m.RowOff)/emuPerRow }
