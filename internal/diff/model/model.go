package model

// Row: строка таблицы: колонка → значение. Отсутствующий ключ равен Missing.
type Row map[string]Value

// Get возвращает значение колонки (Missing, если ключа нет).
func (r Row) Get(col string) Value {
	if r == nil {
		return Missing()
	}
	return r[col]
}

// Table: упорядоченные колонки и упорядоченные строки.
// Порядок строк важен только для отображения, не для сопоставления.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	// HeaderRow: номер строки заголовков в исходном листе (1-based, 0 = не из файла).
	// Нужен только для ссылок вида B7 в отчёте.
	HeaderRow int `json:"headerRow,omitempty"`
}

// RowNumber: номер строки листа (1-based) для индекса строки таблицы.
func (t Table) RowNumber(idx int) int {
	h := t.HeaderRow
	if h <= 0 {
		h = 1
	}
	return h + 1 + idx
}

// ColumnIndex: позиция колонки (0-based) или -1.
func (t Table) ColumnIndex(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Shape: графический объект листа (картинка, диаграмма, фигура).
// X, Y: якорь в единицах сетки ячеек (колонка/строка, 0-based, с дробной частью).
type Shape struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Type   string   `json:"type"`
	Text   string   `json:"text,omitempty"`
	Name   string   `json:"name,omitempty"`
}

// ChangeType: категория изменения; используется и как стиль ячейки.
type ChangeType string

const (
	Added    ChangeType = "added"
	Deleted  ChangeType = "deleted"
	Modified ChangeType = "modified"
)

// NoRow: индекс строки, отсутствующей с данной стороны.
const NoRow = -1

// Difference: запись об изменении.
//
//	added:    RowNew, Values
//	deleted:  RowOld, Values
//	modified: Column, RowOld, RowNew, ValueOld, ValueNew, Similarity
type Difference struct {
	Type       ChangeType       `json:"type"`
	Column     string           `json:"column,omitempty"`
	RowOld     int              `json:"rowOld"`
	RowNew     int              `json:"rowNew"`
	Values     map[string]Value `json:"values,omitempty"`
	ValueOld   Value            `json:"valueOld"`
	ValueNew   Value            `json:"valueNew"`
	Similarity float64          `json:"similarity"`
}

func NewAdded(row int, values map[string]Value) Difference {
	return Difference{Type: Added, RowOld: NoRow, RowNew: row, Values: values}
}

func NewDeleted(row int, values map[string]Value) Difference {
	return Difference{Type: Deleted, RowOld: row, RowNew: NoRow, Values: values}
}

func NewModified(col string, rowOld, rowNew int, oldV, newV Value, sim float64) Difference {
	return Difference{
		Type:       Modified,
		Column:     col,
		RowOld:     rowOld,
		RowNew:     rowNew,
		ValueOld:   oldV,
		ValueNew:   newV,
		Similarity: sim,
	}
}

// StyleMark: пометка ячейки для отрисовки (added/deleted/modified).
type StyleMark struct {
	Column string     `json:"column"`
	Row    int        `json:"row"`
	Tag    ChangeType `json:"tag"`
}

// MatchMethod: каким проходом найдена пара строк.
type MatchMethod string

const (
	MethodExact   MatchMethod = "exact"
	MethodSimilar MatchMethod = "similar"
)

// Match: сопоставленная пара строк (Old из A, New из B).
type Match struct {
	Old        int         `json:"old"`
	New        int         `json:"new"`
	Similarity float64     `json:"similarity"`
	Method     MatchMethod `json:"method"`
}

type Stats struct {
	RowsA          int      `json:"rowsA"`
	RowsB          int      `json:"rowsB"`
	CommonColumns  []string `json:"commonColumns"`
	KeyColumns     []string `json:"keyColumns"`
	OrdinalColumns []string `json:"ordinalColumns"`
	ExactMatches   int      `json:"exactMatches"`
	SimilarMatches int      `json:"similarMatches"`
	Added          int      `json:"added"`
	Deleted        int      `json:"deleted"`
	ModifiedCells  int      `json:"modifiedCells"`
	// FingerprintFallback: отпечатки таблицы заменены позиционными (A и/или B).
	FingerprintFallback []string `json:"fingerprintFallback,omitempty"`
}

// ShapeDifference: изменение графического объекта.
// Old и New указывают на исходные фигуры; Fields, изменившиеся атрибуты (для modified).
type ShapeDifference struct {
	Type     ChangeType `json:"type"`
	IndexOld int        `json:"indexOld"`
	IndexNew int        `json:"indexNew"`
	Old      *Shape     `json:"old,omitempty"`
	New      *Shape     `json:"new,omitempty"`
	Fields   []string   `json:"fields,omitempty"`
}

// Result: результат одного сравнения. Ничего не переживает вызов.
type Result struct {
	TableA      Table        `json:"tableA"`
	TableB      Table        `json:"tableB"`
	StylesA     []StyleMark  `json:"stylesA"`
	StylesB     []StyleMark  `json:"stylesB"`
	Differences []Difference `json:"differences"`
	Matches     []Match      `json:"matches"`
	Stats       Stats        `json:"stats"`

	Shapes     []ShapeDifference `json:"shapes,omitempty"`
	ShapeError string            `json:"shapeError,omitempty"`

	Opts Options `json:"opts"`
}

// Counts: число записей каждого типа.
func (r Result) Counts() map[ChangeType]int {
	out := map[ChangeType]int{Added: 0, Deleted: 0, Modified: 0}
	for _, d := range r.Differences {
		out[d.Type]++
	}
	return out
}
