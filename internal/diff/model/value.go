package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind: тип значения ячейки.
type Kind uint8

const (
	KindMissing Kind = iota
	KindInt
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value: скаляр ячейки: Integer | Float | Text | Missing.
// Missing отличается от пустой строки и от нуля.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Text  string
}

func Missing() Value { return Value{} }

func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Float: NaN трактуется как отсутствующее значение.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{Kind: KindFloat, Float: f}
}

func Text(s string) Value { return Value{Kind: KindText, Text: s} }

func (v Value) IsMissing() bool { return v.Kind == KindMissing }

func (v Value) IsNumber() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// Number возвращает числовое значение для Int/Float.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Any: значение в виде nil | int64 | float64 | string (для JSON и выгрузки в xlsx).
func (v Value) Any() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindText:
		return v.Text
	default:
		return nil
	}
}

// String: исходное (не нормализованное) представление для отображения.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindText:
		return v.Text
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindFloat && math.IsInf(v.Float, 0) {
		return json.Marshal(v.String())
	}
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// FromAny строит Value из значения произвольного типа (JSON, xlsx, тесты).
// Неизвестные типы сериализуются как текст.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Missing()
	case Value:
		return t
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		if f, err := t.Float64(); err == nil {
			return Float(f)
		}
		return Text(t.String())
	case string:
		return Text(t)
	case bool:
		return Text(strconv.FormatBool(t))
	default:
		return Text(fmt.Sprint(t))
	}
}
