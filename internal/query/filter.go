package query

import (
	"cmp"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"denuncias/internal/models"
)

// FilterType is the predicate kind of a Filter.
type FilterType string

const (
	FilterEq FilterType = "eq"
	FilterIn FilterType = "in"
)

// Filter is one predicate of a conjunction. Eq uses Value, In uses Values.
type Filter struct {
	Type   FilterType `json:"type"`
	Column string     `json:"column"`
	Value  any        `json:"value,omitempty"`
	Values []any      `json:"values,omitempty"`
}

// Eq builds an equality predicate.
func Eq(column string, value any) Filter {
	return Filter{Type: FilterEq, Column: column, Value: value}
}

// In builds a set-membership predicate.
func In(column string, values ...any) Filter {
	if values == nil {
		values = []any{}
	}
	return Filter{Type: FilterIn, Column: column, Values: values}
}

// Order sorts by a single column.
type Order struct {
	Column    string `json:"column"`
	Ascending bool   `json:"ascending"`
}

// CountOption requests a row count alongside array results.
type CountOption string

const (
	CountNone  CountOption = ""
	CountExact CountOption = "exact"
)

// columns maps a column name to an accessor over a live row.
type columns[T any] map[string]func(*T) any

// validate rejects unknown predicate kinds, unknown columns and non-scalar
// operands before any row is inspected.
func (c columns[T]) validate(table models.Table, filters []Filter, order *Order) error {
	for _, f := range filters {
		if _, ok := c[f.Column]; !ok {
			return models.NewInvalidRequestError("column %q does not exist on %q", f.Column, table)
		}
		switch f.Type {
		case FilterEq:
			if !scalar(f.Value) {
				return models.NewInvalidRequestError("filter on %q needs a scalar value", f.Column)
			}
		case FilterIn:
			for _, v := range f.Values {
				if !scalar(v) {
					return models.NewInvalidRequestError("filter on %q needs scalar values", f.Column)
				}
			}
		default:
			return models.NewInvalidRequestError("unsupported filter type %q", f.Type)
		}
	}
	if order != nil {
		if _, ok := c[order.Column]; !ok {
			return models.NewInvalidRequestError("cannot order %q by unknown column %q", table, order.Column)
		}
	}
	return nil
}

func (c columns[T]) matches(row *T, filters []Filter) bool {
	for _, f := range filters {
		got := c[f.Column](row)
		switch f.Type {
		case FilterEq:
			if !equal(got, f.Value) {
				return false
			}
		case FilterIn:
			found := false
			for _, v := range f.Values {
				if equal(got, v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareRows orders nulls first when ascending and last when descending.
func (c columns[T]) compareRows(a, b *T, order Order) int {
	get := c[order.Column]
	va, vb := normalize(get(a)), normalize(get(b))
	var r int
	switch {
	case va == nil && vb == nil:
		return 0
	case va == nil:
		r = -1
	case vb == nil:
		r = 1
	default:
		r = compare(va, vb)
	}
	if !order.Ascending {
		r = -r
	}
	return r
}

func scalar(v any) bool {
	switch normalize(v).(type) {
	case nil, string, float64, bool, time.Time:
		return true
	}
	return false
}

// normalize folds named string types, numeric kinds and nullable pointers into
// a small set of comparable values.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func equal(a, b any) bool {
	na, nb := normalize(a), normalize(b)
	if ta, ok := na.(time.Time); ok {
		tb, ok := asTime(nb)
		return ok && ta.Equal(tb)
	}
	if tb, ok := nb.(time.Time); ok {
		ta, ok := asTime(na)
		return ok && ta.Equal(tb)
	}
	if !scalar(na) || !scalar(nb) {
		return false
	}
	return na == nb
}

func compare(a, b any) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if y, ok := asTime(b); ok {
			return x.Compare(y)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
