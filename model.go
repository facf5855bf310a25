package clickhouse

import (
	"fmt"
	"reflect"
	"time"

	"github.com/gertd/go-pluralize"
	"github.com/iancoleman/strcase"
)

// Tabler overrides the inferred table name of a model.
type Tabler interface {
	Table() string
}

type field struct {
	Name  string
	Index []int
	Type  reflect.Type
}

type model struct {
	table  string
	fields []*field
}

var timeType = reflect.TypeOf(time.Time{})

// modelOf reads table and column names from a struct. The table is the
// plural snake case type name unless v implements Tabler; a column is the
// `bind` tag or the snake case field name. Embedded structs are flattened.
func modelOf(v any) (*model, error) {
	t := reflect.TypeOf(v)
	for t != nil && (t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model should be a struct, got %T", v)
	}

	m := &model{fields: fieldsOf(t, nil)}
	if tabler, ok := reflect.New(t).Interface().(Tabler); ok {
		m.table = tabler.Table()
	} else {
		m.table = pluralize.NewClient().Plural(strcase.ToSnake(t.Name()))
	}
	return m, nil
}

func fieldsOf(t reflect.Type, index []int) []*field {
	var fields []*field
	for i := 0; i < t.NumField(); i++ {
		ft := t.Field(i)
		if !ft.IsExported() {
			continue
		}
		idx := append(append([]int{}, index...), i)
		if ft.Anonymous && ft.Type.Kind() == reflect.Struct && ft.Type != timeType {
			fields = append(fields, fieldsOf(ft.Type, idx)...)
			continue
		}
		name, ok := ft.Tag.Lookup("bind")
		if name == "-" {
			continue
		}
		if !ok || name == "" {
			name = strcase.ToSnake(ft.Name)
		}
		fields = append(fields, &field{Name: name, Index: idx, Type: ft.Type})
	}
	return fields
}

func (m *model) columns() []string {
	cols := make([]string, 0, len(m.fields))
	for _, f := range m.fields {
		cols = append(cols, f.Name)
	}
	return cols
}

func (m *model) field(column string) *field {
	for _, f := range m.fields {
		if f.Name == column {
			return f
		}
	}
	return nil
}

// Model selects the columns of the struct v and reads from its table.
func (q Query) Model(v any) Query {
	m, err := modelOf(v)
	if err != nil {
		return q.fail(err)
	}
	return q.Select(m.columns()...).From(m.table)
}
