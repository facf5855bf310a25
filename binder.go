package clickhouse

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

const nullCell = `\N`

// Bind fills dst from the rows of r. dst is a pointer to a struct, a slice
// of structs or a slice of struct pointers. Cells are matched to fields by
// column name; columns without a field are skipped. A struct receives the
// first row only.
func (r *Result) Bind(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("bind target should be a non nil pointer, got %T", dst)
	}
	if len(r.columns) == 0 {
		return fmt.Errorf("%w: result has no column names", ErrColumnMismatch)
	}
	m, err := modelOf(dst)
	if err != nil {
		return err
	}
	b := &binder{fields: make([]*field, len(r.columns))}
	for i, c := range r.columns {
		b.fields[i] = m.field(c)
	}

	v = v.Elem()
	if v.Kind() != reflect.Slice {
		if len(r.rows) == 0 {
			return nil
		}
		return b.bindRow(v, r.rows[0])
	}

	elem := v.Type().Elem()
	out := reflect.MakeSlice(v.Type(), 0, len(r.rows))
	for _, row := range r.rows {
		var item reflect.Value
		if elem.Kind() == reflect.Ptr {
			item = reflect.New(elem.Elem())
			err = b.bindRow(item.Elem(), row)
		} else {
			item = reflect.New(elem).Elem()
			err = b.bindRow(item, row)
		}
		if err != nil {
			return err
		}
		out = reflect.Append(out, item)
	}
	v.Set(out)
	return nil
}

type binder struct {
	// fields[i] receives column i, nil when the column has no field
	fields []*field
}

func (b *binder) bindRow(v reflect.Value, row []string) error {
	if len(row) != len(b.fields) {
		return fmt.Errorf("%w: row has %d columns, result has %d", ErrColumnMismatch, len(row), len(b.fields))
	}
	for i, f := range b.fields {
		if f == nil {
			continue
		}
		if err := setCell(v.FieldByIndex(f.Index), row[i]); err != nil {
			return fmt.Errorf("column %s: %w", f.Name, err)
		}
	}
	return nil
}

func setCell(v reflect.Value, cell string) error {
	if cell == nullCell {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	if v.Type() == timeType {
		t, err := parseTime(cell)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(t))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(cell)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(cell, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(cell, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(cell, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Bool:
		switch cell {
		case "1", "true":
			v.SetBool(true)
		case "0", "false":
			v.SetBool(false)
		default:
			return fmt.Errorf("cannot parse %q as bool", cell)
		}
	default:
		return unsupported(v.Interface())
	}
	return nil
}

func parseTime(cell string) (time.Time, error) {
	if t, err := time.Parse(dateTimeLayout, cell); err == nil {
		return t, nil
	}
	return time.Parse(dateLayout, cell)
}
