package clickhouse

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Date marks a time to be rendered as a date. A plain time.Time renders
// the same way.
type Date time.Time

// DateTime marks a time to be rendered with its time of day.
type DateTime time.Time

var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Quote renders v as a SQL literal. Numbers are unquoted, strings and dates
// are single quoted. Any other type fails with ErrUnsupportedValueType.
func Quote(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", unsupported(v)
	case string:
		return "'" + stringEscaper.Replace(t) + "'", nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case float64:
		return quoteFloat(v, t, 64)
	case float32:
		return quoteFloat(v, float64(t), 32)
	case bool:
		if t {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return "'" + t.Format(dateLayout) + "'", nil
	case Date:
		return "'" + time.Time(t).Format(dateLayout) + "'", nil
	case DateTime:
		return "'" + time.Time(t).Format(dateTimeLayout) + "'", nil
	}

	// named types over basic kinds, e.g. `type Status int`
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return quoteFloat(v, rv.Float(), rv.Type().Bits())
	case reflect.String:
		return Quote(rv.String())
	case reflect.Bool:
		return Quote(rv.Bool())
	}
	return "", unsupported(v)
}

// quoteFloat rejects infinities and NaN, which have no decimal literal.
func quoteFloat(v any, f float64, bits int) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", unsupported(v)
	}
	return strconv.FormatFloat(f, 'f', -1, bits), nil
}
