package clickhouse

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedValueType is returned when a value has no SQL literal form.
	ErrUnsupportedValueType = errors.New("unsupported value type")
	// ErrMalformedCondition is returned for bad templates, bad condition
	// arguments and conflicting exec options.
	ErrMalformedCondition = errors.New("malformed condition")
	// ErrColumnMismatch is returned when keys and row width differ.
	ErrColumnMismatch = errors.New("column count mismatch")
	// ErrNoClient is returned when executing a query that was not built by a Client.
	ErrNoClient = errors.New("query is not bound to a client")
)

// TransportError is returned for every response whose status is not 200.
// Its message is the raw response body.
type TransportError struct {
	StatusCode int
	Body       []byte
}

func (e *TransportError) Error() string {
	return string(e.Body)
}

func unsupported(v any) error {
	return fmt.Errorf("%w: %T", ErrUnsupportedValueType, v)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedCondition, fmt.Sprintf(format, args...))
}
