package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Outcome holds either a value or the message of a failed validation.
type Outcome[T any] struct {
	value  T
	reason string
	failed bool
}

func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

func Fail[T any](reason string) Outcome[T] {
	return Outcome[T]{reason: reason, failed: true}
}

func (o Outcome[T]) Value() (T, bool) {
	return o.value, !o.failed
}

func (o Outcome[T]) Failed() bool {
	return o.failed
}

// Reason is empty for a successful outcome.
func (o Outcome[T]) Reason() string {
	return o.reason
}

func (o Outcome[T]) String() string {
	if o.failed {
		return o.reason
	}
	return fmt.Sprint(o.value)
}

// asNumber reports whether v holds a Go numeric value or a json.Number.
// NaN is not treated as a number.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
