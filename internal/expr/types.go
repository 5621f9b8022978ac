package expr

import (
	"fmt"
	"math"
	"time"

	"go.starlark.net/starlark"
)

// EvalError represents an error during Starlark expression evaluation.
type EvalError struct {
	File    string
	Row     int
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s: row %d: error evaluating %q: %s", e.File, e.Row, e.Expr, e.Message)
	}
	return fmt.Sprintf("%s: error evaluating %q: %s", e.File, e.Expr, e.Message)
}

// GoToStarlark converts a cell value to a Starlark value. Values with no
// Starlark counterpart are passed as their string form.
func GoToStarlark(v any) starlark.Value {
	switch val := v.(type) {
	case nil:
		return starlark.None
	case string:
		return starlark.String(val)
	case []byte:
		return starlark.String(val)
	case bool:
		return starlark.Bool(val)
	case int:
		return starlark.MakeInt(val)
	case int8:
		return starlark.MakeInt(int(val))
	case int16:
		return starlark.MakeInt(int(val))
	case int32:
		return starlark.MakeInt(int(val))
	case int64:
		return starlark.MakeInt64(val)
	case uint:
		return starlark.MakeUint(val)
	case uint8:
		return starlark.MakeUint(uint(val))
	case uint16:
		return starlark.MakeUint(uint(val))
	case uint32:
		return starlark.MakeUint(uint(val))
	case uint64:
		return starlark.MakeUint64(val)
	case float32:
		return starlark.Float(val)
	case float64:
		return starlark.Float(val)
	case time.Time:
		return starlark.String(val.Format(time.RFC3339Nano))
	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			list[i] = GoToStarlark(item)
		}
		return starlark.NewList(list)
	case map[string]any:
		return rowDict(val)
	default:
		return starlark.String(fmt.Sprint(val))
	}
}

// rowDict converts source data to a frozen dict.
func rowDict(data map[string]any) *starlark.Dict {
	dict := starlark.NewDict(len(data))
	for k, v := range data {
		// Keys are strings, so SetKey cannot fail.
		_ = dict.SetKey(starlark.String(k), GoToStarlark(v))
	}
	dict.Freeze()
	return dict
}

// toFloat reads a Starlark number.
func toFloat(v starlark.Value) (float64, bool) {
	switch val := v.(type) {
	case starlark.Float:
		return float64(val), !math.IsNaN(float64(val))
	case starlark.Int:
		return float64(val.Float()), true
	default:
		return 0, false
	}
}
