package script

import (
	"math"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
	"github.com/zclconf/go-cty/cty"
)

// toCty converts a Lua value to a cty value. Sequences become tuples and
// tables with string keys become objects. Functions, userdata and tables
// that contain themselves cannot be converted.
func toCty(lv lua.LValue) (cty.Value, error) {
	return toCtyVisited(lv, make(map[*lua.LTable]bool))
}

func toCtyVisited(lv lua.LValue, visited map[*lua.LTable]bool) (cty.Value, error) {
	switch v := lv.(type) {
	case *lua.LNilType:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case lua.LBool:
		return cty.BoolVal(bool(v)), nil
	case lua.LNumber:
		f := float64(v)
		if math.IsNaN(f) {
			return cty.NilVal, errors.New("cannot use NaN value")
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return cty.NumberIntVal(int64(f)), nil
		}
		return cty.NumberFloatVal(f), nil
	case lua.LString:
		return cty.StringVal(string(v)), nil
	case *lua.LTable:
		if visited[v] {
			return cty.NilVal, errors.New("table contains itself")
		}
		visited[v] = true
		defer delete(visited, v)
		return tableToCty(v, visited)
	}
	return cty.NilVal, errors.Errorf("cannot use %s value", lv.Type())
}

func tableToCty(t *lua.LTable, visited map[*lua.LTable]bool) (cty.Value, error) {
	n := t.Len()
	count := 0
	var badKey lua.LValue
	t.ForEach(func(k, _ lua.LValue) {
		count++
		switch k.(type) {
		case lua.LString, lua.LNumber:
		default:
			badKey = k
		}
	})
	if badKey != nil {
		return cty.NilVal, errors.Errorf("unsupported %s table key", badKey.Type())
	}

	if count == n {
		if n == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, n)
		for i := 1; i <= n; i++ {
			v, err := toCtyVisited(t.RawGetInt(i), visited)
			if err != nil {
				return cty.NilVal, errors.Wrapf(err, "[%d]", i)
			}
			elems[i-1] = v
		}
		return cty.TupleVal(elems), nil
	}

	attrs := make(map[string]cty.Value, count)
	var err error
	t.ForEach(func(k, lv lua.LValue) {
		if err != nil {
			return
		}
		key := lua.LVAsString(k)
		var v cty.Value
		if v, err = toCtyVisited(lv, visited); err != nil {
			err = errors.Wrapf(err, ".%s", key)
			return
		}
		attrs[key] = v
	})
	if err != nil {
		return cty.NilVal, err
	}
	return cty.ObjectVal(attrs), nil
}
