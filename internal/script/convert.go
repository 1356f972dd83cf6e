package script

import (
	"math"

	lua "github.com/yuin/gopher-lua"
)

// ToLua converts a setting value to a Lua value. Unsupported types become
// nil.
func ToLua(v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case int32:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case float32:
		return lua.LNumber(x)
	default:
		return lua.LNil
	}
}

// FromLua converts a Lua value for assignment to a setting. Integral
// numbers become int so that integer and enum settings accept them.
func FromLua(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LString:
		return string(v)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && f >= math.MinInt && f <= math.MaxInt {
			return int(f)
		}
		return f
	default:
		return nil
	}
}
