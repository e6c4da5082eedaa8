package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ToGoValue converts a scalar Lua value to Go: nil, bool, float64 or string.
// Tables, functions and userdata are rejected with ErrUnsupportedValue.
func ToGoValue(lv lua.LValue) (any, error) {
	switch v := lv.(type) {
	case nil, *lua.LNilType:
		return nil, nil
	case lua.LBool:
		return bool(v), nil
	case lua.LNumber:
		return float64(v), nil
	case lua.LString:
		return string(v), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, lv.Type())
	}
}

// ToLuaValue converts a scalar Go value to Lua. Unknown types become their
// fmt representation.
func ToLuaValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case error:
		return lua.LString(val.Error())
	default:
		return lua.LString(fmt.Sprint(val))
	}
}
