package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// requirable lists the opened libraries require() may return. Modules
// registered on a State are added per state.
var requirable = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
}

// lockDown removes the chunk loaders that read files or compile strings,
// empties the package search paths and restricts require to requirable
// libraries and the names in modules.
func lockDown(L *lua.LState, modules map[string]bool) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	require := L.GetGlobal("require")
	if require == lua.LNil {
		return
	}
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !requirable[name] && !modules[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(require)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}
