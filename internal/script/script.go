// Package script compiles Lua streamline functions.
//
// A script defines a global function that receives the streamlined setting
// and its dependencies:
//
//	function streamline(self, deps)
//	  local merge = self:value()
//	  deps[1]:set_enabled(not merge)
//	  if merge then deps[1]:set_value(false) end
//	end
//
// Setting handles expose name(), value(), set_value(v), enabled(),
// set_enabled(b), visible(), set_visible(b) and description(). A rejected
// set_value raises a Lua error, which fails the streamline pass.
//
// Scripts run in a sandbox with only the base, table, string and math
// libraries; loading code or files is not possible.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/settingkit/internal/setting"
)

// DefaultEntry is the global function a script must define.
const DefaultEntry = "streamline"

// DefaultTimeout bounds one streamline call.
const DefaultTimeout = time.Second

const settingTypeName = "setting"

// Errors returned by script operations.
var (
	ErrClosed       = errors.New("script closed")
	ErrMissingEntry = errors.New("script does not define the entry function")
)

// Program is a compiled script. Calls are serialized; a Program may be
// shared, but Lua execution is single-threaded.
type Program struct {
	mu      sync.Mutex
	L       *lua.LState
	entry   string
	timeout time.Duration
	closed  bool
}

// Option configures a Program.
type Option func(*Program)

// WithEntry sets the name of the entry function.
func WithEntry(name string) Option {
	return func(p *Program) {
		p.entry = name
	}
}

// WithTimeout bounds each call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Program) {
		p.timeout = d
	}
}

// Compile runs src in a fresh sandboxed state and checks that it defines
// the entry function.
func Compile(src string, opts ...Option) (*Program, error) {
	p := &Program{entry: DefaultEntry, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(p)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	registerSettingType(L)
	p.L = L

	if err := p.run(func() error { return L.DoString(src) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("compile script: %w", err)
	}

	if fn := L.GetGlobal(p.entry); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%w: %s (got %s)", ErrMissingEntry, p.entry, fn.Type())
	}
	return p, nil
}

// openSafeLibraries opens base, table, string and math, then removes the
// base functions that load code.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Func returns a streamline function that calls the script.
func (p *Program) Func() setting.StreamlineFunc {
	return func(s *setting.Setting, deps []*setting.Setting) error {
		return p.Call(s, deps)
	}
}

// Call runs the entry function for s and deps.
func (p *Program) Call(s *setting.Setting, deps []*setting.Setting) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	L := p.L
	depTable := L.NewTable()
	for _, d := range deps {
		depTable.Append(newSettingHandle(L, d))
	}

	return p.run(func() error {
		return L.CallByParam(lua.P{
			Fn:      L.GetGlobal(p.entry),
			NRet:    0,
			Protect: true,
		}, newSettingHandle(L, s), depTable)
	})
}

// Close releases the Lua state.
func (p *Program) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.closed = true
		p.L.Close()
	}
}

// run calls fn bounded by the timeout, converting Lua panics to errors.
func (p *Program) run(fn func() error) error {
	if p.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		p.L.SetContext(ctx)
		defer p.L.RemoveContext()
	}
	return p.doWithRecovery(fn)
}

func (p *Program) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

func registerSettingType(L *lua.LState) {
	mt := L.NewTypeMetatable(settingTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"name":        settingName,
		"value":       settingValue,
		"set_value":   settingSetValue,
		"enabled":     settingEnabled,
		"set_enabled": settingSetEnabled,
		"visible":     settingVisible,
		"set_visible": settingSetVisible,
		"description": settingDescription,
	}))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkSetting(L).String()))
		return 1
	}))
}

func newSettingHandle(L *lua.LState, s *setting.Setting) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = s
	L.SetMetatable(ud, L.GetTypeMetatable(settingTypeName))
	return ud
}

func checkSetting(L *lua.LState) *setting.Setting {
	ud := L.CheckUserData(1)
	if s, ok := ud.Value.(*setting.Setting); ok {
		return s
	}
	L.ArgError(1, "setting expected")
	return nil
}

func settingName(L *lua.LState) int {
	L.Push(lua.LString(checkSetting(L).Name()))
	return 1
}

func settingDescription(L *lua.LState) int {
	L.Push(lua.LString(checkSetting(L).Description()))
	return 1
}

func settingValue(L *lua.LState) int {
	L.Push(ToLua(checkSetting(L).Value()))
	return 1
}

func settingSetValue(L *lua.LState) int {
	s := checkSetting(L)
	if err := s.SetValue(FromLua(L.CheckAny(2))); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func settingEnabled(L *lua.LState) int {
	L.Push(lua.LBool(checkSetting(L).UIEnabled()))
	return 1
}

func settingSetEnabled(L *lua.LState) int {
	checkSetting(L).SetUIEnabled(L.CheckBool(2))
	return 0
}

func settingVisible(L *lua.LState) int {
	L.Push(lua.LBool(checkSetting(L).UIVisible()))
	return 1
}

func settingSetVisible(L *lua.LState) int {
	checkSetting(L).SetUIVisible(L.CheckBool(2))
	return 0
}
