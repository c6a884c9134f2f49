package script

import (
	"sort"
	"strings"

	"github.com/nest-os/nest/config"
	"github.com/nest-os/nest/resolver"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Metatable names of values created by the nest module.
const (
	configType      = "nest.Config"
	placeholderType = "nest.placeholder"
)

// ModuleName is the name scripts require the nest module by.
const ModuleName = "nest"

type env struct {
	L        *lua.LState
	script   *resolver.Script
	logger   *zap.Logger
	identity config.Identity
	genRoot  string

	module      *lua.LTable
	placeholder *lua.LTable
	emitted     *lua.LTable
}

// install opens the libraries available to scripts and replaces the globals
// that would load code or write to stdout.
func (e *env) install() {
	L := e.L
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	lua.OpenOs(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	// os keeps getenv and the time functions.
	if osLib, ok := L.GetGlobal("os").(*lua.LTable); ok {
		for _, name := range []string{"execute", "exit", "remove", "rename", "tmpname", "setlocale"} {
			osLib.RawSetString(name, lua.LNil)
		}
	}

	L.NewTypeMetatable(configType)

	e.placeholder = e.newPlaceholder()
	// io is only used by hooks, which run later.
	L.SetGlobal("io", e.placeholder)

	e.module = e.newModule()
	L.SetGlobal("print", L.NewFunction(e.print))
	L.SetGlobal("require", L.NewFunction(e.require))
}

// newPlaceholder returns a table that absorbs any use: every field is the
// placeholder itself and calling it returns the placeholder.
func (e *env) newPlaceholder() *lua.LTable {
	L := e.L
	p := L.NewTable()
	mt := L.NewTypeMetatable(placeholderType)
	self := func(L *lua.LState) int {
		L.Push(p)
		return 1
	}
	L.SetField(mt, "__index", L.NewFunction(self))
	L.SetField(mt, "__call", L.NewFunction(self))
	L.SetField(mt, "__newindex", L.NewFunction(func(*lua.LState) int { return 0 }))
	L.SetMetatable(p, mt)
	return p
}

func (e *env) newModule() *lua.LTable {
	L := e.L
	m := L.NewTable()
	L.SetFuncs(m, map[string]lua.LGFunction{
		"new_config": e.newConfig,
		"Locale":     e.newLocale,
		"User":       e.newUser,
		"emit":       e.emit,
	})
	L.SetField(m, "gen_root", lua.LString(e.genRoot))

	osRelease := L.NewTable()
	keys := make([]string, 0, len(e.identity))
	for k := range e.identity {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		L.SetField(osRelease, k, lua.LString(e.identity[k]))
	}
	L.SetField(m, "os_release", osRelease)
	return m
}

func (e *env) require(L *lua.LState) int {
	name := L.CheckString(1)
	if name == ModuleName {
		L.Push(e.module)
		return 1
	}
	e.logger.Debug("Module is not available during evaluation", zap.String("module", name))
	L.Push(e.placeholder)
	return 1
}

func (e *env) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	e.logger.Info(strings.Join(parts, "\t"))
	return 0
}

// newConfig implements nest.new_config(). The hostname is taken from the
// os-release ID, like config.NewFromIdentity.
func (e *env) newConfig(L *lua.LState) int {
	c := config.NewFromIdentity(e.identity)
	t := L.NewTable()
	L.SetField(t, "hostname", lua.LString(c.Hostname))
	L.SetMetatable(t, L.GetTypeMetatable(configType))
	L.Push(t)
	return 1
}

// newLocale implements nest.Locale{...}. The returned table holds every
// field after the cascade.
func (e *env) newLocale(L *lua.LState) int {
	args := L.OptTable(1, L.NewTable())
	d := &decoder{script: e.script, logger: e.logger, L: L, strict: true}
	l, err := d.locale(args, "Locale")
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(e.localeTable(config.NewLocale(l)))
	return 1
}

// newUser implements nest.User{...}.
func (e *env) newUser(L *lua.LState) int {
	args := L.OptTable(1, L.NewTable())
	d := &decoder{script: e.script, logger: e.logger, L: L, strict: true}
	u, err := d.user(args, "User")
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(e.userTable(config.NewUser(u)))
	return 1
}

// fromFactory reports whether t was created by nest.new_config.
func (e *env) fromFactory(t *lua.LTable) bool {
	return e.L.GetMetatable(t) == e.L.GetTypeMetatable(configType)
}

func (e *env) emit(L *lua.LState) int {
	e.emitted = L.CheckTable(1)
	return 0
}

func (e *env) localeTable(l config.Locale) *lua.LTable {
	L := e.L
	t := L.NewTable()
	for _, f := range localeFields {
		L.SetField(t, f.name, lua.LString(*f.get(&l)))
	}
	return t
}

func (e *env) userTable(u config.User) *lua.LTable {
	L := e.L
	t := L.NewTable()
	L.SetField(t, "username", lua.LString(u.Username))
	L.SetField(t, "fullName", lua.LString(u.FullName))
	L.SetField(t, "homeDir", lua.LString(u.HomeDir))
	L.SetField(t, "shell", lua.LString(u.Shell))
	L.SetField(t, "manageHome", lua.LBool(u.ManageHome))
	groups := L.NewTable()
	for _, g := range u.Groups {
		groups.Append(lua.LString(g))
	}
	L.SetField(t, "groups", groups)
	return t
}
