package script

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nest-os/nest/config"
	"github.com/nest-os/nest/resolver"
	"github.com/nest-os/nest/suggest"
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// canonical returns the name fields are matched by: lower case without
// underscores.
func canonical(name string) string {
	return strings.ToLower(strings.Replace(name, "_", "", -1))
}

type localeField struct {
	name string
	get  func(l *config.Locale) *string
}

var localeFields = []localeField{
	{"lang", func(l *config.Locale) *string { return &l.Lang }},
	{"address", func(l *config.Locale) *string { return &l.Address }},
	{"identification", func(l *config.Locale) *string { return &l.Identification }},
	{"measurement", func(l *config.Locale) *string { return &l.Measurement }},
	{"monetary", func(l *config.Locale) *string { return &l.Monetary }},
	{"name", func(l *config.Locale) *string { return &l.Name }},
	{"numeric", func(l *config.Locale) *string { return &l.Numeric }},
	{"paper", func(l *config.Locale) *string { return &l.Paper }},
	{"telephone", func(l *config.Locale) *string { return &l.Telephone }},
	{"time", func(l *config.Locale) *string { return &l.Time }},
}

var userFields = []string{"username", "fullName", "homeDir", "shell", "manageHome", "groups"}

var configFields = []string{
	"hostname", "timezone", "locale", "kernels", "kernel", "users",
	"bootloader", "initramfsGenerator", "preBuild", "postBuild",
}

// A decoder converts tables built by a script to configuration values.
type decoder struct {
	script *resolver.Script
	logger *zap.Logger

	// L is the state the script ran in. Global function definitions are
	// looked up in it to tell apart functions defined on the same lines.
	L *lua.LState

	// strict rejects unknown fields instead of collecting them.
	strict bool
}

// field is a table entry with a string key.
type field struct {
	key   string // Key as written in the script.
	canon string
	value lua.LValue
}

// fields returns the string keyed entries of t sorted by key. Other keys are
// reported as errors.
func fields(t *lua.LTable, path string) ([]field, error) {
	var out []field
	var errs error
	t.ForEach(func(k, v lua.LValue) {
		s, ok := k.(lua.LString)
		if !ok {
			errs = multierr.Append(errs, errors.Errorf("%s: unexpected %s key %s", path, k.Type(), k.String()))
			return
		}
		out = append(out, field{key: string(s), canon: canonical(string(s)), value: v})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out, errs
}

// unknown returns the error for an unknown field in strict mode.
func unknown(path, key string, known []string) error {
	msg := fmt.Sprintf("%s: unknown field %q", path, key)
	if s := suggestField(key, known); s != "" {
		msg += fmt.Sprintf("; did you mean %q?", s)
	}
	return errors.New(msg)
}

func suggestField(key string, known []string) string {
	return suggest.Func(key, known, canonical)
}

func (d *decoder) config(t *lua.LTable) (*config.Config, error) {
	fs, errs := fields(t, "config")

	c := config.Config{}
	for _, f := range fs {
		path := "config." + f.key
		var err error
		switch f.canon {
		case "hostname":
			c.Hostname, err = str(f.value, path)
		case "timezone":
			c.Timezone, err = str(f.value, path)
		case "bootloader":
			c.Bootloader, err = str(f.value, path)
		case "initramfsgenerator":
			c.InitramfsGenerator, err = str(f.value, path)
		case "kernels", "kernel":
			var k []string
			k, err = strs(f.value, path)
			c.Kernels = append(c.Kernels, k...)
		case "locale":
			var tbl *lua.LTable
			if tbl, err = table(f.value, path); err == nil {
				c.Locale, err = d.locale(tbl, path)
			}
		case "users":
			c.Users, err = d.users(f.value, path)
		case "prebuild":
			c.PreBuild, err = d.hook(f.value, path)
		case "postbuild":
			c.PostBuild, err = d.hook(f.value, path)
		default:
			err = d.extra(&c, f)
		}
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return nil, errs
	}
	return config.New(c), nil
}

// extra stores an unknown config field as an extra property.
func (d *decoder) extra(c *config.Config, f field) error {
	if s := suggestField(f.key, configFields); s != "" {
		d.logger.Warn("Unknown config field is emitted as an extra property",
			zap.String("field", f.key),
			zap.String("suggestion", s),
		)
	}
	if fn, ok := f.value.(*lua.LFunction); ok && !fn.IsG {
		return errors.Errorf("config.%s: functions can only be used as preBuild or postBuild", f.key)
	}
	val, err := toCty(f.value)
	if err != nil {
		return errors.Wrapf(err, "config.%s", f.key)
	}
	if c.Extra == nil {
		c.Extra = make(map[string]cty.Value)
	}
	c.Extra[f.key] = val
	return nil
}

func (d *decoder) locale(t *lua.LTable, path string) (config.Locale, error) {
	fs, errs := fields(t, path)
	names := make([]string, len(localeFields))
	for i, lf := range localeFields {
		names[i] = lf.name
	}

	var l config.Locale
Outer:
	for _, f := range fs {
		for _, lf := range localeFields {
			if f.canon == lf.name {
				v, err := str(f.value, path+"."+f.key)
				errs = multierr.Append(errs, err)
				*lf.get(&l) = v
				continue Outer
			}
		}
		if d.strict {
			errs = multierr.Append(errs, unknown(path, f.key, names))
			continue
		}
		d.logger.Warn("Ignoring unknown locale field", zap.String("field", path+"."+f.key))
	}
	return l, errs
}

func (d *decoder) users(v lua.LValue, path string) ([]config.User, error) {
	t, err := table(v, path)
	if err != nil {
		return nil, err
	}
	var users []config.User
	var errs error
	for i := 1; i <= t.Len(); i++ {
		p := fmt.Sprintf("%s[%d]", path, i)
		ut, err := table(t.RawGetInt(i), p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		u, err := d.user(ut, p)
		errs = multierr.Append(errs, err)
		users = append(users, u)
	}
	return users, errs
}

// user decodes a user. Users manage their home directory unless the script
// says otherwise.
func (d *decoder) user(t *lua.LTable, path string) (config.User, error) {
	fs, errs := fields(t, path)

	u := config.User{ManageHome: true}
	for _, f := range fs {
		p := path + "." + f.key
		var err error
		switch f.canon {
		case "username":
			u.Username, err = str(f.value, p)
		case "fullname":
			u.FullName, err = str(f.value, p)
		case "homedir":
			u.HomeDir, err = str(f.value, p)
		case "shell":
			u.Shell, err = str(f.value, p)
		case "managehome":
			b, ok := f.value.(lua.LBool)
			if !ok {
				err = errors.Errorf("%s: expected boolean, got %s", p, f.value.Type())
			}
			u.ManageHome = bool(b)
		case "groups":
			u.Groups, err = strs(f.value, p)
		default:
			if d.strict {
				err = unknown(path, f.key, userFields)
				break
			}
			d.logger.Warn("Ignoring unknown user field", zap.String("field", p))
		}
		errs = multierr.Append(errs, err)
	}
	return u, errs
}

// hook resolves a hook to a top-level function of the script. The hook is a
// function value or the name of one.
func (d *decoder) hook(v lua.LValue, path string) (*config.Hook, error) {
	switch h := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		fn, err := d.script.Lookup(string(h))
		if err != nil {
			return nil, &resolver.NotDefinedError{
				Name:       string(h),
				Suggestion: suggest.String(string(h), d.script.Functions()),
			}
		}
		return &config.Hook{Name: fn.Name, Line: fn.Line}, nil
	case *lua.LFunction:
		if h.IsG || h.Proto == nil {
			return nil, errors.Errorf("%s: built-in functions cannot be used as hooks", path)
		}
		name, err := d.hookName(h, path)
		if err != nil {
			return nil, err
		}
		fn, err := d.script.Lookup(name)
		if err != nil {
			return nil, err
		}
		return &config.Hook{Name: name, Line: fn.Line}, nil
	}
	return nil, errors.Errorf("%s: expected function, got %s", path, v.Type())
}

// hookName returns the name of the top-level function fn was defined by.
func (d *decoder) hookName(fn *lua.LFunction, path string) (string, error) {
	first, last := fn.Proto.LineDefined, fn.Proto.LastLineDefined
	names := d.script.FunctionsAt(first, last)
	switch len(names) {
	case 0:
		return "", errors.Errorf("%s: hook defined on line %d is not a top-level function", path, first)
	case 1:
		return names[0], nil
	}

	var globals []string
	if d.L != nil {
		for _, name := range names {
			if d.L.GetGlobal(name) == fn {
				globals = append(globals, name)
			}
		}
	}
	if len(globals) == 1 {
		return globals[0], nil
	}
	return "", errors.Errorf("%s: ambiguous hook, functions %s are all defined on line %d; use the function name or move the hook to its own line",
		path, strings.Join(names, ", "), first)
}

func str(v lua.LValue, path string) (string, error) {
	switch s := v.(type) {
	case lua.LString:
		return string(s), nil
	case *lua.LNilType:
		return "", nil
	}
	return "", errors.Errorf("%s: expected string, got %s", path, v.Type())
}

// strs decodes a string or a list of strings.
func strs(v lua.LValue, path string) ([]string, error) {
	if s, ok := v.(lua.LString); ok {
		return []string{string(s)}, nil
	}
	t, err := table(v, path)
	if err != nil {
		return nil, errors.Errorf("%s: expected list of strings, got %s", path, v.Type())
	}
	out := make([]string, 0, t.Len())
	var errs error
	for i := 1; i <= t.Len(); i++ {
		s, ok := t.RawGetInt(i).(lua.LString)
		if !ok {
			errs = multierr.Append(errs, errors.Errorf("%s[%d]: expected string, got %s", path, i, t.RawGetInt(i).Type()))
			continue
		}
		out = append(out, string(s))
	}
	return out, errs
}

func table(v lua.LValue, path string) (*lua.LTable, error) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, errors.Errorf("%s: expected table, got %s", path, v.Type())
	}
	return t, nil
}
