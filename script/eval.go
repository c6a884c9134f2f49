package script

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/nest-os/nest/config"
	"github.com/nest-os/nest/resolver"
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// An Error is a runtime error raised while the script was evaluated.
type Error struct {
	Name    string // Chunk name of the script.
	Message string // Lua error message, including position.
}

func (e *Error) Error() string {
	return fmt.Sprintf("evaluate %s: %s", e.Name, e.Message)
}

// ErrNoConfig is returned when the script neither returns nor emits a
// configuration.
var ErrNoConfig = errors.New("script did not return or emit a configuration")

// Result is the outcome of evaluating a script.
type Result struct {
	// Config is the normalized configuration.
	Config *config.Config

	// Script is the parsed script, used to resolve hooks.
	Script *resolver.Script
}

// An Evaluator evaluates configuration scripts.
type Evaluator struct {
	// Identity is the os-release identity used by nest.new_config.
	Identity config.Identity

	// GenRoot is the output directory exposed as nest.gen_root.
	GenRoot string

	// Logger receives print output and warnings about the script. If not
	// set, logs are discarded.
	Logger *zap.Logger
}

// Eval parses and runs a script. The script must return a configuration
// table or pass one to nest.emit.
//
// A syntax error is returned as *symbols.ParseError, a runtime error as
// *Error.
func (e *Evaluator) Eval(ctx context.Context, name string, src []byte) (*Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("script", name))

	s, err := resolver.Load(name, src)
	if err != nil {
		return nil, err
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if ctx != nil {
		L.SetContext(ctx)
	}

	env := &env{
		L:        L,
		script:   s,
		logger:   logger,
		identity: e.Identity,
		genRoot:  e.GenRoot,
	}
	env.install()

	fn, err := L.Load(bytes.NewReader(src), name)
	if err != nil {
		return nil, &Error{Name: name, Message: err.Error()}
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, &Error{Name: name, Message: errorMessage(err)}
	}
	ret := L.Get(-1)
	L.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		tbl = env.emitted
	} else if env.emitted != nil && env.emitted != tbl {
		logger.Warn("Script both emitted and returned a configuration, using the returned one")
	}
	if tbl == nil {
		return nil, ErrNoConfig
	}
	if !env.fromFactory(tbl) {
		logger.Debug("Configuration was not created by nest.new_config, hostname is not taken from os-release")
	}

	d := &decoder{script: s, logger: logger, L: L}
	c, err := d.config(tbl)
	if err != nil {
		return nil, err
	}
	return &Result{Config: c, Script: s}, nil
}

func errorMessage(err error) string {
	if aerr, ok := err.(*lua.ApiError); ok && aerr.Object != nil {
		return aerr.Object.String()
	}
	return strings.TrimSpace(err.Error())
}
