package compiler

import (
	"context"
	"io"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/nest-os/nest/config"
	"github.com/nest-os/nest/resolver"
	"github.com/nest-os/nest/script"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// A Loader loads the input of a compilation from a Lua script or an HCL
// file.
type Loader struct {
	// Identity is the os-release identity used for defaults.
	Identity config.Identity

	// GenRoot is exposed to Lua scripts as nest.gen_root.
	GenRoot string

	Logger *zap.Logger

	// Fs is used to read scripts. Defaults to the OS filesystem. HCL files
	// are always read from disk.
	Fs afero.Fs

	hcl config.Loader
}

// Load loads the input from filename. Files ending in .hcl are decoded as
// HCL, anything else is evaluated as a Lua script.
//
// HCL errors are returned as hcl.Diagnostics; use PrintDiagnostics to show
// them with source context.
func (l *Loader) Load(ctx context.Context, filename string) (Input, error) {
	if config.IsHCL(filename) {
		return l.loadHCL(filename)
	}
	src, err := afero.ReadFile(l.fs(), filename)
	if err != nil {
		return Input{}, errors.Wrap(err, "read script")
	}
	ev := &script.Evaluator{
		Identity: l.Identity,
		GenRoot:  l.GenRoot,
		Logger:   l.Logger,
	}
	res, err := ev.Eval(ctx, filename, src)
	if err != nil {
		return Input{}, err
	}
	return Input{Config: res.Config, Script: res.Script}, nil
}

func (l *Loader) loadHCL(filename string) (Input, error) {
	l.hcl.Identity = l.Identity
	f, diags := l.hcl.LoadHCL(filename)
	if diags.HasErrors() {
		return Input{}, diags
	}
	in := Input{Config: f.Config}
	if f.HookScript == "" {
		return in, nil
	}
	src, err := afero.ReadFile(l.fs(), f.HookScript)
	if err != nil {
		return Input{}, errors.Wrap(err, "read hook script")
	}
	s, err := resolver.Load(f.HookScript, src)
	if err != nil {
		return Input{}, err
	}
	in.Script = s
	return in, nil
}

// PrintDiagnostics writes err to w with source context if it holds HCL
// diagnostics, and reports whether it did.
func (l *Loader) PrintDiagnostics(w io.Writer, err error) bool {
	diags, ok := errors.Cause(err).(hcl.Diagnostics)
	if !ok {
		return false
	}
	l.hcl.PrintDiagnostics(w, diags)
	return true
}

func (l *Loader) fs() afero.Fs {
	if l.Fs == nil {
		return afero.NewOsFs()
	}
	return l.Fs
}
