package compiler

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path/filepath"
	"time"

	"github.com/nest-os/nest/bundle"
	"github.com/nest-os/nest/config"
	"github.com/nest-os/nest/emit"
	"github.com/nest-os/nest/resolver"
	"github.com/nest-os/nest/storage"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrMissingOutputLocation is reported when no output directory is set.
// Artifacts are then only written to the stream.
var ErrMissingOutputLocation = errors.New("no output directory configured")

// ErrNoHookScript is returned for hooks when the input has no script to
// resolve them in.
var ErrNoHookScript = errors.New("no script to resolve hooks in")

// Input is the configuration to compile.
type Input struct {
	Config *config.Config

	// Script is the script the hooks are defined in. It may be nil if the
	// configuration has no hooks.
	Script *resolver.Script
}

// A Compiler emits the artifacts of a configuration.
type Compiler struct {
	// Logger logs progress. If not set, logs are discarded.
	Logger *zap.Logger

	// Fs is the filesystem artifacts are written to. Defaults to the OS
	// filesystem.
	Fs afero.Fs

	// OutDir is the directory artifacts are written to. It is created if it
	// does not exist. If empty, artifacts are only written to Stream.
	OutDir string

	// Catalog is the locale catalog used for locale.gen.
	Catalog []string

	// Stream, if set, receives the document mirroring all artifacts.
	Stream io.Writer
	Format emit.Format
	Color  bool

	// Ledger, if set, records written artifacts.
	Ledger *storage.Ledger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Compile runs the compiler.
//
// An error is returned if the configuration is invalid, or if there is
// neither an output directory nor a stream. Failures to emit individual
// artifacts are collected in the report; see Report.Err.
func (c *Compiler) Compile(ctx context.Context, in Input) (*Report, error) {
	if in.Config == nil {
		return nil, errors.New("no configuration")
	}
	cfg := config.New(*in.Config)
	if err := config.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if c.OutDir == "" && c.Stream == nil {
		return nil, ErrMissingOutputLocation
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	started := now()
	id, err := ksuid.NewRandomWithTime(started)
	if err != nil {
		return nil, errors.Wrap(err, "generate run id")
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("compiler").With(
		zap.String("run_id", id.String()),
		zap.String("hostname", cfg.Hostname),
	)

	fs := c.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	r := &run{
		Compiler: c,
		ctx:      ctx,
		cfg:      cfg,
		script:   in.Script,
		fs:       fs,
		logger:   logger,
		files:    make(map[string]string),
		report: &Report{
			RunID:    id.String(),
			Hostname: cfg.Hostname,
			Skipped:  make(map[string][]resolver.Skip),
		},
	}

	if c.OutDir == "" {
		logger.Warn("No output directory, artifacts are only written to the stream")
		r.report.Warnings = append(r.report.Warnings, ErrMissingOutputLocation)
	} else if err := fs.MkdirAll(c.OutDir, 0750); err != nil {
		return nil, errors.Wrap(err, "create output directory")
	}

	logger.Info("Compile")

	r.artifact(emit.SystemFile, func(w io.Writer) error { return emit.System(w, cfg) })
	r.artifact(emit.LocaleFile, func(w io.Writer) error { return emit.Locale(w, cfg.Locale) })
	r.artifact(emit.LocaleGenFile, func(w io.Writer) error { return emit.LocaleGen(w, cfg.Locale, c.Catalog) })
	r.artifact(emit.UsersFile, func(w io.Writer) error { return emit.Users(w, cfg.Users) })
	r.hook(bundle.PreBuild, cfg.PreBuild)
	r.hook(bundle.PostBuild, cfg.PostBuild)

	r.document()
	r.record(started)

	logger.Info("Done",
		zap.Int("artifacts", len(r.report.Outcomes)),
		zap.Int("errors", len(r.report.Errors())),
	)
	return r.report, nil
}

type run struct {
	*Compiler
	ctx    context.Context
	cfg    *config.Config
	script *resolver.Script
	fs     afero.Fs
	logger *zap.Logger
	report *Report

	// files holds the contents of emitted artifacts by name.
	files map[string]string
}

// artifact renders an artifact and writes it to the output directory.
func (r *run) artifact(name string, render func(w io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		r.failed(name, errors.Wrapf(err, "emit %s", name))
		return
	}
	data := buf.Bytes()
	r.write(name, data, func() (string, error) {
		path := filepath.Join(r.OutDir, name)
		if err := afero.WriteFile(r.fs, path, data, 0644); err != nil {
			return "", errors.Wrapf(err, "write %s", name)
		}
		return path, nil
	})
}

// hook bundles the function named by h. Nothing is emitted for a nil hook.
func (r *run) hook(role bundle.Role, h *config.Hook) {
	if h == nil {
		return
	}
	name := role.Filename()
	if r.script == nil {
		r.failed(name, errors.Wrapf(ErrNoHookScript, "bundle %s", role))
		return
	}

	logger := r.logger.With(zap.String("role", string(role)), zap.String("hook", h.Name))
	res, err := (&resolver.Resolver{
		Logger: logger,
		OnSkip: func(s resolver.Skip) {
			logger.Debug("Skipped unresolved call", zap.String("from", s.From), zap.String("name", s.Name))
		},
	}).Resolve(r.script, h.Name)
	if err != nil {
		r.failed(name, errors.Wrapf(err, "bundle %s", role))
		return
	}
	if len(res.Skipped) > 0 {
		r.report.Skipped[string(role)] = res.Skipped
	}
	for _, d := range res.Degraded {
		logger.Warn("Could not parse helper, its dependencies are not bundled", zap.String("helper", d))
	}
	if cycles := res.Graph.Cycles(); len(cycles) > 0 {
		logger.Debug("Bundling recursive functions", zap.Any("cycles", cycles))
	}

	w := &bundle.Writer{Fs: r.fs, Dir: r.OutDir}
	r.write(name, bundle.Render(res), func() (string, error) {
		return w.Write(role, res)
	})
}

// write records the artifact and stores it with store, unless there is no
// output directory.
func (r *run) write(name string, data []byte, store func() (string, error)) {
	sum := sha256.Sum256(data)
	o := Outcome{Artifact: name, Digest: hex.EncodeToString(sum[:])}
	r.files[name] = string(data)

	if r.OutDir != "" {
		path, err := store()
		if err != nil {
			r.failed(name, err)
			return
		}
		o.Path = path
	}

	if r.Ledger != nil {
		prev, err := r.Ledger.Artifact(r.ctx, r.cfg.Hostname, name)
		if err == nil && prev.Digest == o.Digest {
			o.Unchanged = true
		}
	}

	r.logger.Debug("Emitted artifact",
		zap.String("artifact", name),
		zap.String("path", o.Path),
		zap.Bool("unchanged", o.Unchanged),
	)
	r.report.Outcomes = append(r.report.Outcomes, o)
}

func (r *run) failed(name string, err error) {
	r.logger.Error("Artifact failed", zap.String("artifact", name), zap.Error(err))
	r.report.Outcomes = append(r.report.Outcomes, Outcome{Artifact: name, Err: err})
	r.report.fail(err)
}

// document builds the document mirroring all artifacts and writes it to the
// stream.
func (r *run) document() {
	doc, err := emit.NewDocument(r.cfg, r.Catalog)
	if err != nil {
		// Already reported by the system emitter.
		r.logger.Debug("Document is missing extra properties", zap.Error(err))
	}
	if doc == nil {
		doc = &emit.Document{}
	}
	for _, o := range r.report.Outcomes {
		if o.Err != nil {
			continue
		}
		key := "files." + emit.EscapePath(o.Artifact)
		if err := doc.Set(key, r.files[o.Artifact]); err != nil {
			r.report.fail(err)
		}
	}
	if err := doc.Set("run", r.report.RunID); err != nil {
		r.report.fail(err)
	}
	r.report.Document = doc

	if r.Stream == nil {
		return
	}
	if err := doc.Render(r.Stream, r.Format, r.Color); err != nil {
		r.report.fail(errors.Wrap(err, "write stream"))
	}
}

// record stores the written artifacts and the run in the ledger.
func (r *run) record(started time.Time) {
	ctx := r.ctx
	if r.Ledger == nil {
		return
	}
	run := storage.Run{
		ID:       r.report.RunID,
		Hostname: r.cfg.Hostname,
		Time:     started,
	}
	for _, o := range r.report.Written() {
		a := storage.Artifact{
			Name:   o.Artifact,
			Path:   o.Path,
			Digest: o.Digest,
			Size:   len(r.files[o.Artifact]),
			RunID:  r.report.RunID,
			Time:   started,
		}
		if err := r.Ledger.PutArtifact(ctx, r.cfg.Hostname, a); err != nil {
			r.report.fail(errors.Wrap(err, "record artifact"))
			continue
		}
		run.Artifacts = append(run.Artifacts, o.Artifact)
	}
	for _, err := range r.report.Errors() {
		run.Errors = append(run.Errors, err.Error())
	}
	if err := r.Ledger.PutRun(ctx, run); err != nil {
		r.report.fail(errors.Wrap(err, "record run"))
	}
}
