package compiler

import (
	"github.com/nest-os/nest/emit"
	"github.com/nest-os/nest/resolver"
	"go.uber.org/multierr"
)

// An Outcome is the result of emitting one artifact.
type Outcome struct {
	// Artifact is the file name of the artifact.
	Artifact string

	// Path is the written file. Empty if the artifact was only streamed or
	// could not be emitted.
	Path string

	// Digest is the hex encoded sha256 of the artifact contents.
	Digest string

	// Unchanged is set if the ledger has the same digest from a previous
	// run.
	Unchanged bool

	// Err is set if the artifact could not be emitted or written.
	Err error
}

// A Report is the result of a run.
type Report struct {
	RunID    string
	Hostname string

	// Outcomes are in emission order: system, locale, locale.gen, users,
	// then hooks.
	Outcomes []Outcome

	// Skipped are the unresolved calls found while bundling hooks.
	Skipped map[string][]resolver.Skip

	// Warnings are recoverable problems, such as ErrMissingOutputLocation.
	Warnings []error

	// Document mirrors all artifacts.
	Document *emit.Document

	errs error
}

// Err returns all errors of the run combined, or nil if every artifact was
// emitted.
func (r *Report) Err() error {
	return r.errs
}

// Errors returns the individual errors of the run.
func (r *Report) Errors() []error {
	return multierr.Errors(r.errs)
}

// Written returns the outcomes of artifacts that were written to a file.
func (r *Report) Written() []Outcome {
	var out []Outcome // nolint: prealloc
	for _, o := range r.Outcomes {
		if o.Path != "" && o.Err == nil {
			out = append(out, o)
		}
	}
	return out
}

func (r *Report) fail(err error) {
	r.errs = multierr.Append(r.errs, err)
}
