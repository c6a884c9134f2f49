package resolver

import (
	"fmt"
	"sort"

	"github.com/nest-os/nest/suggest"
	"github.com/nest-os/nest/symbols"
	"go.uber.org/zap"
)

// A Result contains everything needed to run a function outside of the
// script it was defined in.
type Result struct {
	// Imports are the import statements used by the target or any of its
	// dependencies, in lexicographic order.
	Imports []string

	// Functions are the dependencies of the target in the order they were
	// discovered. A function's own dependencies are discovered before the
	// function itself. The target is not included.
	Functions []Function

	// Target is the function that was resolved.
	Target Function

	// Skipped lists calls to names that have no definition in the script.
	Skipped []Skip

	// Degraded lists functions whose source could not be parsed on its own.
	// Their source is included, but their dependencies are not resolved.
	Degraded []string

	// Graph is the symbol reference graph built while resolving.
	Graph *Graph
}

// A Skip is a call to a name that could not be resolved to a function in the
// script. Skips are expected for builtins and library functions.
type Skip struct {
	From string // Function containing the call.
	Name string // Name that was called.
}

// A NotDefinedError is returned when the target function does not exist.
type NotDefinedError struct {
	Name       string
	Suggestion string // Similarly named function, if any.
}

func (e *NotDefinedError) Error() string {
	msg := fmt.Sprintf("function %q is not defined at the top level of the script", e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
	}
	return msg
}

// A Resolver resolves function dependencies within a script.
//
// The zero value is ready to use.
type Resolver struct {
	// Logger logs skipped and degraded references. If not set, logs are
	// discarded.
	Logger *zap.Logger

	// OnSkip, if set, is called for every unresolved call.
	OnSkip func(Skip)
}

// Resolve resolves the dependencies of target in s with a zero Resolver.
func Resolve(s *Script, target string) (*Result, error) {
	return (&Resolver{}).Resolve(s, target)
}

// Resolve resolves the dependencies of the target function.
//
// If the target is not a top-level function, a *NotDefinedError is returned.
// If the target source does not parse, a *symbols.ParseError is returned.
// Problems with dependencies never fail resolution; they are recorded in the
// result.
func (r *Resolver) Resolve(s *Script, target string) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("target", target))

	fn, err := s.Lookup(target)
	if err != nil {
		return nil, &NotDefinedError{
			Name:       target,
			Suggestion: suggest.String(target, s.Functions()),
		}
	}
	refs, err := symbols.Extract(target, fn.Source)
	if err != nil {
		return nil, err
	}

	run := &run{
		script:  s,
		logger:  logger,
		onSkip:  r.OnSkip,
		visited: map[string]bool{target: true},
		imports: make(map[string]bool),
		graph:   newGraph(),
		res:     &Result{Target: *fn},
	}
	run.graph.function(target)
	run.expand(fn, refs)

	for imp := range run.imports {
		run.res.Imports = append(run.res.Imports, imp)
	}
	sort.Strings(run.res.Imports)
	run.res.Graph = run.graph

	if cycles := run.graph.Cycles(); len(cycles) > 0 {
		logger.Debug("Recursive functions", zap.Any("cycles", cycles))
	}

	return run.res, nil
}

type run struct {
	script  *Script
	logger  *zap.Logger
	onSkip  func(Skip)
	visited map[string]bool
	imports map[string]bool
	graph   *Graph
	res     *Result
}

// expand resolves the references of fn. Dependencies are appended to the
// result after their own dependencies.
func (r *run) expand(fn *Function, refs *symbols.Refs) {
	r.useImports(fn.Name, refs)

	for _, name := range refs.Called {
		if r.visited[name] {
			r.graph.call(fn.Name, name)
			continue
		}

		dep, err := r.script.Lookup(name)
		if err != nil {
			if !r.script.bound(name) {
				r.logger.Debug("Skip unresolved reference", zap.String("from", fn.Name), zap.String("name", name))
				skip := Skip{From: fn.Name, Name: name}
				r.res.Skipped = append(r.res.Skipped, skip)
				if r.onSkip != nil {
					r.onSkip(skip)
				}
			}
			continue
		}

		r.visited[name] = true
		r.graph.function(name)
		r.graph.call(fn.Name, name)

		depRefs, err := symbols.Extract(name, dep.Source)
		if err != nil {
			r.logger.Debug("Could not parse dependency", zap.String("name", name), zap.Error(err))
			r.res.Degraded = append(r.res.Degraded, name)
		} else {
			r.expand(dep, depRefs)
		}

		r.res.Functions = append(r.res.Functions, *dep)
	}
}

func (r *run) useImports(from string, refs *symbols.Refs) {
	for _, imp := range r.script.imports {
		for _, name := range imp.Names {
			if refs.Uses(name) {
				r.imports[imp.Source] = true
				r.graph.uses(from, imp)
				break
			}
		}
	}
}
