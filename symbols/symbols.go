package symbols

import (
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"
)

// Refs holds the names referenced by a block of source. Each list is ordered
// by first appearance in the source and contains no duplicates.
type Refs struct {
	// Called contains free names that are the direct target of a call
	// expression: f() but not m.f() or o:f().
	Called []string

	// Qualifiers contains free names used on the left-hand side of a field
	// access or method call: X in X.Y, X["Y"] and X:Y().
	Qualifiers []string

	// Referenced contains every free identifier in the source. It is a
	// superset of Called and Qualifiers.
	Referenced []string
}

// Uses reports whether name is referenced or used as a qualifier.
func (r *Refs) Uses(name string) bool {
	return contains(r.Referenced, name) || contains(r.Qualifiers, name)
}

// A ParseError is returned when the source does not parse.
type ParseError struct {
	Name    string // Chunk name the source was parsed as.
	Line    int    // Line of the error, 0 if unknown.
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %s", e.Name, e.Line, e.Message)
	}
	return fmt.Sprintf("parse %s: %s", e.Name, e.Message)
}

// Parse parses a chunk of Lua source. The name is only used in errors.
//
// Parse errors are returned as *ParseError.
func Parse(name, src string) ([]ast.Stmt, error) {
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		perr := &ParseError{Name: name, Message: err.Error()}
		if e, ok := err.(*parse.Error); ok {
			perr.Message = e.Message
			if e.Pos.Line > 0 {
				perr.Line = e.Pos.Line
			}
		}
		return nil, perr
	}
	return chunk, nil
}

// Extract parses src and returns the names it refers to. The source may be a
// single function definition or an entire chunk.
//
// Parse errors are returned as *ParseError.
func Extract(name, src string) (*Refs, error) {
	chunk, err := Parse(name, src)
	if err != nil {
		return nil, err
	}
	return ExtractChunk(chunk), nil
}

// ExtractChunk returns the names referred to by an already parsed chunk.
func ExtractChunk(chunk []ast.Stmt) *Refs {
	w := newWalker()
	w.block(chunk)
	return &w.refs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
