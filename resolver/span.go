package resolver

import (
	"strings"

	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"
)

// A pos is a line and a 0-based byte offset within it.
type pos struct {
	line, col int
}

// A span is the exact extent of a definition. end is exclusive and next is
// the index of the first token after the definition.
type span struct {
	start, end pos
	next       int
}

type token struct {
	typ int
	str string
	pos pos
}

type tokens []token

// scan returns the tokens of src, without comments.
func scan(name, src string) (tokens, error) {
	sc := parse.NewScanner(strings.NewReader(src), name)
	lx := &parse.Lexer{}
	var toks tokens
	for {
		tok, err := sc.Scan(lx)
		if err != nil {
			return nil, err
		}
		if tok.Type == parse.EOF {
			return toks, nil
		}
		lx.PrevTokenType = tok.Type
		toks = append(toks, token{
			typ: tok.Type,
			str: tok.Str,
			pos: pos{line: tok.Pos.Line, col: tok.Pos.Column - 1},
		})
	}
}

// find locates the definition of name by stmt, starting at token index from.
func (ts tokens) find(from int, stmt ast.Stmt, name string) (span, bool) {
	for i := from; i < len(ts); i++ {
		if ts[i].pos.line > stmt.Line() {
			break
		}
		if ts[i].pos.line < stmt.Line() {
			continue
		}
		fn, ok := ts.header(i, stmt, name)
		if !ok {
			continue
		}
		end, ok := ts.end(fn)
		if !ok {
			return span{}, false
		}
		last := ts[end].pos
		return span{
			start: ts[i].pos,
			end:   pos{line: last.line, col: last.col + len("end")},
			next:  end + 1,
		}, true
	}
	return span{}, false
}

// header reports whether the definition of name starts at token i, and
// returns the index of its function keyword.
func (ts tokens) header(i int, stmt ast.Stmt, name string) (int, bool) {
	var patterns [][]token
	switch stmt.(type) {
	case *ast.FuncDefStmt:
		patterns = [][]token{{{typ: parse.TFunction}, {typ: parse.TIdent, str: name}}}
	case *ast.LocalAssignStmt:
		patterns = [][]token{
			{{typ: parse.TLocal}, {typ: parse.TFunction}, {typ: parse.TIdent, str: name}},
			{{typ: parse.TLocal}, {typ: parse.TIdent, str: name}, {typ: '='}, {typ: parse.TFunction}},
		}
	case *ast.AssignStmt:
		patterns = [][]token{{{typ: parse.TIdent, str: name}, {typ: '='}, {typ: parse.TFunction}}}
	default:
		return 0, false
	}
	for _, p := range patterns {
		if !ts.match(i, p) {
			continue
		}
		for j, t := range p {
			if t.typ == parse.TFunction {
				return i + j, true
			}
		}
	}
	return 0, false
}

func (ts tokens) match(i int, pattern []token) bool {
	if i+len(pattern) > len(ts) {
		return false
	}
	for j, want := range pattern {
		got := ts[i+j]
		if got.typ != want.typ || (want.str != "" && got.str != want.str) {
			return false
		}
	}
	return true
}

// end returns the index of the end keyword closing the function at token i.
func (ts tokens) end(i int) (int, bool) {
	depth := 0
	for j := i; j < len(ts); j++ {
		switch ts[j].typ {
		case parse.TFunction, parse.TDo, parse.TIf, parse.TRepeat:
			depth++
		case parse.TEnd, parse.TUntil:
			depth--
			if depth == 0 {
				return j, true
			}
		}
	}
	return 0, false
}
