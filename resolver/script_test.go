package resolver_test

import (
	"io/ioutil"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nest-os/nest/resolver"
	"github.com/nest-os/nest/symbols"
)

func loadScript(t *testing.T, file string) *resolver.Script {
	t.Helper()
	src, err := ioutil.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	s, err := resolver.Load(file, src)
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	return s
}

func TestLoad(t *testing.T) {
	s := loadScript(t, "testdata/config.lua")

	wantFuncs := []string{
		"genInfo", "preBuild", "postBuild", "format", "report",
		"writeReport", "ping", "pong", "countdown",
	}
	if diff := cmp.Diff(s.Functions(), wantFuncs); diff != "" {
		t.Errorf("Functions() (-got +want)\n%s", diff)
	}

	wantImports := []resolver.Import{
		{Names: []string{"nest"}, Module: "nest", Source: `local nest = require("nest")`, Line: 1},
		{Names: []string{"json"}, Module: "json", Source: `local json = require("json")`, Line: 2},
		{Names: []string{"encode"}, Module: "json", Symbol: "encode", Source: `local encode = require("json").encode`, Line: 3},
		{Names: []string{"unused"}, Module: "unused", Source: `local unused = require("unused")`, Line: 4},
	}
	if diff := cmp.Diff(s.Imports(), wantImports); diff != "" {
		t.Errorf("Imports() (-got +want)\n%s", diff)
	}
}

func TestScript_Lookup(t *testing.T) {
	s := loadScript(t, "testdata/config.lua")

	fn, err := s.Lookup("postBuild")
	if err != nil {
		t.Fatalf("Lookup() err = %v", err)
	}
	want := &resolver.Function{
		Name:     "postBuild",
		Source:   "function postBuild()\n  genInfo()\nend",
		Line:     15,
		LastLine: 17,
	}
	if diff := cmp.Diff(fn, want, cmpopts.IgnoreUnexported(resolver.Function{})); diff != "" {
		t.Errorf("Lookup() (-got +want)\n%s", diff)
	}

	if _, err := s.Lookup("print"); err != resolver.ErrNotDefined {
		t.Errorf("Lookup(print) err = %v, want ErrNotDefined", err)
	}
	if _, err := s.Lookup("method"); err != resolver.ErrNotDefined {
		t.Errorf("Lookup(method) err = %v, want ErrNotDefined", err)
	}
}

func TestScript_FunctionsAt(t *testing.T) {
	s := loadScript(t, "testdata/config.lua")

	tests := []struct {
		first, last int
		want        []string
	}{
		{6, 10, []string{"genInfo"}},
		{15, 17, []string{"postBuild"}},
		{23, 26, []string{"report"}},
		{6, 6, nil},
		{7, 7, nil},
	}
	for _, tt := range tests {
		got := s.FunctionsAt(tt.first, tt.last)
		if diff := cmp.Diff(got, tt.want); diff != "" {
			t.Errorf("FunctionsAt(%d, %d) (-got +want)\n%s", tt.first, tt.last, diff)
		}
	}
}

func TestLoad_sharedLines(t *testing.T) {
	src := `local json = require("json") local unused = require("unused")
local a, b = require("a"), require("b")["run-all"]
local function helper() return json.encode({}) end function postBuild() helper() end
`
	s, err := resolver.Load("shared.lua", []byte(src))
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}

	wantImports := []resolver.Import{
		{Names: []string{"json"}, Module: "json", Source: `local json = require("json")`, Line: 1},
		{Names: []string{"unused"}, Module: "unused", Source: `local unused = require("unused")`, Line: 1},
		{Names: []string{"a"}, Module: "a", Source: `local a = require("a")`, Line: 2},
		{Names: []string{"b"}, Module: "b", Symbol: "run-all", Source: `local b = require("b")["run-all"]`, Line: 2},
	}
	if diff := cmp.Diff(s.Imports(), wantImports); diff != "" {
		t.Errorf("Imports() (-got +want)\n%s", diff)
	}

	wantFuncs := []*resolver.Function{
		{Name: "helper", Source: "local function helper() return json.encode({}) end", Line: 3, LastLine: 3},
		{Name: "postBuild", Source: "function postBuild() helper() end", Line: 3, LastLine: 3},
	}
	var gotFuncs []*resolver.Function
	for _, name := range s.Functions() {
		fn, err := s.Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%s) err = %v", name, err)
		}
		gotFuncs = append(gotFuncs, fn)
	}
	if diff := cmp.Diff(gotFuncs, wantFuncs, cmpopts.IgnoreUnexported(resolver.Function{})); diff != "" {
		t.Errorf("functions (-got +want)\n%s", diff)
	}

	if diff := cmp.Diff(s.FunctionsAt(3, 3), []string{"helper", "postBuild"}); diff != "" {
		t.Errorf("FunctionsAt(3, 3) (-got +want)\n%s", diff)
	}
}

func TestLoad_parseError(t *testing.T) {
	_, err := resolver.Load("broken.lua", []byte("function f()\n  if then\nend\n"))
	if _, ok := err.(*symbols.ParseError); !ok {
		t.Errorf("Load() err = %T %v, want *symbols.ParseError", err, err)
	}
}
