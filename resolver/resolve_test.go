package resolver_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nest-os/nest/resolver"
	"go.uber.org/zap/zaptest"
)

type resolved struct {
	Imports   []string
	Functions []string
	Skipped   []resolver.Skip
	Degraded  []string
}

func summarize(res *resolver.Result) resolved {
	out := resolved{
		Imports:  res.Imports,
		Skipped:  res.Skipped,
		Degraded: res.Degraded,
	}
	for _, fn := range res.Functions {
		out.Functions = append(out.Functions, fn.Name)
	}
	return out
}

func TestResolver_Resolve(t *testing.T) {
	s := loadScript(t, "testdata/config.lua")

	tests := []struct {
		target string
		want   resolved
	}{
		{
			target: "postBuild",
			want: resolved{
				Imports:   []string{`local nest = require("nest")`},
				Functions: []string{"genInfo"},
			},
		},
		{
			target: "preBuild",
			want:   resolved{},
		},
		{
			target: "genInfo",
			want: resolved{
				Imports: []string{`local nest = require("nest")`},
			},
		},
		{
			target: "writeReport",
			want: resolved{
				Imports: []string{
					`local encode = require("json").encode`,
					`local json = require("json")`,
				},
				Functions: []string{"format", "report"},
				Skipped: []resolver.Skip{
					{From: "report", Name: "print"},
					{From: "report", Name: "missing"},
				},
			},
		},
		{
			target: "ping",
			want:   resolved{Functions: []string{"pong"}},
		},
		{
			target: "pong",
			want:   resolved{Functions: []string{"ping"}},
		},
		{
			target: "countdown",
			want:   resolved{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			r := &resolver.Resolver{Logger: zaptest.NewLogger(t)}
			res, err := r.Resolve(s, tt.target)
			if err != nil {
				t.Fatalf("Resolve() err = %v", err)
			}
			if res.Target.Name != tt.target {
				t.Errorf("Target.Name = %q, want %q", res.Target.Name, tt.target)
			}
			if diff := cmp.Diff(summarize(res), tt.want, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Resolve() (-got +want)\n%s", diff)
			}
		})
	}
}

func TestResolver_Resolve_idempotent(t *testing.T) {
	s := loadScript(t, "testdata/config.lua")

	first, err := resolver.Resolve(s, "writeReport")
	if err != nil {
		t.Fatal(err)
	}
	second, err := resolver.Resolve(s, "writeReport")
	if err != nil {
		t.Fatal(err)
	}

	opts := cmp.Options{
		cmpopts.IgnoreUnexported(resolver.Function{}),
		cmpopts.IgnoreFields(resolver.Result{}, "Graph"),
	}
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Errorf("second Resolve() differs (-first +second)\n%s", diff)
	}
}

func TestResolver_Resolve_notDefined(t *testing.T) {
	s := loadScript(t, "testdata/config.lua")

	_, err := resolver.Resolve(s, "postbuild")
	want := &resolver.NotDefinedError{Name: "postbuild", Suggestion: "postBuild"}
	if diff := cmp.Diff(err, want); diff != "" {
		t.Errorf("Resolve() err (-got +want)\n%s", diff)
	}
	if !strings.Contains(err.Error(), `did you mean "postBuild"?`) {
		t.Errorf("Error() = %q, want suggestion", err.Error())
	}
}

func TestResolver_Resolve_sharedLines(t *testing.T) {
	src := `local json = require("json") local unused = require("unused")
t = {
} function helper() return json.encode({}) end

function target()
  return helper()
end local after = 1
`
	s, err := resolver.Load("shared.lua", []byte(src))
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}

	res, err := resolver.Resolve(s, "target")
	if err != nil {
		t.Fatalf("Resolve() err = %v", err)
	}
	want := resolved{
		Imports:   []string{`local json = require("json")`},
		Functions: []string{"helper"},
	}
	if diff := cmp.Diff(summarize(res), want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Resolve() (-got +want)\n%s", diff)
	}
	if got, want := res.Functions[0].Source, "function helper() return json.encode({}) end"; got != want {
		t.Errorf("helper Source = %q, want %q", got, want)
	}
	if got, want := res.Target.Source, "function target()\n  return helper()\nend"; got != want {
		t.Errorf("target Source = %q, want %q", got, want)
	}
}

func TestResult_Graph(t *testing.T) {
	s := loadScript(t, "testdata/config.lua")

	tests := []struct {
		target    string
		cycles    [][]string
		recursive []string
	}{
		{target: "ping", cycles: [][]string{{"ping", "pong"}}},
		{target: "countdown", recursive: []string{"countdown"}},
		{target: "postBuild"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			res, err := resolver.Resolve(s, tt.target)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(res.Graph.Cycles(), tt.cycles, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Cycles() (-got +want)\n%s", diff)
			}

			var recursive []string
			nodes := res.Graph.Nodes()
			for nodes.Next() {
				if sym := nodes.Node().(*resolver.Symbol); sym.Recursive {
					recursive = append(recursive, sym.Name)
				}
			}
			if diff := cmp.Diff(recursive, tt.recursive, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("recursive symbols (-got +want)\n%s", diff)
			}

			b, err := res.Graph.DOT(tt.target)
			if err != nil {
				t.Fatalf("DOT() err = %v", err)
			}
			t.Logf("\n%s", b)
			if !strings.Contains(string(b), tt.target) {
				t.Errorf("DOT() does not mention %q", tt.target)
			}
		})
	}
}

func TestResolver_OnSkip(t *testing.T) {
	s := loadScript(t, "testdata/config.lua")

	var got []resolver.Skip
	r := &resolver.Resolver{OnSkip: func(s resolver.Skip) { got = append(got, s) }}
	res, err := r.Resolve(s, "writeReport")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, res.Skipped); diff != "" {
		t.Errorf("OnSkip calls (-got +want)\n%s", diff)
	}
}
