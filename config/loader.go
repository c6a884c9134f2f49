package config

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/hashicorp/hcl2/gohcl"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/crypto/ssh/terminal"
)

// A File is a configuration loaded from an HCL file.
type File struct {
	// Config is the normalized configuration.
	Config *Config

	// HookScript is the path to the Lua file defining the hooks. Relative
	// paths in the HCL file are resolved against the directory of the HCL
	// file. Empty if no hooks block was set.
	HookScript string
}

type hclRoot struct {
	Hostname           string     `hcl:"hostname,optional"`
	Timezone           string     `hcl:"timezone,optional"`
	Kernels            []string   `hcl:"kernels,optional"`
	Bootloader         string     `hcl:"bootloader,optional"`
	InitramfsGenerator string     `hcl:"initramfs_generator,optional"`
	Locale             *hclLocale `hcl:"locale,block"`
	Users              []hclUser  `hcl:"user,block"`
	Hooks              *hclHooks  `hcl:"hooks,block"`
	Extra              hcl.Body   `hcl:",remain"`
}

type hclLocale struct {
	Lang           string `hcl:"lang,optional"`
	Address        string `hcl:"address,optional"`
	Identification string `hcl:"identification,optional"`
	Measurement    string `hcl:"measurement,optional"`
	Monetary       string `hcl:"monetary,optional"`
	Name           string `hcl:"name,optional"`
	Numeric        string `hcl:"numeric,optional"`
	Paper          string `hcl:"paper,optional"`
	Telephone      string `hcl:"telephone,optional"`
	Time           string `hcl:"time,optional"`
}

type hclUser struct {
	Username   string   `hcl:"username,label"`
	FullName   string   `hcl:"full_name,optional"`
	HomeDir    string   `hcl:"home_dir,optional"`
	Shell      string   `hcl:"shell,optional"`
	ManageHome *bool    `hcl:"manage_home,optional"`
	Groups     []string `hcl:"groups,optional"`
}

type hclHooks struct {
	Script    string `hcl:"script"`
	PreBuild  string `hcl:"pre_build,optional"`
	PostBuild string `hcl:"post_build,optional"`
}

// A Loader loads declarative configuration files written in HCL.
//
// The zero value is ready to load files.
type Loader struct {
	// Identity is used for the defaults of the factory path: if the file does
	// not set a hostname, the distribution id is used.
	Identity Identity

	parser *hclparse.Parser
}

// Files returns the files that have been loaded, keyed by file name.
func (l *Loader) Files() map[string]*hcl.File {
	if l.parser == nil {
		return nil
	}
	return l.parser.Files()
}

// PrintDiagnostics writes diagnostics as a human readable string to w. It
// should only be used for diagnostics that originate from files loaded by
// Loader.
//
// If a TTY is attached, the output will be colorized and wrap at the terminal
// width. Otherwise, wrap will occur at 78 characters and output won't contain
// ANSI escape characters.
func (l *Loader) PrintDiagnostics(w io.Writer, diags hcl.Diagnostics) {
	cols, _, err := terminal.GetSize(0)
	if err != nil {
		cols = 78
	}
	color := terminal.IsTerminal(0)
	wr := hcl.NewDiagnosticTextWriter(w, l.Files(), uint(cols), color)
	if err := wr.WriteDiagnostics(diags); err != nil {
		fmt.Fprintln(w, err)
	}
}

// LoadHCL loads and normalizes a configuration from an HCL file.
//
// Attributes that do not correspond to a known field are kept in
// Config.Extra. Unknown blocks are an error.
func (l *Loader) LoadHCL(filename string) (*File, hcl.Diagnostics) {
	if l.parser == nil {
		l.parser = hclparse.NewParser()
	}

	f, diags := l.parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var root hclRoot
	diags = gohcl.DecodeBody(f.Body, nil, &root)
	if diags.HasErrors() {
		return nil, diags
	}

	extra, diags := decodeExtra(root.Extra)
	if diags.HasErrors() {
		return nil, diags
	}

	cfg := Config{
		Hostname:           root.Hostname,
		Timezone:           root.Timezone,
		Kernels:            root.Kernels,
		Bootloader:         root.Bootloader,
		InitramfsGenerator: root.InitramfsGenerator,
		Extra:              extra,
	}
	if cfg.Hostname == "" {
		cfg.Hostname = l.Identity["id"]
	}
	if root.Locale != nil {
		cfg.Locale = Locale(*root.Locale)
	}
	for _, u := range root.Users {
		user := User{
			Username:   u.Username,
			FullName:   u.FullName,
			HomeDir:    u.HomeDir,
			Shell:      u.Shell,
			ManageHome: true,
			Groups:     u.Groups,
		}
		if u.ManageHome != nil {
			user.ManageHome = *u.ManageHome
		}
		cfg.Users = append(cfg.Users, user)
	}

	out := &File{}
	if h := root.Hooks; h != nil {
		out.HookScript = h.Script
		if !filepath.IsAbs(out.HookScript) {
			out.HookScript = filepath.Join(filepath.Dir(filename), out.HookScript)
		}
		if h.PreBuild != "" {
			cfg.PreBuild = &Hook{Name: h.PreBuild}
		}
		if h.PostBuild != "" {
			cfg.PostBuild = &Hook{Name: h.PostBuild}
		}
	}

	out.Config = New(cfg)
	return out, nil
}

func decodeExtra(body hcl.Body) (map[string]cty.Value, hcl.Diagnostics) {
	if body == nil {
		return nil, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	out := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		out[name] = val
	}
	return out, diags
}
