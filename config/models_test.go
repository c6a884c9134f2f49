package config_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nest-os/nest/config"
	"github.com/zclconf/go-cty/cty"
)

func TestNewLocale(t *testing.T) {
	all := func(v string) config.Locale {
		return config.Locale{
			Lang:           v,
			Address:        v,
			Identification: v,
			Measurement:    v,
			Monetary:       v,
			Name:           v,
			Numeric:        v,
			Paper:          v,
			Telephone:      v,
			Time:           v,
		}
	}

	tests := []struct {
		name  string
		input config.Locale
		want  config.Locale
	}{
		{"Empty", config.Locale{}, all("en_US.UTF-8")},
		{"LangOnly", config.Locale{Lang: "de_DE.UTF-8"}, all("de_DE.UTF-8")},
		{
			"Address",
			config.Locale{Lang: "en_US.UTF-8", Address: "en_AU.UTF-8"},
			func() config.Locale {
				l := all("en_AU.UTF-8")
				l.Lang = "en_US.UTF-8"
				return l
			}(),
		},
		{
			"AddressOnly",
			config.Locale{Address: "en_AU.UTF-8"},
			all("en_AU.UTF-8"),
		},
		{
			"Partial",
			config.Locale{Lang: "en_US.UTF-8", Paper: "en_GB.UTF-8"},
			func() config.Locale {
				l := all("en_US.UTF-8")
				l.Paper = "en_GB.UTF-8"
				return l
			}(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := config.NewLocale(tt.input)
			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("NewLocale() (-got +want)\n%s", diff)
			}
			again := config.NewLocale(got)
			if diff := cmp.Diff(again, got); diff != "" {
				t.Errorf("NewLocale() not idempotent (-got +want)\n%s", diff)
			}
		})
	}
}

func TestLocale_Values(t *testing.T) {
	l := config.NewLocale(config.Locale{Lang: "en_US.UTF-8", Address: "en_AU.UTF-8"})
	want := []string{"en_US.UTF-8", "en_AU.UTF-8"}
	if diff := cmp.Diff(l.Values(), want); diff != "" {
		t.Errorf("Values() (-got +want)\n%s", diff)
	}
}

func TestNewUser(t *testing.T) {
	tests := []struct {
		name  string
		input config.User
		want  config.User
	}{
		{
			"FullName",
			config.User{FullName: "The Songbird Project"},
			config.User{
				Username: "the-songbird-project",
				FullName: "The Songbird Project",
				HomeDir:  "/home/the-songbird-project",
				Shell:    config.DefaultShell,
				Groups:   []string{"the-songbird-project"},
			},
		},
		{
			"Username",
			config.User{Username: "dds"},
			config.User{
				Username: "dds",
				FullName: "dds",
				HomeDir:  "/home/dds",
				Shell:    config.DefaultShell,
				Groups:   []string{"dds"},
			},
		},
		{
			"Empty",
			config.User{},
			config.User{
				Username: "nest-user",
				FullName: "Nest User",
				HomeDir:  "/home/nest-user",
				Shell:    config.DefaultShell,
				Groups:   []string{"nest-user"},
			},
		},
		{
			"Groups",
			config.User{Username: "vaelixd", Groups: []string{"wheel", "audio", "wheel"}},
			config.User{
				Username: "vaelixd",
				FullName: "vaelixd",
				HomeDir:  "/home/vaelixd",
				Shell:    config.DefaultShell,
				Groups:   []string{"vaelixd", "wheel", "audio", "wheel"},
			},
		},
		{
			"AlreadyMember",
			config.User{Username: "ada", Groups: []string{"wheel", "ada"}, Shell: "/bin/zsh", HomeDir: "/srv/ada", ManageHome: true},
			config.User{
				Username:   "ada",
				FullName:   "ada",
				HomeDir:    "/srv/ada",
				Shell:      "/bin/zsh",
				ManageHome: true,
				Groups:     []string{"wheel", "ada"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := config.NewUser(tt.input)
			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("NewUser() (-got +want)\n%s", diff)
			}
			again := config.NewUser(got)
			if diff := cmp.Diff(again, got); diff != "" {
				t.Errorf("NewUser() not idempotent (-got +want)\n%s", diff)
			}
		})
	}
}

func TestNormalizeHostname(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "nest"},
		{"My PC", "my-pc"},
		{"vaelixd-pc", "vaelixd-pc"},
		// Spaces only does not fall back to the default.
		{"   ", "---"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := config.NormalizeHostname(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeHostname(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	got := config.New(config.Config{
		Hostname: "My PC",
		Kernels:  []string{"linux"},
		Users:    []config.User{{FullName: "Ada Lovelace"}},
	})
	want := &config.Config{
		Hostname:           "my-pc",
		Timezone:           "UTC",
		Locale:             config.NewLocale(config.Locale{}),
		Kernels:            []string{"linux"},
		Users:              []config.User{config.NewUser(config.User{FullName: "Ada Lovelace"})},
		Bootloader:         "limine",
		InitramfsGenerator: "booster",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("New() (-got +want)\n%s", diff)
	}
	if got.Users[0].Username != "ada-lovelace" {
		t.Errorf("Username = %q, want %q", got.Users[0].Username, "ada-lovelace")
	}

	again := config.New(*got)
	if diff := cmp.Diff(again, got); diff != "" {
		t.Errorf("New() not idempotent (-got +want)\n%s", diff)
	}
}

func TestNew_defaults(t *testing.T) {
	got := config.New(config.Config{})
	if got.Hostname != config.DefaultHostname {
		t.Errorf("Hostname = %q, want %q", got.Hostname, config.DefaultHostname)
	}
	if diff := cmp.Diff(got.Kernels, []string{"linux"}); diff != "" {
		t.Errorf("Kernels (-got +want)\n%s", diff)
	}
	if len(got.Users) != 1 {
		t.Fatalf("Users = %d, want 1 default user", len(got.Users))
	}
	if got.Users[0].Username != "nest-user" {
		t.Errorf("Default username = %q", got.Users[0].Username)
	}
}

func TestNew_ownership(t *testing.T) {
	kernels := []string{"linux"}
	users := []config.User{{Username: "ada", Groups: []string{"wheel"}}}
	cfg := config.New(config.Config{Kernels: kernels, Users: users})

	kernels[0] = "modified"
	users[0].Groups[0] = "modified"

	if cfg.Kernels[0] != "linux" {
		t.Errorf("Kernels shared with input")
	}
	if diff := cmp.Diff(cfg.Users[0].Groups, []string{"ada", "wheel"}); diff != "" {
		t.Errorf("Groups shared with input (-got +want)\n%s", diff)
	}
}

func TestNew_extraOwnership(t *testing.T) {
	extra := map[string]cty.Value{"editor": cty.StringVal("vim")}
	hook := &config.Hook{Name: "postBuild", Line: 3}
	cfg := config.New(config.Config{Extra: extra, PostBuild: hook})

	extra["editor"] = cty.StringVal("emacs")
	extra["shell"] = cty.StringVal("zsh")
	hook.Name = "modified"

	if got := cfg.Extra["editor"]; !got.RawEquals(cty.StringVal("vim")) {
		t.Errorf("Extra[editor] = %#v, want vim", got)
	}
	if _, ok := cfg.Extra["shell"]; ok {
		t.Errorf("Extra shared with input")
	}
	if cfg.PostBuild.Name != "postBuild" {
		t.Errorf("PostBuild shared with input")
	}
}

func TestNewFromIdentity(t *testing.T) {
	tests := []struct {
		name string
		id   config.Identity
		want string
	}{
		{"Arch", config.Identity{"id": "arch", "name": "Arch Linux"}, "arch"},
		{"Empty", config.Identity{}, "nest"},
		{"Nil", nil, "nest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := config.NewFromIdentity(tt.id)
			if got.Hostname != tt.want {
				t.Errorf("Hostname = %q, want %q", got.Hostname, tt.want)
			}
		})
	}
}
