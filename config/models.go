package config

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Default values used when a field is not set.
const (
	DefaultHostname   = "nest"
	DefaultTimezone   = "UTC"
	DefaultKernel     = "linux"
	DefaultBootloader = "limine"
	DefaultInitramfs  = "booster"
	DefaultLang       = "en_US.UTF-8"
	DefaultFullName   = "Nest User"
	DefaultShell      = "/bin/bash"
)

// A Config describes a target machine.
type Config struct {
	Hostname           string   `json:"hostname" validate:"required"`
	Timezone           string   `json:"timezone" validate:"required"`
	Locale             Locale   `json:"locale"`
	Kernels            []string `json:"kernels" validate:"min=1,dive,required"`
	Users              []User   `json:"users" validate:"min=1,dive"`
	Bootloader         string   `json:"bootloader" validate:"required"`
	InitramfsGenerator string   `json:"initramfsGenerator" validate:"required"`

	// PreBuild and PostBuild reference functions in the configuration script.
	// Nil if no hook is set.
	PreBuild  *Hook `json:"preBuild,omitempty"`
	PostBuild *Hook `json:"postBuild,omitempty"`

	// Extra holds additional properties set by the author that have no
	// dedicated field. They are emitted as system properties.
	Extra map[string]cty.Value `json:"-"`
}

// A Hook references a top-level function in the configuration script.
type Hook struct {
	// Name is the name the function is defined with.
	Name string `json:"name"`

	// Line is the line the function definition starts on. Zero if the hook
	// was referenced by name only.
	Line int `json:"line,omitempty"`
}

// New returns a normalized copy of c.
func New(c Config) *Config {
	c.Normalize()
	return &c
}

// NewFromIdentity creates a default configuration for the machine described
// by the given os-release identity. The hostname is set to the distribution
// id, if present.
func NewFromIdentity(id Identity) *Config {
	return New(Config{Hostname: id["id"]})
}

// Normalize fills in default values and normalizes the hostname. Slices,
// hooks and extra properties are copied, so the normalized Config shares no
// mutable state with the values it was created from.
func (c *Config) Normalize() {
	c.Hostname = NormalizeHostname(c.Hostname)
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Bootloader == "" {
		c.Bootloader = DefaultBootloader
	}
	if c.InitramfsGenerator == "" {
		c.InitramfsGenerator = DefaultInitramfs
	}
	c.Locale.Normalize()

	if len(c.Kernels) == 0 {
		c.Kernels = []string{DefaultKernel}
	} else {
		c.Kernels = append([]string(nil), c.Kernels...)
	}

	if len(c.Users) == 0 {
		c.Users = []User{NewUser(User{})}
	} else {
		users := make([]User, len(c.Users))
		for i, u := range c.Users {
			users[i] = NewUser(u)
		}
		c.Users = users
	}

	if c.Extra != nil {
		extra := make(map[string]cty.Value, len(c.Extra))
		for k, v := range c.Extra {
			extra[k] = v
		}
		c.Extra = extra
	}
	c.PreBuild = c.PreBuild.copy()
	c.PostBuild = c.PostBuild.copy()
}

func (h *Hook) copy() *Hook {
	if h == nil {
		return nil
	}
	cp := *h
	return &cp
}

// NormalizeHostname lower-cases the hostname and replaces spaces with
// hyphens. Only an empty hostname falls back to DefaultHostname; a hostname
// consisting of spaces becomes all hyphens.
func NormalizeHostname(hostname string) string {
	if hostname == "" {
		return DefaultHostname
	}
	return strings.ToLower(strings.Replace(hostname, " ", "-", -1))
}
