package config

// A Locale holds the locale settings for the target machine. Lang sets the
// LANG variable, the remaining fields set the LC_* category with the same
// name.
type Locale struct {
	Lang           string `json:"lang" validate:"required"`
	Address        string `json:"address" validate:"required"`
	Identification string `json:"identification" validate:"required"`
	Measurement    string `json:"measurement" validate:"required"`
	Monetary       string `json:"monetary" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Numeric        string `json:"numeric" validate:"required"`
	Paper          string `json:"paper" validate:"required"`
	Telephone      string `json:"telephone" validate:"required"`
	Time           string `json:"time" validate:"required"`
}

// NewLocale returns a normalized copy of l.
func NewLocale(l Locale) Locale {
	l.Normalize()
	return l
}

// Normalize sets every empty field. Categories cascade from Address, or from
// Lang if Address is not set. If neither is set, Lang defaults to
// DefaultLang.
func (l *Locale) Normalize() {
	if l.Lang == "" && l.Address == "" {
		l.Lang = DefaultLang
	}
	base := l.Address
	if base == "" {
		base = l.Lang
	}
	for _, f := range l.fields() {
		if *f == "" {
			*f = base
		}
	}
}

// Categories returns the LC_* variable names mapped to their values, in the
// order they are written to locale.conf. LANG is not included.
func (l Locale) Categories() [][2]string {
	return [][2]string{
		{"LC_ADDRESS", l.Address},
		{"LC_IDENTIFICATION", l.Identification},
		{"LC_MEASUREMENT", l.Measurement},
		{"LC_MONETARY", l.Monetary},
		{"LC_NAME", l.Name},
		{"LC_NUMERIC", l.Numeric},
		{"LC_PAPER", l.Paper},
		{"LC_TELEPHONE", l.Telephone},
		{"LC_TIME", l.Time},
	}
}

// Values returns all non-empty values of the locale, including Lang.
// Duplicates are removed; the order matches Categories with Lang first.
func (l Locale) Values() []string {
	seen := make(map[string]bool)
	var out []string // nolint: prealloc
	for _, v := range append([]string{l.Lang}, l.categoryValues()...) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func (l Locale) categoryValues() []string {
	cc := l.Categories()
	out := make([]string, len(cc))
	for i, c := range cc {
		out[i] = c[1]
	}
	return out
}

func (l *Locale) fields() []*string {
	return []*string{
		&l.Lang,
		&l.Address,
		&l.Identification,
		&l.Measurement,
		&l.Monetary,
		&l.Name,
		&l.Numeric,
		&l.Paper,
		&l.Telephone,
		&l.Time,
	}
}
