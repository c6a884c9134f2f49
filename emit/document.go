package emit

import (
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/nest-os/nest/config"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Format is an output format for a Document.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat parses a format name. The empty string is JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", JSON:
		return JSON, nil
	case YAML, "yml":
		return YAML, nil
	}
	return "", errors.Errorf("unsupported format %q, must be json or yaml", s)
}

// A Document is a structured mirror of all artifacts of a run.
//
// The zero value is an empty document.
type Document struct {
	raw []byte
}

// NewDocument creates a document containing the normalized configuration.
// Extra properties are included as their JSON encoding; the first value
// that cannot be encoded is returned as an error after all others have been
// added.
func NewDocument(c *config.Config, catalog []string) (*Document, error) {
	d := &Document{}
	sets := []struct {
		path string
		val  interface{}
	}{
		{"hostname", config.NormalizeHostname(c.Hostname)},
		{"timezone", c.Timezone},
		{"kernels", c.Kernels},
		{"bootloader", c.Bootloader},
		{"initramfsGenerator", c.InitramfsGenerator},
		{"locale", c.Locale},
		{"localeGen", MatchCatalog(c.Locale, catalog)},
		{"users", c.Users},
	}
	if c.PreBuild != nil {
		sets = append(sets, struct {
			path string
			val  interface{}
		}{"hooks.preBuild", c.PreBuild})
	}
	if c.PostBuild != nil {
		sets = append(sets, struct {
			path string
			val  interface{}
		}{"hooks.postBuild", c.PostBuild})
	}
	for _, s := range sets {
		if err := d.Set(s.path, s.val); err != nil {
			return nil, err
		}
	}

	var firstErr error
	for k, v := range c.Extra {
		b, err := ctyjson.Marshal(v, v.Type())
		if err != nil {
			if firstErr == nil {
				firstErr = &UnemittableFieldError{Key: k, Type: v.Type().FriendlyName(), Err: err}
			}
			continue
		}
		if err := d.SetRaw("extra."+EscapePath(k), b); err != nil {
			return nil, err
		}
	}
	return d, firstErr
}

// Set sets the value at path. Paths use the sjson syntax: "users.0.groups".
func (d *Document) Set(path string, val interface{}) error {
	b, err := sjson.SetBytes(d.bytes(), path, val)
	if err != nil {
		return errors.Wrapf(err, "set %s", path)
	}
	d.raw = b
	return nil
}

// SetRaw sets the value at path to raw JSON.
func (d *Document) SetRaw(path string, raw []byte) error {
	b, err := sjson.SetRawBytes(d.bytes(), path, raw)
	if err != nil {
		return errors.Wrapf(err, "set %s", path)
	}
	d.raw = b
	return nil
}

// Get returns the value at path.
func (d *Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d.bytes(), path)
}

// Bytes returns the document as compact JSON.
func (d *Document) Bytes() []byte {
	return append([]byte(nil), d.bytes()...)
}

func (d *Document) bytes() []byte {
	if len(d.raw) == 0 {
		return []byte("{}")
	}
	return d.raw
}

// Render writes the document in the given format. JSON is indented, and
// coloured if color is set. Color is ignored for YAML.
func (d *Document) Render(w io.Writer, f Format, color bool) error {
	var out []byte
	switch f {
	case "", JSON:
		out = pretty.Pretty(d.bytes())
		if color {
			out = pretty.Color(out, nil)
		}
	case YAML:
		b, err := yaml.JSONToYAML(d.bytes())
		if err != nil {
			return errors.Wrap(err, "convert to yaml")
		}
		out = b
	default:
		return errors.Errorf("unsupported format %q", f)
	}
	_, err := w.Write(out)
	return errors.Wrap(err, "write document")
}

// EscapePath escapes characters in a key that have a special meaning in
// document paths.
func EscapePath(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
