package emit

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nest-os/nest/config"
	"github.com/nest-os/nest/ctyext"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// ErrUnemittableField is the cause of every UnemittableFieldError.
var ErrUnemittableField = errors.New("unemittable field")

// An UnemittableFieldError is returned when a property value is neither a
// primitive nor a list of primitives.
type UnemittableFieldError struct {
	Key  string
	Type string   // Friendly name of the value's type.
	Path cty.Path // Path to the offending element within the value.
	Err  error
}

func (e *UnemittableFieldError) Error() string {
	key := e.Key
	if len(e.Path) > 0 {
		key += ctyext.PathString(e.Path)
	}
	return fmt.Sprintf("%s: cannot emit %s value: %v", key, e.Type, e.Err)
}

// Cause returns ErrUnemittableField.
func (e *UnemittableFieldError) Cause() error { return ErrUnemittableField }

// Property is a key and its formatted value.
type Property struct {
	Key   string
	Value string
}

// Properties returns the system properties of c in emission order. The
// hostname is normalized again.
func Properties(c *config.Config) ([]Property, error) {
	props := []Property{
		{"hostname", config.NormalizeHostname(c.Hostname)},
		{"timezone", c.Timezone},
		{"kernels", strings.Join(c.Kernels, ",")},
		{"bootloader", c.Bootloader},
		{"initramfsGenerator", c.InitramfsGenerator},
	}

	keys := make([]string, 0, len(c.Extra))
	for k := range c.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := c.Extra[k]
		vals, err := ctyext.Flatten(v)
		if err != nil {
			ferr := &UnemittableFieldError{Key: k, Type: v.Type().FriendlyName(), Err: err}
			if perr, ok := err.(*ctyext.PathError); ok {
				ferr.Path = perr.Path
				ferr.Err = perr.Err
			}
			return nil, ferr
		}
		props = append(props, Property{Key: k, Value: strings.Join(vals, ",")})
	}
	return props, nil
}

// System writes the system properties as key,value lines. Nothing is written
// if any property cannot be emitted.
func System(w io.Writer, c *config.Config) error {
	props, err := Properties(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, p := range props {
		fmt.Fprintf(&buf, "%s,%s\n", p.Key, p.Value)
	}
	_, err = w.Write(buf.Bytes())
	return errors.Wrap(err, "write system properties")
}
