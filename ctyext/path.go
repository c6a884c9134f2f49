package ctyext

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// PathError is an error at a path within a value.
type PathError struct {
	Path cty.Path
	Err  error
}

func (e *PathError) Error() string {
	if len(e.Path) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", PathString(e.Path), e.Err)
}

// Cause returns the underlying error.
func (e *PathError) Cause() error { return e.Err }

// PathString formats a path the way it would be written in a script:
// attributes are joined with dots and indexes use brackets.
//
//	foo.bar[1]["baz"]
func PathString(path cty.Path) string {
	var sb strings.Builder
	for _, step := range path {
		switch s := step.(type) {
		case cty.GetAttrStep:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(s.Name)
		case cty.IndexStep:
			sb.WriteByte('[')
			if s.Key.Type() == cty.Number {
				sb.WriteString(s.Key.AsBigFloat().Text('f', -1))
			} else {
				fmt.Fprintf(&sb, "%q", s.Key.AsString())
			}
			sb.WriteByte(']')
		}
	}
	return sb.String()
}
