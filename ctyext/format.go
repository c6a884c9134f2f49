// Package ctyext formats cty values as the plain strings used in flat
// key/value artifacts.
package ctyext

import (
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// Primitive formats a known, non-null primitive value. Numbers are formatted
// without exponent or trailing zeros.
func Primitive(val cty.Value) (string, error) {
	if err := usable(val, nil); err != nil {
		return "", err
	}
	switch val.Type() {
	case cty.String:
		return val.AsString(), nil
	case cty.Number:
		return val.AsBigFloat().Text('f', -1), nil
	case cty.Bool:
		if val.True() {
			return "true", nil
		}
		return "false", nil
	}
	return "", &PathError{Err: errors.Errorf("%s is not a primitive value", val.Type().FriendlyName())}
}

// Flatten formats a primitive value, or a list, set or tuple of primitive
// values, as a list of strings. A primitive value yields one element.
//
// Any other shape returns a *PathError pointing at the offending value.
func Flatten(val cty.Value) ([]string, error) {
	if err := usable(val, nil); err != nil {
		return nil, err
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		s, err := Primitive(val)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	if !ty.IsListType() && !ty.IsSetType() && !ty.IsTupleType() {
		return nil, &PathError{Err: errors.Errorf("%s cannot be flattened", ty.FriendlyName())}
	}

	out := make([]string, 0, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		path := cty.Path{cty.IndexStep{Key: k}}
		if err := usable(v, path); err != nil {
			return nil, err
		}
		if !v.Type().IsPrimitiveType() {
			return nil, &PathError{Path: path, Err: errors.Errorf("nested %s", v.Type().FriendlyName())}
		}
		s, err := Primitive(v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func usable(val cty.Value, path cty.Path) error {
	switch {
	case !val.IsKnown():
		return &PathError{Path: path, Err: errors.New("value is not known")}
	case val.IsNull():
		return &PathError{Path: path, Err: errors.New("value is null")}
	}
	return nil
}
