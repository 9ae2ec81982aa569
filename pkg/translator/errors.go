// Copyright 2024-2026 Aiku AI

package translator

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	// ErrMissingParameter is returned when a rule needs a substitution
	// parameter that the translator was not constructed with.
	ErrMissingParameter = errors.New("missing substitution parameter")
	// ErrMalformedInput is returned when a field has the wrong JSON kind for
	// the rule processing it.
	ErrMalformedInput = errors.New("malformed message")
)

func missingParameter(name string) error {
	return fmt.Errorf("%w %q", ErrMissingParameter, name)
}

func malformed(path, want string, got gjson.Result) error {
	return fmt.Errorf("%w: %s is %s, expected %s", ErrMalformedInput, path, kindOf(got), want)
}

func kindOf(r gjson.Result) string {
	switch {
	case !r.Exists():
		return "missing"
	case r.IsObject():
		return "an object"
	case r.IsArray():
		return "an array"
	}
	switch r.Type {
	case gjson.String:
		return "a string"
	case gjson.Number:
		return "a number"
	case gjson.True, gjson.False:
		return "a boolean"
	default:
		return "null"
	}
}
