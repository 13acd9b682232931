// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxLengthCeiling is the largest max_length accepted by Bounds.Validate.
const MaxLengthCeiling = 9999999

// ParseError is returned when a length bound cannot be read as an integer.
type ParseError struct {
	Param string
	Value interface{}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Cannot parse integer from %s parameter (%v)", e.Param, e.Value)
}

// RangeError is returned when a length bound is negative, exceeds
// MaxLengthCeiling or is not ordered with respect to the other bound.
type RangeError struct {
	Param string
	Msg   string
}

func (e *RangeError) Error() string { return e.Msg }

// Bounds is a closed length interval. If HasMax is false the
// interval is unbounded above.
type Bounds struct {
	Min    int
	Max    int
	HasMax bool
}

// Validate checks the bounds in the order min, then max sign, max ceiling
// and max ordering, returning the first violation as a *RangeError.
func (b Bounds) Validate() error {
	if b.Min < 0 {
		return &RangeError{Param: "min_length", Msg: "min_length parameter cannot be negative"}
	}
	if !b.HasMax {
		return nil
	}
	switch {
	case b.Max < 0:
		return &RangeError{Param: "max_length", Msg: "max_length parameter cannot be negative"}
	case b.Max > MaxLengthCeiling:
		return &RangeError{
			Param: "max_length",
			Msg:   fmt.Sprintf("max_length parameter must be less than %d", MaxLengthCeiling),
		}
	case b.Max <= b.Min:
		return &RangeError{
			Param: "max_length",
			Msg:   fmt.Sprintf("max_length parameter %d must be greater than min_length %d", b.Max, b.Min),
		}
	}
	return nil
}

// Contains returns whether a contig of length n is retained by b.
func (b Bounds) Contains(n int) bool {
	return b.Min <= n && (!b.HasMax || n <= b.Max)
}

func (b Bounds) String() string {
	if !b.HasMax {
		return fmt.Sprintf("[%d, inf)", b.Min)
	}
	return fmt.Sprintf("[%d, %d]", b.Min, b.Max)
}

// Params holds the arguments of a contig filter call.
type Params struct {
	WorkspaceName    string
	AssemblyInputRef string
	Bounds
}

// ParseParams reads filter parameters from a decoded JSON-RPC parameter
// record. If withMax is false any max_length field is ignored.
// Parameters are checked in order: required names, min_length,
// then max_length; the first failure is returned.
func ParseParams(raw map[string]interface{}, withMax bool) (Params, error) {
	var p Params
	for _, name := range []string{"workspace_name", "assembly_input_ref"} {
		if _, ok := raw[name]; !ok {
			return p, fmt.Errorf("Parameter %s is not set in input arguments", name)
		}
	}
	var err error
	p.WorkspaceName, err = stringParam(raw, "workspace_name")
	if err != nil {
		return p, err
	}
	p.AssemblyInputRef, err = stringParam(raw, "assembly_input_ref")
	if err != nil {
		return p, err
	}

	if v, ok := raw["min_length"]; ok && v != nil {
		p.Min, err = ParseInt("min_length", v)
		if err != nil {
			return p, err
		}
	}
	if p.Min < 0 {
		return p, Bounds{Min: p.Min}.Validate()
	}
	if withMax {
		if v, ok := raw["max_length"]; ok && v != nil {
			p.Max, err = ParseInt("max_length", v)
			if err != nil {
				return p, err
			}
			p.HasMax = true
		}
	}
	return p, p.Bounds.Validate()
}

func stringParam(raw map[string]interface{}, name string) (string, error) {
	s, ok := raw[name].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("Parameter %s is not set in input arguments", name)
	}
	return s, nil
}

// ParseInt interprets v, a value decoded from JSON or taken from a
// command line, as an integer. Strings are parsed as base 10 integers
// and floating point values must be integral. Integers outside the
// range of int saturate so that range checks report them.
func ParseInt(name string, v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return saturate(n), nil
	case float64:
		i, ok := floatInt(n)
		if !ok {
			return 0, &ParseError{Param: name, Value: v}
		}
		return i, nil
	case json.Number:
		if i, ok := textInt(n.String()); ok {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, &ParseError{Param: name, Value: v}
		}
		i, ok := floatInt(f)
		if !ok {
			return 0, &ParseError{Param: name, Value: v}
		}
		return i, nil
	case string:
		i, ok := textInt(strings.TrimSpace(n))
		if !ok {
			return 0, &ParseError{Param: name, Value: v}
		}
		return i, nil
	}
	return 0, &ParseError{Param: name, Value: v}
}

// textInt parses s as a base 10 integer, saturating at the int limits.
func textInt(s string) (int, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	// On overflow ParseInt returns the int64 limit of the right sign.
	return saturate(n), true
}

// floatInt returns f as an int if it is integral, saturating at the
// int limits.
func floatInt(f float64) (int, bool) {
	switch {
	case math.IsNaN(f), f != math.Trunc(f):
		return 0, false
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	}
	return int(f), true
}

func saturate(n int64) int {
	switch {
	case n > math.MaxInt:
		return math.MaxInt
	case n < math.MinInt:
		return math.MinInt
	}
	return int(n)
}
