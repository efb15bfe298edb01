/*
 * resolve.go, part of pyxtalstep.
 *
 * Copyright 2024 The pyxtalstep Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ErrValue is returned when a parameter has a value that doesn't fit its kind.
var ErrValue = errors.New("invalid parameter value")

// Resolved holds concrete, typed values for every parameter of a set.
type Resolved struct {
	schema Schema
	values map[string]any
	units  map[string]string
}

// Resolve evaluates the expressions in set against vars and converts every
// value to its kind. It fails if any parameter can't be given a concrete value.
func Resolve(set *Set, vars map[string]cty.Value) (*Resolved, error) {
	R := &Resolved{
		schema: set.schema,
		values: make(map[string]any, len(set.schema)),
		units:  make(map[string]string),
	}
	for _, d := range set.schema {
		v := set.Get(d.Name)
		text := strings.TrimSpace(v.Text)
		if v.IsExpr() {
			var err error
			text, err = Eval(strings.TrimPrefix(text, "$"), vars)
			if err != nil {
				return nil, fmt.Errorf("Resolve: parameter %q: %w", d.Name, err)
			}
		}
		val, units, err := convertText(d, text, v.Units)
		if err != nil {
			return nil, fmt.Errorf("Resolve: parameter %q: %w", d.Name, err)
		}
		R.values[d.Name] = val
		if units != "" {
			R.units[d.Name] = units
		}
	}
	return R, nil
}

// Eval evaluates an HCL expression with vars as its variables and returns
// the result as text.
func Eval(expr string, vars map[string]cty.Value) (string, error) {
	e, diags := hclsyntax.ParseExpression([]byte(expr), "expression", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return "", fmt.Errorf("parsing %q: %w", expr, diags)
	}
	val, diags := e.Value(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() {
		return "", fmt.Errorf("evaluating %q: %w", expr, diags)
	}
	if val.IsNull() || !val.IsWhollyKnown() {
		return "", fmt.Errorf("evaluating %q: %w: no value", expr, ErrValue)
	}
	s, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("evaluating %q: %w: %s is not a scalar", expr, ErrValue, val.Type().FriendlyName())
	}
	return s.AsString(), nil
}

func convertText(d Descriptor, text, units string) (any, string, error) {
	switch d.Kind {
	case Enum:
		if len(d.Enumeration) == 0 {
			return text, "", nil
		}
		for _, e := range d.Enumeration {
			if strings.EqualFold(e, text) {
				return e, "", nil
			}
		}
		return nil, "", fmt.Errorf("%w: %q is not one of %s", ErrValue, text, strings.Join(d.Enumeration, ", "))
	case String:
		return text, "", nil
	case Integer:
		if i, err := strconv.Atoi(text); err == nil {
			return i, "", nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || f != math.Trunc(f) {
			return nil, "", fmt.Errorf("%w: %q is not an integer", ErrValue, text)
		}
		return int(f), "", nil
	case Float:
		num := text
		// "6 nm" carries its own units.
		if fields := strings.Fields(text); len(fields) == 2 {
			num, units = fields[0], fields[1]
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %q is not a number", ErrValue, text)
		}
		if units == "" {
			units = d.DefaultUnits
		}
		if units != "" {
			if _, _, err := parseUnit(units); err != nil {
				return nil, "", err
			}
		}
		return f, units, nil
	case Boolean:
		switch strings.ToLower(text) {
		case "yes", "y", "on":
			return true, "", nil
		case "no", "n", "off":
			return false, "", nil
		}
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %q is not a boolean", ErrValue, text)
		}
		return b, "", nil
	}
	return nil, "", fmt.Errorf("%w: unknown kind %s", ErrValue, d.Kind)
}

// Names returns the parameter names, in schema order.
func (R *Resolved) Names() []string {
	return R.schema.Names()
}

func (R *Resolved) get(name string, kinds ...Kind) any {
	d, ok := R.schema.Lookup(name)
	if !ok {
		panic("params: unknown parameter " + name)
	}
	for _, k := range kinds {
		if d.Kind == k {
			return R.values[name]
		}
	}
	panic(fmt.Sprintf("params: parameter %q is %s", name, d.Kind))
}

// Str returns the value of an enum or string parameter.
func (R *Resolved) Str(name string) string {
	return R.get(name, Enum, String).(string)
}

// Int returns the value of an integer parameter.
func (R *Resolved) Int(name string) int {
	return R.get(name, Integer).(int)
}

// Float returns the magnitude of a float parameter, in the units it was given in.
func (R *Resolved) Float(name string) float64 {
	return R.get(name, Float).(float64)
}

// Quantity returns a float parameter with its units.
func (R *Resolved) Quantity(name string) Quantity {
	return Quantity{Magnitude: R.Float(name), Units: R.units[name]}
}

// Bool returns the value of a boolean parameter.
func (R *Resolved) Bool(name string) bool {
	return R.get(name, Boolean).(bool)
}

// Text returns the value formatted for output, with its units.
func (R *Resolved) Text(name string) string {
	d, ok := R.schema.Lookup(name)
	if !ok {
		panic("params: unknown parameter " + name)
	}
	var s string
	switch v := R.values[name].(type) {
	case float64:
		if d.Format != "" {
			s = fmt.Sprintf(d.Format, v)
		} else {
			s = strconv.FormatFloat(v, 'g', -1, 64)
		}
	default:
		s = fmt.Sprint(v)
	}
	if u := R.units[name]; u != "" {
		s += " " + u
	}
	return s
}
