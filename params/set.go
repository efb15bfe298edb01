/*
 * set.go, part of pyxtalstep.
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
	"fmt"
	"strings"
)

// Value is the text of a parameter as entered, with optional units.
type Value struct {
	Text  string
	Units string
}

// IsExpr reports whether the value is an expression to be evaluated at run time.
func (V Value) IsExpr() bool {
	return strings.HasPrefix(strings.TrimSpace(V.Text), "$")
}

func (V Value) String() string {
	if V.Units == "" {
		return V.Text
	}
	return V.Text + " " + V.Units
}

// Set holds one value for each parameter of a schema.
type Set struct {
	schema Schema
	values map[string]Value
}

// NewSet returns a set with every parameter at its default.
func NewSet(schema Schema) *Set {
	S := &Set{schema: schema, values: make(map[string]Value, len(schema))}
	S.Reset()
	return S
}

// Reset puts every parameter back to its default value and units.
func (S *Set) Reset() {
	for _, d := range S.schema {
		S.values[d.Name] = Value{Text: d.Default, Units: d.DefaultUnits}
	}
}

// Schema returns the descriptors of the set.
func (S *Set) Schema() Schema {
	return S.schema
}

// Get returns the value of a parameter. It panics if the name is unknown.
func (S *Set) Get(name string) Value {
	v, ok := S.values[name]
	if !ok {
		panic("params: unknown parameter " + name)
	}
	return v
}

// Set changes the value of a parameter.
func (S *Set) Set(name string, v Value) error {
	if _, ok := S.values[name]; !ok {
		return fmt.Errorf("params: unknown parameter %q", name)
	}
	S.values[name] = v
	return nil
}

// SetText changes the text of a parameter and keeps its units.
func (S *Set) SetText(name, text string) error {
	if _, ok := S.values[name]; !ok {
		return fmt.Errorf("params: unknown parameter %q", name)
	}
	v := S.values[name]
	v.Text = text
	S.values[name] = v
	return nil
}

// Clone returns an independent copy of the set.
func (S *Set) Clone() *Set {
	c := &Set{schema: S.schema, values: make(map[string]Value, len(S.values))}
	for k, v := range S.values {
		c.values[k] = v
	}
	return c
}

// Texts returns the value of each parameter as displayed, with its units.
// Expressions are returned as written.
func (S *Set) Texts() map[string]string {
	m := make(map[string]string, len(S.values))
	for k, v := range S.values {
		m[k] = v.String()
	}
	return m
}

// Describe returns one "description value" line per parameter, in schema order.
func (S *Set) Describe() []string {
	lines := make([]string, 0, len(S.schema))
	for _, d := range S.schema {
		lines = append(lines, fmt.Sprintf("%-25s %s", d.Description, S.values[d.Name]))
	}
	return lines
}
