/*
 * form.go, part of pyxtalstep.
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

// Package form lays out the parameters of the PyXtal step for editing. Which
// parameters are shown, and which symmetry groups are offered, depend on the
// build type, the dimensionality and the number of attempts.
package form

import (
	"fmt"
	"strings"

	"github.com/rmera/pyxtalstep/params"
)

// Frame is a titled group of fields.
type Frame struct {
	Title  string
	Fields []string
}

// Titles of the frames.
const (
	StructureFrame = "Structure definition"
	HandlingFrame  = "How to handle the structure"
)

// Layout returns the fields to show for the current values of set.
func Layout(set *params.Set) []Frame {
	build := set.Get("build type").Text
	dim := set.Get("dimensionality").Text
	attempts := strings.TrimSpace(set.Get("attempts").Text)

	first := []string{"build type", "dimensionality", "symmetry"}
	if build == "atoms" {
		first = append(first, "formula", "attempts")
	} else {
		first = append(first, "n_molecules", "attempts")
	}
	switch {
	case strings.Contains(dim, "1-D"):
		first = append(first, "area")
	case strings.Contains(dim, "2-D"):
		first = append(first, "thickness")
	}

	second := []string{"structure handling", "system name", "configuration name"}
	if attempts != "1" {
		second = []string{"structure handling", "subsequent structure handling", "system name", "configuration name"}
	}
	return []Frame{
		{Title: StructureFrame, Fields: first},
		{Title: HandlingFrame, Fields: second},
	}
}

// Groups returns the symmetry groups allowed for a dimensionality: point
// groups for 0-D, rod groups for 1-D and space groups for 2-D and 3-D. It
// returns nil for a dimensionality it doesn't recognize, like an expression.
func Groups(dimensionality string) []string {
	switch {
	case strings.Contains(dimensionality, "0-D"):
		return PointGroups
	case strings.Contains(dimensionality, "1-D"):
		return RodGroups
	case strings.Contains(dimensionality, "2-D"), strings.Contains(dimensionality, "3-D"):
		return SpaceGroups
	}
	return nil
}

// Normalize sets the symmetry to the first allowed group when the current
// one is not allowed for the dimensionality. Expressions are left alone. It
// reports whether the symmetry changed.
func Normalize(set *params.Set) (bool, error) {
	for _, name := range []string{"dimensionality", "symmetry"} {
		if _, ok := set.Schema().Lookup(name); !ok {
			return false, fmt.Errorf("form/Normalize: no %q parameter", name)
		}
	}
	sym := set.Get("symmetry")
	if sym.IsExpr() {
		return false, nil
	}
	groups := Groups(set.Get("dimensionality").Text)
	if groups == nil {
		return false, nil
	}
	for _, g := range groups {
		if g == sym.Text {
			return false, nil
		}
	}
	if err := set.SetText("symmetry", groups[0]); err != nil {
		return false, fmt.Errorf("form/Normalize: %w", err)
	}
	return true, nil
}

// Known returns the names of the group tables containing symbol.
func Known(symbol string) []string {
	var tables []string
	for _, t := range []struct {
		name   string
		groups []string
	}{
		{"point group", PointGroups},
		{"rod group", RodGroups},
		{"layer group", LayerGroups},
		{"space group", SpaceGroups},
	} {
		for _, g := range t.groups {
			if g == symbol {
				tables = append(tables, t.name)
				break
			}
		}
	}
	return tables
}
