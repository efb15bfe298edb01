/*
 * descriptor.go, part of pyxtalstep.
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

// Kind is the type of value a parameter holds.
type Kind int

const (
	Enum Kind = iota
	Integer
	Float
	String
	Boolean
)

var kindNames = [...]string{"enum", "integer", "float", "string", "boolean"}

func (K Kind) String() string {
	if K < 0 || int(K) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(K))
	}
	return kindNames[K]
}

// Descriptor describes one parameter. An Enum with an empty Enumeration
// accepts any text; a String with an Enumeration offers it as suggestions.
type Descriptor struct {
	Name         string
	Kind         Kind
	Default      string
	DefaultUnits string
	Enumeration  []string
	Format       string
	Description  string
	Help         string
}

// Schema is an ordered list of parameter descriptors.
type Schema []Descriptor

// Lookup returns the descriptor with the given name.
func (S Schema) Lookup(name string) (Descriptor, bool) {
	for _, d := range S {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names returns the parameter names, in order.
func (S Schema) Names() []string {
	n := make([]string, len(S))
	for i, d := range S {
		n[i] = d.Name
	}
	return n
}

// canonical resolves a name as written in a file, where spaces may be
// replaced by underscores.
func (S Schema) canonical(name string) (string, bool) {
	if _, ok := S.Lookup(name); ok {
		return name, true
	}
	spaced := strings.ReplaceAll(name, "_", " ")
	if _, ok := S.Lookup(spaced); ok {
		return spaced, true
	}
	return "", false
}

// Structure handling choices.
const (
	HandlingOverwrite        = "Overwrite the current configuration"
	HandlingNewConfiguration = "Create a new configuration"
	HandlingNewSystem        = "Create a new system and configuration"
)

// PyXtal are the parameters specific to the PyXtal step.
var PyXtal = Schema{
	{
		Name:        "build type",
		Kind:        Enum,
		Default:     "atoms",
		Enumeration: []string{"atoms", "molecules"},
		Description: "Build using:",
		Help:        "Whether to use atoms of molecules as the basic building block.",
	},
	{
		Name:        "dimensionality",
		Kind:        Enum,
		Default:     "3-D crystal",
		Enumeration: []string{"0-D molecular", "1-D rod", "2-D layer", "3-D crystal"},
		Description: "Dimensionality:",
		Help:        "Whether the desired system is molecular, a rod, layer or 3-D crystal",
	},
	{
		Name:        "symmetry",
		Kind:        Enum,
		Description: "Symmetry:",
		Help:        "The symmetry (point, rod, layer, or space group) for the system.",
	},
	{
		Name:        "formula",
		Kind:        String,
		Description: "Formula:",
		Help:        "The chemical formula for the molecule or crystal.",
	},
	{
		Name:        "n_molecules",
		Kind:        Integer,
		Default:     "1",
		Description: "Number of molecules:",
		Help:        "The number of molecules in the final structure.",
	},
	{
		Name:        "attempts",
		Kind:        Integer,
		Default:     "1",
		Description: "Number of attempts:",
		Help: "The number of time to try making the structure. " +
			"The number of structures actually generated may be less than this.",
	},
	{
		Name:         "thickness",
		Kind:         Float,
		Default:      "5.0",
		DefaultUnits: "Å",
		Format:       "%.2f",
		Description:  "Slab thickness:",
		Help:         "The thickness of the generated slab.",
	},
	{
		Name:         "area",
		Kind:         Float,
		Default:      "25.0",
		DefaultUnits: "Å^2",
		Format:       "%.2f",
		Description:  "Cross-sectional area:",
		Help:         "The area of the cross section of the rod.",
	},
}

// StructureHandling are the parameters shared by steps that create structures.
var StructureHandling = Schema{
	{
		Name:        "structure handling",
		Kind:        Enum,
		Default:     HandlingNewSystem,
		Enumeration: []string{HandlingOverwrite, HandlingNewConfiguration, HandlingNewSystem},
		Description: "First structure:",
		Help:        "How to handle the first structure created.",
	},
	{
		Name:        "subsequent structure handling",
		Kind:        Enum,
		Default:     HandlingNewSystem,
		Enumeration: []string{HandlingNewConfiguration, HandlingNewSystem},
		Description: "Subsequent structures:",
		Help:        "How to handle the second and later structures.",
	},
	{
		Name:        "system name",
		Kind:        String,
		Default:     "from file",
		Enumeration: []string{"keep current name", "from file", "canonical SMILES", "SMILES"},
		Description: "System name:",
		Help:        "The name for the new system.",
	},
	{
		Name:        "configuration name",
		Kind:        String,
		Default:     "sequential",
		Enumeration: []string{"keep current name", "from file", "sequential", "canonical SMILES", "SMILES"},
		Description: "Configuration name:",
		Help:        "The name for the new configuration.",
	},
}

// Standard returns the full parameter schema of the PyXtal step.
func Standard() Schema {
	s := make(Schema, 0, len(PyXtal)+len(StructureHandling))
	s = append(s, PyXtal...)
	return append(s, StructureHandling...)
}
