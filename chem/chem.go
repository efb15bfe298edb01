/*
 * chem.go, part of pyxtalstep.
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

package chem

import (
	"fmt"

	v3 "github.com/rmera/pyxtalstep/v3"
)

/**Note: Some functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is way-most likely wrong and should
 * crash. Most panics are related to trying to access out-of bounds fields**/

//Atom contains the atom data except for the coordinates, which will be in a matrix.
type Atom struct {
	Name   string
	ID     int
	Symbol string
	Mass   float64
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	n := *A
	return &n
}

//Topology contains the information about a molecule which is not expected to change
//in time (i.e. everything except for coordinates).
type Topology struct {
	Atoms []*Atom
}

//NewTopology returns a topology with one atom per symbol given.
func NewTopology(symbols []string) *Topology {
	T := &Topology{Atoms: make([]*Atom, len(symbols))}
	for i, s := range symbols {
		T.Atoms[i] = &Atom{Name: s, ID: i + 1, Symbol: s, Mass: symbolMass[s]}
	}
	return T
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the Topology. Panics if
//out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

//Symbols returns the element symbols of the atoms, in order.
func (T *Topology) Symbols() []string {
	s := make([]string, T.Len())
	for i, a := range T.Atoms {
		s[i] = a.Symbol
	}
	return s
}

//Molecule contains a topology and one or more frames of coordinates.
//For periodic systems Cell holds the three lattice vectors, one per row,
//and the coordinates are cartesian.
type Molecule struct {
	*Topology
	Coords []*v3.Matrix
	Titles []string
	Cell   *v3.Matrix
}

//NewMolecule makes a molecule with the given topology and coordinate frames.
//It returns error if the number of atoms and coordinates doesn't match.
func NewMolecule(top *Topology, coords []*v3.Matrix, titles []string) (*Molecule, error) {
	if top == nil {
		return nil, fmt.Errorf("NewMolecule: nil topology")
	}
	for i, c := range coords {
		if c.NVecs() != top.Len() {
			return nil, fmt.Errorf("NewMolecule: frame %d has %d coordinates for %d atoms", i, c.NVecs(), top.Len())
		}
	}
	if len(titles) < len(coords) {
		t := make([]string, len(coords))
		copy(t, titles)
		titles = t
	}
	return &Molecule{Topology: top, Coords: coords, Titles: titles}, nil
}

//Title returns the title of the first frame, or an empty string.
func (M *Molecule) Title() string {
	if len(M.Titles) == 0 {
		return ""
	}
	return M.Titles[0]
}

//Periodic returns true if the molecule has a unit cell.
func (M *Molecule) Periodic() bool {
	return M.Cell != nil
}
