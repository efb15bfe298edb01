/*
 * request.go, part of pyxtalstep.
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

package pyxtal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rmera/pyxtalstep/params"
)

// ErrDimensionality is returned for a dimensionality other than 0-D to 3-D.
var ErrDimensionality = errors.New("can't handle dimensionality")

// BuildType is the basic building block of the structure.
type BuildType int

const (
	Atoms BuildType = iota
	Molecules
)

func (B BuildType) String() string {
	if B == Molecules {
		return "molecules"
	}
	return "atoms"
}

// Dimensionality is the periodicity of the structure to build, 0 for molecules.
type Dimensionality int

const (
	Molecular Dimensionality = iota
	Rod
	Layer
	Crystal
)

var dimNames = [...]string{"0-D molecular", "1-D rod", "2-D layer", "3-D crystal"}

func (D Dimensionality) String() string {
	if D < Molecular || D > Crystal {
		return fmt.Sprintf("%d-D", int(D))
	}
	return dimNames[D]
}

// ParseDimensionality recognizes "0-D" to "3-D" anywhere in s.
func ParseDimensionality(s string) (Dimensionality, error) {
	for d := Molecular; d <= Crystal; d++ {
		if strings.Contains(s, fmt.Sprintf("%d-D", int(d))) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrDimensionality, s)
}

// ReturnGlob is the pattern of the files PyXtal writes for the dimensionality.
func (D Dimensionality) ReturnGlob() string {
	if D == Molecular {
		return "*.xyz"
	}
	return "*.cif"
}

// Request holds the parameters of one PyXtal run, in PyXtal's units.
type Request struct {
	BuildType      BuildType
	Dimensionality Dimensionality
	Symmetry       string
	Formula        string
	NMolecules     int
	Attempts       int
	Thickness      float64 // Å
	Area           float64 // Å^2
}

// NewRequest takes the values of a request from the resolved parameters.
func NewRequest(P *params.Resolved) (*Request, error) {
	errid := "NewRequest"
	dim, err := ParseDimensionality(P.Str("dimensionality"))
	if err != nil {
		return nil, err
	}
	R := &Request{
		Dimensionality: dim,
		Symmetry:       P.Str("symmetry"),
		Formula:        P.Str("formula"),
		NMolecules:     P.Int("n_molecules"),
		Attempts:       P.Int("attempts"),
	}
	if P.Str("build type") == "molecules" {
		R.BuildType = Molecules
	}
	if R.Thickness, err = P.Quantity("thickness").To("Å"); err != nil {
		return nil, fmt.Errorf("%s: thickness: %w", errid, err)
	}
	if R.Area, err = P.Quantity("area").To("Å^2"); err != nil {
		return nil, fmt.Errorf("%s: area: %w", errid, err)
	}
	return R, nil
}
