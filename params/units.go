/*
 * units.go, part of pyxtalstep.
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
	"strings"
)

// ErrUnits is returned for unknown or incompatible units.
var ErrUnits = errors.New("units")

// lengths in Å
var lengths = map[string]float64{
	"Å":        1,
	"A":        1,
	"angstrom": 1,
	"nm":       10,
	"pm":       0.01,
	"bohr":     0.529177210903,
	"a0":       0.529177210903,
}

// parseUnit returns the factor to Å^dim of u.
func parseUnit(u string) (float64, int, error) {
	u = strings.TrimSpace(u)
	dim := 1
	switch {
	case strings.HasSuffix(u, "^2"):
		u, dim = strings.TrimSuffix(u, "^2"), 2
	case strings.HasSuffix(u, "²"):
		u, dim = strings.TrimSuffix(u, "²"), 2
	}
	f, ok := lengths[u]
	if !ok {
		f, ok = lengths[strings.ToLower(u)]
	}
	if !ok {
		return 0, 0, fmt.Errorf("%w: unknown unit %q", ErrUnits, u)
	}
	if dim == 2 {
		f *= f
	}
	return f, dim, nil
}

// Quantity is a number with units.
type Quantity struct {
	Magnitude float64
	Units     string
}

// To returns the magnitude of the quantity in the given units.
func (Q Quantity) To(units string) (float64, error) {
	from, fdim, err := parseUnit(Q.Units)
	if err != nil {
		return 0, err
	}
	to, tdim, err := parseUnit(units)
	if err != nil {
		return 0, err
	}
	if fdim != tdim {
		return 0, fmt.Errorf("%w: cannot convert %s to %s", ErrUnits, Q.Units, units)
	}
	return Q.Magnitude * from / to, nil
}

func (Q Quantity) String() string {
	return fmt.Sprintf("%g %s", Q.Magnitude, Q.Units)
}
