/*
 * xyz.go, part of pyxtalstep.
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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/pyxtalstep/v3"
)

// ErrXYZ is wrapped by all the errors produced while parsing an XYZ file.
var ErrXYZ = errors.New("ill formatted XYZ file")

//XYZFileRead reads an XYZ file, returns a Molecule with one frame per
//structure in the file.
func XYZFileRead(xyzname string) (*Molecule, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, err
	}
	defer xyzfile.Close()
	mol, err := XYZRead(xyzfile)
	if err != nil {
		return nil, fmt.Errorf("XYZFileRead %s: %w", xyzname, err)
	}
	return mol, nil
}

//XYZString reads an XYZ file from a string.
func XYZString(text string) (*Molecule, error) {
	return XYZRead(strings.NewReader(text))
}

//XYZRead reads XYZ data from r. All frames must have the same atoms.
//The title line of each frame is kept in the Titles field of the molecule.
func XYZRead(r io.Reader) (*Molecule, error) {
	xyz := bufio.NewScanner(r)
	var top *Topology
	var coords []*v3.Matrix
	var titles []string
	lineno := 0
	for {
		line, ok := nextLine(xyz, &lineno)
		if !ok {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue //blank lines between frames are tolerated
		}
		natoms, err := strconv.Atoi(line)
		if err != nil || natoms <= 0 {
			return nil, fmt.Errorf("line %d: expected the number of atoms, got %q: %w", lineno, line, ErrXYZ)
		}
		title, ok := nextLine(xyz, &lineno)
		if !ok {
			return nil, fmt.Errorf("line %d: missing title line: %w", lineno, ErrXYZ)
		}
		symbols := make([]string, natoms)
		data := make([]float64, natoms*3)
		for i := 0; i < natoms; i++ {
			line, ok = nextLine(xyz, &lineno)
			if !ok {
				return nil, fmt.Errorf("expected %d atoms, found %d: %w", natoms, i, ErrXYZ)
			}
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d ill formed: %w", lineno, ErrXYZ)
			}
			symbols[i] = normalizeSymbol(fields[0])
			for j := 0; j < 3; j++ {
				data[i*3+j], err = strconv.ParseFloat(fields[j+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %s: %w", lineno, err.Error(), ErrXYZ)
				}
			}
		}
		if top == nil {
			top = NewTopology(symbols)
		} else if top.Len() != natoms {
			return nil, fmt.Errorf("frame %d has %d atoms, the first one has %d: %w", len(coords)+1, natoms, top.Len(), ErrXYZ)
		}
		c, _ := v3.NewMatrix(data)
		coords = append(coords, c)
		titles = append(titles, strings.TrimSpace(title))
	}
	if err := xyz.Err(); err != nil {
		return nil, err
	}
	if top == nil {
		return nil, fmt.Errorf("no structures found: %w", ErrXYZ)
	}
	return &Molecule{Topology: top, Coords: coords, Titles: titles}, nil
}

func nextLine(s *bufio.Scanner, lineno *int) (string, bool) {
	if !s.Scan() {
		return "", false
	}
	*lineno++
	return s.Text(), true
}

//normalizeSymbol turns "CL" or "cl" into "Cl". Numeric atom labels
//are left alone.
func normalizeSymbol(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

//XYZWrite writes the given coordinates and atoms to w in XYZ format, with
//title as the comment line. The coordinates are written with 8 decimals,
//enough to keep the precision of a structure that goes back and forth
//between programs. No newline is written after the last atom.
func XYZWrite(w io.Writer, coords *v3.Matrix, symbols []string, title string) error {
	n := len(symbols)
	if coords.NVecs() != n {
		return fmt.Errorf("XYZWrite: %d coordinates for %d atoms", coords.NVecs(), n)
	}
	if _, err := fmt.Fprintf(w, "%d\n%s", n, title); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		c := coords.Vec(i)
		if _, err := fmt.Fprintf(w, "\n%-2s %15.8f %15.8f %15.8f", symbols[i], c[0], c[1], c[2]); err != nil {
			return err
		}
	}
	return nil
}

//XYZFileWrite writes the coordinates and atoms in an XYZ file with name xyzname, which will
//be created for that. If the file exists it will be overwritten.
func XYZFileWrite(xyzname string, coords *v3.Matrix, symbols []string, title string) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return err
	}
	defer out.Close()
	return XYZWrite(out, coords, symbols, title)
}
