/*
 * chem_test.go, part of pyxtalstep.
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
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestXYZIO(Te *testing.T) {
	mol, err := XYZFileRead("testdata/water.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	if mol.Len() != 3 || len(mol.Coords) != 1 {
		Te.Fatalf("expected 3 atoms in 1 frame, got %d atoms, %d frames", mol.Len(), len(mol.Coords))
	}
	if mol.Title() != "water from a test" {
		Te.Errorf("unexpected title %q", mol.Title())
	}
	if got := strings.Join(mol.Symbols(), ","); got != "O,H,H" {
		Te.Errorf("unexpected symbols %s", got)
	}
	var b bytes.Buffer
	if err := XYZWrite(&b, mol.Coords[0], mol.Symbols(), "again"); err != nil {
		Te.Fatal(err)
	}
	lines := strings.Split(b.String(), "\n")
	if len(lines) != 5 || lines[0] != "3" || lines[1] != "again" {
		Te.Fatalf("unexpected XYZ output:\n%s", b.String())
	}
	if lines[2] != "O       0.00000000      0.00000000      0.11730000" {
		Te.Errorf("unexpected atom line %q", lines[2])
	}
	back, err := XYZString(b.String())
	if err != nil {
		Te.Fatal(err)
	}
	if !near(back.Coords[0].At(1, 1), 0.7572) {
		Te.Errorf("precision lost: %f", back.Coords[0].At(1, 1))
	}
}

func TestXYZMultiFrame(Te *testing.T) {
	text := "1\nfirst\nHe 0 0 0\n\n1\nsecond\nhe 1 1 1\n"
	mol, err := XYZString(text)
	if err != nil {
		Te.Fatal(err)
	}
	if len(mol.Coords) != 2 || mol.Titles[1] != "second" {
		Te.Errorf("expected two frames, got %d %v", len(mol.Coords), mol.Titles)
	}
}

func TestXYZErrors(Te *testing.T) {
	for _, text := range []string{"", "two\ntitle\n", "2\ntitle\nH 0 0 0\n", "1\nt\nH 0 0\n", "1\nt\nH 0 0 zero\n"} {
		if _, err := XYZString(text); !errors.Is(err, ErrXYZ) {
			Te.Errorf("expected ErrXYZ for %q, got %v", text, err)
		}
	}
}

func TestCIFBodyCentered(Te *testing.T) {
	mol, err := readCIF("testdata/fe_bcc.cif")
	if err != nil {
		Te.Fatal(err)
	}
	if mol.Title() != "Fe2" {
		Te.Errorf("unexpected title %q", mol.Title())
	}
	if mol.Len() != 2 {
		Te.Fatalf("expected 2 atoms, got %d", mol.Len())
	}
	c := mol.Coords[0].Vec(1)
	if !near(c[0], 1.435) || !near(c[1], 1.435) || !near(c[2], 1.435) {
		Te.Errorf("unexpected position of the centering atom %v", c)
	}
	if !mol.Periodic() {
		Te.Error("a crystal should be periodic")
	}
}

func TestCIFExpansionAndCell(Te *testing.T) {
	mol, err := readCIF("testdata/hex_p1bar.cif")
	if err != nil {
		Te.Fatal(err)
	}
	if got := strings.Join(mol.Symbols(), ","); got != "Na,Cl,Cl,O" {
		Te.Fatalf("unexpected expansion %s", got)
	}
	b := mol.Cell.Vec(1)
	if !near(b[0], -3) || !near(b[1], 3*math.Sqrt(3)) || b[2] != 0 {
		Te.Errorf("unexpected b vector %v", b)
	}
	cl := mol.Coords[0].Vec(1)
	if !near(cl[0], 0.95) || !near(cl[1], 0.3*math.Sqrt(3)) || !near(cl[2], 2.1) {
		Te.Errorf("unexpected Cl position %v", cl)
	}
}

func TestCIFErrors(Te *testing.T) {
	bad := []string{
		"no data block here",
		"data_x\n_cell_length_a 1\n",
		"data_x\nloop_\n_a\n_b\n1\n",
		"data_x\n_title 'unterminated\n",
	}
	for _, text := range bad {
		if _, err := CIFString(text); !errors.Is(err, ErrCIF) {
			Te.Errorf("expected ErrCIF for %q, got %v", text, err)
		}
	}
}

func TestSymop(Te *testing.T) {
	op, err := parseSymop("-x+1/2, y-0.25, 2*z")
	if err != nil {
		Te.Fatal(err)
	}
	f := op.apply([3]float64{0.1, 0.5, 0.2})
	if !near(f[0], 0.4) || !near(f[1], 0.25) || !near(f[2], 0.4) {
		Te.Errorf("unexpected result %v", f)
	}
	if _, err := parseSymop("x,y"); err == nil {
		Te.Error("expected an error for a two-component operator")
	}
}

func TestParseFormula(Te *testing.T) {
	cases := map[string]string{
		"H2O":         "H:2 O:1",
		"NaCl":        "Na:1 Cl:1",
		"Ca(OH)2":     "Ca:1 O:2 H:2",
		"K4[Fe(CN)6]": "K:4 Fe:1 C:6 N:6",
		"CH3COOH":     "C:2 H:4 O:2",
		"Si O2":       "Si:1 O:2",
	}
	for in, want := range cases {
		f, err := ParseFormula(in)
		if err != nil {
			Te.Errorf("%s: %v", in, err)
			continue
		}
		var parts []string
		for _, ec := range f {
			parts = append(parts, ec.Symbol+":"+itoa(ec.N))
		}
		if got := strings.Join(parts, " "); got != want {
			Te.Errorf("%s: got %s, want %s", in, got, want)
		}
	}
	f, _ := ParseFormula("H2O")
	if strings.Join(f.Symbols(), ",") != "H,O" || strings.Join(f.Counts(), ",") != "2,1" {
		Te.Errorf("unexpected lists %v %v", f.Symbols(), f.Counts())
	}
	for _, bad := range []string{"", "h2o", "Xx2", "Ca(OH", "H0", "H2)"} {
		if _, err := ParseFormula(bad); !errors.Is(err, ErrFormula) {
			Te.Errorf("expected ErrFormula for %q, got %v", bad, err)
		}
	}
}

func TestHillFormula(Te *testing.T) {
	if h := HillFormula([]string{"O", "H", "C", "H", "H", "H"}); h != "CH4O" {
		Te.Errorf("unexpected Hill formula %s", h)
	}
	if h := HillFormula([]string{"O", "H", "H"}); h != "H2O" {
		Te.Errorf("unexpected Hill formula %s", h)
	}
	if h := HillFormula([]string{"Na", "Cl"}); h != "ClNa" {
		Te.Errorf("unexpected Hill formula %s", h)
	}
}
