/*
 * cif.go, part of pyxtalstep.
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
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	v3 "github.com/rmera/pyxtalstep/v3"
	"gonum.org/v1/gonum/mat"
)

// ErrCIF is wrapped by all the errors produced while parsing a CIF file.
var ErrCIF = errors.New("ill formatted CIF file")

//Two fractional positions closer than this, in every direction, are the same site.
const siteTolerance = 1e-3

//CIFRead reads the first data block of a CIF file from r. The asymmetric unit in the
//file is expanded with the symmetry operators listed in it, and the resulting atoms
//are returned with cartesian coordinates in the molecule's only frame.
//The name of the data block is the title of the molecule.
func CIFRead(r io.Reader) (*Molecule, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return CIFString(string(b))
}

//CIFString reads a CIF file from a string. See CIFRead.
func CIFString(text string) (*Molecule, error) {
	d, err := parseCIF(text)
	if err != nil {
		return nil, err
	}
	cell, err := d.cell()
	if err != nil {
		return nil, err
	}
	ops, err := d.symops()
	if err != nil {
		return nil, err
	}
	symbols, fracs, err := d.sites(ops)
	if err != nil {
		return nil, err
	}
	F, err := v3.NewMatrix(fracs)
	if err != nil {
		return nil, fmt.Errorf("no atoms in data block %s: %w", d.name, ErrCIF)
	}
	coords := v3.Zeros(F.NVecs())
	coords.Mul(F, cell)
	return &Molecule{
		Topology: NewTopology(symbols),
		Coords:   []*v3.Matrix{coords},
		Titles:   []string{d.name},
		Cell:     cell,
	}, nil
}

type cifToken struct {
	text   string
	quoted bool
}

//reserved returns true for the tokens that end a list of loop values.
func (t cifToken) reserved() bool {
	if t.quoted {
		return false
	}
	l := strings.ToLower(t.text)
	return strings.HasPrefix(l, "_") || l == "loop_" || strings.HasPrefix(l, "data_") ||
		strings.HasPrefix(l, "save_") || l == "global_" || l == "stop_"
}

type cifLoop struct {
	tags   []string
	values []string
}

func (l cifLoop) column(tag string) int {
	for i, t := range l.tags {
		if t == tag {
			return i
		}
	}
	return -1
}

func (l cifLoop) rows() int {
	return len(l.values) / len(l.tags)
}

func (l cifLoop) at(row, col int) string {
	return l.values[row*len(l.tags)+col]
}

type cifData struct {
	name  string
	items map[string]string
	loops []cifLoop
}

//loop returns the first loop containing tag.
func (d *cifData) loop(tag string) (cifLoop, bool) {
	for _, l := range d.loops {
		if l.column(tag) >= 0 {
			return l, true
		}
	}
	return cifLoop{}, false
}

func cifTokenize(text string) ([]cifToken, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var toks []cifToken
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, ";") {
			field := []string{line[1:]}
			for i++; i < len(lines) && !strings.HasPrefix(lines[i], ";"); i++ {
				field = append(field, lines[i])
			}
			if i == len(lines) {
				return nil, fmt.Errorf("unterminated text field: %w", ErrCIF)
			}
			toks = append(toks, cifToken{strings.TrimSpace(strings.Join(field, "\n")), true})
			continue
		}
		for j := 0; j < len(line); {
			c := line[j]
			switch {
			case c == ' ' || c == '\t':
				j++
			case c == '#':
				j = len(line)
			case c == '\'' || c == '"':
				s, next, err := readQuoted(line, j)
				if err != nil {
					return nil, fmt.Errorf("line %d: %s: %w", i+1, err.Error(), ErrCIF)
				}
				toks = append(toks, cifToken{s, true})
				j = next
			default:
				k := j
				for k < len(line) && line[k] != ' ' && line[k] != '\t' {
					k++
				}
				toks = append(toks, cifToken{line[j:k], false})
				j = k
			}
		}
	}
	return toks, nil
}

//readQuoted reads a quoted string starting at line[j]. A quote only closes
//the string when followed by whitespace or the end of the line.
func readQuoted(line string, j int) (string, int, error) {
	q := line[j]
	for k := j + 1; k < len(line); {
		idx := strings.IndexByte(line[k:], q)
		if idx < 0 {
			break
		}
		end := k + idx
		if end+1 == len(line) || line[end+1] == ' ' || line[end+1] == '\t' {
			return line[j+1 : end], end + 1, nil
		}
		k = end + 1
	}
	return "", 0, fmt.Errorf("unterminated quoted string")
}

func parseCIF(text string) (*cifData, error) {
	toks, err := cifTokenize(text)
	if err != nil {
		return nil, err
	}
	d := &cifData{items: make(map[string]string)}
	seen := false
	for i := 0; i < len(toks); {
		t := toks[i]
		low := strings.ToLower(t.text)
		switch {
		case !t.quoted && strings.HasPrefix(low, "data_"):
			if seen {
				return d, nil //only the first block is read
			}
			seen = true
			d.name = t.text[5:]
			i++
		case !t.quoted && low == "loop_":
			i++
			var l cifLoop
			for i < len(toks) && !toks[i].quoted && strings.HasPrefix(toks[i].text, "_") {
				l.tags = append(l.tags, strings.ToLower(toks[i].text))
				i++
			}
			for i < len(toks) && !toks[i].reserved() {
				l.values = append(l.values, toks[i].text)
				i++
			}
			if len(l.tags) == 0 || len(l.values)%len(l.tags) != 0 {
				return nil, fmt.Errorf("loop with %d tags has %d values: %w", len(l.tags), len(l.values), ErrCIF)
			}
			d.loops = append(d.loops, l)
		case !t.quoted && strings.HasPrefix(t.text, "_"):
			if i+1 >= len(toks) || toks[i+1].reserved() {
				return nil, fmt.Errorf("tag %s has no value: %w", t.text, ErrCIF)
			}
			d.items[low] = toks[i+1].text
			i += 2
		default:
			return nil, fmt.Errorf("unexpected token %q: %w", t.text, ErrCIF)
		}
	}
	if !seen {
		return nil, fmt.Errorf("no data block: %w", ErrCIF)
	}
	return d, nil
}

//cifNumber parses a CIF numeric value, dropping the standard uncertainty, as in 5.431(2).
func cifNumber(s string) (float64, error) {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	if s == "?" || s == "." {
		return 0, fmt.Errorf("missing value: %w", ErrCIF)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", err.Error(), ErrCIF)
	}
	return f, nil
}

func (d *cifData) number(tag string) (float64, error) {
	v, ok := d.items[tag]
	if !ok {
		return 0, fmt.Errorf("missing %s: %w", tag, ErrCIF)
	}
	f, err := cifNumber(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", tag, err)
	}
	return f, nil
}

//cell returns the lattice vectors as the rows of a matrix, with a along x
//and b in the xy plane.
func (d *cifData) cell() (*v3.Matrix, error) {
	var p [6]float64
	for i, tag := range []string{"_cell_length_a", "_cell_length_b", "_cell_length_c",
		"_cell_angle_alpha", "_cell_angle_beta", "_cell_angle_gamma"} {
		v, err := d.number(tag)
		if err != nil {
			return nil, err
		}
		p[i] = v
	}
	return CellMatrix(p[0], p[1], p[2], p[3], p[4], p[5])
}

//CellMatrix returns the lattice vectors for the given cell lengths and angles
//(in degrees) as the rows of a matrix.
func CellMatrix(a, b, c, alpha, beta, gamma float64) (*v3.Matrix, error) {
	rad := math.Pi / 180
	ca, cb, cg := math.Cos(alpha*rad), math.Cos(beta*rad), math.Cos(gamma*rad)
	sg := math.Sin(gamma * rad)
	if a <= 0 || b <= 0 || c <= 0 || math.Abs(sg) < 1e-8 {
		return nil, fmt.Errorf("degenerate cell %g %g %g %g %g %g: %w", a, b, c, alpha, beta, gamma, ErrCIF)
	}
	cx := c * cb
	cy := c * (ca - cb*cg) / sg
	cz2 := c*c - cx*cx - cy*cy
	if cz2 <= 0 {
		return nil, fmt.Errorf("impossible cell angles %g %g %g: %w", alpha, beta, gamma, ErrCIF)
	}
	data := []float64{
		a, 0, 0,
		b * cg, b * sg, 0,
		cx, cy, math.Sqrt(cz2),
	}
	for i := range data {
		if math.Abs(data[i]) < 1e-12 {
			data[i] = 0
		}
	}
	M := v3.Dense2Matrix(mat.NewDense(3, 3, data))
	if v3.Det(M) <= 0 {
		return nil, fmt.Errorf("cell with non-positive volume: %w", ErrCIF)
	}
	return M, nil
}

type symop struct {
	rot   [3][3]float64
	trans [3]float64
}

func (s symop) apply(f [3]float64) [3]float64 {
	var r [3]float64
	for i := 0; i < 3; i++ {
		r[i] = s.trans[i]
		for j := 0; j < 3; j++ {
			r[i] += s.rot[i][j] * f[j]
		}
	}
	return r
}

var identity = symop{rot: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}

func (d *cifData) symops() ([]symop, error) {
	var texts []string
	for _, tag := range []string{"_symmetry_equiv_pos_as_xyz", "_space_group_symop_operation_xyz"} {
		if l, ok := d.loop(tag); ok {
			col := l.column(tag)
			for r := 0; r < l.rows(); r++ {
				texts = append(texts, l.at(r, col))
			}
			break
		}
		if v, ok := d.items[tag]; ok {
			texts = append(texts, v)
			break
		}
	}
	if len(texts) == 0 {
		return []symop{identity}, nil
	}
	ops := make([]symop, 0, len(texts))
	for _, t := range texts {
		op, err := parseSymop(t)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

//parseSymop parses operators like "-x+1/2, y, z+1/2".
func parseSymop(s string) (symop, error) {
	var op symop
	parts := strings.Split(strings.ToLower(strings.Join(strings.Fields(s), "")), ",")
	if len(parts) != 3 {
		return op, fmt.Errorf("symmetry operator %q: %w", s, ErrCIF)
	}
	for i, p := range parts {
		row, t, err := parseSymopComponent(p)
		if err != nil {
			return op, fmt.Errorf("symmetry operator %q: %s: %w", s, err.Error(), ErrCIF)
		}
		op.rot[i] = row
		op.trans[i] = t
	}
	return op, nil
}

func parseSymopComponent(p string) ([3]float64, float64, error) {
	var row [3]float64
	var t float64
	if p == "" {
		return row, t, fmt.Errorf("empty component")
	}
	for i := 0; i < len(p); {
		sign := 1.0
		if p[i] == '+' {
			i++
		} else if p[i] == '-' {
			sign = -1
			i++
		}
		start := i
		for i < len(p) && (p[i] >= '0' && p[i] <= '9' || p[i] == '.' || p[i] == '/') {
			i++
		}
		coef := 1.0
		hasNum := i > start
		if hasNum {
			var err error
			coef, err = parseFraction(p[start:i])
			if err != nil {
				return row, t, err
			}
		}
		if i < len(p) && p[i] == '*' {
			i++
		}
		if i < len(p) && p[i] >= 'x' && p[i] <= 'z' {
			row[p[i]-'x'] += sign * coef
			i++
		} else if hasNum {
			t += sign * coef
		} else {
			return row, t, fmt.Errorf("unexpected text in %q", p)
		}
	}
	return row, t, nil
}

func parseFraction(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("bad fraction %q", s)
		}
		return n / d, nil
	}
	return strconv.ParseFloat(s, 64)
}

//wrap brings a fractional coordinate into [0,1).
func wrap(x float64) float64 {
	x -= math.Floor(x)
	if x > 1-siteTolerance/10 {
		x = 0
	}
	return x
}

func samePosition(a, b [3]float64) bool {
	for i := 0; i < 3; i++ {
		d := a[i] - b[i]
		d -= math.Round(d)
		if math.Abs(d) > siteTolerance {
			return false
		}
	}
	return true
}

//sites expands the atom_site loop with the symmetry operators. It returns
//the symbols and the flattened fractional coordinates of all the atoms in the cell.
func (d *cifData) sites(ops []symop) ([]string, []float64, error) {
	l, ok := d.loop("_atom_site_fract_x")
	if !ok {
		return nil, nil, fmt.Errorf("no _atom_site_fract_x loop: %w", ErrCIF)
	}
	var cols [3]int
	for i, tag := range []string{"_atom_site_fract_x", "_atom_site_fract_y", "_atom_site_fract_z"} {
		if cols[i] = l.column(tag); cols[i] < 0 {
			return nil, nil, fmt.Errorf("missing %s: %w", tag, ErrCIF)
		}
	}
	typecol := l.column("_atom_site_type_symbol")
	labelcol := l.column("_atom_site_label")
	if typecol < 0 && labelcol < 0 {
		return nil, nil, fmt.Errorf("atom sites have no symbol or label: %w", ErrCIF)
	}
	var symbols []string
	var positions [][3]float64
	for r := 0; r < l.rows(); r++ {
		var f0 [3]float64
		for i := 0; i < 3; i++ {
			v, err := cifNumber(l.at(r, cols[i]))
			if err != nil {
				return nil, nil, fmt.Errorf("atom site %d: %w", r+1, err)
			}
			f0[i] = v
		}
		sym := ""
		if typecol >= 0 {
			sym = siteSymbol(l.at(r, typecol))
		}
		if sym == "" && labelcol >= 0 {
			sym = siteSymbol(l.at(r, labelcol))
		}
		if sym == "" {
			return nil, nil, fmt.Errorf("can't tell the element of atom site %d: %w", r+1, ErrCIF)
		}
	OPS:
		for _, op := range ops {
			f := op.apply(f0)
			for i := range f {
				f[i] = wrap(f[i])
			}
			for k, p := range positions {
				if samePosition(p, f) {
					if symbols[k] != sym {
						return nil, nil, fmt.Errorf("%s and %s share a position: %w", symbols[k], sym, ErrCIF)
					}
					continue OPS
				}
			}
			symbols = append(symbols, sym)
			positions = append(positions, f)
		}
	}
	flat := make([]float64, 0, 3*len(positions))
	for _, p := range positions {
		flat = append(flat, p[0], p[1], p[2])
	}
	return symbols, flat, nil
}

//siteSymbol extracts the element from a type symbol or label such as "Na1+" or "O2".
func siteSymbol(s string) string {
	letters := 0
	for letters < len(s) && letters < 2 && (s[letters] >= 'A' && s[letters] <= 'Z' || s[letters] >= 'a' && s[letters] <= 'z') {
		letters++
	}
	for ; letters > 0; letters-- {
		sym := normalizeSymbol(s[:letters])
		if IsElement(sym) {
			return sym
		}
	}
	return ""
}
