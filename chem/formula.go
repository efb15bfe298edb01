/*
 * formula.go, part of pyxtalstep.
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
	"sort"
	"strconv"
	"strings"
)

// ErrFormula is wrapped by the errors returned when a chemical formula can't be parsed.
var ErrFormula = errors.New("malformed chemical formula")

//ElementCount is an element symbol and how many atoms of it a formula contains.
type ElementCount struct {
	Symbol string
	N      int
}

//Formula is a list of element counts, in the order the elements first
//appear in the text that was parsed. Each element appears only once.
type Formula []ElementCount

//ParseFormula parses formulas like "H2O", "NaCl", "Ca(OH)2" or "K4[Fe(CN)6]".
//Repeated elements are merged into the position of their first appearance,
//so "CH3COOH" gives C2, H4, O2.
func ParseFormula(s string) (Formula, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty formula: %w", ErrFormula)
	}
	p := &formulaParser{s: s}
	f, err := p.group(0)
	if err != nil {
		return nil, fmt.Errorf("%q: %s: %w", s, err.Error(), ErrFormula)
	}
	if len(f) == 0 {
		return nil, fmt.Errorf("%q: no elements: %w", s, ErrFormula)
	}
	return f, nil
}

type formulaParser struct {
	s   string
	pos int
}

func (p *formulaParser) group(closing byte) (Formula, error) {
	var f Formula
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == ' ' || c == '\t':
			p.pos++
		case c == '(' || c == '[':
			cl := byte(')')
			if c == '[' {
				cl = ']'
			}
			p.pos++
			sub, err := p.group(cl)
			if err != nil {
				return nil, err
			}
			n, err := p.count()
			if err != nil {
				return nil, err
			}
			for _, ec := range sub {
				f = f.add(ec.Symbol, ec.N*n)
			}
		case c == ')' || c == ']':
			if c != closing {
				return nil, fmt.Errorf("unexpected %q at position %d", c, p.pos)
			}
			p.pos++
			return f, nil
		case c >= 'A' && c <= 'Z':
			symbol := string(c)
			p.pos++
			if p.pos < len(p.s) && p.s[p.pos] >= 'a' && p.s[p.pos] <= 'z' {
				symbol += string(p.s[p.pos])
				p.pos++
			}
			if !IsElement(symbol) {
				return nil, fmt.Errorf("unknown element %q", symbol)
			}
			n, err := p.count()
			if err != nil {
				return nil, err
			}
			f = f.add(symbol, n)
		default:
			return nil, fmt.Errorf("unexpected %q at position %d", c, p.pos)
		}
	}
	if closing != 0 {
		return nil, fmt.Errorf("missing %q", closing)
	}
	return f, nil
}

//count reads an optional multiplier. No digits means 1.
func (p *formulaParser) count() (int, error) {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 1, nil
	}
	n, err := strconv.Atoi(p.s[start:p.pos])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("zero count at position %d", start)
	}
	return n, nil
}

func (F Formula) add(symbol string, n int) Formula {
	for i := range F {
		if F[i].Symbol == symbol {
			F[i].N += n
			return F
		}
	}
	return append(F, ElementCount{symbol, n})
}

//Symbols returns the element symbols in order.
func (F Formula) Symbols() []string {
	s := make([]string, len(F))
	for i, ec := range F {
		s[i] = ec.Symbol
	}
	return s
}

//Counts returns the number of atoms of each element, as strings, in order.
func (F Formula) Counts() []string {
	s := make([]string, len(F))
	for i, ec := range F {
		s[i] = strconv.Itoa(ec.N)
	}
	return s
}

//String returns the formula with the elements in parsing order, e.g. "H2O".
func (F Formula) String() string {
	var b strings.Builder
	for _, ec := range F {
		b.WriteString(ec.Symbol)
		if ec.N != 1 {
			b.WriteString(strconv.Itoa(ec.N))
		}
	}
	return b.String()
}

//HillFormula returns the formula of a set of atoms in Hill order: carbon first,
//hydrogen second and everything else alphabetically. Without carbon, all elements
//go alphabetically.
func HillFormula(symbols []string) string {
	counts := make(map[string]int)
	for _, s := range symbols {
		counts[s]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var f Formula
	if _, ok := counts["C"]; ok {
		f = append(f, ElementCount{"C", counts["C"]})
		if n, ok := counts["H"]; ok {
			f = append(f, ElementCount{"H", n})
		}
	}
	for _, k := range keys {
		if _, ok := counts["C"]; ok && (k == "C" || k == "H") {
			continue
		}
		f = append(f, ElementCount{k, counts[k]})
	}
	return f.String()
}
