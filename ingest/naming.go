/*
 * naming.go, part of pyxtalstep.
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

package ingest

import "strings"

// NamingKind says how a system or configuration gets its name.
type NamingKind int

const (
	Keep NamingKind = iota
	FromFile
	Canonical
	Plain
	Sequential
	Literal
)

var namingNames = [...]string{"keep", "from file", "canonical SMILES", "SMILES", "sequential", "literal"}

func (N NamingKind) String() string {
	if N < Keep || N > Literal {
		return "unknown"
	}
	return namingNames[N]
}

// Naming is a parsed naming rule. Text is the name for Literal.
type Naming struct {
	Kind NamingKind
	Text string
}

// ParseNaming reads a naming parameter. The keywords are case insensitive
// and may appear anywhere in s, except "sequential", which must be the whole
// value and is only recognized when sequential is true. Anything else is a
// literal name.
func ParseNaming(s string, sequential bool) Naming {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case lower == "" || lower == "keep current name":
		return Naming{Kind: Keep}
	case strings.Contains(lower, "from file"):
		return Naming{Kind: FromFile}
	case strings.Contains(lower, "canonical smiles"):
		return Naming{Kind: Canonical}
	case strings.Contains(lower, "smiles"):
		return Naming{Kind: Plain}
	case sequential && lower == "sequential":
		return Naming{Kind: Sequential}
	}
	return Naming{Kind: Literal, Text: s}
}
