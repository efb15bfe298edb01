/*
 * description.go, part of pyxtalstep.
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

package step

import (
	"fmt"
	"strings"

	"github.com/rmera/pyxtalstep/ingest"
	"github.com/rmera/pyxtalstep/params"
	"github.com/rmera/pyxtalstep/pyxtal"
)

func isExpr(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "$")
}

// Description says in words what the step will do with the parameter
// values in P, which may still hold expressions.
func Description(P map[string]string) (string, error) {
	var b strings.Builder
	dim := P["dimensionality"]
	switch {
	case strings.Contains(dim, "0-D"):
		b.WriteString("Create a molecule ")
	case strings.Contains(dim, "1-D"):
		b.WriteString("Create a 1-D rod ")
	case strings.Contains(dim, "2-D"):
		b.WriteString("Create a 2-D slab ")
	case strings.Contains(dim, "3-D"):
		b.WriteString("Create a 3-D crystal ")
	case isExpr(dim):
		fmt.Fprintf(&b, "Create a system whose dimensionality is given by %s ", dim)
	default:
		return "", fmt.Errorf("%w: %q", pyxtal.ErrDimensionality, dim)
	}
	if P["build type"] == "atoms" {
		fmt.Fprintf(&b, "with a chemical formula %s ", P["formula"])
	} else {
		fmt.Fprintf(&b, "using %s copies of the current molecule ", P["n_molecules"])
	}
	fmt.Fprintf(&b, "and %s symmetry.", P["symmetry"])

	attempts := strings.TrimSpace(P["attempts"])
	switch {
	case isExpr(attempts):
		fmt.Fprintf(&b, " The variable %s will determine how many attempts are made to generate structures. ", attempts)
		b.WriteString(multipleHandling(P))
	case attempts == "1":
		b.WriteString(" ")
		b.WriteString(singleHandling(P))
	default:
		fmt.Fprintf(&b, " PyXtal will make %s attempts to generate structures, resulting in up to that many structures. ", attempts)
		b.WriteString(multipleHandling(P))
	}
	return b.String(), nil
}

func placement(handling string) string {
	switch handling {
	case params.HandlingOverwrite:
		return "overwrite the current configuration"
	case params.HandlingNewConfiguration:
		return "be added as a new configuration of the current system"
	}
	return "be put in a new system"
}

func nameText(s string, sequential bool) string {
	n := ingest.ParseNaming(s, sequential)
	switch n.Kind {
	case ingest.Keep:
		return "left as is"
	case ingest.FromFile:
		return "taken from the structure file"
	case ingest.Canonical:
		return "the canonical SMILES of the structure"
	case ingest.Plain:
		return "the SMILES of the structure"
	case ingest.Sequential:
		return "the number of the structure"
	}
	return fmt.Sprintf("'%s'", n.Text)
}

func naming(P map[string]string) string {
	return fmt.Sprintf("The name of the system will be %s, and that of the configuration %s.",
		nameText(P["system name"], false), nameText(P["configuration name"], true))
}

func singleHandling(P map[string]string) string {
	return fmt.Sprintf("The structure will %s. %s", placement(P["structure handling"]), naming(P))
}

func multipleHandling(P map[string]string) string {
	later := "be put in new systems"
	if P["subsequent structure handling"] == params.HandlingNewConfiguration {
		later = "be added as new configurations of the same system"
	}
	return fmt.Sprintf("The first structure will %s, and any others will %s. %s",
		placement(P["structure handling"]), later, naming(P))
}

// wrap breaks text into lines of at most width columns, each indented.
func wrap(text, indent string, width int) string {
	var b strings.Builder
	line := indent
	for _, w := range strings.Fields(text) {
		if len(line) > len(indent) && len(line)+1+len(w) > width {
			b.WriteString(line)
			b.WriteByte('\n')
			line = indent
		}
		if len(line) > len(indent) {
			line += " "
		}
		line += w
	}
	b.WriteString(line)
	return b.String()
}
