/*
 * handling.go, part of pyxtalstep.
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

package structdb

import (
	"fmt"
	"strings"
)

// Handling tells where a new structure goes.
type Handling int

const (
	// Overwrite replaces the current configuration.
	Overwrite Handling = iota
	// NewConfiguration adds a configuration to the current system.
	NewConfiguration
	// NewSystem creates a system with a single configuration.
	NewSystem
)

var handlingNames = [...]string{
	Overwrite:        "Overwrite the current configuration",
	NewConfiguration: "Create a new configuration",
	NewSystem:        "Create a new system and configuration",
}

func (h Handling) String() string {
	if h < 0 || int(h) >= len(handlingNames) {
		return fmt.Sprintf("Handling(%d)", int(h))
	}
	return handlingNames[h]
}

// HandlingNames returns the names of the choices, in order.
func HandlingNames() []string {
	return append([]string(nil), handlingNames[:]...)
}

// ParseHandling maps the text of a structure handling parameter to a Handling.
// The match is case insensitive.
func ParseHandling(s string) (Handling, error) {
	s = strings.TrimSpace(s)
	for i, name := range handlingNames {
		if strings.EqualFold(s, name) {
			return Handling(i), nil
		}
	}
	return 0, fmt.Errorf("unknown structure handling %q", s)
}
