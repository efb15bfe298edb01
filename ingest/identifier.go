/*
 * identifier.go, part of pyxtalstep.
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

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rmera/pyxtalstep/chem"
	"github.com/rmera/pyxtalstep/internal/ctxlog"
	"github.com/rmera/pyxtalstep/structdb"
)

// Identifier gives line-notation names, SMILES or canonical SMILES, to structures.
type Identifier interface {
	SMILES(ctx context.Context, c *structdb.Configuration, canonical bool) (string, error)
}

// OpenBabel gets SMILES from the obabel program. When obabel is not
// available, or fails, the Hill formula of the structure is used instead.
type OpenBabel struct {
	command string
	cache   *lru.Cache[string, string]
}

// NewOpenBabel returns an identifier running command (the obabel in the
// PATH if empty) that remembers up to size answers.
func NewOpenBabel(command string, size int) (*OpenBabel, error) {
	if command == "" {
		command = "obabel"
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &OpenBabel{command: command, cache: c}, nil
}

func (O *OpenBabel) SMILES(ctx context.Context, c *structdb.Configuration, canonical bool) (string, error) {
	mol, err := c.Molecule()
	if err != nil {
		return "", err
	}
	var xyz strings.Builder
	if err := chem.XYZWrite(&xyz, mol.Coords[0], c.Symbols, ""); err != nil {
		return "", err
	}
	format := "-osmi"
	if canonical {
		format = "-ocan"
	}
	key := format + "\n" + xyz.String()
	if s, ok := O.cache.Get(key); ok {
		return s, nil
	}
	s, err := O.run(ctx, format, xyz.String())
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Using the formula as name.", "reason", err)
		return c.Formula(), nil
	}
	O.cache.Add(key, s)
	return s, nil
}

func (O *OpenBabel) run(ctx context.Context, format, xyz string) (string, error) {
	cmd := exec.CommandContext(ctx, O.command, "-ixyz", format)
	cmd.Stdin = strings.NewReader(xyz + "\n")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", O.command, err, strings.TrimSpace(stderr.String()))
	}
	f := strings.Fields(out.String())
	if len(f) == 0 {
		return "", fmt.Errorf("%s: no SMILES in output", O.command)
	}
	return f[0], nil
}
