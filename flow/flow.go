/*
 * flow.go, part of pyxtalstep.
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

// Package flow runs a chain of steps that share variables, a structure
// database and a reference list.
package flow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/rmera/pyxtalstep/artifact"
	"github.com/rmera/pyxtalstep/cite"
	"github.com/rmera/pyxtalstep/internal/ctxlog"
	"github.com/rmera/pyxtalstep/structdb"
	"github.com/zclconf/go-cty/cty"
)

// Node is a step of a flowchart. Run returns the next step, or nil at the end.
type Node interface {
	Title() string
	Run(ctx context.Context) (Node, error)
}

// Flowchart holds what the steps of a run share. Each step works in its own
// numbered directory under Root.
type Flowchart struct {
	RunID      string
	Root       string
	Variables  map[string]cty.Value
	DB         *structdb.Database
	References *cite.References
	Mirror     *artifact.S3Store // optional
	nsteps     int
}

// New returns a flowchart with an empty database and a new run ID.
func New(root string) *Flowchart {
	return &Flowchart{
		RunID:      uuid.NewString(),
		Root:       root,
		Variables:  map[string]cty.Value{},
		DB:         structdb.New(),
		References: cite.NewReferences(),
	}
}

// NextStep creates the directory for the next step and returns its number
// and path.
func (F *Flowchart) NextStep() (int, string, error) {
	F.nsteps++
	dir := filepath.Join(F.Root, strconv.Itoa(F.nsteps))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, "", fmt.Errorf("flowchart: step directory: %w", err)
	}
	return F.nsteps, dir, nil
}

// Store returns where step n, working in dir, saves its files: dir and, if
// the flowchart has one, the mirror.
func (F *Flowchart) Store(n int, dir string) artifact.Store {
	local := artifact.DirStore{Root: dir}
	if F.Mirror == nil {
		return local
	}
	return artifact.Multi{local, F.Mirror.WithPrefix(strconv.Itoa(n))}
}

// Execute runs the steps starting at start until one returns no successor.
// It returns the number of steps run.
func (F *Flowchart) Execute(ctx context.Context, start Node) (int, error) {
	log := ctxlog.FromContext(ctx).With("run_id", F.RunID)
	ctx = ctxlog.WithLogger(ctx, log)
	n := 0
	for node := start; node != nil; n++ {
		log.Info("Running step.", "step", node.Title())
		next, err := node.Run(ctx)
		if err != nil {
			return n, fmt.Errorf("flowchart: %s: %w", node.Title(), err)
		}
		node = next
	}
	return n, nil
}
