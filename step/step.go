/*
 * step.go, part of pyxtalstep.
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

// Package step is the PyXtal step of a flowchart: it runs PyXtal with the
// step's parameters and adds the structures it generates to the database.
package step

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rmera/pyxtalstep/cite"
	"github.com/rmera/pyxtalstep/flow"
	"github.com/rmera/pyxtalstep/ingest"
	"github.com/rmera/pyxtalstep/internal/ctxlog"
	"github.com/rmera/pyxtalstep/params"
	"github.com/rmera/pyxtalstep/pyxtal"
	"github.com/rmera/pyxtalstep/runner"
	"github.com/rmera/pyxtalstep/structdb"
)

const indent = "    "

// Step runs PyXtal. Ident and Versions are optional: without them structures
// are named by formula and the Open Babel version is not looked for.
type Step struct {
	Flowchart *flow.Flowchart
	Params    *params.Set
	Handle    *pyxtal.Handle
	Runner    runner.Runner
	Ident     ingest.Identifier
	Versions  *cite.VersionCache
	Bib       cite.Bibliography
	Next      flow.Node
}

// New returns a step of fc with the given parameters, running PyXtal locally.
func New(fc *flow.Flowchart, set *params.Set) (*Step, error) {
	bib, err := cite.LoadBibliography()
	if err != nil {
		return nil, err
	}
	return &Step{
		Flowchart: fc,
		Params:    set,
		Handle:    pyxtal.NewHandle(),
		Runner:    runner.Local{},
		Bib:       bib,
	}, nil
}

func (S *Step) Title() string {
	return "PyXtal"
}

// Run runs PyXtal once. If PyXtal can't be started the error is logged and
// the flowchart ends there.
func (S *Step) Run(ctx context.Context) (flow.Node, error) {
	errid := "Step/Run"
	fc := S.Flowchart
	n, dir, err := fc.NextStep()
	if err != nil {
		return nil, err
	}
	log := ctxlog.FromContext(ctx).With("step", n)
	ctx = ctxlog.WithLogger(ctx, log)
	store := fc.Store(n, dir)

	var out bytes.Buffer
	defer func() {
		if err := store.Put(ctx, "step.out", out.Bytes()); err != nil {
			log.Error("Could not save step.out.", "error", err)
		}
	}()

	P, err := params.Resolve(S.Params, fc.Variables)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	values := make(map[string]string)
	for _, name := range P.Names() {
		values[name] = P.Text(name)
	}
	text, err := Description(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	fmt.Fprintf(&out, "Step %d: %s\n%s\n", n, S.Title(), wrap(text, indent, 80))

	req, err := pyxtal.NewRequest(P)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	handling, err := structdb.ParseHandling(P.Str("structure handling"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	subsequent, err := structdb.ParseHandling(P.Str("subsequent structure handling"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}

	// The molecule to pack is the current configuration before the target is chosen.
	var current *structdb.Configuration
	if s := fc.DB.System(); s != nil {
		current = s.Configuration()
	}
	S.Handle.SetWorkDir(dir)
	cmd, err := S.Handle.BuildInput(req, current)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	for name, text := range cmd.Files {
		if err := store.Put(ctx, name, []byte(text)); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", errid, name, err)
		}
	}

	res, err := S.Runner.Run(ctx, runner.Spec{
		Args:        cmd.Args,
		Files:       cmd.Files,
		ReturnFiles: cmd.ReturnFiles,
		Dir:         S.Handle.WorkDir(),
	})
	if err != nil || res == nil {
		log.Error("There was an error running PyXtal.", "error", err)
		return nil, nil
	}
	log.Debug("PyXtal finished.", "stdout", res.Stdout, "files", res.Files)
	if res.Stderr != "" {
		log.Warn("PyXtal wrote to stderr.", "stderr", res.Stderr)
	}

	sys, conf := fc.DB.SystemConfiguration(handling)
	in := &ingest.Ingester{DB: fc.DB, Store: store, Ident: S.Ident}
	if err := in.Persist(ctx, res); err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	count, err := in.Ingest(ctx, res, ingest.Options{
		Dimensionality:    req.Dimensionality,
		Subsequent:        subsequent,
		SystemName:        ingest.ParseNaming(P.Str("system name"), false),
		ConfigurationName: ingest.ParseNaming(P.Str("configuration name"), true),
	}, sys, conf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}

	rec := cite.Recorder{Refs: fc.References, Bib: S.Bib, Versions: S.Versions}
	rec.Record(ctx, res.Stdout)

	fmt.Fprintf(&out, "\n%sCreated %d structures.\n\n", indent, count)
	log.Info("PyXtal step finished.", "structures", count)
	return S.Next, nil
}
