/*
 * ingest.go, part of pyxtalstep.
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

// Package ingest saves the output of a PyXtal run and puts the structures it
// generated in the structure database.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmera/pyxtalstep/artifact"
	"github.com/rmera/pyxtalstep/chem"
	"github.com/rmera/pyxtalstep/internal/ctxlog"
	"github.com/rmera/pyxtalstep/pyxtal"
	"github.com/rmera/pyxtalstep/runner"
	"github.com/rmera/pyxtalstep/structdb"
)

// ErrStructure is wrapped by the errors returned for returned files that
// can't be read as structures.
var ErrStructure = errors.New("error reading structure")

// Options say which files to take and how to name and place the structures.
type Options struct {
	Dimensionality    pyxtal.Dimensionality
	Subsequent        structdb.Handling
	SystemName        Naming
	ConfigurationName Naming
}

// Ingester moves the results of a run into the database.
type Ingester struct {
	DB    *structdb.Database
	Store artifact.Store
	Ident Identifier
}

// Persist saves the output of the run: stdout.txt, stderr.txt when there is
// anything in stderr, and every returned file. Files in subdirectories keep
// their subdirectory. A file that could not be read is saved with the reason
// instead of its content. Returned files that can't be saved are logged and
// skipped.
func (I *Ingester) Persist(ctx context.Context, res *runner.Result) error {
	errid := "Ingester/Persist"
	if err := I.Store.Put(ctx, "stdout.txt", []byte(res.Stdout)); err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	if res.Stderr != "" {
		if err := I.Store.Put(ctx, "stderr.txt", []byte(res.Stderr)); err != nil {
			return fmt.Errorf("%s: %w", errid, err)
		}
	}
	log := ctxlog.FromContext(ctx)
	for _, name := range res.Files {
		f := res.Data[name]
		data := f.Exception
		if f.Data != nil {
			data = *f.Data
		}
		if err := I.Store.Put(ctx, filepath.ToSlash(runner.Path(name)), []byte(data)); err != nil {
			log.Error("Could not save returned file.", "file", name, "error", err)
		}
	}
	return nil
}

// accepts reports whether name is a structure file for the dimensionality.
func accepts(d pyxtal.Dimensionality, name string) bool {
	if d == pyxtal.Molecular {
		return strings.HasSuffix(name, ".xyz")
	}
	return strings.HasSuffix(name, ".cif")
}

// Ingest reads the structures in the returned files, in order. The first goes
// into sys and conf; each later one into a new configuration or a new system,
// as opts say. It returns the number of structures added.
func (I *Ingester) Ingest(ctx context.Context, res *runner.Result, opts Options, sys *structdb.System, conf *structdb.Configuration) (int, error) {
	errid := "Ingester/Ingest"
	log := ctxlog.FromContext(ctx)
	n := 0
	for _, name := range res.Files {
		if !accepts(opts.Dimensionality, name) {
			log.Debug("Skipping returned file.", "file", name)
			continue
		}
		f := res.Data[name]
		if f.Data == nil {
			log.Warn("Returned file could not be read.", "file", name, "error", f.Exception)
			continue
		}
		mol, err := readStructure(opts.Dimensionality, name, *f.Data)
		if err != nil {
			return n, fmt.Errorf("%s: %w", errid, err)
		}
		n++
		if n > 1 {
			if opts.Subsequent == structdb.NewConfiguration {
				conf = sys.CreateConfiguration("")
			} else {
				sys = I.DB.CreateSystem("")
				conf = sys.CreateConfiguration("")
			}
		}
		if opts.Dimensionality == pyxtal.Molecular {
			err = conf.FromMolecule(mol, 0)
		} else {
			err = conf.FromCrystal(mol)
		}
		if err != nil {
			return n, fmt.Errorf("%s: %s: %w", errid, name, err)
		}
		newName, err := I.name(ctx, opts.SystemName, mol, conf, n)
		if err != nil {
			return n, fmt.Errorf("%s: system name: %w", errid, err)
		}
		if newName != nil {
			sys.Name = *newName
		}
		newName, err = I.name(ctx, opts.ConfigurationName, mol, conf, n)
		if err != nil {
			return n, fmt.Errorf("%s: configuration name: %w", errid, err)
		}
		if newName != nil {
			conf.Name = *newName
		}
		log.Debug("Added structure.", "file", name, "system", sys.Name, "configuration", conf.Name)
	}
	return n, nil
}

func readStructure(d pyxtal.Dimensionality, name, data string) (*chem.Molecule, error) {
	var mol *chem.Molecule
	var err error
	if d == pyxtal.Molecular {
		mol, err = chem.XYZString(data)
	} else {
		mol, err = chem.CIFString(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrStructure, name, err)
	}
	return mol, nil
}

// name returns the new name, or nil to keep the current one.
func (I *Ingester) name(ctx context.Context, n Naming, mol *chem.Molecule, conf *structdb.Configuration, seq int) (*string, error) {
	var s string
	switch n.Kind {
	case Keep:
		return nil, nil
	case FromFile:
		s = mol.Title()
	case Canonical, Plain:
		if I.Ident == nil {
			s = conf.Formula()
			break
		}
		var err error
		if s, err = I.Ident.SMILES(ctx, conf, n.Kind == Canonical); err != nil {
			return nil, err
		}
	case Sequential:
		s = strconv.Itoa(seq)
	default:
		s = n.Text
	}
	return &s, nil
}
