/*
 * handle.go, part of pyxtalstep.
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

package pyxtal

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmera/pyxtalstep/chem"
	"github.com/rmera/pyxtalstep/structdb"
)

// Executable is the name of the PyXtal driver script.
const Executable = "pyxtal_main.py"

// MoleculeFile is the input file holding the molecule to pack in molecule mode.
const MoleculeFile = "in1.xyz"

// Command is a PyXtal invocation: the arguments (program first), the input
// files to write in the working directory, and the patterns of the files to
// bring back.
type Command struct {
	Args        []string
	Files       map[string]string
	ReturnFiles []string
}

// Handle builds PyXtal command lines.
type Handle struct {
	command string
	wrkdir  string
}

// NewHandle returns a handle with its values set to the defaults.
func NewHandle() *Handle {
	h := new(Handle)
	h.SetDefaults()
	return h
}

// SetDefaults sets the command to the PyXtal script, expected to be in the PATH.
func (O *Handle) SetDefaults() {
	O.command = Executable
	O.wrkdir = ""
}

// SetCommand sets the path and name of the PyXtal executable.
func (O *Handle) SetCommand(name string) {
	O.command = name
}

// SetPath sets the command to the PyXtal script in the directory dir.
// An empty dir leaves the command unchanged.
func (O *Handle) SetPath(dir string) {
	if dir == "" {
		return
	}
	O.command = filepath.Join(dir, Executable)
}

// Command returns the path and name of the PyXtal executable.
func (O *Handle) Command() string {
	return O.command
}

// SetWorkDir sets the directory where PyXtal runs.
func (O *Handle) SetWorkDir(d string) {
	O.wrkdir = d
}

// WorkDir returns the directory where PyXtal runs.
func (O *Handle) WorkDir() string {
	return O.wrkdir
}

// BuildInput returns the command that runs the request. In molecule mode the
// current configuration is the molecule to pack, and it's written to
// MoleculeFile.
func (O *Handle) BuildInput(req *Request, current *structdb.Configuration) (*Command, error) {
	errid := "Handle/BuildInput"
	C := &Command{Args: []string{O.command}, Files: map[string]string{}}
	if req.BuildType == Molecules {
		C.Args = append(C.Args, "-m")
	}
	C.Args = append(C.Args, "-d")
	switch req.Dimensionality {
	case Molecular:
		C.Args = append(C.Args, "0")
	case Rod:
		C.Args = append(C.Args, "1", "-t", fmt.Sprintf("%.3f", req.Area))
	case Layer:
		C.Args = append(C.Args, "2", "-t", fmt.Sprintf("%.3f", req.Thickness))
	case Crystal:
		C.Args = append(C.Args, "3")
	default:
		return nil, fmt.Errorf("%s: %w: %d", errid, ErrDimensionality, int(req.Dimensionality))
	}
	C.ReturnFiles = []string{req.Dimensionality.ReturnGlob()}
	C.Args = append(C.Args, "-s", req.Symmetry, "-e")

	if req.BuildType == Molecules {
		text, err := moleculeXYZ(current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errid, err)
		}
		C.Files[MoleculeFile] = text
		C.Args = append(C.Args, "./"+MoleculeFile, "-n", strconv.Itoa(req.NMolecules))
	} else {
		f, err := chem.ParseFormula(req.Formula)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errid, err)
		}
		C.Args = append(C.Args, strings.Join(f.Symbols(), ","), "-n", strings.Join(f.Counts(), ","))
	}
	C.Args = append(C.Args, "-o", ".", "-a", strconv.Itoa(req.Attempts))
	return C, nil
}

// moleculeXYZ writes the configuration with a "system/configuration" title.
func moleculeXYZ(conf *structdb.Configuration) (string, error) {
	if conf == nil || conf.Len() == 0 {
		return "", fmt.Errorf("building from molecules needs a current structure")
	}
	mol, err := conf.Molecule()
	if err != nil {
		return "", err
	}
	title := conf.Name
	if s := conf.System(); s != nil {
		title = s.Name + "/" + conf.Name
	}
	var b strings.Builder
	if err := chem.XYZWrite(&b, mol.Coords[0], conf.Symbols, title); err != nil {
		return "", err
	}
	return b.String(), nil
}
