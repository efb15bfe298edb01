/*
 * installer.go, part of pyxtalstep.
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

// Package installer finds the PyXtal executable and registers its location
// in the SEAMM INI file.
//
// The executable is looked for, in order, in the directory already recorded
// in the INI file, in the PATH, and in the bin directory of a Conda
// environment ("seamm-pyxtal" unless the INI file says otherwise).
package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/rmera/pyxtalstep/internal/config"
	"github.com/rmera/pyxtalstep/internal/ctxlog"
	"github.com/rmera/pyxtalstep/pyxtal"
)

// ErrNotFound is returned when PyXtal can't be found anywhere.
var ErrNotFound = errors.New("PyXtal executable not found")

// DefaultEnvironment is the Conda environment PyXtal is installed in by default.
const DefaultEnvironment = "seamm-pyxtal"

const (
	fromINI   = "seamm.ini"
	fromPath  = "PATH"
	fromConda = "conda"
)

// Status describes an executable that was found.
type Status struct {
	Dir        string
	Executable string
	Version    string
	Source     string
}

type Installer struct {
	IniFile     string
	Environment string
	CondaRoots  []string // directories holding Conda environments
	lookPath    func(string) (string, error)
}

// New returns an installer for the INI file given.
func New(iniFile string) (*Installer, error) {
	I := &Installer{IniFile: iniFile, Environment: DefaultEnvironment, lookPath: exec.LookPath}
	f, err := ini.LooseLoad(iniFile)
	if err != nil {
		return nil, fmt.Errorf("installer: %s: %w", iniFile, err)
	}
	if env := strings.TrimSpace(f.Section(config.Section).Key("conda-environment").String()); env != "" {
		I.Environment = env
	}
	I.CondaRoots = condaRoots()
	return I, nil
}

// condaRoots returns the usual places for Conda environments.
func condaRoots() []string {
	var roots []string
	if p := os.Getenv("CONDA_ENVS_PATH"); p != "" {
		roots = append(roots, filepath.SplitList(p)...)
	}
	if exe := os.Getenv("CONDA_EXE"); exe != "" {
		roots = append(roots, filepath.Join(filepath.Dir(filepath.Dir(exe)), "envs"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		for _, d := range []string{"miniconda3", "anaconda3", "miniforge3", "mambaforge"} {
			roots = append(roots, filepath.Join(home, d, "envs"))
		}
	}
	return roots
}

func executable(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir() && fi.Mode()&0o111 != 0
}

// Locate finds the PyXtal executable.
func (I *Installer) Locate(ctx context.Context) (*Status, error) {
	log := ctxlog.FromContext(ctx)
	dir, err := config.ReadPyXtalPath(I.IniFile)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		exe := filepath.Join(dir, pyxtal.Executable)
		if executable(exe) {
			return I.status(ctx, exe, fromINI), nil
		}
		log.Warn("The PyXtal path in the configuration has no executable.", "path", dir)
	}
	if exe, err := I.lookPath(pyxtal.Executable); err == nil {
		if abs, err := filepath.Abs(exe); err == nil {
			exe = abs
		}
		return I.status(ctx, exe, fromPath), nil
	}
	for _, root := range I.CondaRoots {
		exe := filepath.Join(root, I.Environment, "bin", pyxtal.Executable)
		if executable(exe) {
			return I.status(ctx, exe, fromConda), nil
		}
	}
	return nil, ErrNotFound
}

func (I *Installer) status(ctx context.Context, exe, source string) *Status {
	return &Status{
		Dir:        filepath.Dir(exe),
		Executable: exe,
		Version:    Version(ctx, exe),
		Source:     source,
	}
}

// Install locates PyXtal and records its directory in the INI file, unless
// it was found there.
func (I *Installer) Install(ctx context.Context) (*Status, error) {
	s, err := I.Locate(ctx)
	if err != nil {
		return nil, err
	}
	if s.Source != fromINI {
		if err := config.WritePyXtalPath(I.IniFile, s.Dir); err != nil {
			return s, err
		}
		ctxlog.FromContext(ctx).Info("Registered PyXtal.", "path", s.Dir, "ini", I.IniFile)
	}
	return s, nil
}

// Version runs the executable with --help and returns the version in its
// banner, or "unknown".
func Version(ctx context.Context, exe string) string {
	cmd := exec.CommandContext(ctx, exe, "--help")
	var out bytes.Buffer
	cmd.Stdout = &out
	// PyXtal exits with an error status after printing the help.
	_ = cmd.Run()
	return parseVersion(out.String())
}

func parseVersion(help string) string {
	for _, line := range strings.Split(help, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "-----(version") {
			continue
		}
		if f := strings.Fields(line); len(f) >= 2 {
			v, _, _ := strings.Cut(f[1], ")")
			return v
		}
	}
	return "unknown"
}
