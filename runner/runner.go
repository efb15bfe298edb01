/*
 * runner.go, part of pyxtalstep.
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

// Package runner runs external programs in a working directory and collects
// their output and the files they write.
package runner

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rmera/pyxtalstep/internal/ctxlog"
)

// ErrLaunch is wrapped by the errors returned when a program can't be started.
var ErrLaunch = errors.New("could not launch program")

// Spec describes one run.
type Spec struct {
	Args        []string          // program first
	Files       map[string]string // written to Dir before the run
	ReturnFiles []string          // glob patterns, matched in the run directory and its subdirectories
	Dir         string            // the run directory is made inside it; "" is the system temporary directory
	Env         []string // added to the current environment
}

// File is a returned file. Data is nil if the file could not be read, in
// which case Exception says why.
type File struct {
	Data      *string
	Exception string
}

// Result is the outcome of a run that started. Files lists the returned
// files in order; files in a subdirectory are named "@subdir+filename".
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Files    []string
	Data     map[string]File
}

// Runner runs programs.
type Runner interface {
	Run(ctx context.Context, spec Spec) (*Result, error)
}

// Local runs programs on this machine.
type Local struct{}

// Run makes a new run directory inside spec.Dir, writes the input files there,
// runs the program and collects its output. Only files written by this run
// are returned, and the run directory is removed before Run returns. A
// program that exits with a non-zero status still gives a result.
func (Local) Run(ctx context.Context, spec Spec) (*Result, error) {
	errid := "runner/Local.Run"
	log := ctxlog.FromContext(ctx)
	if len(spec.Args) == 0 {
		return nil, fmt.Errorf("%s: %w: no program given", errid, ErrLaunch)
	}
	if spec.Dir != "" {
		if err := os.MkdirAll(spec.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", errid, ErrLaunch, err)
		}
	}
	dir, err := os.MkdirTemp(spec.Dir, "run-")
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errid, ErrLaunch, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("Could not remove the run directory.", "dir", dir, "error", err)
		}
	}()
	if err := WriteFiles(dir, spec.Files); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errid, ErrLaunch, err)
	}

	cmd := exec.CommandContext(ctx, spec.Args[0], spec.Args[1:]...)
	cmd.Dir = dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Debug("Running program.", "args", spec.Args, "dir", dir)
	err = cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		log.Warn("Program exited with an error.", "program", spec.Args[0], "exit_code", res.ExitCode)
	case err != nil:
		return nil, fmt.Errorf("%s: %w: %w", errid, ErrLaunch, err)
	}

	res.Files, err = Collect(dir, spec.ReturnFiles, spec.Files)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	res.Data = make(map[string]File, len(res.Files))
	for _, name := range res.Files {
		data, err := os.ReadFile(filepath.Join(dir, Path(name)))
		if err != nil {
			res.Data[name] = File{Exception: err.Error()}
			continue
		}
		s := string(data)
		res.Data[name] = File{Data: &s}
	}
	return res, nil
}

// WriteFiles writes the given contents into dir.
func WriteFiles(dir string, files map[string]string) error {
	for name, text := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Collect returns the names of the regular files in dir, and in its immediate
// subdirectories, that match any of the patterns. Files in exclude are never
// returned. Names in subdirectories use the "@subdir+filename" encoding. The
// files of dir come first, each group in natural order ("2.cif" before
// "10.cif").
func Collect(dir string, patterns []string, exclude map[string]string) ([]string, error) {
	var top, sub []string
	seen := map[string]bool{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			subentries, err := os.ReadDir(filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			for _, se := range subentries {
				if se.Type().IsRegular() && matches(patterns, se.Name()) {
					name := "@" + e.Name() + "+" + se.Name()
					if !seen[name] {
						seen[name] = true
						sub = append(sub, name)
					}
				}
			}
			continue
		}
		if _, input := exclude[e.Name()]; input {
			continue
		}
		if e.Type().IsRegular() && matches(patterns, e.Name()) && !seen[e.Name()] {
			seen[e.Name()] = true
			top = append(top, e.Name())
		}
	}
	slices.SortFunc(top, natural)
	slices.SortFunc(sub, natural)
	return append(top, sub...), nil
}

// natural compares a and b comparing runs of digits by their value.
func natural(a, b string) int {
	for a != "" && b != "" {
		da, db := digits(a), digits(b)
		if da > 0 && db > 0 {
			na := strings.TrimLeft(a[:da], "0")
			nb := strings.TrimLeft(b[:db], "0")
			if len(na) != len(nb) {
				return cmp.Compare(len(na), len(nb))
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			a, b = a[da:], b[db:]
			continue
		}
		if a[0] != b[0] {
			return cmp.Compare(a[0], b[0])
		}
		a, b = a[1:], b[1:]
	}
	return cmp.Compare(len(a), len(b))
}

func digits(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

func matches(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Path turns a returned file name into a path relative to the run directory.
func Path(name string) string {
	if len(name) > 1 && name[0] == '@' {
		for i := 1; i < len(name); i++ {
			if name[i] == '+' {
				return filepath.Join(name[1:i], name[i+1:])
			}
		}
	}
	return name
}
