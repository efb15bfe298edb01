/*
 * version.go, part of pyxtalstep.
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

package cite

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Unknown is the version of a program that ran but didn't say which version it is.
const Unknown = "unknown"

// pyxtalMarker is in the banner line PyXtal prints, "-------(version 1.0.0 )----------".
const pyxtalMarker = "---(version"

// ParsePyXtalVersion returns the version in the PyXtal banner line of stdout.
func ParsePyXtalVersion(stdout string) (string, bool) {
	for _, line := range strings.Split(stdout, "\n") {
		if !strings.Contains(line, pyxtalMarker) {
			continue
		}
		f := strings.Fields(line)
		if len(f) < 2 {
			return "", false
		}
		return f[1], true
	}
	return "", false
}

// OBVersion is the version of the Open Babel executables. Version is Unknown
// if obabel ran but its output could not be read.
type OBVersion struct {
	Version string
	Month   string
	Year    string
}

// Known reports whether the version could be read.
func (O OBVersion) Known() bool {
	return O.Version != "" && O.Version != Unknown
}

// ParseOpenBabelVersion reads the output of "obabel --version", like
// "Open Babel 3.1.0 -- Oct 21 2020 -- 21:55:32". Only the first non-empty
// line is considered.
func ParseOpenBabelVersion(out string) OBVersion {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		f := strings.Fields(line)
		if len(f) == 9 && f[0] == "Open" {
			return OBVersion{Version: f[2], Month: f[4], Year: f[6]}
		}
		break
	}
	return OBVersion{Version: Unknown}
}

// VersionCache keeps the Open Babel version per executable so that obabel is
// run once per executable for the lifetime of the cache.
type VersionCache struct {
	cache    *lru.Cache[string, OBVersion]
	lookPath func(string) (string, error)
	run      func(ctx context.Context, exe string) (string, error)
}

// NewVersionCache returns a cache holding up to size executables.
func NewVersionCache(size int) (*VersionCache, error) {
	c, err := lru.New[string, OBVersion](size)
	if err != nil {
		return nil, err
	}
	return &VersionCache{cache: c, lookPath: exec.LookPath, run: runVersion}, nil
}

func runVersion(ctx context.Context, exe string) (string, error) {
	cmd := exec.CommandContext(ctx, exe, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	err := cmd.Run()
	return out.String(), err
}

// OpenBabel returns the version of the obabel found in the PATH. The second
// value is false if there is no obabel, in which case nothing is cached.
func (V *VersionCache) OpenBabel(ctx context.Context) (OBVersion, bool) {
	path, err := V.lookPath("obabel")
	if err != nil {
		return OBVersion{}, false
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if v, ok := V.cache.Get(path); ok {
		return v, true
	}
	v := OBVersion{Version: Unknown}
	if out, err := V.run(ctx, path); err == nil {
		v = ParseOpenBabelVersion(out)
	}
	V.cache.Add(path, v)
	return v, true
}
