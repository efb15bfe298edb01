/*
 * runner_test.go, part of pyxtalstep.
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

package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script writes an executable shell script into dir and returns its path.
func script(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fake.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestLocalRun(t *testing.T) {
	bin := t.TempDir()
	work := t.TempDir()
	exe := script(t, bin, `cat in1.xyz > /dev/null || exit 3
echo "generated"
echo "a warning" >&2
mkdir -p sub
printf 'data_one' > one.cif
printf 'data_two' > sub/two.cif
printf 'ignored' > notes.txt
`)
	res, err := Local{}.Run(context.Background(), Spec{
		Args:        []string{exe},
		Files:       map[string]string{"in1.xyz": "1\nx\nH 0 0 0"},
		ReturnFiles: []string{"*.cif", "*.xyz"},
		Dir:         work,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "generated\n", res.Stdout)
	assert.Equal(t, "a warning\n", res.Stderr)
	assert.Equal(t, []string{"one.cif", "@sub+two.cif"}, res.Files, "input files are not returned")
	require.NotNil(t, res.Data["@sub+two.cif"].Data)
	assert.Equal(t, "data_two", *res.Data["@sub+two.cif"].Data)
	assert.Equal(t, "data_one", *res.Data["one.cif"].Data)
}

func TestNonZeroExitIsAResult(t *testing.T) {
	exe := script(t, t.TempDir(), "echo partial\nexit 2\n")
	res, err := Local{}.Run(context.Background(), Spec{Args: []string{exe}, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "partial\n", res.Stdout)
	assert.Empty(t, res.Files)
}

func TestLaunchFailure(t *testing.T) {
	res, err := Local{}.Run(context.Background(), Spec{
		Args: []string{filepath.Join(t.TempDir(), "does-not-exist")},
		Dir:  t.TempDir(),
	})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrLaunch))

	_, err = Local{}.Run(context.Background(), Spec{})
	assert.True(t, errors.Is(err, ErrLaunch))
}

func TestEnv(t *testing.T) {
	exe := script(t, t.TempDir(), `printf "%s" "$PYXTAL_TEST_VALUE"`)
	res, err := Local{}.Run(context.Background(), Spec{
		Args: []string{exe},
		Dir:  t.TempDir(),
		Env:  []string{"PYXTAL_TEST_VALUE=42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", res.Stdout)
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("sub", "a.cif"), Path("@sub+a.cif"))
	assert.Equal(t, "a.cif", Path("a.cif"))
	assert.Equal(t, "@", Path("@"))
}

func TestRunsDoNotSeeEarlierFiles(t *testing.T) {
	work := t.TempDir()
	exe := script(t, t.TempDir(), `i=1
while [ $i -le $1 ]; do
  printf 'data_%s' $i > $i.cif
  i=$((i+1))
done
`)
	spec := Spec{Args: []string{exe, "3"}, ReturnFiles: []string{"*.cif"}, Dir: work}
	res, err := Local{}.Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.cif", "2.cif", "3.cif"}, res.Files)

	spec.Args = []string{exe, "1"}
	res, err = Local{}.Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.cif"}, res.Files)

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries, "run directories are removed")
}

func TestCollectNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"10.cif", "2.cif", "1.cif", "b.cif", "a2.cif", "a10.cif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	for _, name := range []string{"11.cif", "9.cif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", name), nil, 0o644))
	}
	files, err := Collect(dir, []string{"*.cif"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1.cif", "2.cif", "10.cif", "a2.cif", "a10.cif", "b.cif", "@sub+9.cif", "@sub+11.cif",
	}, files)
}

func TestNatural(t *testing.T) {
	assert.Negative(t, natural("2.cif", "10.cif"))
	assert.Positive(t, natural("10.cif", "9.cif"))
	assert.Zero(t, natural("007.cif", "7.cif"))
	assert.Negative(t, natural("a", "ab"))
}
