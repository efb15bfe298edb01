/*
 * step_test.go, part of pyxtalstep.
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

package step

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/pyxtalstep/chem"
	"github.com/rmera/pyxtalstep/flow"
	"github.com/rmera/pyxtalstep/internal/ctxlog"
	"github.com/rmera/pyxtalstep/params"
	"github.com/rmera/pyxtalstep/pyxtal"
	"github.com/rmera/pyxtalstep/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const cif = `data_C2
_cell_length_a 3
_cell_length_b 3
_cell_length_c 3
_cell_angle_alpha 90
_cell_angle_beta 90
_cell_angle_gamma 90
loop_
 _atom_site_type_symbol
 _atom_site_fract_x
 _atom_site_fract_y
 _atom_site_fract_z
 C 0 0 0
 C 0.5 0.5 0.5
`

// fakePyXtal writes a script that records its arguments and writes one
// structure per attempt.
func fakePyXtal(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := `#!/bin/sh
echo "args: $@"
echo "-------(version 0.9.9 )-------"
n=1
attempts=1
while [ $# -gt 0 ]; do
  case "$1" in
    -a) attempts="$2"; shift ;;
    -d) dim="$2"; shift ;;
  esac
  shift
done
while [ $n -le $attempts ]; do
  if [ "$dim" = "0" ]; then
    cat in1.xyz > "$n.xyz"
  else
    cat > "$n.cif" <<'CIF'
` + cif + `CIF
  fi
  n=$((n+1))
done
`
	exe := filepath.Join(dir, pyxtal.Executable)
	require.NoError(t, os.WriteFile(exe, []byte(body), 0o755))
	return dir
}

func newStep(t *testing.T, fc *flow.Flowchart, values map[string]string) *Step {
	t.Helper()
	set := params.NewSet(params.Standard())
	for k, v := range values {
		require.NoError(t, set.SetText(k, v))
	}
	s, err := New(fc, set)
	require.NoError(t, err)
	s.Handle.SetPath(fakePyXtal(t))
	return s
}

func TestRunCrystals(t *testing.T) {
	root := t.TempDir()
	fc := flow.New(root)
	fc.Variables["n"] = cty.NumberIntVal(3)
	s := newStep(t, fc, map[string]string{
		"formula":                       "C2",
		"symmetry":                      "229",
		"attempts":                      "$n",
		"subsequent structure handling": params.HandlingNewConfiguration,
	})
	next, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, next)

	require.Len(t, fc.DB.Systems(), 1)
	sys := fc.DB.System()
	assert.Equal(t, "C2", sys.Name)
	require.Len(t, sys.Configurations, 3)
	assert.Equal(t, "3", sys.Configuration().Name)

	dir := filepath.Join(root, "1")
	stdout, err := os.ReadFile(filepath.Join(dir, "stdout.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(stdout), "args: -d 3 -s 229 -e C -n 2 -o . -a 3\n"))

	out, err := os.ReadFile(filepath.Join(dir, "step.out"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "Step 1: PyXtal\n    Create a 3-D crystal"))
	assert.Contains(t, string(out), "Created 3 structures.")

	for _, a := range []string{"pyxtal_cpc", "pyxtal-exe", "openbabel_jcinf"} {
		_, ok := fc.References.Get(a)
		assert.True(t, ok, a)
	}
}

func TestRunMolecules(t *testing.T) {
	root := t.TempDir()
	fc := flow.New(root)
	mol, err := chem.XYZString("3\nwater\nO 0 0 0.1173\nH 0 0.7572 -0.4692\nH 0 -0.7572 -0.4692")
	require.NoError(t, err)
	sys := fc.DB.CreateSystem("water")
	require.NoError(t, sys.CreateConfiguration("gas").FromMolecule(mol, 0))

	s := newStep(t, fc, map[string]string{
		"build type":         "molecules",
		"dimensionality":     "0-D molecular",
		"symmetry":           "C2v",
		"attempts":           "2",
		"system name":        "from file",
		"configuration name": "cluster",
	})
	_, err = s.Run(context.Background())
	require.NoError(t, err)
	systems := fc.DB.Systems()
	require.Len(t, systems, 3, "the original and one new system per structure")
	assert.Equal(t, "water/gas", systems[1].Name)
	assert.Equal(t, "cluster", systems[2].Configuration().Name)
	assert.Equal(t, 3, systems[2].Configuration().Len())

	in, err := os.ReadFile(filepath.Join(fc.Root, "1", pyxtal.MoleculeFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(in), "3\nwater/gas\n"), "the input molecule is kept in the step directory")
}

func TestRunLaunchFailureEndsFlow(t *testing.T) {
	fc := flow.New(t.TempDir())
	s := newStep(t, fc, map[string]string{"formula": "NaCl", "symmetry": "225"})
	s.Handle.SetCommand(filepath.Join(t.TempDir(), "missing"))
	s.Next = s
	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.New("info", "text", &logs))
	next, err := s.Run(ctx)
	assert.NoError(t, err)
	assert.Nil(t, next)
	assert.Empty(t, fc.DB.Systems(), "no structures are created when PyXtal can't be started")
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "There was an error running PyXtal.")
}

func TestRunAgainInSameRoot(t *testing.T) {
	root := t.TempDir()
	first := flow.New(root)
	_, err := newStep(t, first, map[string]string{"formula": "C2", "symmetry": "229", "attempts": "3"}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, first.DB.Systems(), 3)

	second := flow.New(root)
	_, err = newStep(t, second, map[string]string{"formula": "C2", "symmetry": "229", "attempts": "1"}).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, second.DB.Systems(), 1, "structures left by the earlier run are not read again")
	out, err := os.ReadFile(filepath.Join(root, "1", "step.out"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "Created 1 structures.")
}

type failingRunner struct{}

func (failingRunner) Run(context.Context, runner.Spec) (*runner.Result, error) {
	return nil, runner.ErrLaunch
}

func TestRunErrors(t *testing.T) {
	fc := flow.New(t.TempDir())
	s := newStep(t, fc, map[string]string{"formula": "Qq"})
	s.Runner = failingRunner{}
	_, err := s.Run(context.Background())
	assert.True(t, errors.Is(err, chem.ErrFormula))
	assert.Empty(t, fc.DB.Systems(), "nothing is created when the command can't be built")

	s = newStep(t, fc, map[string]string{"attempts": "$missing"})
	_, err = s.Run(context.Background())
	assert.Error(t, err)
}

func TestDescription(t *testing.T) {
	set := params.NewSet(params.Standard())
	require.NoError(t, set.SetText("formula", "SiO2"))
	require.NoError(t, set.SetText("symmetry", "P1"))
	text, err := Description(set.Texts())
	require.NoError(t, err)
	assert.Equal(t, "Create a 3-D crystal with a chemical formula SiO2 and P1 symmetry. "+
		"The structure will be put in a new system. The name of the system will be taken "+
		"from the structure file, and that of the configuration the number of the structure.", text)

	require.NoError(t, set.SetText("attempts", "$n"))
	require.NoError(t, set.SetText("dimensionality", "$dim"))
	text, err = Description(set.Texts())
	require.NoError(t, err)
	assert.Contains(t, text, "dimensionality is given by $dim")
	assert.Contains(t, text, "The variable $n will determine")

	require.NoError(t, set.SetText("dimensionality", "fractal"))
	_, err = Description(set.Texts())
	assert.True(t, errors.Is(err, pyxtal.ErrDimensionality))
}

func TestWrap(t *testing.T) {
	w := wrap("aaa bbb ccc", "  ", 9)
	assert.Equal(t, "  aaa bbb\n  ccc", w)
}

func TestExecuteWithFlowchart(t *testing.T) {
	fc := flow.New(t.TempDir())
	first := newStep(t, fc, map[string]string{"formula": "C2", "symmetry": "1"})
	second := newStep(t, fc, map[string]string{
		"formula": "C2", "symmetry": "1", "structure handling": params.HandlingOverwrite,
	})
	first.Next = second
	n, err := fc.Execute(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, fc.DB.Systems(), 1, "the second step overwrote the first structure")
	assert.Equal(t, 1, fc.DB.NConfigurations())
}
