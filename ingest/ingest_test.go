/*
 * ingest_test.go, part of pyxtalstep.
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
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/pyxtalstep/artifact"
	"github.com/rmera/pyxtalstep/pyxtal"
	"github.com/rmera/pyxtalstep/runner"
	"github.com/rmera/pyxtalstep/structdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubicCIF = `data_Fe2
_cell_length_a 2.87
_cell_length_b 2.87
_cell_length_c 2.87
_cell_angle_alpha 90
_cell_angle_beta 90
_cell_angle_gamma 90
loop_
 _symmetry_equiv_pos_as_xyz
 'x, y, z'
 'x+1/2, y+1/2, z+1/2'
loop_
 _atom_site_label
 _atom_site_type_symbol
 _atom_site_fract_x
 _atom_site_fract_y
 _atom_site_fract_z
Fe1 Fe 0 0 0
`

const waterXYZ = "3\nwater dimer half\nO 0 0 0.1173\nH 0 0.7572 -0.4692\nH 0 -0.7572 -0.4692"

func str(s string) *string { return &s }

type fakeIdent struct{ calls int }

func (f *fakeIdent) SMILES(ctx context.Context, c *structdb.Configuration, canonical bool) (string, error) {
	f.calls++
	if canonical {
		return "[OH2]", nil
	}
	return "O", nil
}

func TestParseNaming(t *testing.T) {
	cases := []struct {
		in   string
		seq  bool
		want Naming
	}{
		{"", true, Naming{Kind: Keep}},
		{"keep current name", false, Naming{Kind: Keep}},
		{"From File", false, Naming{Kind: FromFile}},
		{"use canonical SMILES", true, Naming{Kind: Canonical}},
		{"SMILES", true, Naming{Kind: Plain}},
		{"sequential", true, Naming{Kind: Sequential}},
		{"sequential", false, Naming{Kind: Literal, Text: "sequential"}},
		{"my crystal", true, Naming{Kind: Literal, Text: "my crystal"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseNaming(c.in, c.seq), c.in)
	}
}

func crystalResult() *runner.Result {
	return &runner.Result{
		Stdout: "done\n",
		Files:  []string{"1.cif", "2.cif", "notes.xyz", "@sub+3.cif"},
		Data: map[string]runner.File{
			"1.cif":      {Data: str(cubicCIF)},
			"2.cif":      {Data: str(cubicCIF)},
			"notes.xyz":  {Data: str(waterXYZ)},
			"@sub+3.cif": {Data: str(cubicCIF)},
		},
	}
}

func TestIngestCrystalsAsConfigurations(t *testing.T) {
	db := structdb.New()
	sys, conf := db.SystemConfiguration(structdb.NewSystem)
	in := &Ingester{DB: db}
	n, err := in.Ingest(context.Background(), crystalResult(), Options{
		Dimensionality:    pyxtal.Crystal,
		Subsequent:        structdb.NewConfiguration,
		SystemName:        ParseNaming("from file", false),
		ConfigurationName: ParseNaming("sequential", true),
	}, sys, conf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, db.Systems(), 1)
	require.Len(t, sys.Configurations, 3)
	assert.Equal(t, "Fe2", sys.Name)
	for i, c := range sys.Configurations {
		assert.Equal(t, []string{"1", "2", "3"}[i], c.Name)
		assert.Equal(t, 3, c.Periodicity)
		assert.Equal(t, 2, c.Len())
	}
	assert.InDelta(t, 1.435, sys.Configurations[0].Coordinates[1][2], 1e-9)
}

func TestIngestMoleculesAsSystems(t *testing.T) {
	db := structdb.New()
	sys, conf := db.SystemConfiguration(structdb.NewSystem)
	res := &runner.Result{
		Files: []string{"a.xyz", "b.cif", "b.xyz"},
		Data: map[string]runner.File{
			"a.xyz": {Data: str(waterXYZ)},
			"b.cif": {Data: str(cubicCIF)},
			"b.xyz": {Data: str(waterXYZ)},
		},
	}
	ident := &fakeIdent{}
	in := &Ingester{DB: db, Ident: ident}
	n, err := in.Ingest(context.Background(), res, Options{
		Dimensionality:    pyxtal.Molecular,
		Subsequent:        structdb.NewSystem,
		SystemName:        ParseNaming("canonical SMILES", false),
		ConfigurationName: ParseNaming("SMILES", true),
	}, sys, conf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, db.Systems(), 2)
	for _, s := range db.Systems() {
		assert.Equal(t, "[OH2]", s.Name)
		assert.Equal(t, "O", s.Configuration().Name)
		assert.Equal(t, 0, s.Configuration().Periodicity)
	}
	assert.Equal(t, 4, ident.calls)
}

func TestIngestLiteralAndKeep(t *testing.T) {
	db := structdb.New()
	sys, conf := db.SystemConfiguration(structdb.NewSystem)
	sys.Name = "kept"
	res := crystalResult()
	res.Files = res.Files[:1]
	n, err := (&Ingester{DB: db}).Ingest(context.Background(), res, Options{
		Dimensionality:    pyxtal.Layer,
		SystemName:        ParseNaming("", false),
		ConfigurationName: ParseNaming("layer A", true),
	}, sys, conf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "kept", sys.Name)
	assert.Equal(t, "layer A", conf.Name)
}

func TestIngestBadFileIsFatal(t *testing.T) {
	db := structdb.New()
	sys, conf := db.SystemConfiguration(structdb.NewSystem)
	res := &runner.Result{
		Files: []string{"bad.cif"},
		Data:  map[string]runner.File{"bad.cif": {Data: str("not a cif")}},
	}
	_, err := (&Ingester{DB: db}).Ingest(context.Background(), res, Options{Dimensionality: pyxtal.Crystal}, sys, conf)
	assert.True(t, errors.Is(err, ErrStructure))

}

func TestIngestSkipsUnreadableFiles(t *testing.T) {
	db := structdb.New()
	sys, conf := db.SystemConfiguration(structdb.NewSystem)
	res := &runner.Result{
		Files: []string{"1.xyz", "2.xyz"},
		Data: map[string]runner.File{
			"1.xyz": {Exception: "permission denied"},
			"2.xyz": {Data: str(waterXYZ)},
		},
	}
	n, err := (&Ingester{DB: db}).Ingest(context.Background(), res, Options{Dimensionality: pyxtal.Molecular}, sys, conf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, conf.Len())
	assert.Len(t, db.Systems(), 1)
}

type failingStore struct {
	artifact.DirStore
	fail string
}

func (f failingStore) Put(ctx context.Context, path string, data []byte) error {
	if path == f.fail {
		return errors.New("disk full")
	}
	return f.DirStore.Put(ctx, path, data)
}

func TestPersistContinuesAfterFailedFile(t *testing.T) {
	dir := t.TempDir()
	in := &Ingester{Store: failingStore{DirStore: artifact.DirStore{Root: dir}, fail: "1.cif"}}
	require.NoError(t, in.Persist(context.Background(), crystalResult()))
	_, err := os.Stat(filepath.Join(dir, "1.cif"))
	assert.True(t, os.IsNotExist(err))
	b, err := os.ReadFile(filepath.Join(dir, "2.cif"))
	require.NoError(t, err)
	assert.Equal(t, cubicCIF, string(b))
}

func TestPersist(t *testing.T) {
	dir := t.TempDir()
	res := crystalResult()
	res.Files = append(res.Files, "broken.cif")
	res.Data["broken.cif"] = runner.File{Exception: "read failed"}
	in := &Ingester{Store: artifact.DirStore{Root: dir}}
	require.NoError(t, in.Persist(context.Background(), res))

	b, err := os.ReadFile(filepath.Join(dir, "stdout.txt"))
	require.NoError(t, err)
	assert.Equal(t, "done\n", string(b))
	_, err = os.Stat(filepath.Join(dir, "stderr.txt"))
	assert.True(t, os.IsNotExist(err), "empty stderr is not written")

	b, err = os.ReadFile(filepath.Join(dir, "sub", "3.cif"))
	require.NoError(t, err)
	assert.Equal(t, cubicCIF, string(b))
	b, err = os.ReadFile(filepath.Join(dir, "broken.cif"))
	require.NoError(t, err)
	assert.Equal(t, "read failed", string(b))
}

func TestOpenBabelFallsBackToFormula(t *testing.T) {
	db := structdb.New()
	_, conf := db.SystemConfiguration(structdb.NewSystem)
	conf.Symbols = []string{"O", "H", "H"}
	conf.Coordinates = [][3]float64{{0, 0, 0.1173}, {0, 0.7572, -0.4692}, {0, -0.7572, -0.4692}}
	ob, err := NewOpenBabel(filepath.Join(t.TempDir(), "no-obabel"), 8)
	require.NoError(t, err)
	s, err := ob.SMILES(context.Background(), conf, true)
	require.NoError(t, err)
	assert.Equal(t, "H2O", s)
}

func TestOpenBabelCaches(t *testing.T) {
	dir := t.TempDir()
	count := filepath.Join(dir, "count")
	exe := filepath.Join(dir, "obabel")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\ncat > /dev/null\necho x >> "+count+"\nprintf 'O\\t\\n'\n"), 0o755))
	db := structdb.New()
	_, conf := db.SystemConfiguration(structdb.NewSystem)
	conf.Symbols = []string{"O", "H", "H"}
	conf.Coordinates = [][3]float64{{0, 0, 0.1173}, {0, 0.7572, -0.4692}, {0, -0.7572, -0.4692}}
	ob, err := NewOpenBabel(exe, 8)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		s, err := ob.SMILES(context.Background(), conf, false)
		require.NoError(t, err)
		assert.Equal(t, "O", s)
	}
	b, err := os.ReadFile(count)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(b))
}
