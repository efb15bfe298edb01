/*
 * database_test.go, part of pyxtalstep.
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

package structdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/pyxtalstep/chem"
	v3 "github.com/rmera/pyxtalstep/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHandling(t *testing.T) {
	for _, h := range []Handling{Overwrite, NewConfiguration, NewSystem} {
		got, err := ParseHandling(h.String())
		require.NoError(t, err)
		assert.Equal(t, h, got)
	}
	got, err := ParseHandling("create a NEW configuration")
	require.NoError(t, err)
	assert.Equal(t, NewConfiguration, got)
	_, err = ParseHandling("throw it away")
	assert.Error(t, err)
}

func TestSystemConfiguration(t *testing.T) {
	db := New()
	s, c := db.SystemConfiguration(Overwrite)
	require.NotNil(t, s)
	require.NotNil(t, c)
	assert.Len(t, db.Systems(), 1, "with no current system one is created")

	s2, c2 := db.SystemConfiguration(Overwrite)
	assert.Same(t, s, s2)
	assert.Same(t, c, c2)

	s3, c3 := db.SystemConfiguration(NewConfiguration)
	assert.Same(t, s, s3)
	assert.NotSame(t, c, c3)
	assert.Len(t, s.Configurations, 2)
	assert.Same(t, c3, s.Configuration())

	s4, _ := db.SystemConfiguration(NewSystem)
	assert.NotSame(t, s, s4)
	assert.Same(t, s4, db.System())
	assert.Equal(t, 3, db.NConfigurations())
}

func TestFromMolecule(t *testing.T) {
	mol, err := chem.XYZString("3\nwater\nO 0 0 0.1173\nH 0 0.7572 -0.4692\nH 0 -0.7572 -0.4692")
	require.NoError(t, err)
	_, c := New().SystemConfiguration(NewSystem)
	require.NoError(t, c.FromMolecule(mol, 0))
	assert.Equal(t, "H2O", c.Formula())
	assert.Equal(t, 0, c.Periodicity)
	assert.Nil(t, c.Cell)
	assert.Error(t, c.FromMolecule(mol, 1))

	back, err := c.Molecule()
	require.NoError(t, err)
	assert.InDelta(t, 0.7572, back.Coords[0].At(1, 1), 1e-12)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "structures.json.zst")
	store := NewFileStore(path)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Systems())

	db := New()
	s := db.CreateSystem("NaCl")
	c := s.CreateConfiguration("1")
	c.Symbols = []string{"Na", "Cl"}
	c.Coordinates = [][3]float64{{0, 0, 0}, {2.8, 2.8, 2.8}}
	c.Cell = &[3][3]float64{{5.6, 0, 0}, {0, 5.6, 0}, {0, 0, 5.6}}
	c.Periodicity = 3
	s.CreateConfiguration("2")
	s.SetConfiguration(c)
	require.NoError(t, store.Save(ctx, db))

	_, err = os.Stat(path)
	require.NoError(t, err)

	back, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, back.Systems(), 1)
	bs := back.System()
	require.NotNil(t, bs)
	assert.Equal(t, "NaCl", bs.Name)
	require.Len(t, bs.Configurations, 2)
	assert.Equal(t, "1", bs.Configuration().Name)
	assert.Same(t, bs, bs.Configurations[1].System())
	assert.Equal(t, c.Cell, bs.Configurations[0].Cell)

	ns := back.CreateSystem("next")
	assert.Equal(t, 2, ns.ID, "identifiers continue after a reload")
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PYXTALSTEP_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("PYXTALSTEP_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, dsn, "")
	require.NoError(t, err)
	defer store.Close()
	db := New()
	db.CreateSystem("from test").CreateConfiguration("only")
	require.NoError(t, store.Save(ctx, db))
	back, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from test", back.System().Name)
}

func TestFromCrystal(t *testing.T) {
	mol, err := chem.XYZString("1\natom\nAr 0 0 0")
	require.NoError(t, err)
	_, c := New().SystemConfiguration(NewSystem)
	assert.Error(t, c.FromCrystal(mol), "a structure without cell is not a crystal")

	mol.Cell, err = v3.NewMatrix([]float64{5, 0, 0, 0, 5, 0, 0, 0, 5})
	require.NoError(t, err)
	require.NoError(t, c.FromCrystal(mol))
	assert.Equal(t, 3, c.Periodicity)
	assert.Equal(t, [3]float64{0, 5, 0}, c.Cell[1])
}
