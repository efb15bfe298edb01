/*
 * form_test.go, part of pyxtalstep.
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

package form

import (
	"testing"

	"github.com/rmera/pyxtalstep/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupTables(t *testing.T) {
	assert.Len(t, SpaceGroups, 230)
	assert.Equal(t, "P2_1/c", SpaceGroups[13])
	assert.Equal(t, "Fm-3m", SpaceGroups[224])
	assert.Equal(t, "Ia-3d", SpaceGroups[229])
	assert.Len(t, RodGroups, 75)
	assert.Len(t, LayerGroups, 80)
	assert.Equal(t, "80", LayerGroups[79])
	assert.Equal(t, "C1", PointGroups[0])
}

func TestLayout(t *testing.T) {
	set := params.NewSet(params.Standard())
	frames := Layout(set)
	require.Len(t, frames, 2)
	assert.Equal(t, StructureFrame, frames[0].Title)
	assert.Equal(t, []string{"build type", "dimensionality", "symmetry", "formula", "attempts"}, frames[0].Fields)
	assert.Equal(t, []string{"structure handling", "system name", "configuration name"}, frames[1].Fields)

	require.NoError(t, set.SetText("build type", "molecules"))
	require.NoError(t, set.SetText("dimensionality", "2-D layer"))
	require.NoError(t, set.SetText("attempts", "$n"))
	frames = Layout(set)
	assert.Equal(t, []string{"build type", "dimensionality", "symmetry", "n_molecules", "attempts", "thickness"}, frames[0].Fields)
	assert.Contains(t, frames[1].Fields, "subsequent structure handling")

	require.NoError(t, set.SetText("dimensionality", "1-D rod"))
	assert.Contains(t, Layout(set)[0].Fields, "area")
}

func TestNormalize(t *testing.T) {
	set := params.NewSet(params.Standard())
	changed := func() bool {
		t.Helper()
		c, err := Normalize(set)
		require.NoError(t, err)
		return c
	}
	assert.True(t, changed(), "the empty default is not a space group")
	assert.Equal(t, "P1", set.Get("symmetry").Text)

	require.NoError(t, set.SetText("symmetry", "Pnma"))
	assert.False(t, changed())

	require.NoError(t, set.SetText("dimensionality", "0-D molecular"))
	assert.True(t, changed())
	assert.Equal(t, "C1", set.Get("symmetry").Text)

	require.NoError(t, set.SetText("symmetry", "$sym"))
	assert.False(t, changed())

	require.NoError(t, set.SetText("symmetry", "17"))
	require.NoError(t, set.SetText("dimensionality", "$dim"))
	assert.False(t, changed())
}

func TestNormalizeWithoutSymmetry(t *testing.T) {
	set := params.NewSet(params.StructureHandling)
	changed, err := Normalize(set)
	assert.Error(t, err)
	assert.False(t, changed)
}

func TestKnown(t *testing.T) {
	assert.Equal(t, []string{"rod group", "layer group"}, Known("42"))
	assert.Equal(t, []string{"layer group"}, Known("80"))
	assert.Equal(t, []string{"space group"}, Known("Fd-3m"))
	assert.Empty(t, Known("X"))
}
