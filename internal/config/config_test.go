/*
 * config_test.go, part of pyxtalstep.
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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the variables for the test; godotenv doesn't override
// variables that are set, even to "".
func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PYXTALSTEP_INI", "PYXTALSTEP_LOG_LEVEL", "PYXTALSTEP_LOG_FORMAT", "PYXTALSTEP_ROOT",
		"PYXTALSTEP_DB_DSN", "PYXTALSTEP_DB_PATH", "PYXTAL_PATH", "ARTIFACT_S3_ENDPOINT",
		"ARTIFACT_S3_USE_SSL", "ARTIFACT_S3_ACCESS_KEY", "MINIO_ROOT_USER",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestINIRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SEAMM", "seamm.ini")
	p, err := ReadPyXtalPath(path)
	require.NoError(t, err)
	assert.Empty(t, p, "a missing file has no path")

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[other-step]\nkey = value\n"), 0o644))
	require.NoError(t, WritePyXtalPath(path, "/opt/conda/envs/seamm-pyxtal/bin"))

	p, err = ReadPyXtalPath(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/conda/envs/seamm-pyxtal/bin", p)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[other-step]")
	assert.Contains(t, string(b), "[pyxtal-step]")
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	iniFile := filepath.Join(dir, "seamm.ini")
	require.NoError(t, WritePyXtalPath(iniFile, "/from/ini"))
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"PYXTALSTEP_INI="+iniFile+"\nPYXTALSTEP_LOG_LEVEL=debug\nPYXTALSTEP_ROOT="+dir+"\nARTIFACT_S3_ENDPOINT=localhost:9000\nARTIFACT_S3_USE_SSL=false\n",
	), 0o644))

	c, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "/from/ini", c.PyXtalPath)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, filepath.Join(dir, "structures.json.zst"), c.DBPath)
	assert.True(t, c.Artifact.Enabled)
	assert.False(t, c.Artifact.S3.UseSSL)
	assert.Equal(t, "pyxtalstep-artifacts", c.Artifact.S3.Bucket)

	t.Setenv("PYXTAL_PATH", "/from/env")
	c, err = Load(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "/from/env", c.PyXtalPath)
}
