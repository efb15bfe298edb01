/*
 * config.go, part of pyxtalstep.
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

// Package config gathers the settings of the pyxtalstep program from a .env
// file, the environment and the SEAMM INI file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
	"github.com/joho/godotenv"
	"github.com/rmera/pyxtalstep/artifact"
)

// Section and key of the PyXtal settings in the INI file.
const (
	Section = "pyxtal-step"
	PathKey = "pyxtal-path"
)

type Config struct {
	IniFile    string
	PyXtalPath string
	LogLevel   string
	LogFormat  string
	Root       string
	DBDSN      string
	DBPath     string
	Artifact   ArtifactConfig
}

type ArtifactConfig struct {
	Enabled bool
	S3      artifact.S3Config
}

// DefaultIniFile is the SEAMM configuration file in the home directory.
func DefaultIniFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("SEAMM", "seamm.ini")
	}
	return filepath.Join(home, "SEAMM", "seamm.ini")
}

// Load reads the .env files given (or ".env" if none) when they exist, then
// the environment, then the INI file. PYXTAL_PATH in the environment wins
// over the INI file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: %s: %w", f, err)
		}
	}
	c := &Config{
		IniFile:   firstNonEmpty(env("PYXTALSTEP_INI"), DefaultIniFile()),
		LogLevel:  firstNonEmpty(env("PYXTALSTEP_LOG_LEVEL"), "info"),
		LogFormat: firstNonEmpty(env("PYXTALSTEP_LOG_FORMAT"), "text"),
		Root:      firstNonEmpty(env("PYXTALSTEP_ROOT"), "."),
		DBDSN:     env("PYXTALSTEP_DB_DSN"),
		Artifact:  loadArtifactConfig(),
	}
	c.DBPath = firstNonEmpty(env("PYXTALSTEP_DB_PATH"), filepath.Join(c.Root, "structures.json.zst"))
	path, err := ReadPyXtalPath(c.IniFile)
	if err != nil {
		return nil, err
	}
	c.PyXtalPath = firstNonEmpty(env("PYXTAL_PATH"), path)
	return c, nil
}

// ReadPyXtalPath returns the PyXtal directory recorded in the INI file, or
// "" if the file or the key don't exist.
func ReadPyXtalPath(iniFile string) (string, error) {
	f, err := ini.LooseLoad(iniFile)
	if err != nil {
		return "", fmt.Errorf("config: %s: %w", iniFile, err)
	}
	return strings.TrimSpace(f.Section(Section).Key(PathKey).String()), nil
}

// WritePyXtalPath records the PyXtal directory in the INI file, keeping the
// rest of its content.
func WritePyXtalPath(iniFile, dir string) error {
	f, err := ini.LooseLoad(iniFile)
	if err != nil {
		return fmt.Errorf("config: %s: %w", iniFile, err)
	}
	f.Section(Section).Key(PathKey).SetValue(dir)
	if err := os.MkdirAll(filepath.Dir(iniFile), 0o755); err != nil {
		return err
	}
	return f.SaveTo(iniFile)
}

func loadArtifactConfig() ArtifactConfig {
	endpoint := env("ARTIFACT_S3_ENDPOINT")
	return ArtifactConfig{
		Enabled: endpoint != "",
		S3: artifact.S3Config{
			Endpoint:  endpoint,
			Region:    firstNonEmpty(env("ARTIFACT_S3_REGION"), "us-east-1"),
			AccessKey: firstNonEmpty(env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER")),
			SecretKey: firstNonEmpty(env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD")),
			Bucket:    firstNonEmpty(env("ARTIFACT_S3_BUCKET"), "pyxtalstep-artifacts"),
			UseSSL:    boolEnv("ARTIFACT_S3_USE_SSL", true),
		},
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func boolEnv(key string, def bool) bool {
	raw := env(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
