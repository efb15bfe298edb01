/*
 * commands.go, part of pyxtalstep.
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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmera/pyxtalstep/artifact"
	"github.com/rmera/pyxtalstep/cite"
	"github.com/rmera/pyxtalstep/flow"
	"github.com/rmera/pyxtalstep/ingest"
	"github.com/rmera/pyxtalstep/installer"
	"github.com/rmera/pyxtalstep/internal/config"
	"github.com/rmera/pyxtalstep/internal/ctxlog"
	"github.com/rmera/pyxtalstep/params"
	"github.com/rmera/pyxtalstep/step"
	"github.com/rmera/pyxtalstep/structdb"
	"github.com/rmera/pyxtalstep/tui"
	"gopkg.in/yaml.v3"
)

// parse parses the flags of a command that takes a single file argument.
func parse(fs *flag.FlagSet, args []string) (string, bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", true, nil
		}
		return "", false, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", false, &ExitError{Code: 2, Message: fs.Name() + ": one step file is required"}
	}
	return fs.Arg(0), false, nil
}

func checkLogFlags(level, format string) error {
	switch strings.ToLower(format) {
	case "text", "json":
	default:
		return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
	default:
		return &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	return nil
}

func runCmd(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env", ".env", "File with environment settings, read if it exists.")
	root := fs.String("root", "", "Directory for the step directories (default $PYXTALSTEP_ROOT or .).")
	pyxtalPath := fs.String("pyxtal-path", "", "Directory of pyxtal_main.py (default from the configuration).")
	dsn := fs.String("db-dsn", "", "PostgreSQL DSN of the structure database.")
	dbPath := fs.String("db", "", "Structure database file, when no DSN is given.")
	logLevel := fs.String("log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	logFormat := fs.String("log-format", "", "Log format: 'text' or 'json'.")
	path, help, err := parse(fs, args)
	if help || err != nil {
		return err
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	if *root != "" && *dbPath == "" && os.Getenv("PYXTALSTEP_DB_PATH") == "" {
		cfg.DBPath = filepath.Join(*root, "structures.json.zst")
	}
	override(&cfg.Root, *root)
	override(&cfg.PyXtalPath, *pyxtalPath)
	override(&cfg.DBDSN, *dsn)
	override(&cfg.DBPath, *dbPath)
	override(&cfg.LogLevel, *logLevel)
	override(&cfg.LogFormat, *logFormat)
	if err := checkLogFlags(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	log := ctxlog.New(cfg.LogLevel, cfg.LogFormat, stderr)
	ctx = ctxlog.WithLogger(ctx, log)

	file, err := params.LoadFile(path, params.Standard())
	if err != nil {
		return err
	}
	store, err := structdb.Open(ctx, cfg.DBDSN, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	db, err := store.Load(ctx)
	if err != nil {
		return err
	}

	fc := flow.New(cfg.Root)
	fc.DB = db
	fc.Variables = file.Variables
	if cfg.Artifact.Enabled {
		fc.Mirror, err = artifact.NewS3Store(cfg.Artifact.S3, fc.RunID, "")
		if err != nil {
			return err
		}
	}

	st, err := step.New(fc, file.Params)
	if err != nil {
		return err
	}
	st.Handle.SetPath(cfg.PyXtalPath)
	if st.Ident, err = ingest.NewOpenBabel("", 256); err != nil {
		return err
	}
	if st.Versions, err = cite.NewVersionCache(8); err != nil {
		return err
	}

	if _, err := fc.Execute(ctx, st); err != nil {
		return err
	}
	if err := store.Save(ctx, fc.DB); err != nil {
		return err
	}
	refs, err := yaml.Marshal(fc.References)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(cfg.Root, "references.yaml"), refs, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Run %s: %d systems, %d configurations, %d citations.\n",
		fc.RunID, len(fc.DB.Systems()), fc.DB.NConfigurations(), fc.References.Len())
	return nil
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

// loadOrNew reads a step file, or returns the defaults if it doesn't exist.
func loadOrNew(path string) (*params.File, error) {
	f, err := params.LoadFile(path, params.Standard())
	if errors.Is(err, os.ErrNotExist) {
		return &params.File{Params: params.NewSet(params.Standard())}, nil
	}
	return f, err
}

func editCmd(stdout io.Writer, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(stdout)
	path, help, err := parse(fs, args)
	if help || err != nil {
		return err
	}
	f, err := loadOrNew(path)
	if err != nil {
		return err
	}
	set, saved, err := tui.Edit("PyXtal: "+filepath.Base(path), f.Params)
	if err != nil {
		return err
	}
	if !saved {
		fmt.Fprintln(stdout, "Not saved.")
		return nil
	}
	f.Params = set
	if err := f.SaveFile(path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved %s.\n", path)
	return nil
}

func describeCmd(stdout io.Writer, args []string) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	fs.SetOutput(stdout)
	path, help, err := parse(fs, args)
	if help || err != nil {
		return err
	}
	f, err := loadOrNew(path)
	if err != nil {
		return err
	}
	text, err := step.Description(f.Params.Texts())
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, text)
	fmt.Fprintln(stdout)
	for _, line := range f.Params.Describe() {
		fmt.Fprintln(stdout, "    "+line)
	}
	return nil
}

func installCmd(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env", ".env", "File with environment settings, read if it exists.")
	ini := fs.String("ini", "", "SEAMM configuration file (default $PYXTALSTEP_INI or ~/SEAMM/seamm.ini).")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &ExitError{Code: 2, Message: err.Error()}
	}
	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	override(&cfg.IniFile, *ini)
	ctx = ctxlog.WithLogger(ctx, ctxlog.New(cfg.LogLevel, cfg.LogFormat, stderr))
	inst, err := installer.New(cfg.IniFile)
	if err != nil {
		return err
	}
	s, err := inst.Install(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "PyXtal %s at %s (found in %s), registered in %s.\n", s.Version, s.Executable, s.Source, cfg.IniFile)
	return nil
}
