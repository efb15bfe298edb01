/*
 * main.go, part of pyxtalstep.
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

// Command pyxtalstep runs, edits and describes PyXtal steps, and registers
// the PyXtal executable.
//
// Usage:
//
//	pyxtalstep run [options] STEP_FILE
//	pyxtalstep edit STEP_FILE
//	pyxtalstep describe STEP_FILE
//	pyxtalstep install
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ExitError is an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const usage = `pyxtalstep - build crystals, layers, rods and clusters with PyXtal.

Usage:
  pyxtalstep run [options] STEP_FILE   run the step in STEP_FILE
  pyxtalstep edit STEP_FILE            edit STEP_FILE in the terminal
  pyxtalstep describe STEP_FILE        say what the step will do
  pyxtalstep install                   find PyXtal and register it

Run "pyxtalstep COMMAND -h" for the options of a command.
`

func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return nil
	}
	switch args[0] {
	case "run":
		return runCmd(ctx, stdout, stderr, args[1:])
	case "edit":
		return editCmd(stdout, args[1:])
	case "describe":
		return describeCmd(stdout, args[1:])
	case "install":
		return installCmd(ctx, stdout, stderr, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	return &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q\n%s", args[0], usage)}
}
