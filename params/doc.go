/*
 * doc.go, part of pyxtalstep.
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

// Package params holds the control parameters of the PyXtal step: their
// descriptors, the values set by the user, and the resolution of those values
// against the flowchart variables.
//
// A value whose text starts with "$" is an expression, written in HCL
// expression syntax, that is evaluated when the step runs:
//
//	attempts = "$n"
//	n_molecules = "$n * 2"
//
// Parameter sets are stored as HCL files with a "variables" block and a
// "step" block; see Load and Save.
package params
