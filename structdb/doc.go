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

// Package structdb is the structure database that generated structures are
// stored in. A Database holds systems; each system holds one or more named
// configurations, each a geometry with optional periodic cell.
//
// The database itself lives in memory. Store implementations persist it as a
// zstd-compressed JSON snapshot on disk or as a JSONB row in PostgreSQL.
package structdb
