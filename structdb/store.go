/*
 * store.go, part of pyxtalstep.
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
	"strings"
)

// Store persists a Database between runs.
type Store interface {
	// Load returns the stored database, or an empty one if nothing was stored yet.
	Load(ctx context.Context) (*Database, error)
	Save(ctx context.Context, db *Database) error
	Close() error
}

// Open returns a PostgreSQL store when dsn is given and a snapshot file
// store at path otherwise.
func Open(ctx context.Context, dsn, path string) (Store, error) {
	if dsn = strings.TrimSpace(dsn); dsn != "" {
		return NewPostgres(ctx, dsn, "default")
	}
	return NewFileStore(path), nil
}
