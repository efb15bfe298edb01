/*
 * postgres_store.go, part of pyxtalstep.
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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps the database as a JSONB snapshot in the
// structure_snapshots table, one row per name.
type PostgresStore struct {
	db   *sql.DB
	name string

	schemaOnce sync.Once
	schemaErr  error
}

// NewPostgres connects to dsn with the pgx driver.
func NewPostgres(ctx context.Context, dsn, name string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db, name: name}, nil
}

func (P *PostgresStore) ensureSchema(ctx context.Context) error {
	P.schemaOnce.Do(func() {
		_, P.schemaErr = P.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS structure_snapshots (
	name TEXT PRIMARY KEY,
	data JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	})
	return P.schemaErr
}

func (P *PostgresStore) Load(ctx context.Context) (*Database, error) {
	if err := P.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("PostgresStore.Load: %w", err)
	}
	var data []byte
	err := P.db.QueryRowContext(ctx, `SELECT data FROM structure_snapshots WHERE name = $1`, P.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("PostgresStore.Load: %w", err)
	}
	db := New()
	if err := json.Unmarshal(data, db); err != nil {
		return nil, fmt.Errorf("PostgresStore.Load: %w", err)
	}
	return db, nil
}

func (P *PostgresStore) Save(ctx context.Context, db *Database) error {
	if err := P.ensureSchema(ctx); err != nil {
		return fmt.Errorf("PostgresStore.Save: %w", err)
	}
	data, err := json.Marshal(db)
	if err != nil {
		return err
	}
	_, err = P.db.ExecContext(ctx, `
INSERT INTO structure_snapshots (name, data, updated_at) VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, P.name, string(data))
	if err != nil {
		return fmt.Errorf("PostgresStore.Save: %w", err)
	}
	return nil
}

func (P *PostgresStore) Close() error {
	return P.db.Close()
}
