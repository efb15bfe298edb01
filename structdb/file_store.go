/*
 * file_store.go, part of pyxtalstep.
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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// FileStore keeps the database as zstd-compressed JSON in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file name.
func (F *FileStore) Path() string {
	return F.path
}

func (F *FileStore) Load(ctx context.Context) (*Database, error) {
	f, err := os.Open(F.path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("FileStore.Load %s: %w", F.path, err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("FileStore.Load %s: %w", F.path, err)
	}
	db := New()
	if err := json.Unmarshal(data, db); err != nil {
		return nil, fmt.Errorf("FileStore.Load %s: %w", F.path, err)
	}
	return db, nil
}

func (F *FileStore) Save(ctx context.Context, db *Database) error {
	data, err := json.Marshal(db)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(F.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(F.path)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("FileStore.Save %s: %w", F.path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("FileStore.Save %s: %w", F.path, err)
	}
	return f.Close()
}

func (F *FileStore) Close() error {
	return nil
}
