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

// Package artifact stores the files a step produces: in the step directory
// and, optionally, mirrored to S3-compatible object storage.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store receives files. Paths are relative and use forward slashes.
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
}

// DirStore writes files under a directory.
type DirStore struct {
	Root string
}

func (D DirStore) Put(ctx context.Context, path string, data []byte) error {
	p, err := cleanPath(path)
	if err != nil {
		return err
	}
	full := filepath.Join(D.Root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// Multi puts every file in all of its stores. All the stores are tried even
// if one fails.
type Multi []Store

func (M Multi) Put(ctx context.Context, path string, data []byte) error {
	var errs []error
	for _, s := range M {
		if s == nil {
			continue
		}
		if err := s.Put(ctx, path, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// cleanPath rejects paths that would leave the store root.
func cleanPath(path string) (string, error) {
	p := strings.TrimLeft(strings.TrimSpace(path), "/")
	if p == "" {
		return "", fmt.Errorf("artifact: path is required")
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("artifact: path %q is outside the store", path)
	}
	return clean, nil
}
