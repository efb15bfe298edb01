/*
 * s3_store.go, part of pyxtalstep.
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

package artifact

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store mirrors files to a bucket, under a prefix that identifies the run.
type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	prefix     string
	initOnce   sync.Once
	initErr    error
}

// NewS3Store returns a store putting objects at "<runID>/<prefix>/<path>".
func NewS3Store(cfg S3Config, runID, prefix string) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run id is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{
		client:     client,
		bucketName: bucket,
		region:     region,
		prefix:     objectKey(strings.TrimSpace(runID), prefix),
	}, nil
}

// WithPrefix returns a store sharing the client and bucket, with prefix
// appended to the key prefix.
func (s *S3Store) WithPrefix(prefix string) *S3Store {
	return &S3Store{
		client:     s.client,
		bucketName: s.bucketName,
		region:     s.region,
		prefix:     objectKey(s.prefix, prefix),
	}
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) Put(ctx context.Context, path string, data []byte) error {
	p, err := cleanPath(path)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	if data == nil {
		data = []byte{}
	}
	_, err = s.client.PutObject(ctx, s.bucketName, objectKey(s.prefix, p), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(p),
	})
	return err
}

// Key returns the object key a path is stored at.
func (s *S3Store) Key(path string) string {
	return objectKey(s.prefix, path)
}

func objectKey(prefix, path string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	}
	return prefix + "/" + path
}

func contentType(path string) string {
	switch {
	case strings.HasSuffix(path, ".cif"):
		return "chemical/x-cif"
	case strings.HasSuffix(path, ".xyz"):
		return "chemical/x-xyz"
	case strings.HasSuffix(path, ".txt"), strings.HasSuffix(path, ".out"):
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}
