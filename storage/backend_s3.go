/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3-object Backend. A custom Endpoint plus
// ForcePathStyle targets S3-compatible object stores (MinIO etc.), the
// same knobs the teacher's S3Factory exposes.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
	Bucket          string
	Prefix          string
	ForcePathStyle  bool
}

// S3Backend lays out:
//
//	<prefix>/state/<namespace>/<hex id>
//	<prefix>/genesis/<hex genesis id>
//
// one object per register — no column/log split, since register states
// are single opaque blobs rather than columnar shards.
type S3Backend struct {
	cfg S3Config

	mu     sync.Mutex
	client *s3.Client
	state  SharedState
}

func NewS3Backend(cfg S3Config) *S3Backend {
	return &S3Backend{cfg: cfg}
}

// GetState reports whether the underlying client connection has been
// established yet, satisfying SharedResource.
func (s *S3Backend) GetState() SharedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GetRead ensures the client is open and returns a no-op release, since
// an S3 client has no exclusive-write mode to hand back.
func (s *S3Backend) GetRead() func() {
	_ = s.ensureOpen()
	return func() {}
}

// GetExclusive behaves like GetRead: a single *s3.Client is safe for
// concurrent use, so there is no separate exclusive mode to acquire.
func (s *S3Backend) GetExclusive() func() {
	_ = s.ensureOpen()
	return func() {}
}

func (s *S3Backend) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SHARED {
		return nil
	}

	ctx := context.Background()
	var opts []func(*config.LoadOptions) error
	if s.cfg.Region != "" {
		opts = append(opts, config.WithRegion(s.cfg.Region))
	}
	if s.cfg.AccessKeyID != "" && s.cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKeyID, s.cfg.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("registerstore: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if s.cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(s.cfg.Endpoint) })
	}
	if s.cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	s.client = s3.NewFromConfig(cfg, s3Opts...)
	s.state = SHARED
	return nil
}

var _ SharedResource = (*S3Backend)(nil)

func (s *S3Backend) objectKey(key Key, namespace string) string {
	prefix := strings.TrimSuffix(s.cfg.Prefix, "/")
	switch key.Tag {
	case TagState:
		if namespace == "" {
			namespace = key.ID.Type().Namespace()
		}
		return fmt.Sprintf("%s/state/%s/%s", prefix, namespace, key.ID.String())
	case TagGenesis:
		return fmt.Sprintf("%s/genesis/%s", prefix, key.ID.String())
	default:
		panic("registerstore: unknown key tag " + string(key.Tag))
	}
}

func (s *S3Backend) Read(key Key) ([]byte, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	resp, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(key, "")),
	})
	if err != nil {
		return nil, ErrNotFound
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *S3Backend) Write(key Key, value []byte, namespace string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(key, namespace)),
		Body:   bytes.NewReader(value),
	})
	return err
}

func (s *S3Backend) Erase(key Key) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(key, "")),
	})
	return err
}

func (s *S3Backend) Exists(key Key) bool {
	if err := s.ensureOpen(); err != nil {
		return false
	}
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(key, "")),
	})
	return err == nil
}

func (s *S3Backend) Index(genesis RegisterID, register RegisterID) error {
	return s.Write(Key{Tag: TagGenesis, ID: genesis}, register[:], "")
}

// Iterate is unsupported: S3 has no secondary listing index cheap enough
// to walk per-namespace without maintaining one out-of-band (SPEC_FULL.md
// §C.5 — only backends that already lay data out type-bounded, like the
// files backend, implement it).
func (s *S3Backend) Iterate(namespace string, fn func(RegisterID, []byte) bool) error {
	return ErrUnsupported
}

func (s *S3Backend) Close() error {
	return nil
}
