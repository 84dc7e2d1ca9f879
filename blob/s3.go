// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/skillforge/skillforge-core/errkind"
)

// S3Store implements Store on an S3-compatible object store (AWS S3, MinIO).
// Objects are keyed <prefix>/skills/<digest>.zip within a single bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// Compile-time assertion that S3Store implements Store.
var _ Store = (*S3Store)(nil)

// S3Config configures an S3Store.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string

	// UsePathStyle addresses the bucket in the URL path rather than the
	// hostname. MinIO requires path style.
	UsePathStyle bool
}

// NewS3Store creates an object-store blob backend for the given bucket.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("loading AWS config: %w", err), errkind.Storage)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Key returns the object key for a digest.
func (s *S3Store) Key(dgst string) string {
	return path.Join(s.prefix, "skills", dgst+".zip")
}

// Put uploads the blob unless an object with the same digest already exists.
func (s *S3Store) Put(ctx context.Context, data []byte) (PutResult, error) {
	dgst := Digest(data)
	key := s.Key(dgst)

	exists, err := s.Exists(ctx, dgst)
	if err != nil {
		return PutResult{}, err
	}
	if exists {
		return PutResult{Digest: dgst, Key: key, AlreadyExisted: true}, nil
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return PutResult{}, errkind.WithKind(fmt.Errorf("uploading blob %s: %w", dgst, err), errkind.Storage)
	}

	return PutResult{Digest: dgst, Key: key}, nil
}

// Get downloads a blob by its object key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, errkind.Newf(errkind.NotFound, "blob not found: %s", key)
		}
		return nil, errkind.WithKind(fmt.Errorf("downloading blob %s: %w", key, err), errkind.Storage)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errkind.WithKind(fmt.Errorf("reading blob %s: %w", key, err), errkind.Storage)
	}
	return data, nil
}

// Exists checks for an object with the given digest via HeadObject.
func (s *S3Store) Exists(ctx context.Context, dgst string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(dgst)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, errkind.WithKind(fmt.Errorf("checking blob %s: %w", dgst, err), errkind.Storage)
	}
	return true, nil
}

// Delete removes an object by key. Deleting a missing object is not an error
// (S3 DeleteObject is idempotent).
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errkind.WithKind(fmt.Errorf("deleting blob %s: %w", key, err), errkind.Storage)
	}
	return nil
}

// isS3NotFound reports whether the error is an S3 missing-key/missing-object
// response. HeadObject returns NotFound, GetObject returns NoSuchKey.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
