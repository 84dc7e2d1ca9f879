// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

package blob

import (
	"context"
	"strconv"

	"github.com/skillforge/skillforge-core/env"
	"github.com/skillforge/skillforge-core/errkind"
)

// Provider selects a blob store backend.
type Provider string

const (
	// ProviderFS is the plain filesystem backend, one file per digest.
	ProviderFS Provider = "fs"

	// ProviderOCI is the local OCI Image Layout backend.
	ProviderOCI Provider = "oci"

	// ProviderS3 is the remote object-store backend (AWS S3 or MinIO).
	ProviderS3 Provider = "s3"
)

// Config selects and configures a blob store backend. Backend selection
// happens here once, not by conditional branching inside the push pipeline.
type Config struct {
	// Provider picks the backend; defaults to ProviderFS.
	Provider Provider

	// Root is the store root directory for the fs and oci providers;
	// defaults to DefaultRoot().
	Root string

	S3 S3Config
}

// New constructs the configured blob store.
func New(ctx context.Context, cfg Config) (Store, error) {
	root := cfg.Root
	if root == "" {
		root = DefaultRoot()
	}

	switch cfg.Provider {
	case ProviderFS, "":
		return NewFSStore(root)
	case ProviderOCI:
		return NewLayoutStore(root)
	case ProviderS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, errkind.Newf(errkind.Validation, "unsupported blob store provider: %q", string(cfg.Provider))
	}
}

// FromEnv builds a Config from environment variables:
//
//	SKILL_BLOB_PROVIDER      fs | oci | s3
//	SKILL_BLOB_ROOT          store root for fs/oci
//	SKILL_BLOB_S3_ENDPOINT   custom endpoint (MinIO)
//	SKILL_BLOB_S3_REGION
//	SKILL_BLOB_S3_BUCKET
//	SKILL_BLOB_S3_PREFIX
//	SKILL_BLOB_S3_ACCESS_KEY
//	SKILL_BLOB_S3_SECRET_KEY
//	SKILL_BLOB_S3_PATH_STYLE true for path-style addressing
func FromEnv(r env.Reader) Config {
	pathStyle, _ := strconv.ParseBool(r.Getenv("SKILL_BLOB_S3_PATH_STYLE"))
	return Config{
		Provider: Provider(r.Getenv("SKILL_BLOB_PROVIDER")),
		Root:     r.Getenv("SKILL_BLOB_ROOT"),
		S3: S3Config{
			Endpoint:        r.Getenv("SKILL_BLOB_S3_ENDPOINT"),
			Region:          r.Getenv("SKILL_BLOB_S3_REGION"),
			Bucket:          r.Getenv("SKILL_BLOB_S3_BUCKET"),
			Prefix:          r.Getenv("SKILL_BLOB_S3_PREFIX"),
			AccessKeyID:     r.Getenv("SKILL_BLOB_S3_ACCESS_KEY"),
			SecretAccessKey: r.Getenv("SKILL_BLOB_S3_SECRET_KEY"),
			UsePathStyle:    pathStyle,
		},
	}
}
