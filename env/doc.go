// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package env abstracts environment variable access behind a small interface so
components that read configuration from the environment (the logger, the blob
store factory) can be tested without mutating the process environment.

Production code accepts an env.Reader and is handed an OSReader; tests hand in
a MapReader with fixed values:

	cfg := blob.FromEnv(env.MapReader{"SKILL_BLOB_PROVIDER": "s3"})
*/
package env
