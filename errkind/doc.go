// SPDX-FileCopyrightText: Copyright 2026 Skillforge Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package errkind classifies errors produced by the skill storage engine.

Errors are tagged with a [Kind] (validation, not-found, storage, ...) that is
preserved through arbitrary fmt.Errorf wrapping, so callers at the API surface
can map failures to responses without string matching:

	rec, err := eng.Resolve(ctx, ref)
	if errkind.Is(err, errkind.NotFound) {
		// 404, with err.Error() naming the skill and version
	}
*/
package errkind
