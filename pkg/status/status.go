// Package status exports the errors shared by the dotnetkit pipelines.
//
// Sentinels live in their own package so that cmd and the domain
// packages can match on error kinds without cyclical imports.
package status

import (
	"github.com/dotnetkit/dotnetkit/pkg/errors"
)

var (
	// ErrNotFound indicates that target resolution matched nothing
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous indicates that target resolution matched more than one candidate
	ErrAmbiguous = errors.New("ambiguous match")

	// ErrInvalidVersion indicates a malformed version string (anything but three dot-separated integers)
	ErrInvalidVersion = errors.New("invalid version")

	// ErrMissingVersion indicates that a bump was requested on a manifest carrying no version element
	ErrMissingVersion = errors.New("no version element in manifest")

	// ErrVerificationFailed indicates that a manifest re-read after writing did not yield the expected version
	ErrVerificationFailed = errors.New("write verification failed")

	// ErrStaleBackup indicates a leftover backup file from an earlier failed run
	ErrStaleBackup = errors.New("stale backup present")

	// ErrTagExists indicates that the tag derived from the manifest version already exists
	ErrTagExists = errors.New("tag exists already")

	// ErrExists indicates that a scaffold target already exists and will not be overwritten
	ErrExists = errors.New("exists already")

	// ErrInvalidParams indicates missing, conflicting or malformed command parameters
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrToolFailure indicates that an external tool exited non-zero
	ErrToolFailure = errors.New("external tool failed")
)
