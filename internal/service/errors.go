package service

import "errors"

// Taxonomy shared by all services. Handlers translate these to HTTP codes;
// everything else that escapes a service is an internal error.
var (
	// ErrNotFound means the resource id has no live record.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor is neither the owner nor a grantee with
	// sufficient permission. It is always distinct from ErrNotFound.
	ErrForbidden = errors.New("forbidden")

	// ErrQuotaExceeded means an upload would breach the owner's storage limit.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrConflict marks truly conflicting states, like sharing a file with
	// its own owner or registering an already-used email.
	ErrConflict = errors.New("conflict")

	// ErrValidation marks malformed input: empty or oversized name, missing
	// grantee, unknown permission level.
	ErrValidation = errors.New("validation error")
)

// MaxNameLen bounds file and folder display names, in runes.
const MaxNameLen = 255
