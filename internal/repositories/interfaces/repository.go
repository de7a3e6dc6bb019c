package interfaces

import "errors"

// Sentinel errors shared by all repositories. Implementations map driver
// errors onto these; services translate them into the client-facing taxonomy.
var (
	// ErrNotFound means the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateKey means a unique index rejected the write.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrPreconditionFailed means a conditional update matched no document:
	// the state the caller observed changed underneath it.
	ErrPreconditionFailed = errors.New("precondition failed")
)
