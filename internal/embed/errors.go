package embed

import "errors"

var (
	// ErrAlreadyAttached is returned by a second Attach.
	ErrAlreadyAttached = errors.New("surface already attached")
	// ErrDestroyed is returned by Attach after Destroy.
	ErrDestroyed = errors.New("surface destroyed")
	// ErrNotAttached is returned by Resolve before Attach.
	ErrNotAttached = errors.New("surface not attached")
)
