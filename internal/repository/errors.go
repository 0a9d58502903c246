// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to touch a resource outside their artist scope, while
// ErrConflict signals state that blocks a write (e.g. a duplicate PNR
// in the ticketing batch).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource outside their scope, such as a client reading another
// artist's data. Handlers should translate this into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot proceed because of
// conflicting state, such as ticketing a passenger who already holds a
// ticket for the leg. Handlers should translate this into an HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when a referenced entity does not exist or
// is not visible under the caller's scope. Handlers should translate
// this into an HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrInviteInvalid is returned for invite tokens that are unknown,
// expired or already consumed. The three cases are deliberately not
// distinguished to avoid leaking invite state to guessers.
var ErrInviteInvalid = errors.New("invalid or expired invite")
