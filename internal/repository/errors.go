// Package repository implements reservation and user persistence for the
// supported backends (MySQL, Postgres, MongoDB and an in-memory store).
// Every backend follows the same contract: lookups of an unknown id return
// (nil, nil), and uniqueness violations surface as the sentinel errors
// below so handlers and services never inspect driver-specific codes.
package repository

import "errors"

// ErrEmailExists is returned when registering an email that is already
// taken.  Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrPhoneExists is returned when registering a phone number that belongs
// to another account.
var ErrPhoneExists = errors.New("phone already exists")

// ErrUnknownDriver reports a STORE_DRIVER value that has no backend.
var ErrUnknownDriver = errors.New("unknown store driver")
