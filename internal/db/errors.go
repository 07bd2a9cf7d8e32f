package db

import "errors"

// ErrNoRows is returned by writes that matched no row.
var ErrNoRows = errors.New("no matching row")

// ErrEmailTaken is returned when creating a user with an existing email.
var ErrEmailTaken = errors.New("email already registered")
