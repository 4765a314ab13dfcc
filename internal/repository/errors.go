package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation (SQL, NoSQL, etc.)
// from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert or update would break a uniqueness
// constraint, such as a second account with the same email.
var ErrDuplicate = errors.New("record already exists")
