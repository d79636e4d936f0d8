package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = goerr.New("not found")

	// ErrInvalidSnippet is returned when a snippet record fails validation.
	ErrInvalidSnippet = goerr.New("invalid snippet record")

	// ErrInvalidRating is returned for a rating other than positive or negative.
	ErrInvalidRating = goerr.New("invalid rating")

	// ErrAlreadyPromoted is returned when a pattern's promoted flag was
	// already set by another writer.
	ErrAlreadyPromoted = goerr.New("pattern already promoted")
)
