package domain

import "errors"

var (
	// ErrScreenNotFound indicates the screen content could not be loaded.
	ErrScreenNotFound = errors.New("screen not found")
	// ErrCatalogEntryNotFound is returned by catalogs without a record for a screen.
	ErrCatalogEntryNotFound = errors.New("catalog entry not found")
	// ErrPlayNotFound is returned when a play session has not been started.
	ErrPlayNotFound = errors.New("play session not found")
	// ErrEmptyQuestionSet rejects screens without scenarios.
	ErrEmptyQuestionSet = errors.New("screen has no scenarios")
	// ErrInvalidSnapshot is returned when a snapshot does not fit the question set.
	ErrInvalidSnapshot = errors.New("snapshot does not match question set")
)
