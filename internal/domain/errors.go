package domain

import "errors"

// Terminal pipeline conditions. Each ends the current question only; the
// caller distinguishes them with errors.Is and renders a user-facing message.
var (
	// ErrNoDocumentFound is returned when the document selector produced no
	// usable title, or the store holds no articles at all.
	ErrNoDocumentFound = errors.New("no matching document found")

	// ErrNoSectionsFound is returned when no valid section ids survive
	// validation of the model's selection.
	ErrNoSectionsFound = errors.New("no matching sections found")

	// ErrContextUnavailable is returned when every selected section exhausted
	// gap-fill without yielding passage text.
	ErrContextUnavailable = errors.New("no passage content available for the selected sections")
)
