package domain

import "errors"

var (
	// ErrNotFound indicates a requested session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input at the service boundary.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable indicates a similarity backend could not initialize or score.
	// Callers degrade to the lexical backend when they see it.
	ErrBackendUnavailable = errors.New("similarity backend unavailable")

	// ErrEmptyCorpus indicates a vectorizer was asked to fit zero usable tokens.
	ErrEmptyCorpus = errors.New("empty corpus")
)
