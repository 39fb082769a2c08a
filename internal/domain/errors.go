package domain

import "errors"

var (
	// ErrBoardNotFound is returned when a leaderboard has not been initialized.
	ErrBoardNotFound = errors.New("leaderboard not found")
	// ErrParticipantNotFound is returned when a user tries to act before joining.
	ErrParticipantNotFound = errors.New("participant not found on leaderboard")
	// ErrParadoxNotFound indicates a paradox ID is not in the catalog.
	ErrParadoxNotFound = errors.New("paradox not found")
	// ErrCatalogUnavailable indicates the catalog could not be loaded at all.
	ErrCatalogUnavailable = errors.New("paradox catalog unavailable")
	// ErrUnknownQuizType is returned for quiz types outside the points table.
	ErrUnknownQuizType = errors.New("unknown quiz type")
	// ErrUnknownVariant is returned when no config builder exists for a quiz type.
	ErrUnknownVariant = errors.New("unknown quiz variant")
	// ErrInvalidCompletion wraps completion payload validation failures.
	ErrInvalidCompletion = errors.New("invalid completion")
	// ErrInvalidFilter wraps filter parameter validation failures.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidQuizRequest wraps quiz configuration request validation failures.
	ErrInvalidQuizRequest = errors.New("invalid quiz request")
)
