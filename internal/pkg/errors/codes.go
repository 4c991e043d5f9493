package errors

import "net/http"

var (
	ErrGuideNotFound = New(
		"GUIDE_NOT_FOUND",
		"Guide not found",
		http.StatusNotFound,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidLanguage = New(
		"INVALID_LANGUAGE",
		"Unsupported language code",
		http.StatusBadRequest,
	)

	ErrInvalidGuideID = New(
		"INVALID_GUIDE_ID",
		"Invalid guide ID",
		http.StatusBadRequest,
	)

	ErrTooManyPlays = New(
		"TOO_MANY_PLAYS",
		"Play count rate limit exceeded",
		http.StatusTooManyRequests,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
