package usecase

import (
	"errors"

	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
)

// mapRepoError keeps typed application errors and hides everything else behind ErrDatabaseError
func mapRepoError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.ErrDatabaseError
}
