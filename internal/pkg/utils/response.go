package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
)

type ErrorResponse struct {
	Error *apperrors.AppError `json:"error"`
}

// SendJSON writes a success payload as-is. The public endpoints keep the bare
// shapes the browser client expects, so no envelope is added.
func SendJSON(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

func SendError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Error: appErr,
		})
	}

	// Unknown error - return 500
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: apperrors.ErrInternalServer,
	})
}
