package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/audioguide-discovery/internal/pkg/errors"
	"github.com/audioguide-discovery/internal/pkg/utils"
	"github.com/audioguide-discovery/internal/pkg/validator"
	"github.com/audioguide-discovery/internal/usecase/dto"
)

// GuideHandler - guide listing and play counting
type GuideHandler struct {
	guides GuideFinder
	plays  PlayRecorder
	logger *zap.Logger
}

func NewGuideHandler(guides GuideFinder, plays PlayRecorder, logger *zap.Logger) *GuideHandler {
	return &GuideHandler{
		guides: guides,
		plays:  plays,
		logger: logger,
	}
}

// Nearby godoc
// @Summary Guides near a point
// @Description Returns guides in the language within the search radius, closest first, with distance in meters
// @Tags Guides
// @Produce json
// @Param latitude query number true "Latitude"
// @Param longitude query number true "Longitude"
// @Param language query string true "Language code (en, fr, pt; any case)"
// @Success 200 {object} dto.GuidesResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /guides [get]
func (h *GuideHandler) Nearby(c *fiber.Ctx) error {
	var req dto.GuidesRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidCoordinates)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	guides, err := h.guides.Nearby(c.UserContext(), *req.Latitude, *req.Longitude, req.Language)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, dto.GuidesResponse{Guides: guides})
}

// Play godoc
// @Summary Count a play
// @Description Records that the guide's audio started playing. Applied asynchronously.
// @Tags Guides
// @Produce json
// @Param guideId path int true "Guide ID"
// @Success 202 {object} dto.PlayResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Router /guides/{guideId}/play [post]
func (h *GuideHandler) Play(c *fiber.Ctx) error {
	id, err := parseGuideID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.plays.Record(c.UserContext(), id, c.IP()); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusAccepted, dto.PlayResponse{Status: "accepted"})
}

func parseGuideID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("guideId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrInvalidGuideID
	}
	return id, nil
}
