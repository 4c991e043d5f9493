package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/audioguide-discovery/internal/pkg/utils"
	"github.com/audioguide-discovery/internal/pkg/validator"
	"github.com/audioguide-discovery/internal/usecase/dto"
)

// CatalogHandler - tags, places, media and landing page aggregates
type CatalogHandler struct {
	tags   TagLister
	places PlaceSearcher
	media  MediaProvider
	stats  StatsProvider
	logger *zap.Logger
}

func NewCatalogHandler(
	tags TagLister,
	places PlaceSearcher,
	media MediaProvider,
	stats StatsProvider,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		tags:   tags,
		places: places,
		media:  media,
		stats:  stats,
		logger: logger,
	}
}

// Tags godoc
// @Summary Filter tags
// @Description Distinct tags of the guides published in a language
// @Tags Catalog
// @Produce json
// @Param language query string true "Language code"
// @Success 200 {object} dto.TagsResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /tags [get]
func (h *CatalogHandler) Tags(c *fiber.Ctx) error {
	req := dto.TagsRequest{Language: c.Query("language")}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	tags, err := h.tags.List(c.UserContext(), req.Language)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, dto.TagsResponse{Tags: tags})
}

// Locations godoc
// @Summary Search places
// @Description Places matching free text, coordinates rendered as "lat,lon"
// @Tags Catalog
// @Produce json
// @Param location query string false "Search text"
// @Success 200 {array} dto.LocationResult
// @Failure 400 {object} utils.ErrorResponse
// @Router /locations [get]
func (h *CatalogHandler) Locations(c *fiber.Ctx) error {
	req := dto.LocationsRequest{Location: c.Query("location")}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	places, err := h.places.Search(c.UserContext(), req.Location)
	if err != nil {
		return utils.SendError(c, err)
	}

	result := make([]dto.LocationResult, 0, len(places))
	for _, p := range places {
		result = append(result, dto.NewLocationResult(p))
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}

// Media godoc
// @Summary Guide media
// @Description Ordered photo URLs and the audio URL (null when absent)
// @Tags Catalog
// @Produce json
// @Param guideId path int true "Guide ID"
// @Success 200 {object} domain.MediaBundle
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /media/{guideId} [get]
func (h *CatalogHandler) Media(c *fiber.Ctx) error {
	id, err := parseGuideID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	bundle, err := h.media.Get(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, bundle)
}

// AvailableGuides godoc
// @Summary Guides per city
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.CityGuideCount
// @Failure 500 {object} utils.ErrorResponse
// @Router /availableguides [get]
func (h *CatalogHandler) AvailableGuides(c *fiber.Ctx) error {
	rows, err := h.stats.AvailableGuides(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to get available guides", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, rows)
}

// Statistics godoc
// @Summary Catalogue statistics
// @Tags Catalog
// @Produce json
// @Success 200 {object} domain.Statistics
// @Failure 500 {object} utils.ErrorResponse
// @Router /stats [get]
func (h *CatalogHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.stats.GetStatistics(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to get statistics", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, stats)
}
