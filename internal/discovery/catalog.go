package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// TagCatalog loads the filter tags of a language.
type TagCatalog struct {
	source TagSource
	logger *zap.Logger
}

func NewTagCatalog(source TagSource, logger *zap.Logger) *TagCatalog {
	return &TagCatalog{source: source, logger: logger}
}

// Fetch never fails: a backend error yields no tags.
func (c *TagCatalog) Fetch(ctx context.Context, language string) []TagOption {
	tags, err := c.source.Tags(ctx, language)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("Failed to fetch tags", zap.String("language", language), zap.Error(err))
		}
		return []TagOption{}
	}

	options := make([]TagOption, 0, len(tags))
	for _, t := range tags {
		options = append(options, TagOption{Label: t, Value: t})
	}
	return options
}

// GuideCatalog loads the guides around a coordinate.
type GuideCatalog struct {
	source GuideSource
	logger *zap.Logger
}

func NewGuideCatalog(source GuideSource, logger *zap.Logger) *GuideCatalog {
	return &GuideCatalog{source: source, logger: logger}
}

// Fetch sends the language upper-cased, as the backend documents it.
func (c *GuideCatalog) Fetch(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
	guides, err := c.source.Guides(ctx, at, strings.ToUpper(language))
	if err != nil {
		return nil, fmt.Errorf("fetch guides: %w", err)
	}
	if guides == nil {
		guides = []Guide{}
	}
	c.logger.Debug("Guides fetched",
		zap.Float64("lat", at.Latitude),
		zap.Float64("lon", at.Longitude),
		zap.Int("count", len(guides)))
	return guides, nil
}

// MediaLoader loads the media of the selected guide.
type MediaLoader struct {
	source MediaSource
	base   *url.URL
	logger *zap.Logger
}

// NewMediaLoader creates a loader; relative media URLs are resolved against
// baseURL when it parses.
func NewMediaLoader(source MediaSource, baseURL string, logger *zap.Logger) *MediaLoader {
	l := &MediaLoader{source: source, logger: logger}
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil {
			l.base = u
		} else {
			logger.Warn("Ignoring invalid media base URL", zap.String("url", baseURL), zap.Error(err))
		}
	}
	return l
}

// Fetch never fails: a backend error yields an empty bundle.
func (l *MediaLoader) Fetch(ctx context.Context, id GuideID) MediaBundle {
	bundle, err := l.source.Media(ctx, id)
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Warn("Failed to fetch media", zap.String("guide_id", id.String()), zap.Error(err))
		}
		return MediaBundle{Photos: []string{}}
	}

	photos := make([]string, 0, len(bundle.Photos))
	for _, p := range bundle.Photos {
		photos = append(photos, l.resolve(p))
	}

	return MediaBundle{
		Photos: photos,
		Audio:  l.resolve(bundle.Audio),
	}
}

func (l *MediaLoader) resolve(ref string) string {
	if ref == "" || l.base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return l.base.ResolveReference(u).String()
}
