package domain

const (
	MediaKindPhoto = "photo"
	MediaKindAudio = "audio"
)

// MediaItem is a row of guide_media.
type MediaItem struct {
	GuideID  int64  `db:"guide_id"`
	Kind     string `db:"kind"`
	URL      string `db:"url"`
	Position int    `db:"position"`
}

// MediaBundle holds the assets of one guide: ordered photos and at most one audio file.
type MediaBundle struct {
	Photos []string `json:"photos"`
	Audio  *string  `json:"audio"`
}

// NewMediaBundle folds rows (already ordered by position) into a bundle.
// Only the first audio row is kept.
func NewMediaBundle(items []MediaItem) MediaBundle {
	bundle := MediaBundle{Photos: make([]string, 0, len(items))}
	for _, it := range items {
		switch it.Kind {
		case MediaKindPhoto:
			bundle.Photos = append(bundle.Photos, it.URL)
		case MediaKindAudio:
			if bundle.Audio == nil {
				url := it.URL
				bundle.Audio = &url
			}
		}
	}
	return bundle
}
