package discovery

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultLanguage is used when neither the options nor the store name one.
const DefaultLanguage = "en"

const msgGuidesFailed = "Failed to fetch guides"

// FallbackCenter centres the map when no position is known (Lisbon).
var FallbackCenter = Coordinate{Latitude: 38.7122, Longitude: -9.134}

// Options configure a Coordinator.
type Options struct {
	// Language overrides the stored language for this session.
	Language      string
	LanguageStore LanguageStore
	Geolocator    Geolocator
	Audio         AudioFactory
	// MediaBaseURL resolves relative photo and audio URLs.
	MediaBaseURL  string
	DebounceDelay time.Duration
}

// Snapshot is an immutable view of the coordinator state.
type Snapshot struct {
	Language string

	LivePosition *Coordinate
	GeoStatus    GeoStatus
	GeoMessage   string

	SelectedLocation LocationOption
	LocationOptions  []LocationOption
	TagOptions       []TagOption
	SelectedTags     []TagOption

	// Guides is nil until the first fetch completes.
	Guides        []Guide
	VisibleGuides []Guide
	Loading       bool
	Error         string
	Status        Status

	Sort SortMode
	Tab  Tab

	SelectedGuide *Guide
	Media         MediaBundle
	CarouselIndex int
	CurrentPhoto  string
	Playback      PlaybackState

	MapCenter Coordinate
	MapKey    string
}

// Coordinator is the single source of truth of the discovery screen. Every
// remote call runs in its own goroutine; responses that were superseded by a
// newer request are dropped.
type Coordinator struct {
	logger *zap.Logger
	store  LanguageStore

	geo      *GeolocationProvider
	search   *LocationSearchService
	tagsCat  *TagCatalog
	guideCat *GuideCatalog
	media    *MediaLoader
	playback *PlaybackController

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// selMu orders selection changes with audio binding; taken before mu
	// and never held by notify
	selMu sync.Mutex

	mu               sync.RWMutex
	closed           bool
	language         string
	live             *Coordinate
	geoStatus        GeoStatus
	geoMessage       string
	selectedLocation LocationOption
	locationOptions  []LocationOption
	tagOptions       []TagOption
	selectedTags     []TagOption
	guides           []Guide
	loading          bool
	guideErr         string
	sort             SortMode
	tab              Tab
	selected         *Guide
	bundle           MediaBundle
	carousel         int

	guideGen    uint64
	guideCancel context.CancelFunc
	tagGen      uint64
	tagCancel   context.CancelFunc
	mediaGen    uint64
	mediaCancel context.CancelFunc

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewCoordinator wires the discovery components over remote.
func NewCoordinator(remote Remote, opts Options, logger *zap.Logger) *Coordinator {
	store := opts.LanguageStore
	if store == nil {
		store = NewMemoryLanguageStore(DefaultLanguage)
	}

	language := NormalizeLanguage(opts.Language)
	if language == "" {
		language = NormalizeLanguage(store.Language())
	}
	if language == "" {
		language = DefaultLanguage
	}

	audio := opts.Audio
	if audio == nil {
		audio = func(string) (AudioResource, error) { return nil, ErrNoAudio }
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		logger:           logger,
		store:            store,
		geo:              NewGeolocationProvider(opts.Geolocator, logger),
		tagsCat:          NewTagCatalog(remote, logger),
		guideCat:         NewGuideCatalog(remote, logger),
		media:            NewMediaLoader(remote, opts.MediaBaseURL, logger),
		playback:         NewPlaybackController(audio, remote, logger),
		ctx:              ctx,
		cancel:           cancel,
		language:         language,
		geoStatus:        GeoPending,
		selectedLocation: NearMe(nil),
		locationOptions:  []LocationOption{NearMe(nil)},
		tagOptions:       []TagOption{},
		selectedTags:     []TagOption{},
		sort:             SortClosest,
		tab:              TabList,
		bundle:           MediaBundle{Photos: []string{}},
		subs:             make(map[int]func(Snapshot)),
	}

	c.search = NewLocationSearchService(remote, c.liveCoordinate, opts.DebounceDelay, logger)
	c.playback.OnCounted(c.bumpPlays)
	c.playback.OnStateChange(func(PlaybackState) { c.notify() })

	return c
}

// Start acquires the position and loads tags; guides follow once a
// coordinate is known.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.refreshTagsLocked()
	geoCtx, cancel := context.WithCancel(c.ctx)
	stop := context.AfterFunc(ctx, cancel)
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer stop()
		defer cancel()
		pos := c.geo.Acquire(geoCtx)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.geoStatus = pos.Status
		c.geoMessage = pos.Message
		c.live = pos.Coordinate
		if c.selectedLocation.IsNearMe() {
			c.selectedLocation = NearMe(c.live)
		}
		if len(c.locationOptions) > 0 && c.locationOptions[0].IsNearMe() {
			c.locationOptions[0] = NearMe(c.live)
		}
		c.refreshGuidesLocked()
		c.mu.Unlock()

		c.notify()
	}()

	c.notify()
}

func (c *Coordinator) liveCoordinate() *Coordinate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.live == nil {
		return nil
	}
	live := *c.live
	return &live
}

// effectiveCoordinateLocked prefers the chosen location over the live one.
func (c *Coordinator) effectiveCoordinateLocked() (Coordinate, bool) {
	if c.selectedLocation.Coordinate != nil {
		return *c.selectedLocation.Coordinate, true
	}
	if c.live != nil {
		return *c.live, true
	}
	return Coordinate{}, false
}

func (c *Coordinator) refreshGuidesLocked() {
	c.guideGen++
	gen := c.guideGen
	if c.guideCancel != nil {
		c.guideCancel()
		c.guideCancel = nil
	}

	at, ok := c.effectiveCoordinateLocked()
	if !ok {
		c.loading = false
		c.logger.Debug("No coordinate yet, skipping guide fetch")
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.guideCancel = cancel
	c.loading = true
	c.guideErr = ""
	language := c.language

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		guides, err := c.guideCat.Fetch(ctx, at, language)

		c.mu.Lock()
		if gen != c.guideGen || c.closed {
			c.mu.Unlock()
			return
		}
		c.guideCancel = nil
		c.loading = false
		if err != nil {
			c.logger.Error("Guide fetch failed", zap.Error(err))
			c.guideErr = msgGuidesFailed
			c.guides = []Guide{}
		} else {
			c.guides = guides
		}
		c.mu.Unlock()

		c.notify()
	}()
}

func (c *Coordinator) refreshTagsLocked() {
	c.tagGen++
	gen := c.tagGen
	if c.tagCancel != nil {
		c.tagCancel()
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.tagCancel = cancel
	language := c.language

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		tags := c.tagsCat.Fetch(ctx, language)

		c.mu.Lock()
		if gen != c.tagGen || c.closed {
			c.mu.Unlock()
			return
		}
		c.tagCancel = nil
		c.tagOptions = tags
		c.mu.Unlock()

		c.notify()
	}()
}

// SetLanguage persists code and reloads tags and guides for it. Selected
// tags belong to the old language and are cleared.
func (c *Coordinator) SetLanguage(code string) {
	code = NormalizeLanguage(code)
	if code == "" {
		return
	}

	c.mu.Lock()
	if c.closed || code == c.language {
		c.mu.Unlock()
		return
	}
	if err := c.store.SetLanguage(code); err != nil {
		c.logger.Warn("Failed to persist language", zap.String("language", code), zap.Error(err))
	}
	c.language = code
	c.selectedTags = []TagOption{}
	c.refreshTagsLocked()
	c.refreshGuidesLocked()
	c.mu.Unlock()

	c.notify()
}

// SearchLocations debounces a place lookup; the newest result replaces the
// location options.
func (c *Coordinator) SearchLocations(text string) {
	c.search.Search(text, func(options []LocationOption) {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.locationOptions = options
		c.mu.Unlock()

		c.notify()
	})
}

// SelectLocation switches the lookup point and refetches guides.
func (c *Coordinator) SelectLocation(opt LocationOption) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if opt.IsNearMe() {
		opt = NearMe(c.live)
	} else if opt.Coordinate != nil {
		coord := *opt.Coordinate
		opt.Coordinate = &coord
	}
	c.selectedLocation = opt
	c.refreshGuidesLocked()
	c.mu.Unlock()

	c.notify()
}

// SetSelectedTags changes the filter; nothing is refetched.
func (c *Coordinator) SetSelectedTags(tags []TagOption) {
	c.mu.Lock()
	c.selectedTags = append([]TagOption{}, tags...)
	c.mu.Unlock()

	c.notify()
}

func (c *Coordinator) SetSort(mode SortMode) {
	c.mu.Lock()
	c.sort = mode
	c.mu.Unlock()

	c.notify()
}

// SetTab switches between list and map; nothing is refetched.
func (c *Coordinator) SetTab(tab Tab) {
	c.mu.Lock()
	c.tab = tab
	c.mu.Unlock()

	c.notify()
}

// SelectGuide opens a guide from the current list and loads its media.
func (c *Coordinator) SelectGuide(id GuideID) error {
	c.selMu.Lock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.selMu.Unlock()
		return ErrClosed
	}

	var found *Guide
	for i := range c.guides {
		if c.guides[i].ID == id {
			g := c.guides[i].clone()
			found = &g
			break
		}
	}
	if found == nil {
		c.mu.Unlock()
		c.selMu.Unlock()
		return ErrGuideNotFound
	}

	c.dropSelectionLocked()
	c.selected = found
	gen := c.mediaGen
	ctx, cancel := context.WithCancel(c.ctx)
	c.mediaCancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	c.playback.Release()
	c.selMu.Unlock()

	go func() {
		defer c.wg.Done()
		defer cancel()

		bundle := c.media.Fetch(ctx, id)

		c.selMu.Lock()
		defer c.selMu.Unlock()

		c.mu.Lock()
		if gen != c.mediaGen || c.closed {
			c.mu.Unlock()
			return
		}
		c.mediaCancel = nil
		c.bundle = bundle
		c.carousel = 0
		c.mu.Unlock()

		if err := c.playback.Bind(id, bundle.Audio); err != nil {
			c.logger.Warn("Failed to load guide audio", zap.String("guide_id", id.String()), zap.Error(err))
		}
		c.notify()
	}()

	c.notify()
	return nil
}

// ClearSelection closes the open guide, dropping its media and audio.
func (c *Coordinator) ClearSelection() {
	c.selMu.Lock()
	c.mu.Lock()
	c.dropSelectionLocked()
	c.mu.Unlock()
	c.playback.Release()
	c.selMu.Unlock()

	c.notify()
}

// dropSelectionLocked resets the selection state and invalidates any media
// fetch in flight. The caller releases the audio.
func (c *Coordinator) dropSelectionLocked() {
	c.mediaGen++
	if c.mediaCancel != nil {
		c.mediaCancel()
		c.mediaCancel = nil
	}
	c.selected = nil
	c.bundle = MediaBundle{Photos: []string{}}
	c.carousel = 0
}

func (c *Coordinator) NextImage() {
	c.mu.Lock()
	c.carousel = nextIndex(c.carousel, len(c.bundle.Photos))
	c.mu.Unlock()

	c.notify()
}

func (c *Coordinator) PrevImage() {
	c.mu.Lock()
	c.carousel = prevIndex(c.carousel, len(c.bundle.Photos))
	c.mu.Unlock()

	c.notify()
}

// TogglePlay is the play/pause button of the open guide.
func (c *Coordinator) TogglePlay(ctx context.Context) error {
	return c.playback.Toggle(ctx)
}

func (c *Coordinator) Play(ctx context.Context) error {
	return c.playback.Play(ctx)
}

func (c *Coordinator) Pause() {
	c.playback.Pause()
}

// bumpPlays mirrors a counted play locally until the next refetch.
func (c *Coordinator) bumpPlays(id GuideID) {
	c.mu.Lock()
	for i := range c.guides {
		if c.guides[i].ID == id {
			n := c.guides[i].PlayCount() + 1
			c.guides[i].Plays = &n
		}
	}
	if c.selected != nil && c.selected.ID == id {
		n := c.selected.PlayCount() + 1
		c.selected.Plays = &n
	}
	c.mu.Unlock()

	c.notify()
}

// Subscribe registers fn to receive a snapshot after every change. fn may be
// called from several goroutines. The returned func unsubscribes.
func (c *Coordinator) Subscribe(fn func(Snapshot)) func() {
	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

func (c *Coordinator) notify() {
	c.subsMu.Lock()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()

	if len(subs) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range subs {
		fn(snap)
	}
}

// Snapshot returns the current state with the derived views filled in.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Language:         c.language,
		GeoStatus:        c.geoStatus,
		GeoMessage:       c.geoMessage,
		SelectedLocation: copyOption(c.selectedLocation),
		LocationOptions:  make([]LocationOption, 0, len(c.locationOptions)),
		TagOptions:       append([]TagOption{}, c.tagOptions...),
		SelectedTags:     append([]TagOption{}, c.selectedTags...),
		Loading:          c.loading,
		Error:            c.guideErr,
		Sort:             c.sort,
		Tab:              c.tab,
		Media: MediaBundle{
			Photos: append([]string{}, c.bundle.Photos...),
			Audio:  c.bundle.Audio,
		},
		CarouselIndex: c.carousel,
		Playback:      c.playback.State(),
	}

	if c.live != nil {
		live := *c.live
		s.LivePosition = &live
	}
	for _, o := range c.locationOptions {
		s.LocationOptions = append(s.LocationOptions, copyOption(o))
	}
	if c.guides != nil {
		s.Guides = make([]Guide, 0, len(c.guides))
		for _, g := range c.guides {
			s.Guides = append(s.Guides, g.clone())
		}
		s.VisibleGuides = SortGuides(FilterByTags(s.Guides, tagValues(c.selectedTags)), c.sort)
	}
	if c.selected != nil {
		g := c.selected.clone()
		s.SelectedGuide = &g
	}
	if len(s.Media.Photos) > 0 {
		s.CurrentPhoto = s.Media.Photos[c.carousel]
	}

	s.Status = c.statusLocked(s.VisibleGuides)
	if s.Status == StatusError && s.Error == "" {
		s.Error = c.geoMessage
	}

	s.MapCenter = FallbackCenter
	if at, ok := c.effectiveCoordinateLocked(); ok {
		s.MapCenter = at
	}
	s.MapKey = c.mapKeyLocked()

	return s
}

func (c *Coordinator) statusLocked(visible []Guide) Status {
	switch {
	case c.guideErr != "":
		return StatusError
	case c.guides == nil:
		_, ok := c.effectiveCoordinateLocked()
		if !ok && c.geoStatus != GeoPending && c.geoStatus != GeoAvailable {
			return StatusError
		}
		return StatusLoading
	case len(visible) == 0:
		return StatusEmpty
	default:
		return StatusReady
	}
}

// mapKeyLocked changes whenever the map has to be redrawn from scratch.
func (c *Coordinator) mapKeyLocked() string {
	var b strings.Builder
	b.WriteString(c.selectedLocation.Label)
	b.WriteByte('-')
	b.WriteString(strings.Join(tagValues(c.selectedTags), ","))
	if c.live != nil {
		b.WriteByte('-')
		b.WriteString(strconv.FormatFloat(c.live.Latitude, 'f', -1, 64))
		b.WriteByte('-')
		b.WriteString(strconv.FormatFloat(c.live.Longitude, 'f', -1, 64))
	}
	return b.String()
}

func copyOption(o LocationOption) LocationOption {
	if o.Coordinate != nil {
		coord := *o.Coordinate
		o.Coordinate = &coord
	}
	return o
}

// Wait blocks until no fetch, search or play-count update is in flight.
func (c *Coordinator) Wait() {
	c.search.Wait()
	c.wg.Wait()
	c.playback.Wait()
}

// Close cancels everything in flight and releases the audio.
func (c *Coordinator) Close() {
	c.selMu.Lock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.selMu.Unlock()
		return
	}
	c.closed = true
	c.dropSelectionLocked()
	c.mu.Unlock()
	c.selMu.Unlock()

	c.search.Stop()
	c.cancel()
	c.playback.Dispose()
	c.wg.Wait()
}
