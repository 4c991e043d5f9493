package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var lisbon = Coordinate{Latitude: 38.7223, Longitude: -9.1393}

func scenarioGuides() []Guide {
	return []Guide{
		{ID: "1", Title: "Belem Tower", Distance: f64(500), Plays: i64(10), Tags: []string{"history"},
			Latitude: f64(38.6916), Longitude: f64(-9.216)},
		{ID: "2", Title: "Alfama", Plays: i64(900), Tags: []string{"history", "walk"}},
	}
}

func newTestCoordinator(t *testing.T, remote *fakeRemote, opts Options) (*Coordinator, *audioLog) {
	t.Helper()
	log := &audioLog{}
	if opts.Audio == nil {
		opts.Audio = log.factory()
	}
	if opts.Geolocator == nil {
		opts.Geolocator = StaticGeolocator{Coordinate: &lisbon}
	}
	opts.DebounceDelay = testDelay
	c := NewCoordinator(remote, opts, zap.NewNop())
	t.Cleanup(c.Close)
	return c, log
}

func TestCoordinator_StartLoadsTagsAndGuides(t *testing.T) {
	remote := &fakeRemote{
		tags: func(ctx context.Context, language string) ([]string, error) {
			return []string{"history", "walk"}, nil
		},
		guides: func(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
			return scenarioGuides(), nil
		},
	}
	c, _ := newTestCoordinator(t, remote, Options{Language: "PT"})

	before := c.Snapshot()
	assert.Equal(t, StatusLoading, before.Status)
	assert.Nil(t, before.Guides)

	c.Start(context.Background())
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, "pt", snap.Language)
	assert.Equal(t, GeoAvailable, snap.GeoStatus)
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, []TagOption{{Label: "history", Value: "history"}, {Label: "walk", Value: "walk"}}, snap.TagOptions)
	assert.Equal(t, []GuideID{"1", "2"}, ids(snap.VisibleGuides))
	assert.Equal(t, lisbon, snap.MapCenter)
	require.NotNil(t, snap.SelectedLocation.Coordinate)
	assert.Equal(t, lisbon, *snap.SelectedLocation.Coordinate)

	calls := remote.GuideCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "PT", calls[0].Language)
	assert.Equal(t, lisbon, calls[0].At)
}

func TestCoordinator_SortAndFilterAreClientSide(t *testing.T) {
	remote := &fakeRemote{guides: func(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
		return scenarioGuides(), nil
	}}
	c, _ := newTestCoordinator(t, remote, Options{})
	c.Start(context.Background())
	c.Wait()

	c.SetSort(SortPopularity)
	assert.Equal(t, []GuideID{"2", "1"}, ids(c.Snapshot().VisibleGuides))

	c.SetSort(SortClosest)
	assert.Equal(t, []GuideID{"1", "2"}, ids(c.Snapshot().VisibleGuides))

	c.SetSelectedTags([]TagOption{{Label: "walk", Value: "walk"}})
	snap := c.Snapshot()
	assert.Equal(t, []GuideID{"2"}, ids(snap.VisibleGuides))
	assert.Equal(t, "📍 Near me-walk-38.7223--9.1393", snap.MapKey)

	c.SetSelectedTags([]TagOption{{Value: "food"}})
	assert.Equal(t, StatusEmpty, c.Snapshot().Status)

	c.SetTab(TabMap)
	c.Wait()
	assert.Equal(t, TabMap, c.Snapshot().Tab)
	assert.Len(t, remote.GuideCalls(), 1, "tag, sort and tab changes never refetch")
}

func TestCoordinator_NoCoordinateNoFetch(t *testing.T) {
	remote := &fakeRemote{}
	c, _ := newTestCoordinator(t, remote, Options{Geolocator: StaticGeolocator{}})
	c.Start(context.Background())
	c.Wait()

	snap := c.Snapshot()
	assert.Empty(t, remote.GuideCalls())
	assert.Equal(t, GeoUnsupported, snap.GeoStatus)
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "Geolocation not supported", snap.Error)
	assert.Equal(t, FallbackCenter, snap.MapCenter)

	// a chosen location is enough to fetch
	porto := Coordinate{Latitude: 41.1579, Longitude: -8.6291}
	c.SelectLocation(LocationOption{Label: "Porto", Coordinate: &porto})
	c.Wait()

	calls := remote.GuideCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, porto, calls[0].At)
	assert.Equal(t, StatusEmpty, c.Snapshot().Status)
	assert.Equal(t, porto, c.Snapshot().MapCenter)
}

func TestCoordinator_GuideFetchFailure(t *testing.T) {
	remote := &fakeRemote{guides: func(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
		return nil, errors.New("500")
	}}
	c, _ := newTestCoordinator(t, remote, Options{})
	c.Start(context.Background())
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "Failed to fetch guides", snap.Error)
	assert.False(t, snap.Loading)
	assert.NotNil(t, snap.Guides)
	assert.Empty(t, snap.Guides)
	assert.Len(t, remote.GuideCalls(), 1, "no retry")
}

func TestCoordinator_OutdatedGuideResponseDiscarded(t *testing.T) {
	porto := Coordinate{Latitude: 41.1579, Longitude: -8.6291}
	lisbonStarted := make(chan struct{})
	releaseLisbon := make(chan struct{})
	var once sync.Once

	remote := &fakeRemote{guides: func(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
		if at == lisbon {
			once.Do(func() { close(lisbonStarted) })
			<-releaseLisbon
			return []Guide{{ID: "lisbon"}}, nil
		}
		return []Guide{{ID: "porto"}}, nil
	}}
	c, _ := newTestCoordinator(t, remote, Options{})
	c.Start(context.Background())
	<-lisbonStarted

	c.SelectLocation(LocationOption{Label: "Porto", Coordinate: &porto})
	require.Eventually(t, func() bool {
		return len(c.Snapshot().Guides) == 1
	}, testWait, testTick)

	close(releaseLisbon)
	c.Wait()

	assert.Equal(t, []GuideID{"porto"}, ids(c.Snapshot().Guides))
}

func TestCoordinator_SetLanguage(t *testing.T) {
	remote := &fakeRemote{}
	store := NewMemoryLanguageStore("en")
	c, _ := newTestCoordinator(t, remote, Options{LanguageStore: store})
	c.Start(context.Background())
	c.Wait()
	c.SetSelectedTags([]TagOption{{Value: "history"}})

	c.SetLanguage("FR")
	c.Wait()

	assert.Equal(t, "fr", store.Language())
	assert.Equal(t, "fr", c.Snapshot().Language)
	assert.Empty(t, c.Snapshot().SelectedTags)
	assert.Equal(t, []string{"en", "fr"}, remote.TagCalls())

	calls := remote.GuideCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "FR", calls[1].Language)

	c.SetLanguage("fr")
	c.Wait()
	assert.Len(t, remote.GuideCalls(), 2, "same language does not refetch")
}

func TestCoordinator_SearchAndSelectLocation(t *testing.T) {
	remote := &fakeRemote{locations: func(ctx context.Context, text string) ([]RemoteLocation, error) {
		return []RemoteLocation{{Name: "Porto", City: "Porto", Coordinates: "41.1579,-8.6291"}}, nil
	}}
	c, _ := newTestCoordinator(t, remote, Options{})
	c.Start(context.Background())
	c.Wait()

	c.SearchLocations("por")
	c.Wait()

	opts := c.Snapshot().LocationOptions
	require.Len(t, opts, 2)
	assert.True(t, opts[0].IsNearMe())
	require.NotNil(t, opts[0].Coordinate, "near me carries the live position")
	assert.Equal(t, "Porto", opts[1].Label)

	c.SelectLocation(opts[1])
	c.Wait()
	assert.Equal(t, opts[1].Coordinate.Latitude, remote.GuideCalls()[1].At.Latitude)

	// back to near me uses the live position
	c.SelectLocation(LocationOption{Label: NearMeLabel})
	c.Wait()
	assert.Equal(t, lisbon, remote.GuideCalls()[2].At)
}

func TestCoordinator_SelectionAndCarousel(t *testing.T) {
	remote := &fakeRemote{
		guides: func(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
			return scenarioGuides(), nil
		},
		media: func(ctx context.Context, id GuideID) (MediaBundle, error) {
			if id == "1" {
				return MediaBundle{Photos: []string{"/p/0.jpg", "/p/1.jpg", "/p/2.jpg"}, Audio: "/a/1.mp3"}, nil
			}
			return MediaBundle{Photos: []string{"/p/x.jpg"}, Audio: "/a/2.mp3"}, nil
		},
	}
	c, log := newTestCoordinator(t, remote, Options{MediaBaseURL: "http://api.test"})
	c.Start(context.Background())
	c.Wait()

	require.NoError(t, c.SelectGuide("1"))
	c.Wait()

	snap := c.Snapshot()
	require.NotNil(t, snap.SelectedGuide)
	assert.Equal(t, "Belem Tower", snap.SelectedGuide.Title)
	assert.Equal(t, "http://api.test/a/1.mp3", snap.Media.Audio)
	assert.Equal(t, "http://api.test/p/0.jpg", snap.CurrentPhoto)

	var seq []int
	for i := 0; i < 3; i++ {
		c.PrevImage()
		seq = append(seq, c.Snapshot().CarouselIndex)
	}
	assert.Equal(t, []int{2, 1, 0}, seq)

	seq = nil
	for i := 0; i < 3; i++ {
		c.NextImage()
		seq = append(seq, c.Snapshot().CarouselIndex)
	}
	assert.Equal(t, []int{1, 2, 0}, seq)

	// play A, then open B: index resets, playback stops, A closes before B opens
	c.NextImage()
	require.NoError(t, c.TogglePlay(context.Background()))
	assert.Equal(t, PlaybackPlaying, c.Snapshot().Playback)

	require.NoError(t, c.SelectGuide("2"))
	c.Wait()

	snap = c.Snapshot()
	assert.Equal(t, GuideID("2"), snap.SelectedGuide.ID)
	assert.Equal(t, 0, snap.CarouselIndex)
	assert.Equal(t, PlaybackIdle, snap.Playback)
	assert.Equal(t, []string{
		"open http://api.test/a/1.mp3",
		"play http://api.test/a/1.mp3",
		"pause http://api.test/a/1.mp3",
		"close http://api.test/a/1.mp3",
		"open http://api.test/a/2.mp3",
	}, log.Events())

	assert.ErrorIs(t, c.SelectGuide("missing"), ErrGuideNotFound)
}

func TestCoordinator_PlayBumpsCountOnce(t *testing.T) {
	remote := &fakeRemote{
		guides: func(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
			return scenarioGuides(), nil
		},
		media: func(ctx context.Context, id GuideID) (MediaBundle, error) {
			return MediaBundle{Audio: "/a.mp3"}, nil
		},
	}
	c, _ := newTestCoordinator(t, remote, Options{})
	c.Start(context.Background())
	c.Wait()
	require.NoError(t, c.SelectGuide("1"))
	c.Wait()

	ctx := context.Background()
	require.NoError(t, c.Play(ctx))
	require.NoError(t, c.Play(ctx))
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, []GuideID{"1"}, remote.PlayCalls())
	assert.Equal(t, int64(11), snap.SelectedGuide.PlayCount())
	assert.Equal(t, int64(11), snap.Guides[0].PlayCount())

	c.Pause()
	require.NoError(t, c.TogglePlay(ctx))
	c.Wait()
	assert.Len(t, remote.PlayCalls(), 2)
	assert.Equal(t, int64(12), c.Snapshot().SelectedGuide.PlayCount())
}

func TestCoordinator_ClearSelection(t *testing.T) {
	mediaStarted := make(chan struct{})
	remote := &fakeRemote{
		guides: func(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
			return scenarioGuides(), nil
		},
		media: func(ctx context.Context, id GuideID) (MediaBundle, error) {
			close(mediaStarted)
			<-ctx.Done()
			return MediaBundle{}, ctx.Err()
		},
	}
	c, log := newTestCoordinator(t, remote, Options{})
	c.Start(context.Background())
	c.Wait()

	require.NoError(t, c.SelectGuide("1"))
	<-mediaStarted
	c.ClearSelection()
	c.Wait()

	snap := c.Snapshot()
	assert.Nil(t, snap.SelectedGuide)
	assert.Empty(t, snap.Media.Photos)
	assert.Empty(t, snap.Media.Audio)
	assert.Empty(t, log.Events(), "cancelled media never binds audio")
	assert.ErrorIs(t, c.Play(context.Background()), ErrNoAudio)
}

func TestCoordinator_Subscribe(t *testing.T) {
	remote := &fakeRemote{guides: func(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
		return scenarioGuides(), nil
	}}
	c, _ := newTestCoordinator(t, remote, Options{})

	var mu sync.Mutex
	var statuses []Status
	unsubscribe := c.Subscribe(func(s Snapshot) {
		mu.Lock()
		statuses = append(statuses, s.Status)
		mu.Unlock()
	})

	c.Start(context.Background())
	c.Wait()
	unsubscribe()

	mu.Lock()
	n := len(statuses)
	assert.Contains(t, statuses, StatusReady)
	mu.Unlock()

	c.SetTab(TabMap)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, statuses, n, "no deliveries after unsubscribe")
}

func TestCoordinator_CloseIsFinal(t *testing.T) {
	c, _ := newTestCoordinator(t, &fakeRemote{}, Options{})
	c.Close()
	c.Close()

	assert.ErrorIs(t, c.SelectGuide("1"), ErrClosed)
}

// slowGeolocator answers after delay unless ctx ends first.
type slowGeolocator struct {
	delay   time.Duration
	started chan struct{}
}

func (g slowGeolocator) Locate(ctx context.Context) (Coordinate, error) {
	close(g.started)
	select {
	case <-time.After(g.delay):
		return lisbon, nil
	case <-ctx.Done():
		return Coordinate{}, ctx.Err()
	}
}

func TestCoordinator_CloseDuringGeolocation(t *testing.T) {
	geo := slowGeolocator{delay: 5 * time.Second, started: make(chan struct{})}
	remote := &fakeRemote{}
	c, _ := newTestCoordinator(t, remote, Options{Geolocator: geo})

	c.Start(context.Background())
	<-geo.started

	start := time.Now()
	c.Close()

	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, remote.GuideCalls())
}

func TestCoordinator_StartContextCancelsGeolocation(t *testing.T) {
	geo := slowGeolocator{delay: 5 * time.Second, started: make(chan struct{})}
	c, _ := newTestCoordinator(t, &fakeRemote{}, Options{Geolocator: geo})

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	<-geo.started
	cancel()

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("geolocation ignored the start context")
	}
	assert.Equal(t, GeoUnavailable, c.Snapshot().GeoStatus)
}

func TestCoordinator_PlayCountSurvivesClickContext(t *testing.T) {
	remote := &fakeRemote{
		guides: func(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
			return scenarioGuides(), nil
		},
		media: func(ctx context.Context, id GuideID) (MediaBundle, error) {
			return MediaBundle{Audio: "/a.mp3"}, nil
		},
		plays: func(ctx context.Context, id GuideID) error {
			time.Sleep(20 * time.Millisecond)
			return ctx.Err()
		},
	}
	c, _ := newTestCoordinator(t, remote, Options{})
	c.Start(context.Background())
	c.Wait()
	require.NoError(t, c.SelectGuide("1"))
	c.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.TogglePlay(ctx))
	cancel()
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, PlaybackPlaying, snap.Playback)
	assert.Equal(t, int64(11), snap.SelectedGuide.PlayCount())
}
