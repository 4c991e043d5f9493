package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/audioguide-discovery/internal/client/api"
	"github.com/audioguide-discovery/internal/client/audio"
	"github.com/audioguide-discovery/internal/client/prefs"
	"github.com/audioguide-discovery/internal/config"
	"github.com/audioguide-discovery/internal/discovery"
	"github.com/audioguide-discovery/internal/infrastructure/ipapi"
	"github.com/audioguide-discovery/internal/pkg/logger"
)

const excerptWords = 30

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "discover:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	// 1. Parse flags and environment
	flags := config.DiscoverFlags()
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg, err := config.LoadDiscover(flags)
	if err != nil {
		return err
	}

	// 2. Initialize logger
	log, err := logger.NewCLI(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Backend client
	client, err := api.NewClient(cfg.APIURL, cfg.HTTPTimeout, log)
	if err != nil {
		return err
	}

	if cfg.Cities {
		return printCities(ctx, client, stdout)
	}

	// 4. Preferences
	store := openPrefs(cfg.Prefs, log)
	if cfg.Language != "" && cfg.Language != store.Language() {
		if err := store.SetLanguage(cfg.Language); err != nil {
			log.Warn("Failed to save language", zap.Error(err))
		}
	}

	// 5. Audio output
	sink := io.Discard
	if cfg.Out != "" {
		f, err := os.Create(cfg.Out)
		if err != nil {
			return fmt.Errorf("failed to create audio output: %w", err)
		}
		defer f.Close()
		sink = f
	}

	// 6. Coordinator
	coord := discovery.NewCoordinator(client, discovery.Options{
		LanguageStore: store,
		Geolocator:    geolocator(cfg, log),
		Audio:         audio.NewFactory(&http.Client{}, sink, log),
		MediaBaseURL:  client.BaseURL(),
	}, log)
	defer coord.Close()

	coord.Start(ctx)
	coord.Wait()

	if cfg.Near != "" {
		coord.SearchLocations(cfg.Near)
		coord.Wait()

		options := coord.Snapshot().LocationOptions
		if len(options) < 2 {
			return fmt.Errorf("no place matches %q", cfg.Near)
		}
		coord.SelectLocation(options[1])
		coord.Wait()
	}

	if len(cfg.Tags) > 0 {
		selected := make([]discovery.TagOption, 0, len(cfg.Tags))
		for _, t := range cfg.Tags {
			selected = append(selected, discovery.TagOption{Label: t, Value: t})
		}
		coord.SetSelectedTags(selected)
	}
	coord.SetSort(discovery.SortMode(cfg.Sort))

	snap := coord.Snapshot()
	printGuides(stdout, snap)

	if cfg.Play == "" {
		return nil
	}

	// 7. Open and play one guide
	if err := coord.SelectGuide(discovery.GuideID(cfg.Play)); err != nil {
		return fmt.Errorf("guide %s: %w", cfg.Play, err)
	}
	coord.Wait()

	snap = coord.Snapshot()
	printSelection(stdout, snap)

	return playToEnd(ctx, coord, cfg.Wait, stdout)
}

func openPrefs(path string, log *zap.Logger) discovery.LanguageStore {
	if path == "" {
		p, err := prefs.DefaultPath()
		if err != nil {
			log.Warn("Preferences disabled", zap.Error(err))
			return discovery.NewMemoryLanguageStore("")
		}
		path = p
	}

	store, err := prefs.Open(path)
	if err != nil {
		log.Warn("Ignoring unreadable preferences", zap.String("path", path), zap.Error(err))
		return discovery.NewMemoryLanguageStore("")
	}
	return store
}

func geolocator(cfg *config.DiscoverConfig, log *zap.Logger) discovery.Geolocator {
	switch {
	case cfg.Latitude != nil:
		return discovery.StaticGeolocator{Coordinate: &discovery.Coordinate{
			Latitude:  *cfg.Latitude,
			Longitude: *cfg.Longitude,
		}}
	case cfg.IPGeo:
		return ipapi.NewGeolocator(cfg.IPGeoURL, cfg.HTTPTimeout, log)
	default:
		return nil
	}
}

func printCities(ctx context.Context, client *api.Client, out io.Writer) error {
	rows, err := client.AvailableGuides(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cities: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CITY\tGUIDES")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\n", r.City, r.Count)
	}
	return w.Flush()
}

func printGuides(out io.Writer, s discovery.Snapshot) {
	fmt.Fprintf(out, "Location: %s (%.4f, %.4f)  Language: %s  Sort: %s\n",
		s.SelectedLocation.Label, s.MapCenter.Latitude, s.MapCenter.Longitude, s.Language, s.Sort)

	switch s.Status {
	case discovery.StatusError:
		fmt.Fprintln(out, s.Error)
		return
	case discovery.StatusEmpty:
		fmt.Fprintln(out, "No guides found")
		return
	case discovery.StatusLoading:
		fmt.Fprintln(out, "Still loading")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDISTANCE\tPLAYS\tTAGS\tDESCRIPTION")
	for _, g := range s.VisibleGuides {
		distance := ""
		if g.Distance != nil {
			distance = discovery.FormatDistance(*g.Distance)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			g.ID,
			g.Title,
			distance,
			discovery.FormatPlays(g.PlayCount()),
			strings.Join(g.Tags, ","),
			discovery.Excerpt(g.Description, excerptWords))
	}
	w.Flush()
}

func printSelection(out io.Writer, s discovery.Snapshot) {
	if s.SelectedGuide == nil {
		return
	}
	g := s.SelectedGuide

	fmt.Fprintf(out, "\n%s\n", g.Title)
	if g.OriginalTitle != "" && g.OriginalTitle != g.Title {
		fmt.Fprintf(out, "(%s)\n", g.OriginalTitle)
	}
	fmt.Fprintln(out, discovery.FormatPlays(g.PlayCount()))
	if g.Description != "" {
		fmt.Fprintf(out, "%s\n", g.Description)
	}
	for i, p := range s.Media.Photos {
		fmt.Fprintf(out, "photo %d/%d: %s\n", i+1, len(s.Media.Photos), p)
	}
	if link := discovery.NavigationURL(*g); link != "" {
		fmt.Fprintf(out, "directions: %s\n", link)
	}
}

// playToEnd plays the open guide and returns when the recording ends, the
// wait expires or ctx is cancelled.
func playToEnd(ctx context.Context, coord *discovery.Coordinator, wait time.Duration, out io.Writer) error {
	if err := coord.Play(ctx); err != nil {
		if errors.Is(err, discovery.ErrNoAudio) {
			fmt.Fprintln(out, "This guide has no audio")
			return nil
		}
		return fmt.Errorf("failed to play: %w", err)
	}
	fmt.Fprintf(out, "playing %s\n", coord.Snapshot().Media.Audio)

	finished := make(chan struct{})
	var once sync.Once
	unsubscribe := coord.Subscribe(func(s discovery.Snapshot) {
		if s.Playback == discovery.PlaybackIdle {
			once.Do(func() { close(finished) })
		}
	})
	defer unsubscribe()
	if coord.Snapshot().Playback == discovery.PlaybackIdle {
		once.Do(func() { close(finished) })
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-finished:
		fmt.Fprintln(out, "finished")
	case <-timer.C:
		coord.Pause()
		fmt.Fprintln(out, "stopped after", wait)
	case <-ctx.Done():
		coord.Pause()
	}

	coord.Wait()
	if s := coord.Snapshot(); s.SelectedGuide != nil {
		fmt.Fprintln(out, discovery.FormatPlays(s.SelectedGuide.PlayCount()))
	}
	return nil
}
