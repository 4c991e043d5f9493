// Package audio plays guide recordings by streaming them over HTTP into a
// sink, which is what the terminal client has instead of a speaker.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/audioguide-discovery/internal/discovery"
)

// ErrClosed is returned by Play after Close.
var ErrClosed = errors.New("audio stream closed")

// NewFactory returns a discovery.AudioFactory whose resources write the
// recording bytes to sink. Resources share sink; the playback controller
// never plays two at once.
func NewFactory(client *http.Client, sink io.Writer, logger *zap.Logger) discovery.AudioFactory {
	if client == nil {
		client = http.DefaultClient
	}
	return func(url string) (discovery.AudioResource, error) {
		req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("invalid audio url: %w", err)
		}
		if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
			return nil, fmt.Errorf("unsupported audio url %q", url)
		}
		return &Stream{
			client: client,
			url:    url,
			sink:   sink,
			logger: logger.With(zap.String("audio_url", url)),
		}, nil
	}
}

// Stream is one recording. Play downloads from the current offset, Pause
// cancels the download and keeps the offset so the next Play resumes with a
// Range request.
type Stream struct {
	client *http.Client
	url    string
	sink   io.Writer
	logger *zap.Logger

	mu      sync.Mutex
	playing bool
	closed  bool
	offset  int64
	cancel  context.CancelFunc
	done    chan struct{}
	onEnded func()
}

func (s *Stream) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.playing {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.playing = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.offset, s.done)

	return nil
}

func (s *Stream) run(ctx context.Context, from int64, done chan struct{}) {
	n, err := s.download(ctx, from)

	s.mu.Lock()
	if s.done != done {
		// a newer Play took over after a Pause
		s.mu.Unlock()
		close(done)
		return
	}
	s.offset = from + n
	var fn func()
	if ctx.Err() == nil {
		// finished or failed: either way the recording is over
		s.playing = false
		s.offset = 0
		fn = s.onEnded
		if err != nil {
			s.logger.Warn("Audio stream failed", zap.Error(err))
		} else {
			s.logger.Debug("Audio stream finished", zap.Int64("bytes", from+n))
		}
	}
	s.mu.Unlock()

	// done is closed before the callback so a Pause racing with the natural
	// end never waits on a listener that waits on it
	close(done)
	if fn != nil {
		fn()
	}
}

func (s *Stream) download(ctx context.Context, from int64) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if from > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(from, 10)+"-")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPartialContent:
	case resp.StatusCode == http.StatusOK:
		// server ignored the range; skip what was already played
		if from > 0 {
			if _, err := io.CopyN(io.Discard, resp.Body, from); err != nil {
				return 0, fmt.Errorf("failed to skip to offset %d: %w", from, err)
			}
		}
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		return 0, nil
	default:
		return 0, fmt.Errorf("audio request: status %d", resp.StatusCode)
	}

	n, err := io.Copy(s.sink, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to stream audio: %w", err)
	}
	return n, nil
}

// Pause stops the download and waits for it to wind down.
func (s *Stream) Pause() error {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return nil
	}
	s.playing = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

func (s *Stream) SetOnEnded(fn func()) {
	s.mu.Lock()
	s.onEnded = fn
	s.mu.Unlock()
}

func (s *Stream) Close() error {
	if err := s.Pause(); err != nil {
		return err
	}

	s.mu.Lock()
	s.closed = true
	s.onEnded = nil
	s.mu.Unlock()
	return nil
}

// Offset is the number of bytes already played.
func (s *Stream) Offset() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}
