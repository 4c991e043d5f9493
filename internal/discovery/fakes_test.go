package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// fakeRemote is a scriptable backend. Hooks may block to simulate slow calls.
type fakeRemote struct {
	mu sync.Mutex

	locations func(ctx context.Context, text string) ([]RemoteLocation, error)
	tags      func(ctx context.Context, language string) ([]string, error)
	guides    func(ctx context.Context, at Coordinate, language string) ([]Guide, error)
	media     func(ctx context.Context, id GuideID) (MediaBundle, error)
	plays     func(ctx context.Context, id GuideID) error

	guideCalls []guideCall
	playCalls  []GuideID
	tagCalls   []string
}

type guideCall struct {
	At       Coordinate
	Language string
}

func (f *fakeRemote) SearchLocations(ctx context.Context, text string) ([]RemoteLocation, error) {
	if f.locations == nil {
		return nil, nil
	}
	return f.locations(ctx, text)
}

func (f *fakeRemote) Tags(ctx context.Context, language string) ([]string, error) {
	f.mu.Lock()
	f.tagCalls = append(f.tagCalls, language)
	f.mu.Unlock()
	if f.tags == nil {
		return []string{}, nil
	}
	return f.tags(ctx, language)
}

func (f *fakeRemote) Guides(ctx context.Context, at Coordinate, language string) ([]Guide, error) {
	f.mu.Lock()
	f.guideCalls = append(f.guideCalls, guideCall{At: at, Language: language})
	f.mu.Unlock()
	if f.guides == nil {
		return []Guide{}, nil
	}
	return f.guides(ctx, at, language)
}

func (f *fakeRemote) Media(ctx context.Context, id GuideID) (MediaBundle, error) {
	if f.media == nil {
		return MediaBundle{}, nil
	}
	return f.media(ctx, id)
}

func (f *fakeRemote) IncrementPlays(ctx context.Context, id GuideID) error {
	f.mu.Lock()
	f.playCalls = append(f.playCalls, id)
	f.mu.Unlock()
	if f.plays == nil {
		return nil
	}
	return f.plays(ctx, id)
}

func (f *fakeRemote) GuideCalls() []guideCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]guideCall(nil), f.guideCalls...)
}

func (f *fakeRemote) PlayCalls() []GuideID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]GuideID(nil), f.playCalls...)
}

func (f *fakeRemote) TagCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tagCalls...)
}

// audioLog records the lifecycle of every fake resource in order.
type audioLog struct {
	mu     sync.Mutex
	events []string
	opened []*fakeAudio
}

func (l *audioLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *audioLog) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *audioLog) Last() *fakeAudio {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.opened) == 0 {
		return nil
	}
	return l.opened[len(l.opened)-1]
}

func (l *audioLog) factory() AudioFactory {
	return func(url string) (AudioResource, error) {
		if url == "broken" {
			return nil, errors.New("cannot decode")
		}
		a := &fakeAudio{url: url, log: l}
		l.mu.Lock()
		l.opened = append(l.opened, a)
		l.mu.Unlock()
		l.add("open " + url)
		return a, nil
	}
}

type fakeAudio struct {
	url string
	log *audioLog

	mu      sync.Mutex
	onEnded func()
	closed  bool
}

func (a *fakeAudio) Play() error {
	a.log.add("play " + a.url)
	return nil
}

func (a *fakeAudio) Pause() error {
	a.log.add("pause " + a.url)
	return nil
}

func (a *fakeAudio) SetOnEnded(fn func()) {
	a.mu.Lock()
	a.onEnded = fn
	a.mu.Unlock()
}

func (a *fakeAudio) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.log.add("close " + a.url)
	return nil
}

// End simulates the recording reaching its end.
func (a *fakeAudio) End() {
	a.mu.Lock()
	fn := a.onEnded
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (a *fakeAudio) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}

const (
	testWait = time.Second
	testTick = 5 * time.Millisecond
)
