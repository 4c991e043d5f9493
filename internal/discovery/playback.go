package discovery

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// PlaybackController owns the single audio resource of the open guide and
// counts a play each time it moves from idle to playing.
type PlaybackController struct {
	open    AudioFactory
	counter PlayCounter
	logger  *zap.Logger

	mu       sync.Mutex
	resource AudioResource
	guideID  GuideID
	state    PlaybackState
	epoch    uint64 // bumped on every release; stale end events carry an old one
	disposed bool

	// increments belong to the current binding and are cancelled with it
	bindCtx    context.Context
	bindCancel context.CancelFunc
	wg         sync.WaitGroup

	onCounted func(GuideID)
	onChange  func(PlaybackState)
}

func NewPlaybackController(open AudioFactory, counter PlayCounter, logger *zap.Logger) *PlaybackController {
	ctx, cancel := context.WithCancel(context.Background())
	return &PlaybackController{
		open:       open,
		counter:    counter,
		logger:     logger,
		state:      PlaybackIdle,
		bindCtx:    ctx,
		bindCancel: cancel,
	}
}

// OnCounted registers a hook run after each successful increment.
func (p *PlaybackController) OnCounted(fn func(GuideID)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCounted = fn
}

// OnStateChange registers a hook run whenever the state flips.
func (p *PlaybackController) OnStateChange(fn func(PlaybackState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Bind releases the current recording and loads audioURL for guideID.
// An empty URL leaves nothing bound.
func (p *PlaybackController) Bind(guideID GuideID, audioURL string) error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return ErrClosed
	}
	changed := p.releaseLocked()
	notify := p.onChange

	if audioURL == "" {
		p.mu.Unlock()
		if changed && notify != nil {
			notify(PlaybackIdle)
		}
		return nil
	}

	res, err := p.open(audioURL)
	if err != nil {
		p.mu.Unlock()
		if changed && notify != nil {
			notify(PlaybackIdle)
		}
		return fmt.Errorf("open audio %s: %w", audioURL, err)
	}

	epoch := p.epoch
	res.SetOnEnded(func() { p.ended(epoch) })
	p.resource = res
	p.guideID = guideID
	p.mu.Unlock()

	if changed && notify != nil {
		notify(PlaybackIdle)
	}
	return nil
}

// Release unbinds the current recording, if any.
func (p *PlaybackController) Release() {
	p.mu.Lock()
	changed := p.releaseLocked()
	notify := p.onChange
	p.mu.Unlock()

	if changed && notify != nil {
		notify(PlaybackIdle)
	}
}

// releaseLocked stops and closes the resource and cancels its increments.
// It reports whether the state left playing.
func (p *PlaybackController) releaseLocked() bool {
	wasPlaying := p.state == PlaybackPlaying

	if p.resource != nil {
		p.resource.SetOnEnded(nil)
		if wasPlaying {
			if err := p.resource.Pause(); err != nil {
				p.logger.Debug("Pause on release failed", zap.Error(err))
			}
		}
		if err := p.resource.Close(); err != nil {
			p.logger.Warn("Failed to close audio", zap.Error(err))
		}
		p.resource = nil
	}

	p.bindCancel()
	if !p.disposed {
		p.bindCtx, p.bindCancel = context.WithCancel(context.Background())
	}

	p.epoch++
	p.guideID = ""
	p.state = PlaybackIdle
	return wasPlaying
}

// Play starts the bound recording. Moving from idle to playing fires one
// play-count increment; calling it while playing does nothing.
func (p *PlaybackController) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.resource == nil {
		p.mu.Unlock()
		return ErrNoAudio
	}
	if p.state == PlaybackPlaying {
		p.mu.Unlock()
		return nil
	}

	if err := p.resource.Play(); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("start playback: %w", err)
	}
	p.state = PlaybackPlaying
	notify := p.onChange

	// the increment outlives ctx; only release or dispose cancel it
	incCtx, cancel := context.WithCancel(p.bindCtx)
	id := p.guideID
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer cancel()
		p.count(incCtx, id)
	}()

	if notify != nil {
		notify(PlaybackPlaying)
	}
	return nil
}

func (p *PlaybackController) count(ctx context.Context, id GuideID) {
	if p.counter == nil || id == "" {
		return
	}
	if err := p.counter.IncrementPlays(ctx, id); err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("Failed to increment play count",
				zap.String("guide_id", id.String()),
				zap.Error(err))
		}
		return
	}

	p.mu.Lock()
	hook := p.onCounted
	p.mu.Unlock()
	if hook != nil {
		hook(id)
	}
}

// Pause stops playback; it is a no-op when idle.
func (p *PlaybackController) Pause() {
	p.mu.Lock()
	if p.state != PlaybackPlaying || p.resource == nil {
		p.mu.Unlock()
		return
	}
	if err := p.resource.Pause(); err != nil {
		p.logger.Warn("Failed to pause audio", zap.Error(err))
	}
	p.state = PlaybackIdle
	notify := p.onChange
	p.mu.Unlock()

	if notify != nil {
		notify(PlaybackIdle)
	}
}

// Toggle plays when idle and pauses when playing.
func (p *PlaybackController) Toggle(ctx context.Context) error {
	if p.State() == PlaybackPlaying {
		p.Pause()
		return nil
	}
	return p.Play(ctx)
}

func (p *PlaybackController) ended(epoch uint64) {
	p.mu.Lock()
	if epoch != p.epoch || p.state != PlaybackPlaying {
		p.mu.Unlock()
		return
	}
	p.state = PlaybackIdle
	notify := p.onChange
	p.mu.Unlock()

	p.logger.Debug("Playback finished")
	if notify != nil {
		notify(PlaybackIdle)
	}
}

func (p *PlaybackController) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// HasAudio reports whether a recording is bound.
func (p *PlaybackController) HasAudio() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resource != nil
}

// Dispose releases the recording and cancels in-flight increments. The
// controller cannot be used afterwards.
func (p *PlaybackController) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	p.releaseLocked()
	p.onChange = nil
	p.onCounted = nil
	p.mu.Unlock()
}

// Wait blocks until in-flight increments return.
func (p *PlaybackController) Wait() {
	p.wg.Wait()
}
