// Package player owns the playback state machine: which track is current,
// whether it is playing, and the single audio handle driving the output.
package player

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"SpectraFM/core/audio"
	"SpectraFM/core/spectrum"
	"SpectraFM/logger"
	"SpectraFM/model"
)

// Source resolves a track ID to its stored bytes. The registry is the one
// real implementation; the controller never owns tracks.
type Source interface {
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// Controller is the playback state machine. All mutation happens under one
// mutex, one discrete command at a time; callbacks from the platform (natural
// end) are generation-guarded so a stale handle can never flip state.
type Controller struct {
	engine  audio.Engine
	source  Source
	sampler *spectrum.Sampler

	mu         sync.Mutex
	state      model.PlayState
	current    *model.Track
	handle     audio.Handle
	generation uint64
	volume     float64

	onChange func(model.Status)
}

// New creates a controller in Idle with the given initial volume.
func New(engine audio.Engine, source Source, sampler *spectrum.Sampler, volume float64) *Controller {
	return &Controller{
		engine:  engine,
		source:  source,
		sampler: sampler,
		state:   model.StateIdle,
		volume:  clamp01(volume),
	}
}

// SetOnChange registers a callback fired after every state transition.
func (c *Controller) SetOnChange(fn func(model.Status)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Select makes track current and starts playing it. Selecting the track
// that is already current toggles play/pause instead. On failure the
// previous playback state is kept.
func (c *Controller) Select(ctx context.Context, track model.Track) error {
	c.mu.Lock()
	if c.current != nil && c.current.ID == track.ID {
		c.mu.Unlock()
		return c.TogglePlay()
	}

	rc, err := c.source.Open(ctx, track.ID)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("opening track %s: %w", track.ID, err)
	}

	c.generation++
	gen := c.generation
	handle, err := c.engine.Open(rc, func() { c.handleNaturalEnd(gen) })
	if err != nil {
		rc.Close()
		c.mu.Unlock()
		return err
	}

	// Stop-before-switch: the old handle is silenced and released before
	// the new one starts.
	c.sampler.Stop()
	if c.handle != nil {
		c.handle.Close()
	}

	t := track
	c.handle = handle
	c.current = &t
	c.state = model.StatePlaying
	handle.SetVolume(c.volume)
	handle.Play()
	c.sampler.Start(handle)

	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)

	logger.Info("track selected",
		logger.String("id", track.ID),
		logger.String("name", track.Name),
	)
	return nil
}

// TogglePlay flips Playing/Paused. Its own inverse: applying it twice
// restores the original playing flag. ErrNoTrack in Idle.
func (c *Controller) TogglePlay() error {
	c.mu.Lock()
	if c.handle == nil || c.current == nil {
		c.mu.Unlock()
		return model.ErrNoTrack
	}

	if c.state == model.StatePlaying {
		c.handle.Pause()
		c.state = model.StatePaused
		c.sampler.Stop()
	} else {
		c.handle.Play()
		c.state = model.StatePlaying
		c.sampler.Start(c.handle)
	}

	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
	return nil
}

// Seek sets the position to fraction×duration. Allowed in any loaded state;
// the reported progress updates immediately. The fraction is clamped to [0,1].
func (c *Controller) Seek(fraction float64) error {
	c.mu.Lock()
	if c.handle == nil || c.current == nil {
		c.mu.Unlock()
		return model.ErrNoTrack
	}

	fraction = clamp01(fraction)
	target := time.Duration(fraction * float64(c.handle.Duration()))
	if err := c.handle.Seek(target); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("seek: %w", err)
	}

	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
	return nil
}

// SetVolume clamps v to [0,1], applies it to the current handle at once and
// remembers it for future tracks.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	c.volume = clamp01(v)
	if c.handle != nil {
		c.handle.SetVolume(c.volume)
	}
	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

// Eject transitions to Idle if trackID is current: no current track, not
// playing, handle released. Called when a track is removed from the registry.
func (c *Controller) Eject(trackID string) {
	c.mu.Lock()
	if c.current == nil || c.current.ID != trackID {
		c.mu.Unlock()
		return
	}

	c.generation++
	c.sampler.Stop()
	if c.handle != nil {
		c.handle.Close()
		c.handle = nil
	}
	c.current = nil
	c.state = model.StateIdle

	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)

	logger.Info("current track ejected", logger.String("id", trackID))
}

// handleNaturalEnd runs when a track plays to its end: Paused with the
// position at the end, no auto-advance. Stale callbacks from replaced
// handles are dropped by the generation guard.
func (c *Controller) handleNaturalEnd(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.state != model.StatePlaying {
		c.mu.Unlock()
		return
	}
	c.state = model.StatePaused
	c.sampler.Stop()

	st := c.statusLocked()
	c.mu.Unlock()
	c.notify(st)
}

// Status returns a point-in-time view of the controller.
func (c *Controller) Status() model.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Close tears the controller down: sampling stopped, handle closed, audio
// output released.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.sampler.Stop()
	if c.handle != nil {
		c.handle.Close()
		c.handle = nil
	}
	c.current = nil
	c.state = model.StateIdle

	if err := c.engine.Close(); err != nil {
		logger.Warn("engine close", logger.ErrorField(err))
	}
}

func (c *Controller) statusLocked() model.Status {
	st := model.Status{
		State:  c.state,
		Volume: c.volume,
	}
	if c.current == nil || c.handle == nil {
		return st
	}

	st.TrackID = c.current.ID
	st.TrackName = c.current.Name
	st.IsPlaying = c.state == model.StatePlaying
	st.PositionSeconds = c.handle.Position().Seconds()
	st.DurationSeconds = c.handle.Duration().Seconds()
	if st.DurationSeconds > 0 {
		st.ProgressPercent = st.PositionSeconds / st.DurationSeconds * 100
	}
	return st
}

func (c *Controller) notify(st model.Status) {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
