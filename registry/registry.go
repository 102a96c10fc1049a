package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"SpectraFM/logger"
	"SpectraFM/model"
	"SpectraFM/storage"

	"github.com/google/uuid"
)

// Meta is what the prober extracts from an MP3 payload before the track may
// enter the registry.
type Meta struct {
	Title    string
	Artist   string
	Duration float64 // seconds
}

// Prober resolves metadata (including duration) from raw MP3 bytes.
type Prober interface {
	Probe(filename string, data []byte) (Meta, error)
}

// Registry is the ordered collection of uploaded tracks. It owns the tracks
// and their stored objects; the playback controller only borrows references.
type Registry struct {
	store  storage.Store
	prober Prober

	mu     sync.RWMutex
	order  []string
	tracks map[string]model.Track
}

// New creates an empty registry backed by the given store and prober.
func New(store storage.Store, prober Prober) *Registry {
	return &Registry{
		store:  store,
		prober: prober,
		tracks: make(map[string]model.Track),
	}
}

// IsMP3 reports whether the input is MP3-typed, by declared content type or
// filename suffix.
func IsMP3(filename, contentType string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "audio/mpeg", "audio/mp3":
			return true
		}
	}
	return strings.EqualFold(filepath.Ext(filename), ".mp3")
}

// Add validates, probes and stores one uploaded file. The track becomes
// visible only after its duration is known. Non-MP3 input fails with
// ErrUnsupportedFormat; undecodable MP3 fails with ErrMediaDecode. Neither
// changes the registry.
func (r *Registry) Add(ctx context.Context, filename, contentType string, data []byte) (model.Track, error) {
	if !IsMP3(filename, contentType) {
		return model.Track{}, fmt.Errorf("%w: %s", model.ErrUnsupportedFormat, filename)
	}

	meta, err := r.prober.Probe(filename, data)
	if err != nil {
		return model.Track{}, fmt.Errorf("%w: %s: %v", model.ErrMediaDecode, filename, err)
	}

	track := model.Track{
		ID:       uuid.NewString(),
		Name:     meta.Title,
		Artist:   meta.Artist,
		Duration: meta.Duration,
		Size:     int64(len(data)),
		AddedAt:  time.Now(),
	}
	track.Key = "audio/" + track.ID + ".mp3"
	track.URL = "/media/" + track.Key

	if err := r.store.Put(ctx, track.Key, bytes.NewReader(data), track.Size, "audio/mpeg"); err != nil {
		return model.Track{}, fmt.Errorf("storing %s: %w", filename, err)
	}

	r.mu.Lock()
	r.tracks[track.ID] = track
	r.order = append(r.order, track.ID)
	r.mu.Unlock()

	logger.Info("track registered",
		logger.String("id", track.ID),
		logger.String("name", track.Name),
		logger.Float64("duration", track.Duration),
	)
	return track, nil
}

// Remove drops a track and deletes its stored object, revoking the locator.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	track, ok := r.tracks[id]
	if !ok {
		r.mu.Unlock()
		return model.ErrTrackNotFound
	}
	delete(r.tracks, id)
	for i, tid := range r.order {
		if tid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if err := r.store.Delete(ctx, track.Key); err != nil {
		// The track is gone from the registry either way; an undeletable
		// object is worth a warning, not a failed removal.
		logger.Warn("failed to delete stored object",
			logger.String("key", track.Key),
			logger.ErrorField(err),
		)
	}
	return nil
}

// List returns all tracks in insertion order.
func (r *Registry) List() []model.Track {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Track, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tracks[id])
	}
	return out
}

// Get returns a track by ID.
func (r *Registry) Get(id string) (model.Track, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	track, ok := r.tracks[id]
	return track, ok
}

// Count returns the number of registered tracks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tracks)
}

// Open returns a reader over a track's stored bytes for playback.
func (r *Registry) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	track, ok := r.Get(id)
	if !ok {
		return nil, model.ErrTrackNotFound
	}
	return r.store.Get(ctx, track.Key)
}

// OpenKey returns a reader over a stored object by key, for the media route.
func (r *Registry) OpenKey(ctx context.Context, key string) (io.ReadCloser, error) {
	return r.store.Get(ctx, key)
}

// Close drops every track and revokes every locator. Called on app teardown.
func (r *Registry) Close(ctx context.Context) {
	r.mu.Lock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	r.mu.Unlock()

	for _, id := range ids {
		if err := r.Remove(ctx, id); err != nil {
			logger.Warn("teardown removal failed", logger.String("id", id), logger.ErrorField(err))
		}
	}
}
