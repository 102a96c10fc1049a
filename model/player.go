package model

// PlayState is the playback state machine's state.
type PlayState string

const (
	StateIdle    PlayState = "idle"    // no current track
	StatePaused  PlayState = "paused"  // track loaded, not playing
	StatePlaying PlayState = "playing" // track loaded, playing
)

// Status is a point-in-time view of the playback controller, as sent to
// clients. ProgressPercent is only meaningful when TrackID is set, and
// IsPlaying implies a current track.
type Status struct {
	State           PlayState `json:"state"`
	TrackID         string    `json:"trackId,omitempty"`
	TrackName       string    `json:"trackName,omitempty"`
	IsPlaying       bool      `json:"isPlaying"`
	ProgressPercent float64   `json:"progressPercent"` // 0..100
	PositionSeconds float64   `json:"positionSeconds"`
	DurationSeconds float64   `json:"durationSeconds"`
	Volume          float64   `json:"volume"` // 0.0..1.0
}

// HasTrack reports whether there is a current track.
func (s Status) HasTrack() bool {
	return s.TrackID != ""
}
