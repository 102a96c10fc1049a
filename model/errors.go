package model

import "errors"

// The error taxonomy of the deck. None of these are fatal: the worst case is
// a track that fails to load, and every one of them is surfaced to the user
// instead of being swallowed.
var (
	// ErrUnsupportedFormat rejects non-MP3 input (by declared content type
	// or filename suffix).
	ErrUnsupportedFormat = errors.New("unsupported format: only MP3 is accepted")

	// ErrMediaDecode marks input that claimed to be MP3 but could not be decoded.
	ErrMediaDecode = errors.New("media decode failure")

	// ErrPlaybackRejected marks a track that the audio engine refused to start.
	ErrPlaybackRejected = errors.New("playback rejected")

	// ErrNoTrack is returned by playback commands that need a current track.
	ErrNoTrack = errors.New("no track selected")

	// ErrTrackNotFound is returned for unknown track IDs.
	ErrTrackNotFound = errors.New("track not found")
)
