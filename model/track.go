package model

import "time"

// Track represents one uploaded audio file in the deck.
type Track struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`             // Display name (ID3 title or filename stem)
	Artist   string    `json:"artist,omitempty"` // ID3 artist, when present
	Key      string    `json:"-"`                // Object store key, not exposed in the API
	URL      string    `json:"url"`              // Playable locator, served by the media route
	Duration float64   `json:"duration"`         // Duration in seconds
	Size     int64     `json:"size"`             // Size of the MP3 payload in bytes
	AddedAt  time.Time `json:"addedAt"`
}
