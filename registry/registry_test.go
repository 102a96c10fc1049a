package registry

import (
	"context"
	"errors"
	"io"
	"testing"

	"SpectraFM/model"
	"SpectraFM/storage"
)

// fakeProber reports a fixed duration without decoding anything.
type fakeProber struct {
	duration float64
	err      error
}

func (p fakeProber) Probe(filename string, data []byte) (Meta, error) {
	if p.err != nil {
		return Meta{}, p.err
	}
	return Meta{Title: nameFromFilename(filename), Duration: p.duration}, nil
}

func newTestRegistry(t *testing.T) (*Registry, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return New(store, fakeProber{duration: 180}), store
}

func TestIsMP3(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        bool
	}{
		{"mp3 suffix", "song.mp3", "application/octet-stream", true},
		{"uppercase suffix", "SONG.MP3", "", true},
		{"mpeg content type", "blob", "audio/mpeg", true},
		{"mp3 content type", "blob", "audio/mp3", true},
		{"content type with params", "blob", "audio/mpeg; charset=binary", true},
		{"wav file", "song.wav", "audio/wav", false},
		{"text file", "notes.txt", "text/plain", false},
		{"no hints at all", "payload", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMP3(tt.filename, tt.contentType); got != tt.want {
				t.Errorf("IsMP3(%q, %q) = %v, want %v", tt.filename, tt.contentType, got, tt.want)
			}
		})
	}
}

func TestAddRegistersTrack(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()

	track, err := reg.Add(ctx, "song.mp3", "audio/mpeg", []byte("mp3bytes"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if track.ID == "" {
		t.Errorf("track has no ID")
	}
	if track.Name != "song" {
		t.Errorf("name = %q, want %q", track.Name, "song")
	}
	if track.Duration != 180 {
		t.Errorf("duration = %v, want 180", track.Duration)
	}
	if track.URL != "/media/"+track.Key {
		t.Errorf("URL = %q does not address key %q", track.URL, track.Key)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d objects, want 1", store.Len())
	}
	if reg.Count() != 1 {
		t.Errorf("registry has %d tracks, want 1", reg.Count())
	}
}

func TestAddRejectsNonMP3(t *testing.T) {
	reg, store := newTestRegistry(t)

	_, err := reg.Add(context.Background(), "song.wav", "audio/wav", []byte("wavbytes"))
	if !errors.Is(err, model.ErrUnsupportedFormat) {
		t.Fatalf("Add(.wav) = %v, want ErrUnsupportedFormat", err)
	}
	if reg.Count() != 0 || store.Len() != 0 {
		t.Errorf("rejected file changed state: tracks=%d objects=%d", reg.Count(), store.Len())
	}
}

func TestAddProbeFailureLeavesNothingBehind(t *testing.T) {
	store := storage.NewMemoryStore()
	reg := New(store, fakeProber{err: errors.New("bad frame header")})

	_, err := reg.Add(context.Background(), "broken.mp3", "audio/mpeg", []byte("junk"))
	if !errors.Is(err, model.ErrMediaDecode) {
		t.Fatalf("Add(undecodable) = %v, want ErrMediaDecode", err)
	}
	if reg.Count() != 0 || store.Len() != 0 {
		t.Errorf("failed probe changed state: tracks=%d objects=%d", reg.Count(), store.Len())
	}
}

func TestListKeepsInsertionOrder(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	names := []string{"a.mp3", "b.mp3", "c.mp3"}
	for _, name := range names {
		if _, err := reg.Add(ctx, name, "audio/mpeg", []byte(name)); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}

	list := reg.List()
	if len(list) != 3 {
		t.Fatalf("list length = %d, want 3", len(list))
	}
	for i, want := range []string{"a", "b", "c"} {
		if list[i].Name != want {
			t.Errorf("list[%d] = %q, want %q", i, list[i].Name, want)
		}
	}
}

func TestRemoveRevokesStoredObject(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()

	track, err := reg.Add(ctx, "song.mp3", "audio/mpeg", []byte("mp3bytes"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := reg.Remove(ctx, track.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if reg.Count() != 0 {
		t.Errorf("registry still holds %d tracks", reg.Count())
	}
	if store.Len() != 0 {
		t.Errorf("stored object survived removal")
	}
	if _, err := reg.Open(ctx, track.ID); !errors.Is(err, model.ErrTrackNotFound) {
		t.Errorf("Open after remove = %v, want ErrTrackNotFound", err)
	}
	if _, err := reg.OpenKey(ctx, track.Key); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Errorf("OpenKey after remove = %v, want ErrObjectNotFound", err)
	}
}

func TestRemoveUnknownTrack(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if err := reg.Remove(context.Background(), "nope"); !errors.Is(err, model.ErrTrackNotFound) {
		t.Errorf("Remove(unknown) = %v, want ErrTrackNotFound", err)
	}
}

func TestOpenStreamsStoredBytes(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	payload := []byte("the actual mp3 payload")
	track, err := reg.Add(ctx, "song.mp3", "audio/mpeg", payload)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	rc, err := reg.Open(ctx, track.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Open returned %q, want %q", got, payload)
	}
}

func TestCloseRevokesEverything(t *testing.T) {
	reg, store := newTestRegistry(t)
	ctx := context.Background()

	for _, name := range []string{"a.mp3", "b.mp3"} {
		if _, err := reg.Add(ctx, name, "audio/mpeg", []byte(name)); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}

	reg.Close(ctx)

	if reg.Count() != 0 || store.Len() != 0 {
		t.Errorf("Close left tracks=%d objects=%d", reg.Count(), store.Len())
	}
}

func TestNameFromFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"song.mp3", "song"},
		{"dir/sub/track.mp3", "track"},
		{"no-extension", "no-extension"},
		{"dots.in.name.mp3", "dots.in.name"},
	}
	for _, tt := range tests {
		if got := nameFromFilename(tt.in); got != tt.want {
			t.Errorf("nameFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
