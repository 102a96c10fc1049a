package registry

import (
	"bytes"
	"path/filepath"
	"strings"

	"SpectraFM/logger"

	"github.com/bogem/id3v2"
	"github.com/gopxl/beep/v2/mp3"
)

// MP3Prober decodes an MP3 payload to learn its duration and reads the ID3v2
// tag for a display name. A track without a resolvable duration never enters
// the registry.
type MP3Prober struct{}

// NewMP3Prober creates a prober for MP3 payloads.
func NewMP3Prober() *MP3Prober {
	return &MP3Prober{}
}

// Probe returns the track metadata, or an error if the payload cannot be
// decoded as MP3.
func (p *MP3Prober) Probe(filename string, data []byte) (Meta, error) {
	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return Meta{}, err
	}
	defer streamer.Close()

	meta := Meta{
		Title:    nameFromFilename(filename),
		Duration: format.SampleRate.D(streamer.Len()).Seconds(),
	}

	// The tag is cosmetic; a broken or absent ID3 header keeps the fallback name.
	if tag, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: true}); err == nil {
		if title := strings.TrimSpace(tag.Title()); title != "" {
			meta.Title = title
		}
		meta.Artist = strings.TrimSpace(tag.Artist())
	} else {
		logger.Debug("no ID3 tag", logger.String("filename", filename), logger.ErrorField(err))
	}

	return meta, nil
}

// nameFromFilename strips the directory and extension from an uploaded name.
func nameFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// nopCloser adapts a bytes.Reader to the io.ReadCloser the decoder wants.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
