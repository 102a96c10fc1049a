package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"SpectraFM/core/viz"
	"SpectraFM/model"
)

// LiveData is the payload of the live message and endpoint.
type LiveData struct {
	Live bool `json:"live"`
}

// playerView is the GET /api/player response.
type playerView struct {
	Status model.Status `json:"status"`
	Live   bool         `json:"live"`
}

// GetPlayerHandler returns the playback status plus the live flag.
func (h *APIHandler) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, playerView{
		Status: h.controller.Status(),
		Live:   h.live.Load(),
	})
}

// SelectTrackHandler makes a track current and plays it. Selecting the
// current track toggles play/pause.
func (h *APIHandler) SelectTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackID string `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	track, ok := h.registry.Get(req.TrackID)
	if !ok {
		writeError(w, http.StatusNotFound, model.ErrTrackNotFound)
		return
	}

	if err := h.controller.Select(r.Context(), track); err != nil {
		if errors.Is(err, model.ErrPlaybackRejected) {
			h.hub.Notice("error", fmt.Sprintf("%s: %v", track.Name, err))
		}
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, h.controller.Status())
}

// TogglePlayHandler flips play/pause.
func (h *APIHandler) TogglePlayHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.TogglePlay(); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, h.controller.Status())
}

// SeekHandler sets the position as a fraction of the duration.
func (h *APIHandler) SeekHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fraction float64 `json:"fraction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	if err := h.controller.Seek(req.Fraction); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, h.controller.Status())
}

// VolumeHandler applies a volume in [0,1].
func (h *APIHandler) VolumeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume float64 `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	h.controller.SetVolume(req.Volume)
	writeJSON(w, http.StatusOK, h.controller.Status())
}

// LiveHandler toggles the GO LIVE flag. Presentation only: nothing is
// broadcast anywhere except to the connected UIs.
func (h *APIHandler) LiveHandler(w http.ResponseWriter, r *http.Request) {
	var req LiveData
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	h.live.Store(req.Live)
	h.hub.Broadcast(MsgTypeLive, req)
	writeJSON(w, http.StatusOK, req)
}

// spectrumView is the poll fallback for clients without a WebSocket.
type spectrumView struct {
	Playing bool      `json:"playing"`
	Bars    []viz.Bar `json:"bars"`
}

// GetSpectrumHandler returns the latest rendered visualizer frame.
func (h *APIHandler) GetSpectrumHandler(w http.ResponseWriter, r *http.Request) {
	st := h.controller.Status()
	writeJSON(w, http.StatusOK, spectrumView{
		Playing: st.IsPlaying,
		Bars:    viz.Bars(h.sampler.Last(), st.IsPlaying),
	})
}
