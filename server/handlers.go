package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"

	"SpectraFM/config"
	"SpectraFM/core/player"
	"SpectraFM/core/spectrum"
	"SpectraFM/logger"
	"SpectraFM/model"
	"SpectraFM/registry"
	"SpectraFM/storage"

	"github.com/gorilla/mux"
)

// maxUploadBytes caps one upload request.
const maxUploadBytes = 100 << 20 // 100MB

// APIHandler carries the wiring for every HTTP endpoint.
type APIHandler struct {
	registry   *registry.Registry
	controller *player.Controller
	sampler    *spectrum.Sampler
	hub        *Hub
	cfg        *config.Config
	live       atomic.Bool // cosmetic GO LIVE flag, no external effect
}

// NewAPIHandler creates the handler set.
func NewAPIHandler(
	reg *registry.Registry,
	controller *player.Controller,
	sampler *spectrum.Sampler,
	hub *Hub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		registry:   reg,
		controller: controller,
		sampler:    sampler,
		hub:        hub,
		cfg:        cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("response encode failed", logger.ErrorField(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusForError maps the error taxonomy onto HTTP statuses. Nothing here
// is fatal; the worst case is a track that fails to load.
func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, model.ErrMediaDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrPlaybackRejected):
		return http.StatusConflict
	case errors.Is(err, model.ErrNoTrack):
		return http.StatusConflict
	case errors.Is(err, model.ErrTrackNotFound), errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// uploadResult reports the outcome for one uploaded file. Rejections are
// explicit: a skipped file always says why.
type uploadResult struct {
	Filename string       `json:"filename"`
	OK       bool         `json:"ok"`
	Error    string       `json:"error,omitempty"`
	Track    *model.Track `json:"track,omitempty"`
}

// UploadTracksHandler accepts one or more files in the "files" multipart
// field and returns a per-file result list.
func (h *APIHandler) UploadTracksHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parsing upload: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("no files in upload"))
		return
	}

	results := make([]uploadResult, 0, len(files))
	var lastErr error
	added := 0
	for _, fh := range files {
		track, err := h.ingestFile(r, fh)
		result := uploadResult{Filename: fh.Filename}
		if err != nil {
			result.Error = err.Error()
			lastErr = err
			h.hub.Notice("warn", fmt.Sprintf("%s: %v", fh.Filename, err))
			logger.Warn("upload rejected",
				logger.String("filename", fh.Filename),
				logger.ErrorField(err),
			)
		} else {
			result.OK = true
			result.Track = &track
			added++
		}
		results = append(results, result)
	}

	if added > 0 {
		h.hub.Broadcast(MsgTypePlaylist, h.registry.List())
	}

	// A lone rejected file keeps its taxonomy status; mixed batches report
	// per-file with 200.
	status := http.StatusOK
	if added == 0 && len(files) == 1 && lastErr != nil {
		status = statusForError(lastErr)
	}
	writeJSON(w, status, results)
}

func (h *APIHandler) ingestFile(r *http.Request, fh *multipart.FileHeader) (model.Track, error) {
	f, err := fh.Open()
	if err != nil {
		return model.Track{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return model.Track{}, err
	}
	return h.registry.Add(r.Context(), fh.Filename, fh.Header.Get("Content-Type"), data)
}

// GetTracksHandler lists the registry in insertion order.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.List())
}

// DeleteTrackHandler removes a track, revokes its locator, and ejects the
// player if the track was current.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.registry.Remove(r.Context(), id); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	h.controller.Eject(id)
	h.hub.Broadcast(MsgTypePlaylist, h.registry.List())
	writeJSON(w, http.StatusOK, map[string]string{"removed": id})
}

// MediaHandler streams a stored object. This is the playable locator; once
// the track is removed the key is gone and this returns 404.
func (h *APIHandler) MediaHandler(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/media/")
	rc, err := h.registry.OpenKey(r.Context(), key)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := io.Copy(w, rc); err != nil {
		logger.Warn("media stream interrupted", logger.String("key", key), logger.ErrorField(err))
	}
}
