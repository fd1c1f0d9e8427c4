package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"tubevault/internal/utils/logging"

	"github.com/go-chi/chi/v5"
)

// addVideoRequest is the POST /videos body.
type addVideoRequest struct {
	URL string `json:"url"`
}

// handleListVideos lists stored videos, newest first. An optional "q" query
// narrows to a local title/channel search.
func handleListVideos(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		videos any
		err    error
	)
	if query != "" {
		videos, err = application.SearchLocal(r.Context(), query)
	} else {
		videos, err = application.ListVideos(r.Context())
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, videos)
}

// handleAddVideo resolves a URL and stores a pending record.
func handleAddVideo(w http.ResponseWriter, r *http.Request) {
	var req addVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	v, err := application.AddVideo(r.Context(), req.URL)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, v)
}

// handleGetVideo returns one record by platform video ID.
func handleGetVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	v, err := application.Video(r.Context(), videoID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// handleDeleteVideo removes a record along with its file and thumbnail.
func handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	if err := application.DeleteVideo(r.Context(), videoID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDownload starts a transfer and waits for its outcome.
func handleDownload(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	result, err := application.Download(r.Context(), videoID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// handleCancelDownload cancels an active transfer for the ID.
func handleCancelDownload(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	cancelled := application.CancelDownload(videoID)
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

// handleStream serves the downloaded media file for playback.
func handleStream(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	v, err := application.Video(r.Context(), videoID)
	if err != nil {
		respondError(w, err)
		return
	}
	if !v.Downloaded() || v.FilePath == "" {
		http.Error(w, "video not downloaded", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, v.FilePath)
}

// handleRemoteSearch queries the platform for candidate videos.
func handleRemoteSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	results, err := application.SearchRemote(r.Context(), query)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// handleEvents streams transfer events over SSE until the client disconnects.
func handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := application.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(e)
			if err != nil {
				logging.E("Failed to marshal event for video %q: %v", e.VideoID, err)
				continue
			}
			if _, err := w.Write([]byte("event: " + string(e.Kind) + "\ndata: " + string(payload) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
