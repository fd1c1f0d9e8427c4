package server_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tubevault/internal/app"
	"tubevault/internal/contracts"
	"tubevault/internal/database"
	"tubevault/internal/database/repo"
	"tubevault/internal/downloads"
	"tubevault/internal/events"
	"tubevault/internal/metadata"
	"tubevault/internal/models"
	"tubevault/internal/platform"
	"tubevault/internal/server"
)

const testVideoID = "dQw4w9WgXcQ"

// stubPlatform serves canned metadata and media bytes.
type stubPlatform struct {
	payload []byte
}

func (c *stubPlatform) ResolveVideo(_ context.Context, videoID string) (*models.VideoMetadata, error) {
	return &models.VideoMetadata{
		VideoID:  videoID,
		URL:      "https://www.youtube.com/watch?v=" + videoID,
		Title:    "Stub Video",
		Channel:  "Stub Channel",
		Duration: 60,
	}, nil
}

func (c *stubPlatform) Search(context.Context, string, int) ([]*models.SearchResult, error) {
	return []*models.SearchResult{
		{VideoID: "aaaaaaaaaa1", Title: "Hit One", Channel: "Someone"},
	}, nil
}

func (c *stubPlatform) OpenStream(context.Context, string) (io.ReadCloser, *models.MediaFormat, error) {
	return io.NopCloser(bytes.NewReader(c.payload)), &models.MediaFormat{
		MimeType:      "video/mp4",
		ContentLength: int64(len(c.payload)),
		Extension:     ".mp4",
	}, nil
}

// newTestServer wires the application behind an httptest server.
func newTestServer(t *testing.T) (*httptest.Server, *events.Relay) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.InitDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("expected database to open, got: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	client := &stubPlatform{payload: bytes.Repeat([]byte("media"), 50_000)}
	holder := platform.NewClientHolder(func(context.Context) (contracts.PlatformClient, error) {
		return client, nil
	})

	store := repo.InitStores(db.DB).VideoStore()
	relay := events.NewRelay()
	downloadDir := filepath.Join(dir, "downloads")
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		t.Fatalf("failed to create download dir: %v", err)
	}
	manager := downloads.NewManager(store, holder.Client(), relay, downloadDir, downloads.Options{})

	a := app.New(store, metadata.NewResolver(holder), manager, relay, holder, "")
	t.Cleanup(a.Shutdown)

	srv := httptest.NewServer(server.NewRouter(a))
	t.Cleanup(srv.Close)

	return srv, relay
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return out
}

func TestVideoEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/api/v1"

	// Empty list.
	resp, err := http.Get(base + "/videos")
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for list, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Add.
	resp = postJSON(t, base+"/videos", map[string]string{"url": testVideoID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for add, got %d", resp.StatusCode)
	}
	created := decodeBody[models.Video](t, resp)
	if created.VideoID != testVideoID {
		t.Errorf("expected created video ID %q, got %q", testVideoID, created.VideoID)
	}

	// Duplicate add conflicts.
	resp = postJSON(t, base+"/videos", map[string]string{"url": testVideoID})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate add, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Missing body field.
	resp = postJSON(t, base+"/videos", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing url, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Get.
	resp, err = http.Get(base + "/videos/" + testVideoID)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for get, got %d", resp.StatusCode)
	}
	got := decodeBody[models.Video](t, resp)
	if got.Title != "Stub Video" {
		t.Errorf("expected stored title, got %q", got.Title)
	}

	// Unknown ID.
	resp, err = http.Get(base + "/videos/aaaaaaaaaa0")
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown video, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Stream before download.
	resp, err = http.Get(base + "/videos/" + testVideoID + "/stream")
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 streaming an undownloaded video, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Download.
	resp = postJSON(t, base+"/videos/"+testVideoID+"/download", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for download, got %d", resp.StatusCode)
	}
	result := decodeBody[models.TransferResult](t, resp)
	if result.FileSize == 0 || result.FilePath == "" {
		t.Errorf("expected transfer result, got %+v", result)
	}

	// Stream after download serves the bytes.
	resp, err = http.Get(base + "/videos/" + testVideoID + "/stream")
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("failed to read stream body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for stream, got %d", resp.StatusCode)
	}
	if int64(len(body)) != result.FileSize {
		t.Errorf("expected %d streamed bytes, got %d", result.FileSize, len(body))
	}

	// Cancel with nothing active.
	req, err := http.NewRequest(http.MethodDelete, base+"/videos/"+testVideoID+"/download", nil)
	if err != nil {
		t.Fatalf("failed to build cancel request: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("cancel request failed: %v", err)
	}
	cancelBody := decodeBody[map[string]bool](t, resp)
	if cancelBody["cancelled"] {
		t.Error("expected cancelled=false with no active transfer")
	}

	// Delete.
	req, err = http.NewRequest(http.MethodDelete, base+"/videos/"+testVideoID, nil)
	if err != nil {
		t.Fatalf("failed to build delete request: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 for delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRemoteSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/api/v1"

	resp, err := http.Get(base + "/search?q=anything")
	if err != nil {
		t.Fatalf("search request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for search, got %d", resp.StatusCode)
	}
	results := decodeBody[[]models.SearchResult](t, resp)
	if len(results) != 1 || results[0].Title != "Hit One" {
		t.Errorf("unexpected search results: %+v", results)
	}

	resp, err = http.Get(base + "/search")
	if err != nil {
		t.Fatalf("search request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing query, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestEventsEndpointStreams(t *testing.T) {
	srv, relay := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	if err != nil {
		t.Fatalf("failed to build events request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event-stream content type, got %q", ct)
	}

	// The subscription races the publish; retry until the stream carries it.
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				relay.Progress(testVideoID, 42)
			}
		}
	}()

	reader := bufio.NewReader(resp.Body)
	var dataLine string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("failed reading event stream: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}

	var e events.Event
	if err := json.Unmarshal([]byte(dataLine), &e); err != nil {
		t.Fatalf("failed to decode event payload %q: %v", dataLine, err)
	}
	if e.Kind != events.KindProgress || e.VideoID != testVideoID || e.Percentage != 42 {
		t.Errorf("unexpected event: %+v", e)
	}
}
