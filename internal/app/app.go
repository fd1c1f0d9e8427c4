// Package app wires the command surface exposed to presentation layers.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"tubevault/internal/contracts"
	"tubevault/internal/downloads"
	"tubevault/internal/errs"
	"tubevault/internal/events"
	"tubevault/internal/metadata"
	"tubevault/internal/models"
	"tubevault/internal/platform"
	"tubevault/internal/thumbs"
	"tubevault/internal/utils/logging"
)

// App executes user commands against the store, resolver, and transfer
// manager. Presentation layers (HTTP handlers, CLI commands) only ever call
// through here.
type App struct {
	store    contracts.VideoStore
	resolver *metadata.Resolver
	manager  *downloads.Manager
	relay    *events.Relay
	clients  *platform.ClientHolder
	thumbDir string
}

// New assembles the application command layer.
func New(store contracts.VideoStore, resolver *metadata.Resolver, manager *downloads.Manager, relay *events.Relay, clients *platform.ClientHolder, thumbDir string) *App {
	return &App{
		store:    store,
		resolver: resolver,
		manager:  manager,
		relay:    relay,
		clients:  clients,
		thumbDir: thumbDir,
	}
}

// AddVideo resolves the URL's metadata and inserts a pending record. The
// remote thumbnail is cached best-effort; a thumbnail failure never fails
// the add.
func (a *App) AddVideo(ctx context.Context, rawURL string) (*models.Video, error) {
	meta, err := a.resolver.Resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	v, err := a.store.AddVideo(ctx, meta)
	if err != nil {
		return nil, err
	}

	if path := a.cacheThumbnail(ctx, v.VideoID, v.ThumbnailURL); path != "" {
		if err := a.store.UpdateThumbnailPath(ctx, v.VideoID, path); err != nil {
			logging.W("Failed to store thumbnail path for video %q: %v", v.VideoID, err)
		} else {
			v.ThumbnailPath = path
		}
	}
	return v, nil
}

// Video returns a single record by platform video ID.
func (a *App) Video(ctx context.Context, videoID string) (*models.Video, error) {
	v, hasRow, err := a.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !hasRow {
		return nil, fmt.Errorf("video %q: %w", videoID, errs.ErrVideoNotFound)
	}
	return v, nil
}

// ListVideos returns all records, newest first.
func (a *App) ListVideos(ctx context.Context) ([]*models.Video, error) {
	return a.store.GetAllVideos(ctx)
}

// SearchLocal matches stored records by title or channel substring.
func (a *App) SearchLocal(ctx context.Context, query string) ([]*models.Video, error) {
	return a.store.SearchVideos(ctx, query)
}

// SearchRemote queries the platform for ephemeral candidates.
func (a *App) SearchRemote(ctx context.Context, query string) ([]*models.SearchResult, error) {
	return a.resolver.SearchRemote(ctx, query)
}

// Download transfers a video's media to local storage and waits for the
// outcome. A record already completed with its file still on disk is a
// no-op returning the stored result; a completed record whose file has gone
// missing is downloadable again.
func (a *App) Download(ctx context.Context, videoID string) (*models.TransferResult, error) {
	v, err := a.Video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if v.Downloaded() {
		if _, statErr := os.Stat(v.FilePath); statErr == nil {
			logging.I("Video %q already downloaded at %q", videoID, v.FilePath)
			return &models.TransferResult{FilePath: v.FilePath, FileSize: v.FileSize}, nil
		}
		logging.W("Completed video %q is missing its file, re-downloading", videoID)
	}

	t, err := a.manager.StartTransfer(videoID)
	if err != nil {
		return nil, err
	}
	return t.Wait(ctx)
}

// CancelDownload cancels an active transfer. Returns false when none is
// active for the ID; that is a no-op success, not a fault.
func (a *App) CancelDownload(videoID string) bool {
	return a.manager.CancelTransfer(videoID)
}

// DeleteVideo removes the record, its downloaded file, and its cached
// thumbnail. A missing file is not an error. An active transfer for the ID
// is cancelled first.
func (a *App) DeleteVideo(ctx context.Context, videoID string) error {
	v, err := a.Video(ctx, videoID)
	if err != nil {
		return err
	}

	a.manager.CancelTransfer(videoID)

	if v.FilePath != "" {
		if err := os.Remove(v.FilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove file %q: %w", v.FilePath, err)
		}
	}
	thumbs.Remove(a.thumbDir, videoID)

	return a.store.DeleteVideo(ctx, videoID)
}

// Subscribe registers an event listener on the relay.
func (a *App) Subscribe() (<-chan events.Event, func()) {
	return a.relay.Subscribe()
}

// Shutdown cancels all active transfers and waits for their cleanup.
func (a *App) Shutdown() {
	a.manager.Shutdown()
}

// cacheThumbnail fetches the remote thumbnail via the shared platform HTTP
// client, best-effort.
func (a *App) cacheThumbnail(ctx context.Context, videoID, thumbURL string) string {
	if thumbURL == "" || a.thumbDir == "" {
		return ""
	}

	var httpClient *http.Client
	if client, err := a.clients.Get(ctx); err == nil {
		if hc, ok := client.(interface{ HTTPClient() *http.Client }); ok {
			httpClient = hc.HTTPClient()
		}
	}

	path, err := thumbs.Cache(ctx, httpClient, a.thumbDir, videoID, thumbURL)
	if err != nil {
		logging.W("Failed to cache thumbnail for video %q: %v", videoID, err)
		return ""
	}
	return path
}
