package platform

import (
	"context"
	"io"
	"sync"

	"tubevault/internal/contracts"
	"tubevault/internal/models"
)

// ClientHolder lazily initializes a process-wide platform client. The first
// caller triggers construction; concurrent callers share the same pending
// initialization rather than racing to construct duplicates.
type ClientHolder struct {
	build  func(ctx context.Context) (contracts.PlatformClient, error)
	once   sync.Once
	client contracts.PlatformClient
	err    error
}

// NewClientHolder returns a holder that constructs via build on first use.
func NewClientHolder(build func(ctx context.Context) (contracts.PlatformClient, error)) *ClientHolder {
	return &ClientHolder{build: build}
}

// Get returns the shared client, constructing it on the first call. A failed
// construction is sticky: subsequent calls return the same error.
func (h *ClientHolder) Get(ctx context.Context) (contracts.PlatformClient, error) {
	h.once.Do(func() {
		h.client, h.err = h.build(ctx)
	})
	return h.client, h.err
}

// Client returns a PlatformClient view over the holder. Each call goes
// through Get, so construction still only happens on first use.
func (h *ClientHolder) Client() contracts.PlatformClient {
	return lazyClient{h: h}
}

type lazyClient struct {
	h *ClientHolder
}

func (l lazyClient) ResolveVideo(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	c, err := l.h.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.ResolveVideo(ctx, videoID)
}

func (l lazyClient) Search(ctx context.Context, query string, limit int) ([]*models.SearchResult, error) {
	c, err := l.h.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.Search(ctx, query, limit)
}

func (l lazyClient) OpenStream(ctx context.Context, videoID string) (io.ReadCloser, *models.MediaFormat, error) {
	c, err := l.h.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	return c.OpenStream(ctx, videoID)
}
