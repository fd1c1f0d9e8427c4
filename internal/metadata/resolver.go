// Package metadata resolves video references into insertable metadata.
package metadata

import (
	"context"

	"tubevault/internal/domain/consts"
	"tubevault/internal/errs"
	"tubevault/internal/models"
	"tubevault/internal/platform"

	youtube "github.com/kkdai/youtube/v2"
)

// Resolver turns URLs/IDs into metadata and free text into search results.
// It performs no retries: a failed lookup surfaces immediately.
type Resolver struct {
	clients *platform.ClientHolder
}

// NewResolver returns a resolver using the shared platform client.
func NewResolver(clients *platform.ClientHolder) *Resolver {
	return &Resolver{clients: clients}
}

// ExtractID pulls the platform video ID out of a URL or bare ID string.
func ExtractID(input string) (string, error) {
	id, err := youtube.ExtractVideoID(input)
	if err != nil {
		return "", errs.NewResolutionError(input, err)
	}
	return id, nil
}

// Resolve retrieves metadata for a video URL or bare platform ID, filling
// defined defaults for anything the platform left out.
func (r *Resolver) Resolve(ctx context.Context, input string) (*models.VideoMetadata, error) {
	id, err := ExtractID(input)
	if err != nil {
		return nil, err
	}

	client, err := r.clients.Get(ctx)
	if err != nil {
		return nil, errs.NewResolutionError(input, err)
	}

	meta, err := client.ResolveVideo(ctx, id)
	if err != nil {
		return nil, err
	}

	applyDefaults(meta)
	return meta, nil
}

// SearchRemote returns up to the capped number of ephemeral results in the
// platform's relevance order. No pagination.
func (r *Resolver) SearchRemote(ctx context.Context, query string) ([]*models.SearchResult, error) {
	client, err := r.clients.Get(ctx)
	if err != nil {
		return nil, errs.NewResolutionError(query, err)
	}

	results, err := client.Search(ctx, query, consts.MaxRemoteSearchResults)
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		if res.Title == "" {
			res.Title = consts.DefaultTitle
		}
		if res.Channel == "" {
			res.Channel = consts.DefaultChannel
		}
	}
	return results, nil
}

// applyDefaults substitutes defined defaults for missing optional fields.
func applyDefaults(meta *models.VideoMetadata) {
	if meta.Title == "" {
		meta.Title = consts.DefaultTitle
	}
	if meta.Channel == "" {
		meta.Channel = consts.DefaultChannel
	}
	if meta.Duration < 0 {
		meta.Duration = 0
	}
}
