package contracts

import (
	"context"
	"io"

	"tubevault/internal/models"
)

// PlatformClient is the external extraction capability boundary. Everything
// about how the platform is spoken to lives behind this interface.
type PlatformClient interface {
	// ResolveVideo retrieves metadata for a platform video ID.
	ResolveVideo(ctx context.Context, videoID string) (*models.VideoMetadata, error)

	// Search returns up to limit results in the platform's relevance order.
	Search(ctx context.Context, query string, limit int) ([]*models.SearchResult, error)

	// OpenStream opens a byte stream for the best combined audio+video
	// format of the given video, along with the chosen format's details.
	// The stream must be closed by the caller and observes ctx cancellation.
	OpenStream(ctx context.Context, videoID string) (io.ReadCloser, *models.MediaFormat, error)
}

// Notifier receives fire-and-forget transfer notifications keyed by video ID.
type Notifier interface {
	Progress(videoID string, percentage int)
	Completed(videoID, filePath string)
	Failed(videoID, message string)
}
