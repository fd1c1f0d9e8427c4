// Package contracts defines interfaces that decouple the application layer from storage implementations.
package contracts

import (
	"context"
	"database/sql"

	"tubevault/internal/domain/consts"
	"tubevault/internal/models"
)

// Store allows access to the main store repo methods.
type Store interface {
	VideoStore() VideoStore
}

// VideoStore allows access to video repo methods.
type VideoStore interface {
	GetDB() *sql.DB

	// Add operations.
	AddVideo(ctx context.Context, meta *models.VideoMetadata) (*models.Video, error)

	// 'Get' operations.
	GetVideo(ctx context.Context, videoID string) (v *models.Video, hasRow bool, err error)
	GetAllVideos(ctx context.Context) ([]*models.Video, error)
	SearchVideos(ctx context.Context, text string) ([]*models.Video, error)

	// Update operations.
	UpdateDownloadStatus(ctx context.Context, videoID string, status consts.DownloadStatus, progress int) error
	UpdateDownloadComplete(ctx context.Context, videoID, filePath string, fileSize int64) error
	UpdateThumbnailPath(ctx context.Context, videoID, thumbPath string) error

	// Delete operations.
	DeleteVideo(ctx context.Context, videoID string) error
}
