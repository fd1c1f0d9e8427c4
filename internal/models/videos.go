// Package models holds the data models passed between tubevault's layers.
package models

import (
	"time"

	"tubevault/internal/domain/consts"
)

// Video is the persistent unit: one collected video and its download lifecycle.
//
// Matches the order of the DB table, do not alter.
type Video struct {
	ID               int64                 `json:"id" db:"id"`
	VideoID          string                `json:"video_id" db:"video_id"`
	URL              string                `json:"url" db:"url"`
	Title            string                `json:"title" db:"title"`
	Description      string                `json:"description" db:"description"`
	ThumbnailURL     string                `json:"thumbnail_url" db:"thumbnail_url"`
	ThumbnailPath    string                `json:"thumbnail_path" db:"thumbnail_path"`
	Duration         int64                 `json:"duration" db:"duration"`
	Channel          string                `json:"channel" db:"channel"`
	UploadDate       time.Time             `json:"upload_date" db:"upload_date"`
	FilePath         string                `json:"file_path" db:"file_path"`
	FileSize         int64                 `json:"file_size" db:"file_size"`
	DownloadStatus   consts.DownloadStatus `json:"download_status" db:"download_status"`
	DownloadProgress int                   `json:"download_progress" db:"download_progress"`
	CreatedAt        time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at" db:"updated_at"`
}

// Downloaded reports whether the video has a completed download on record.
func (v *Video) Downloaded() bool {
	return v.DownloadStatus == consts.DLStatusCompleted && v.FilePath != ""
}

// VideoMetadata is the Metadata Resolver's output, ready for insertion.
type VideoMetadata struct {
	VideoID      string
	URL          string
	Title        string
	Description  string
	ThumbnailURL string
	Duration     int64
	Channel      string
	UploadDate   time.Time
}

// SearchResult is an ephemeral remote search hit. It is never persisted;
// it becomes a Video only through the add operation.
type SearchResult struct {
	VideoID       string `json:"video_id"`
	URL           string `json:"url"`
	Title         string `json:"title"`
	ThumbnailURL  string `json:"thumbnail_url"`
	Duration      int64  `json:"duration"`
	Channel       string `json:"channel"`
	ViewCount     string `json:"view_count,omitempty"`
	PublishedTime string `json:"published_time,omitempty"`
}
