// Package platform talks to the video platform. All protocol work (API
// negotiation, signature handling, format plumbing) is delegated to the
// extraction library; this package only adapts its surface.
package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tubevault/internal/errs"
	"tubevault/internal/models"

	youtube "github.com/kkdai/youtube/v2"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// YouTube implements contracts.PlatformClient against youtube.com.
type YouTube struct {
	yt   *youtube.Client
	http *http.Client
}

// NewYouTube returns a platform client using the given HTTP client for both
// the extraction library and page fetches.
func NewYouTube(httpClient *http.Client) *YouTube {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &YouTube{
		yt:   &youtube.Client{HTTPClient: httpClient},
		http: httpClient,
	}
}

// HTTPClient exposes the underlying HTTP client for sibling fetches
// (thumbnails) that should share cookies and connection pools.
func (c *YouTube) HTTPClient() *http.Client {
	return c.http
}

// ResolveVideo retrieves metadata for a platform video ID.
func (c *YouTube) ResolveVideo(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	v, err := c.yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, errs.NewResolutionError(videoID, err)
	}

	return &models.VideoMetadata{
		VideoID:      v.ID,
		URL:          watchURLPrefix + v.ID,
		Title:        v.Title,
		Description:  v.Description,
		ThumbnailURL: bestThumbnail(v.Thumbnails),
		Duration:     int64(v.Duration / time.Second),
		Channel:      v.Author,
		UploadDate:   v.PublishDate,
	}, nil
}

// OpenStream opens a byte stream for the best combined audio+video format.
func (c *YouTube) OpenStream(ctx context.Context, videoID string) (io.ReadCloser, *models.MediaFormat, error) {
	v, err := c.yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch video %q: %w", videoID, err)
	}

	// Progressive formats only: audio and video muxed in one stream.
	formats := v.Formats.WithAudioChannels().Type("video")
	if len(formats) == 0 {
		return nil, nil, errs.ErrNoSuitableFormat
	}
	formats.Sort()
	best := &formats[0]

	stream, size, err := c.yt.GetStreamContext(ctx, v, best)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stream for video %q: %w", videoID, err)
	}

	if size <= 0 {
		size = best.ContentLength
	}

	return stream, &models.MediaFormat{
		ItagNo:        best.ItagNo,
		MimeType:      best.MimeType,
		Quality:       best.QualityLabel,
		ContentLength: size,
		AudioChannels: best.AudioChannels,
		Extension:     extensionFromMime(best.MimeType),
	}, nil
}

// bestThumbnail picks the largest available thumbnail URL.
func bestThumbnail(thumbs youtube.Thumbnails) string {
	var (
		bestURL   string
		bestWidth uint
	)
	for _, t := range thumbs {
		if t.URL != "" && t.Width >= bestWidth {
			bestURL = t.URL
			bestWidth = t.Width
		}
	}
	return bestURL
}

// extensionFromMime maps a media MIME type onto a file extension.
func extensionFromMime(mimeType string) string {
	mt := mimeType
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = mt[:i]
	}
	switch strings.TrimSpace(mt) {
	case "video/webm":
		return ".webm"
	case "video/3gpp":
		return ".3gp"
	case "video/x-flv":
		return ".flv"
	default:
		return ".mp4"
	}
}
