// Package thumbs caches remote thumbnails in the local thumbnails directory.
package thumbs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"tubevault/internal/domain/consts"
	"tubevault/internal/utils/logging"

	"github.com/araddon/dateparse"
)

// Cache downloads thumbURL into dir, named by platform video ID, and
// returns the cached path. The file's modtime mirrors the server's
// Last-Modified header when one parses.
func Cache(ctx context.Context, client *http.Client, dir, videoID, thumbURL string) (string, error) {
	if thumbURL == "" {
		return "", nil
	}
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, consts.ThumbFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		if cErr := resp.Body.Close(); cErr != nil {
			logging.D(2, "Failed to close thumbnail response body: %v", cErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("thumbnail fetch returned status %d", resp.StatusCode)
	}

	dest := filepath.Join(dir, videoID+".jpg")
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, consts.PermsThumbFile)
	if err != nil {
		return "", err
	}

	_, copyErr := io.Copy(out, resp.Body)
	if cErr := out.Close(); cErr != nil && copyErr == nil {
		copyErr = cErr
	}
	if copyErr != nil {
		if rmErr := os.Remove(dest); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.E("Failed to remove bad thumbnail %q: %v", dest, rmErr)
		}
		return "", copyErr
	}

	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := dateparse.ParseAny(lm); err == nil {
			if err := os.Chtimes(dest, t, t); err != nil {
				logging.D(2, "Failed to set thumbnail times for %q: %v", dest, err)
			}
		}
	}

	return dest, nil
}

// Remove deletes the cached thumbnail for a video ID, if present.
func Remove(dir, videoID string) {
	dest := filepath.Join(dir, videoID+".jpg")
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		logging.E("Failed to remove cached thumbnail %q: %v", dest, err)
	}
}
