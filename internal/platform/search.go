package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"tubevault/internal/domain/consts"
	"tubevault/internal/errs"
	"tubevault/internal/models"
	"tubevault/internal/utils/logging"

	"github.com/gocolly/colly"
)

const (
	searchResultsURL = "https://www.youtube.com/results?search_query="
	searchUserAgent  = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

	initialDataMarker = "var ytInitialData = "
)

// Search scrapes the results page for up to limit hits, preserving the
// platform's relevance order.
func (c *YouTube) Search(ctx context.Context, query string, limit int) ([]*models.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > consts.MaxRemoteSearchResults {
		limit = consts.MaxRemoteSearchResults
	}

	col := colly.NewCollector(
		colly.UserAgent(searchUserAgent),
		colly.AllowedDomains("www.youtube.com", "youtube.com"),
	)
	col.SetRequestTimeout(consts.SearchRequestTimeout)

	var body []byte
	col.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := col.Visit(searchResultsURL + url.QueryEscape(query)); err != nil {
		return nil, errs.NewResolutionError(query, err)
	}

	results, err := parseSearchResults(body, limit)
	if err != nil {
		return nil, errs.NewResolutionError(query, err)
	}

	logging.D(1, "Remote search %q returned %d results", query, len(results))
	return results, nil
}

// Typed slice of the results page's embedded data, down to videoRenderer
// entries. Struct decoding keeps the platform's ordering intact.
type ytInitialData struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []struct {
						ItemSectionRenderer struct {
							Contents []struct {
								VideoRenderer *videoRenderer `json:"videoRenderer"`
							} `json:"contents"`
						} `json:"itemSectionRenderer"`
					} `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

type videoRenderer struct {
	VideoID string `json:"videoId"`
	Title   struct {
		Runs []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"title"`
	Thumbnail struct {
		Thumbnails []struct {
			URL    string `json:"url"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"thumbnails"`
	} `json:"thumbnail"`
	LengthText struct {
		SimpleText string `json:"simpleText"`
	} `json:"lengthText"`
	OwnerText struct {
		Runs []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"ownerText"`
	ViewCountText struct {
		SimpleText string `json:"simpleText"`
	} `json:"viewCountText"`
	PublishedTimeText struct {
		SimpleText string `json:"simpleText"`
	} `json:"publishedTimeText"`
}

// parseSearchResults extracts videoRenderer entries from the results page body.
func parseSearchResults(body []byte, limit int) ([]*models.SearchResult, error) {
	raw, err := extractInitialData(body)
	if err != nil {
		return nil, err
	}

	var data ytInitialData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode search results payload: %w", err)
	}

	var results []*models.SearchResult
	for _, section := range data.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents {
		for _, item := range section.ItemSectionRenderer.Contents {
			vr := item.VideoRenderer
			if vr == nil || vr.VideoID == "" {
				continue
			}
			results = append(results, vr.toSearchResult())
			if len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}

// extractInitialData slices the ytInitialData JSON object out of the page.
func extractInitialData(body []byte) (json.RawMessage, error) {
	idx := strings.Index(string(body), initialDataMarker)
	if idx < 0 {
		return nil, errors.New("search results page carried no initial data block")
	}

	rest := body[idx+len(initialDataMarker):]
	end := strings.Index(string(rest), ";</script>")
	if end < 0 {
		return nil, errors.New("search results initial data block is unterminated")
	}
	return json.RawMessage(rest[:end]), nil
}

func (vr *videoRenderer) toSearchResult() *models.SearchResult {
	res := &models.SearchResult{
		VideoID:       vr.VideoID,
		URL:           watchURLPrefix + vr.VideoID,
		Duration:      parseDurationText(vr.LengthText.SimpleText),
		ViewCount:     vr.ViewCountText.SimpleText,
		PublishedTime: vr.PublishedTimeText.SimpleText,
	}
	if len(vr.Title.Runs) > 0 {
		res.Title = vr.Title.Runs[0].Text
	}
	if len(vr.OwnerText.Runs) > 0 {
		res.Channel = vr.OwnerText.Runs[0].Text
	}
	if n := len(vr.Thumbnail.Thumbnails); n > 0 {
		res.ThumbnailURL = vr.Thumbnail.Thumbnails[n-1].URL
	}
	return res
}

// parseDurationText converts "1:02:03" style length text to whole seconds.
func parseDurationText(text string) int64 {
	if text == "" {
		return 0
	}

	var total int64
	for _, part := range strings.Split(text, ":") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}
