package library

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Fallback values for volumes with missing metadata, kept identical to the
// catalog's existing rows.
const (
	unknownTitle     = "Tiêu Đề Không Xác Định"
	unknownAuthor    = "Tác Giả Không Xác Định"
	unknownPublisher = "NXB Không Xác Định"
	defaultCategory  = "Chung"
)

// GoogleBooksClient fetches candidate catalog entries from the Google Books
// volume search API. Any transport, status or decode failure surfaces as
// ErrNetwork and leaves no state behind.
type GoogleBooksClient struct {
	cfg    GoogleBooksConfig
	http   *http.Client
	logger zerolog.Logger
}

func NewGoogleBooksClient(cfg GoogleBooksConfig, logger zerolog.Logger) *GoogleBooksClient {
	return &GoogleBooksClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Categories    []string `json:"categories"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// FetchCandidates queries the configured search and maps at most cfg.Limit
// volumes to drafts. A response with no items is not an error; BulkImport
// simply reports zero additions.
func (c *GoogleBooksClient) FetchCandidates(ctx context.Context) ([]BookDraft, error) {
	q := url.Values{"q": {c.cfg.Query}}
	if c.cfg.APIKey != "" {
		q.Set("key", c.cfg.APIKey)
	}
	endpoint := c.cfg.BaseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: google books returned %s", ErrNetwork, resp.Status)
	}

	var body volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}

	items := body.Items
	if c.cfg.Limit > 0 && len(items) > c.cfg.Limit {
		items = items[:c.cfg.Limit]
	}

	drafts := make([]BookDraft, 0, len(items))
	for _, item := range items {
		info := item.VolumeInfo
		d := BookDraft{
			Title:     info.Title,
			Authors:   info.Authors,
			Publisher: info.Publisher,
			Category:  defaultCategory,
			Year:      info.PublishedDate,
		}
		if d.Title == "" {
			d.Title = unknownTitle
		}
		if len(d.Authors) == 0 {
			d.Authors = []string{unknownAuthor}
		}
		if len(info.Categories) > 0 {
			d.Category = info.Categories[0]
		}
		if d.Publisher == "" {
			d.Publisher = unknownPublisher
		}
		if len(d.Year) > 4 {
			d.Year = d.Year[:4]
		}
		drafts = append(drafts, d)
	}

	c.logger.Debug().Int("candidates", len(drafts)).Str("query", c.cfg.Query).Msg("google books fetch complete")
	return drafts, nil
}
