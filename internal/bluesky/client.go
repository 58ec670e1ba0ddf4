package bluesky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/blackmichael/bsky-photo-gallery/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultAppView = "https://public.api.bsky.app"
	opSearchPosts  = "searchPosts"
)

// UpstreamError reports a failed call to the Bluesky AppView: a
// transport failure, a non-2xx response, or a payload that does not
// decode. Status is zero when the request never got a response.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client is a read-only client for the public Bluesky AppView search
// API. The upstream is rate-limited, so outbound calls go through a
// client-side limiter regardless of how aggressively callers schedule.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new search client. If baseURL is empty, it
// defaults to the public AppView. The timeout bounds each request so a
// hung upstream cannot stall callers indefinitely; rps caps the
// client-side request rate.
func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	if baseURL == "" {
		baseURL = defaultAppView
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SearchPosts issues a single app.bsky.feed.searchPosts call and returns
// the validated results in upstream order. It does not retry.
func (c *Client) SearchPosts(ctx context.Context, query string, limit int) ([]domain.RawPost, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Op: opSearchPosts, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	}
	endpoint := c.baseURL + "/xrpc/app.bsky.feed.searchPosts?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamError{Op: opSearchPosts, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: opSearchPosts, Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: opSearchPosts, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Op:     opSearchPosts,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", truncate(string(body), 200)),
		}
	}

	posts, err := decodeSearchResponse(body)
	if err != nil {
		return nil, &UpstreamError{Op: opSearchPosts, Err: err}
	}
	return posts, nil
}

// decodeSearchResponse resolves each post's record and embed unions into
// tagged domain variants. The $type discriminators are checked here,
// once, so downstream code never inspects wire shapes. A post whose
// record or embed fails to decode keeps the Other variant rather than
// aborting the batch.
func decodeSearchResponse(data []byte) ([]domain.RawPost, error) {
	var resp searchPostsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}

	raws := make([]domain.RawPost, 0, len(resp.Posts))
	for _, pv := range resp.Posts {
		raw := domain.RawPost{
			URI:       pv.URI,
			IndexedAt: pv.IndexedAt,
			Author: domain.RawAuthor{
				Handle:      pv.Author.Handle,
				DisplayName: pv.Author.DisplayName,
			},
		}

		for _, l := range pv.Labels {
			raw.Labels = append(raw.Labels, domain.Label{
				Source: l.Src,
				URI:    l.URI,
				Value:  l.Val,
			})
		}

		if len(pv.Record) > 0 {
			var rec postRecord
			if err := json.Unmarshal(pv.Record, &rec); err == nil && rec.Type == typePostRecord {
				raw.Record = domain.RawRecord{Kind: domain.RecordKindPost, Text: rec.Text}
			}
		}

		if len(pv.Embed) > 0 {
			var embed imagesEmbedView
			if err := json.Unmarshal(pv.Embed, &embed); err == nil && embed.Type == typeImagesView {
				images := make([]domain.RawImage, 0, len(embed.Images))
				for _, img := range embed.Images {
					images = append(images, domain.RawImage{
						Thumb:    img.Thumb,
						Fullsize: img.Fullsize,
						Alt:      img.Alt,
					})
				}
				raw.Embed = domain.RawEmbed{Kind: domain.EmbedKindImages, Images: images}
			}
		}

		raws = append(raws, raw)
	}

	return raws, nil
}

// truncate returns the first n characters of s, appending "..." if truncated.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
