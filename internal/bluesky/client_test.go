package bluesky

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blackmichael/bsky-photo-gallery/internal/domain"
)

const searchFixture = `{
  "posts": [
    {
      "uri": "at://did:plc:abc/app.bsky.feed.post/abc123",
      "cid": "bafyreia",
      "author": {
        "did": "did:plc:abc",
        "handle": "alice.example",
        "displayName": "Alice"
      },
      "record": {
        "$type": "app.bsky.feed.post",
        "text": "golden hour",
        "createdAt": "2024-05-01T11:59:00.000Z"
      },
      "embed": {
        "$type": "app.bsky.embed.images#view",
        "images": [
          {"thumb": "https://cdn.example/thumb.jpg", "fullsize": "https://cdn.example/full.jpg", "alt": "sunset"}
        ]
      },
      "indexedAt": "2024-05-01T12:00:00.000Z",
      "labels": [
        {"src": "did:plc:labeler", "uri": "at://did:plc:abc/app.bsky.feed.post/abc123", "val": "graphic-media"}
      ]
    },
    {
      "uri": "at://did:plc:def/app.bsky.feed.post/def456",
      "cid": "bafyreib",
      "author": {"did": "did:plc:def", "handle": "bob.example"},
      "record": {"$type": "app.bsky.feed.repost"},
      "embed": {"$type": "app.bsky.embed.video#view", "playlist": "https://cdn.example/video.m3u8"},
      "indexedAt": "2024-05-01T12:01:00.000Z"
    }
  ]
}`

// newTestClient points a client at the given handler with the limiter
// effectively disabled.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, 1000)
}

func TestSearchPostsDecodesTaggedUnions(t *testing.T) {
	var gotQuery, gotLimit string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/xrpc/app.bsky.feed.searchPosts" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchFixture))
	}))

	raws, err := client.SearchPosts(context.Background(), "photography", 50)
	if err != nil {
		t.Fatalf("SearchPosts: %v", err)
	}

	if gotQuery != "photography" || gotLimit != "50" {
		t.Errorf("unexpected request params: q=%q limit=%q", gotQuery, gotLimit)
	}
	if len(raws) != 2 {
		t.Fatalf("expected 2 raw posts, got %d", len(raws))
	}

	first := raws[0]
	if first.Record.Kind != domain.RecordKindPost || first.Record.Text != "golden hour" {
		t.Errorf("unexpected record variant: %+v", first.Record)
	}
	if first.Embed.Kind != domain.EmbedKindImages || len(first.Embed.Images) != 1 {
		t.Fatalf("unexpected embed variant: %+v", first.Embed)
	}
	if first.Embed.Images[0].Thumb != "https://cdn.example/thumb.jpg" {
		t.Errorf("unexpected thumb: %s", first.Embed.Images[0].Thumb)
	}
	if len(first.Labels) != 1 || first.Labels[0].Value != "graphic-media" {
		t.Errorf("unexpected labels: %+v", first.Labels)
	}
	if first.Author.Handle != "alice.example" || first.Author.DisplayName != "Alice" {
		t.Errorf("unexpected author: %+v", first.Author)
	}
	if first.IndexedAt != "2024-05-01T12:00:00.000Z" {
		t.Errorf("unexpected indexedAt: %s", first.IndexedAt)
	}

	// The second post's repost record and video embed resolve to the
	// Other variants instead of failing the batch.
	second := raws[1]
	if second.Record.Kind != domain.RecordKindOther || second.Record.Text != "" {
		t.Errorf("unexpected record variant: %+v", second.Record)
	}
	if second.Embed.Kind != domain.EmbedKindOther {
		t.Errorf("unexpected embed variant: %+v", second.Embed)
	}
	if second.Author.DisplayName != "" {
		t.Errorf("absent displayName must stay empty at this layer, got %q", second.Author.DisplayName)
	}
}

func TestSearchPostsNon2xxIsUpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"RateLimitExceeded"}`, http.StatusTooManyRequests)
	}))

	_, err := client.SearchPosts(context.Background(), "photography", 50)
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusTooManyRequests {
		t.Errorf("unexpected status: %d", ue.Status)
	}
}

func TestSearchPostsMalformedPayloadIsUpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"posts": "not an array"`))
	}))

	_, err := client.SearchPosts(context.Background(), "photography", 50)
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != 0 {
		t.Errorf("malformed payload carries no status, got %d", ue.Status)
	}
}

func TestSearchPostsTransportFailureIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second, 1000)
	_, err := client.SearchPosts(context.Background(), "photography", 50)
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestSearchPostsEmptyResult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"posts": []}`))
	}))

	raws, err := client.SearchPosts(context.Background(), "photography", 50)
	if err != nil {
		t.Fatalf("SearchPosts: %v", err)
	}
	if raws == nil || len(raws) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", raws)
	}
}
