package bluesky

import "encoding/json"

// Wire shapes for the app.bsky.feed.searchPosts response. The record and
// embed fields are tagged unions discriminated by $type; they are decoded
// lazily in decodeSearchResponse.

const (
	typePostRecord = "app.bsky.feed.post"
	typeImagesView = "app.bsky.embed.images#view"
)

type searchPostsResponse struct {
	Posts []postView `json:"posts"`
}

type postView struct {
	URI       string          `json:"uri"`
	CID       string          `json:"cid"`
	Author    profileView     `json:"author"`
	Record    json.RawMessage `json:"record,omitempty"`
	Embed     json.RawMessage `json:"embed,omitempty"`
	IndexedAt string          `json:"indexedAt"`
	Labels    []labelView     `json:"labels,omitempty"`
}

type profileView struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
}

type labelView struct {
	Src string `json:"src"`
	URI string `json:"uri"`
	Val string `json:"val"`
}

// postRecord is the content of an app.bsky.feed.post record.
type postRecord struct {
	Type      string `json:"$type"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// imagesEmbedView is the hydrated view of an image embed.
type imagesEmbedView struct {
	Type   string      `json:"$type"`
	Images []imageView `json:"images"`
}

type imageView struct {
	Thumb    string `json:"thumb"`
	Fullsize string `json:"fullsize"`
	Alt      string `json:"alt,omitempty"`
}
