package domain

import "strings"

const profileURLBase = "https://bsky.app/profile/"

// LabelPolicy controls how moderation-labeled posts are handled.
type LabelPolicy int

const (
	// RejectLabeled drops any post carrying a moderation label.
	RejectLabeled LabelPolicy = iota

	// IncludeLabeled keeps labeled posts with their labels attached so
	// clients can make their own display decisions.
	IncludeLabeled
)

// ToPhotoPost maps one raw search result to a published photo post.
// It returns false when the post is rejected: no image embed, an image
// missing its thumbnail or full-size URL, or a moderation label under
// the RejectLabeled policy. A record of an unexpected kind yields empty
// text rather than rejection, so malformed text never blocks an
// otherwise valid image post.
func ToPhotoPost(raw RawPost, policy LabelPolicy) (PhotoPost, bool) {
	if raw.Embed.Kind != EmbedKindImages || len(raw.Embed.Images) == 0 {
		return PhotoPost{}, false
	}

	img := raw.Embed.Images[0]
	if img.Thumb == "" || img.Fullsize == "" {
		return PhotoPost{}, false
	}

	if policy == RejectLabeled && len(raw.Labels) > 0 {
		return PhotoPost{}, false
	}

	var text string
	if raw.Record.Kind == RecordKindPost {
		text = raw.Record.Text
	}

	displayName := raw.Author.DisplayName
	if displayName == "" {
		displayName = raw.Author.Handle
	}

	post := PhotoPost{
		ID:   raw.URI,
		Text: text,
		Author: Author{
			Handle:      raw.Author.Handle,
			DisplayName: displayName,
			ProfileURL:  profileURLBase + raw.Author.Handle,
		},
		PostURL:      profileURLBase + raw.Author.Handle + "/post/" + recordKey(raw.URI),
		ImageURL:     img.Thumb,
		FullImageURL: img.Fullsize,
		CreatedAt:    raw.IndexedAt,
	}

	if policy == IncludeLabeled && len(raw.Labels) > 0 {
		post.Labels = raw.Labels
	}

	return post, true
}

// ToPhotoPosts applies ToPhotoPost across a batch, preserving input
// order. Rejected records are dropped silently; a bad record never
// aborts the batch.
func ToPhotoPosts(raws []RawPost, policy LabelPolicy) []PhotoPost {
	posts := make([]PhotoPost, 0, len(raws))
	for _, raw := range raws {
		if post, ok := ToPhotoPost(raw, policy); ok {
			posts = append(posts, post)
		}
	}
	return posts
}

// recordKey returns the segment after the last '/' in an AT-URI.
func recordKey(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
