package domain

// RecordKind discriminates the record variant attached to a raw post.
// The upstream wire format is a tagged union; the union is resolved once
// at the client boundary so downstream code never inspects discriminators.
type RecordKind int

const (
	// RecordKindOther is any record that is not a standard post record.
	RecordKindOther RecordKind = iota
	// RecordKindPost is an app.bsky.feed.post record carrying text.
	RecordKindPost
)

// EmbedKind discriminates the media embed variant attached to a raw post.
type EmbedKind int

const (
	// EmbedKindOther covers posts with no embed or a non-image embed.
	EmbedKindOther EmbedKind = iota
	// EmbedKindImages is an image-gallery embed with at least the wire
	// shape of app.bsky.embed.images#view.
	EmbedKindImages
)

// RawPost is one upstream search result after boundary validation.
type RawPost struct {
	// URI is the AT-URI of the post.
	URI string

	// Author identifies the posting account.
	Author RawAuthor

	// IndexedAt is the upstream index timestamp (ISO-8601 string).
	IndexedAt string

	// Record is the resolved record union.
	Record RawRecord

	// Embed is the resolved embed union.
	Embed RawEmbed

	// Labels are moderation labels applied by the upstream labeler.
	Labels []Label
}

// RawAuthor is the author info carried on a raw search result.
type RawAuthor struct {
	Handle      string
	DisplayName string
}

// RawRecord is the resolved record variant. Text is only meaningful when
// Kind is RecordKindPost.
type RawRecord struct {
	Kind RecordKind
	Text string
}

// RawEmbed is the resolved embed variant. Images is only meaningful when
// Kind is EmbedKindImages.
type RawEmbed struct {
	Kind   EmbedKind
	Images []RawImage
}

// RawImage is a single image in an image embed.
type RawImage struct {
	Thumb    string
	Fullsize string
	Alt      string
}

// Label is a moderation label attached by the upstream trust & safety
// system.
type Label struct {
	Source string `json:"src"`
	URI    string `json:"uri"`
	Value  string `json:"val"`
}

// Author is the published author shape.
type Author struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	ProfileURL  string `json:"profileUrl"`
}

// PhotoPost is the published output entity served to clients. Every
// PhotoPost produced by the transformer has non-empty ImageURL and
// FullImageURL.
type PhotoPost struct {
	ID           string  `json:"id"`
	Text         string  `json:"text"`
	Author       Author  `json:"author"`
	PostURL      string  `json:"postUrl"`
	ImageURL     string  `json:"imageUrl"`
	FullImageURL string  `json:"fullImageUrl"`
	CreatedAt    string  `json:"createdAt"`
	Labels       []Label `json:"labels,omitempty"`
}
