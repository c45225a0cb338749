package models

// ChannelKind determines which fetcher services a channel. Closed set:
// adding a kind means adding a fetcher to the ingest registry.
type ChannelKind string

const (
	// KindFeed is a plain RSS/Atom feed fetched over HTTP.
	KindFeed ChannelKind = "feed"
	// KindScript is a scripted scraper registered by an external
	// collaborator, addressed as script:<name>:<url>.
	KindScript ChannelKind = "script"
)

// Folder groups channels in the subscription tree.
type Folder struct {
	Id       int64  `json:"id"`
	Title    string `json:"title"`
	Expanded bool   `json:"expanded"`
	Unread   int64  `json:"unread"`
}

// Channel is a single content source.
type Channel struct {
	Id          int64       `json:"id"`
	Title       string      `json:"title"`
	Url         string      `json:"url"`
	Kind        ChannelKind `json:"kind"`
	FolderId    *int64      `json:"folderId,omitempty"`
	FolderTitle string      `json:"folderTitle,omitempty"`
	Unread      int64       `json:"unread"`
}

// NewsItem is one ingested content unit, deduplicated by Url.
type NewsItem struct {
	Id           int64   `json:"id"`
	ChannelId    int64   `json:"channelId"`
	ChannelTitle string  `json:"channelTitle,omitempty"`
	Title        string  `json:"title"`
	Url          string  `json:"url"`
	Summary      string  `json:"summary"`
	IsRead       bool    `json:"isRead"`
	Quality      float64 `json:"quality"`
}

// Text returns the combined text the relevance engine scores against.
func (n *NewsItem) Text() string {
	return n.ChannelTitle + " " + n.Title + " " + n.Summary
}

// RawItem is what a fetcher hands to the ingest pipeline, most recent first.
type RawItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Summary string `json:"summary"`
}

// WordWeight is a learned vocabulary entry. Weights only ever grow.
type WordWeight struct {
	Word    string  `json:"word"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// ProgressEvent reports per-channel progress of an update cycle.
type ProgressEvent struct {
	Channel  string `json:"channel"`
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Inserted int    `json:"inserted"`
	Err      string `json:"error,omitempty"`
	Done     bool   `json:"done"`
}
