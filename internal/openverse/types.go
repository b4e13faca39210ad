package openverse

import "encoding/json"

// Tag is a descriptive label attached to a media item.
type Tag struct {
	Name string `json:"name"`
}

// MediaResult is a read-only projection of one upstream media item. Image
// and audio share the envelope; type-specific fields are zero for the other
// kind. Results are fetched fresh per request and never persisted.
type MediaResult struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Creator           string `json:"creator"`
	CreatorURL        string `json:"creator_url,omitempty"`
	Tags              []Tag  `json:"tags,omitempty"`
	URL               string `json:"url"`
	Thumbnail         string `json:"thumbnail,omitempty"`
	Source            string `json:"source,omitempty"`
	License           string `json:"license"`
	LicenseVersion    string `json:"license_version,omitempty"`
	LicenseURL        string `json:"license_url,omitempty"`
	ForeignLandingURL string `json:"foreign_landing_url,omitempty"`
	Attribution       string `json:"attribution,omitempty"`
	FileSize          int64  `json:"filesize,omitempty"`
	FileType          string `json:"filetype,omitempty"`

	// Image fields
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Audio fields
	Duration   int      `json:"duration,omitempty"`
	BitRate    int      `json:"bit_rate,omitempty"`
	SampleRate int      `json:"sample_rate,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Waveform   string   `json:"waveform,omitempty"`
}

// SearchResult is the paginated envelope returned by the upstream search and
// related endpoints. Pagination metadata is passed through to API callers
// unchanged.
type SearchResult struct {
	ResultCount int           `json:"result_count"`
	PageCount   int           `json:"page_count"`
	PageSize    int           `json:"page_size"`
	Page        int           `json:"page"`
	Results     []MediaResult `json:"results"`
}

// Stats holds per-media-type provider statistics, passed through verbatim.
type Stats map[string]json.RawMessage
