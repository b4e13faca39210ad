package mediaclient

import "time"

// User mirrors the server's user representation.
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// UserPatch is a partial profile update; nil fields are left unchanged.
type UserPatch struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// RegisterParams carries the fields of a registration request.
type RegisterParams struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// AuthResponse is the login/register response payload.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Tag is a descriptive label attached to a media item.
type Tag struct {
	Name string `json:"name"`
}

// MediaResult is one media item in a search response. Image and audio share
// the envelope; type-specific fields are zero for the other kind.
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

// SearchResult is the paginated search envelope.
type SearchResult struct {
	ResultCount int           `json:"result_count"`
	PageCount   int           `json:"page_count"`
	PageSize    int           `json:"page_size"`
	Page        int           `json:"page"`
	Results     []MediaResult `json:"results"`
}

// SearchHistoryItem is one past search recorded for the user.
type SearchHistoryItem struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Query       string            `json:"query"`
	MediaType   string            `json:"mediaType"`
	Filters     map[string]string `json:"filters,omitempty"`
	ResultCount int               `json:"resultCount"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// HistoryPage is one page of the user's search history.
type HistoryPage struct {
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
	Pages    int                 `json:"pages"`
	History  []SearchHistoryItem `json:"history"`
}
