package opensubtitlescom

import "time"

// searchParams are the /subtitles query parameters. go-querystring encodes
// them with sorted keys, as the API expects.
type searchParams struct {
	IMDbID            *int    `url:"imdb_id,omitempty"`
	TMDBID            *int    `url:"tmdb_id,omitempty"`
	ParentIMDbID      *int    `url:"parent_imdb_id,omitempty"`
	ParentTMDBID      *int    `url:"parent_tmdb_id,omitempty"`
	Query             *string `url:"query,omitempty"`
	SeasonNumber      *int    `url:"season_number,omitempty"`
	EpisodeNumber     *int    `url:"episode_number,omitempty"`
	Moviehash         *string `url:"moviehash,omitempty"` // Must match `^[a-f0-9]{16}$`
	Languages         *string `url:"languages,omitempty"` // Comma-separated, sorted
	Year              *int    `url:"year,omitempty"`
	MachineTranslated *string `url:"machine_translated,omitempty"`
	Page              *int    `url:"page,omitempty"`
}

type paginatedResponse struct {
	TotalPages int `json:"total_pages"`
	TotalCount int `json:"total_count"`
	PerPage    int `json:"per_page"`
	Page       int `json:"page"`
}

type featureDetails struct {
	FeatureID     int     `json:"feature_id"`
	FeatureType   string  `json:"feature_type"` // "Movie", "Episode"
	Year          int     `json:"year"`
	Title         string  `json:"title"`
	MovieName     string  `json:"movie_name"`
	IMDbID        *int    `json:"imdb_id"`
	TMDBID        *int    `json:"tmdb_id"`
	SeasonNumber  *int    `json:"season_number"`
	EpisodeNumber *int    `json:"episode_number"`
	ParentIMDbID  *int    `json:"parent_imdb_id"`
	ParentTMDBID  *int    `json:"parent_tmdb_id"`
	ParentTitle   *string `json:"parent_title"`
}

type subtitleFile struct {
	FileID   int    `json:"file_id"`
	CDNumber int    `json:"cd_number"`
	FileName string `json:"file_name"`
}

type subtitleAttributes struct {
	SubtitleID        string         `json:"subtitle_id"`
	Language          string         `json:"language"`
	DownloadCount     int            `json:"download_count"`
	HearingImpaired   bool           `json:"hearing_impaired"`
	FPS               *float64       `json:"fps"`
	ForeignPartsOnly  bool           `json:"foreign_parts_only"`
	AITranslated      bool           `json:"ai_translated"`
	MachineTranslated bool           `json:"machine_translated"`
	MoviehashMatch    *bool          `json:"moviehash_match,omitempty"`
	Release           string         `json:"release"`
	URL               string         `json:"url"`
	FeatureDetails    featureDetails `json:"feature_details"`
	Files             []subtitleFile `json:"files"`
}

type apiSubtitle struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Attributes subtitleAttributes `json:"attributes"`
}

type searchResponse struct {
	paginatedResponse
	Data []apiSubtitle `json:"data"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
	Status  int    `json:"status"`
}

type downloadRequest struct {
	FileID    int     `json:"file_id"`
	SubFormat *string `json:"sub_format,omitempty"`
	FileName  *string `json:"file_name,omitempty"`
}

type downloadResponse struct {
	Link         string    `json:"link"`
	FileName     string    `json:"file_name"`
	Requests     int       `json:"requests"`
	Remaining    int       `json:"remaining"`
	Message      string    `json:"message"`
	ResetTimeUTC time.Time `json:"reset_time_utc"`
}
