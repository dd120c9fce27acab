package wanted

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPage indicates a listing page that lacks required
// structural fields or reports an inconsistent record count. Fatal to an
// aggregation run.
var ErrMalformedPage = errors.New("malformed wanted-missing page")

// Series is the parent show a missing episode belongs to, as returned
// inline by Sonarr's wanted-missing listing.
type Series struct {
	Title    string `json:"title"`
	Status   string `json:"status"`
	TvdbID   *int64 `json:"tvdbId,omitempty"`
	TvRageID *int64 `json:"tvRageId,omitempty"`
	TvMazeID *int64 `json:"tvMazeId,omitempty"`
}

// Episode is one raw record of the wanted-missing listing. Season and
// episode numbers are pointers so an absent field is distinguishable from
// a legitimate zero (specials are season 0).
type Episode struct {
	SeriesID      int64  `json:"seriesId"`
	SeasonNumber  *int   `json:"seasonNumber"`
	EpisodeNumber *int   `json:"episodeNumber"`
	Series        Series `json:"series"`
}

// MissingPage is one page of the wanted-missing listing. TotalRecords is
// the size of the full result set, not of this page, and is stable across
// pages of the same query.
type MissingPage struct {
	TotalRecords int
	Records      []Episode
}

// UnmarshalJSON decodes a page and rejects structurally incomplete
// payloads with ErrMalformedPage.
func (p *MissingPage) UnmarshalJSON(data []byte) error {
	var raw struct {
		TotalRecords *int       `json:"totalRecords"`
		Records      *[]Episode `json:"records"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	if raw.TotalRecords == nil {
		return fmt.Errorf("%w: totalRecords field missing", ErrMalformedPage)
	}
	if raw.Records == nil {
		return fmt.Errorf("%w: records field missing", ErrMalformedPage)
	}
	if *raw.TotalRecords < 0 {
		return fmt.Errorf("%w: negative totalRecords %d", ErrMalformedPage, *raw.TotalRecords)
	}
	p.TotalRecords = *raw.TotalRecords
	p.Records = *raw.Records
	return nil
}

// MarshalJSON emits the wire field names so a marshaled page decodes
// back through UnmarshalJSON.
func (p MissingPage) MarshalJSON() ([]byte, error) {
	records := p.Records
	if records == nil {
		records = []Episode{}
	}
	return json.Marshal(struct {
		TotalRecords int       `json:"totalRecords"`
		Records      []Episode `json:"records"`
	}{p.TotalRecords, records})
}

// TotalPages returns ceil(totalRecords / pageSize).
// pageSize must be positive; callers validate it before a run starts.
func TotalPages(totalRecords, pageSize int) int {
	return (totalRecords + pageSize - 1) / pageSize
}
