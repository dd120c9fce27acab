package wanted

import (
	"fmt"
	"strings"
)

// Record is one normalized output item of an aggregation run.
// Cross-reference ids are nil when the source did not provide them.
type Record struct {
	SeriesID     int64  `json:"seriesId"`
	SeriesTitle  string `json:"seriesTitle"`
	Season       int    `json:"season"`
	Episode      int    `json:"episode"`
	Code         string `json:"code"`  // "S02E05"
	Title        string `json:"title"` // "{series title} {code}"
	SeriesStatus string `json:"seriesStatus,omitempty"`
	TvdbID       *int64 `json:"tvdbId,omitempty"`
	TvRageID     *int64 `json:"tvRageId,omitempty"`
	TvMazeID     *int64 `json:"tvMazeId,omitempty"`
}

// InvalidRecordError describes a raw episode that failed the validity
// predicate. It is reported and skipped; it never aborts a run.
type InvalidRecordError struct {
	SeriesID int64
	Missing  []string
}

// Error implements the error interface.
func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid episode record (series %d): missing %s",
		e.SeriesID, strings.Join(e.Missing, ", "))
}

// EpisodeCode formats a season/episode pair as a zero-padded composite
// code, e.g. (2, 5) -> "S02E05". Numbers wider than two digits are not
// truncated.
func EpisodeCode(season, episode int) string {
	return fmt.Sprintf("S%02dE%02d", season, episode)
}

// normalize converts a raw episode into a Record, or returns an
// *InvalidRecordError when a required identity field is absent.
func normalize(ep Episode) (Record, error) {
	var missing []string
	if ep.Series.Title == "" {
		missing = append(missing, "series title")
	}
	if ep.SeriesID <= 0 {
		missing = append(missing, "series id")
	}
	if ep.SeasonNumber == nil {
		missing = append(missing, "season number")
	}
	if ep.EpisodeNumber == nil {
		missing = append(missing, "episode number")
	}
	if len(missing) > 0 {
		return Record{}, &InvalidRecordError{SeriesID: ep.SeriesID, Missing: missing}
	}

	code := EpisodeCode(*ep.SeasonNumber, *ep.EpisodeNumber)
	return Record{
		SeriesID:     ep.SeriesID,
		SeriesTitle:  ep.Series.Title,
		Season:       *ep.SeasonNumber,
		Episode:      *ep.EpisodeNumber,
		Code:         code,
		Title:        ep.Series.Title + " " + code,
		SeriesStatus: ep.Series.Status,
		TvdbID:       ep.Series.TvdbID,
		TvRageID:     ep.Series.TvRageID,
		TvMazeID:     ep.Series.TvMazeID,
	}, nil
}
