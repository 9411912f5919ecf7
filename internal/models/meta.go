// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package models

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Rating is a numeric rating that tolerates both JSON numbers and strings.
// The TMDB Stremio addon serializes imdbRating as a string ("7.5"); other
// sources use plain numbers. Absent or malformed values decode to 0.
type Rating float64

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rating) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" || s == "N/A" {
		*r = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*r = 0
		return nil
	}
	*r = Rating(f)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Rating) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(r))
}

// Meta is the enriched metadata record for a single content item as served
// by the TMDB Stremio addon, extended with the relevance score the
// aggregation pipeline accumulates.
type Meta struct {
	// ID is the Stremio meta identifier (imdb or tmdb-prefixed).
	ID string `json:"id"`

	// IMDBID is the canonical external identifier, when known.
	IMDBID string `json:"imdb_id,omitempty"`

	// TMDBID is the provider-internal numeric identifier, when known.
	TMDBID int `json:"tmdb_id,omitempty"`

	// Type is the Stremio content type ("movie" or "series").
	Type string `json:"type"`

	// Name is the display title.
	Name string `json:"name"`

	// Genres is the list of TMDB genre IDs for the item.
	Genres []int `json:"genre_ids,omitempty"`

	// GenreNames is the human-readable genre list.
	GenreNames []string `json:"genres,omitempty"`

	// IMDBRating is the item's numeric rating; 0 when unknown.
	IMDBRating Rating `json:"imdbRating"`

	// Poster and Description are passed through to the Stremio client.
	Poster      string `json:"poster,omitempty"`
	Description string `json:"description,omitempty"`

	// ReleaseInfo is the year or year range string.
	ReleaseInfo string `json:"releaseInfo,omitempty"`

	// Score is the accumulated relevance score. It only ever increases
	// as more seeds vote for the same item.
	Score float64 `json:"_score"`
}

// CanonicalID returns the identifier used to deduplicate metas: the IMDB ID
// when present, otherwise a tmdb-prefixed fallback. Empty when neither
// identifier is known; such metas are dropped by the aggregator.
func (m *Meta) CanonicalID() string {
	if m.IMDBID != "" {
		return m.IMDBID
	}
	if m.TMDBID > 0 {
		return "tmdb:" + strconv.Itoa(m.TMDBID)
	}
	return ""
}
