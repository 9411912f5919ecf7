// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package models

import "time"

// Content types understood by the addon. Stremio uses "series" where
// TMDB uses "tv"; everything that is not a movie maps to series.
const (
	TypeMovie  = "movie"
	TypeSeries = "series"
)

// NormalizeStremioType maps an upstream media type to a Stremio content type.
// Exactly two buckets exist: "movie" stays "movie", everything else is "series".
func NormalizeStremioType(mediaType string) string {
	if mediaType == TypeMovie {
		return TypeMovie
	}
	return TypeSeries
}

// NormalizeTMDBType maps a content type to the TMDB API path segment.
func NormalizeTMDBType(mediaType string) string {
	if mediaType == TypeMovie {
		return TypeMovie
	}
	return "tv"
}

// LibraryItem is a single entry in a user's Stremio library.
//
// ID is opaque to the addon: it may encode multiple comma-separated tokens
// (e.g. "tt0111161,tmdb:278") and must be parsed tolerantly.
type LibraryItem struct {
	// ID is the raw library identifier.
	ID string `json:"id"`

	// Type is the content type: "movie" or "series".
	Type string `json:"type"`

	// Name is the display title.
	Name string `json:"name"`

	// ModTime is when the item was last touched in the library.
	ModTime time.Time `json:"mtime,omitzero"`
}

// Library is a snapshot of a user's Stremio library, split into the two
// sets the recommendation pipeline cares about. Both slices are ordered
// most-recent-first; seed selection relies on this ordering.
type Library struct {
	// Loved holds items the user explicitly added to their library.
	// These become the seeds for recommendation queries.
	Loved []LibraryItem `json:"loved"`

	// Watched holds items with playback history. These are excluded
	// from recommendation results.
	Watched []LibraryItem `json:"watched"`
}

// Candidate is a raw recommendation returned by the upstream provider,
// keyed by the provider's numeric ID.
type Candidate struct {
	// ID is the TMDB numeric identifier.
	ID int `json:"id"`

	// MediaType is the provider media type ("movie" or "tv").
	MediaType string `json:"media_type"`

	// Title is the provider display title, carried for logging only.
	Title string `json:"title,omitempty"`
}
