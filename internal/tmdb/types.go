// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package tmdb

import (
	"github.com/watchly/watchly/internal/models"
)

// candidateResult is the raw shape TMDB returns for a title in find,
// recommendations and discover responses. Movies carry "title", TV
// shows carry "name"; media_type is only present on mixed endpoints.
type candidateResult struct {
	ID        int    `json:"id"`
	MediaType string `json:"media_type"`
	Title     string `json:"title"`
	Name      string `json:"name"`
}

// toCandidate converts a raw result into a models.Candidate, filling
// the media type from the endpoint when the payload omits it.
func (r candidateResult) toCandidate(fallbackMediaType string) models.Candidate {
	mediaType := r.MediaType
	if mediaType == "" {
		mediaType = fallbackMediaType
	}
	title := r.Title
	if title == "" {
		title = r.Name
	}
	return models.Candidate{
		ID:        r.ID,
		MediaType: models.NormalizeTMDBType(mediaType),
		Title:     title,
	}
}

// findResponse is TMDB /find/{external_id} keyed by result category.
type findResponse struct {
	MovieResults []candidateResult `json:"movie_results"`
	TVResults    []candidateResult `json:"tv_results"`
}

// resultsResponse is the shared paged shape of the recommendations and
// discover endpoints.
type resultsResponse struct {
	Page         int               `json:"page"`
	Results      []candidateResult `json:"results"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

// addonMetaResponse wraps the TMDB Stremio addon meta payload.
type addonMetaResponse struct {
	Meta models.Meta `json:"meta"`
}
