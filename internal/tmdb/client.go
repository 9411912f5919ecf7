// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/watchly/watchly/internal/config"
	"github.com/watchly/watchly/internal/metrics"
	"github.com/watchly/watchly/internal/models"
)

// maxErrorBodySize limits how much of an upstream error body is read
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// readBodyForError reads a bounded amount of the response body so
// upstream failures carry useful context without unbounded allocation.
func readBodyForError(r io.Reader) []byte {
	limited := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Client talks to the TMDB API and to the TMDB Stremio addon. It
// resolves external IDs, fetches recommendation candidates and pulls
// enriched Stremio metas.
//
// A client-side token bucket limiter bounds the request rate to TMDB.
// Thread safety: safe for concurrent use, each call builds its own
// request.
type Client struct {
	baseURL  string
	addonURL string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a TMDB client from configuration. The HTTP client
// uses a 30 second timeout; per-call deadlines come from the context.
func NewClient(cfg *config.TMDBConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		addonURL: strings.TrimRight(cfg.AddonURL, "/"),
		apiKey:   cfg.APIKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// makeRequest performs a rate-limited GET against reqURL and decodes
// the JSON body into result. The service label feeds upstream metrics.
func (c *Client) makeRequest(ctx context.Context, service, reqURL string, result interface{}) (err error) {
	defer func() { metrics.RecordUpstream(service, err) }()

	if err = c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return fmt.Errorf("%s request failed with status %d: %s", service, resp.StatusCode, string(body))
	}

	if err = json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", service, err)
	}
	return nil
}

// apiURL builds a TMDB API URL with the api_key parameter appended.
func (c *Client) apiURL(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
}

// FindByIMDBID resolves an IMDB ID to a TMDB ID and media type using
// the find endpoint. Movie results win over TV results when both are
// present. A lookup miss returns (0, "", nil), not an error.
func (c *Client) FindByIMDBID(ctx context.Context, imdbID string) (int, string, error) {
	params := url.Values{}
	params.Set("external_source", "imdb_id")

	var found findResponse
	reqURL := c.apiURL("/find/"+url.PathEscape(imdbID), params)
	if err := c.makeRequest(ctx, "tmdb", reqURL, &found); err != nil {
		return 0, "", err
	}

	if len(found.MovieResults) > 0 {
		return found.MovieResults[0].ID, "movie", nil
	}
	if len(found.TVResults) > 0 {
		return found.TVResults[0].ID, "tv", nil
	}
	return 0, "", nil
}

// GetRecommendations fetches recommendation candidates for a TMDB
// title. mediaType is normalized, movie stays movie and everything
// else queries the tv endpoint. Result order is TMDB's relevance
// order.
func (c *Client) GetRecommendations(ctx context.Context, tmdbID int, mediaType string) ([]models.Candidate, error) {
	kind := models.NormalizeTMDBType(mediaType)

	var page resultsResponse
	reqURL := c.apiURL(fmt.Sprintf("/%s/%d/recommendations", kind, tmdbID), nil)
	if err := c.makeRequest(ctx, "tmdb", reqURL, &page); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(page.Results))
	for _, r := range page.Results {
		candidates = append(candidates, r.toCandidate(kind))
	}
	return candidates, nil
}

// DiscoverByGenres fetches titles matching all of the given TMDB genre
// IDs, sorted by popularity. Used to serve the genre-combination
// catalogs.
func (c *Client) DiscoverByGenres(ctx context.Context, mediaType string, genreIDs []int, limit int) ([]models.Candidate, error) {
	kind := models.NormalizeTMDBType(mediaType)

	ids := make([]string, 0, len(genreIDs))
	for _, id := range genreIDs {
		ids = append(ids, strconv.Itoa(id))
	}

	params := url.Values{}
	params.Set("with_genres", strings.Join(ids, ","))
	params.Set("sort_by", "popularity.desc")

	var page resultsResponse
	reqURL := c.apiURL("/discover/"+kind, params)
	if err := c.makeRequest(ctx, "tmdb", reqURL, &page); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, limit)
	for _, r := range page.Results {
		if len(candidates) >= limit {
			break
		}
		candidates = append(candidates, r.toCandidate(kind))
	}
	return candidates, nil
}

// GetAddonMeta fetches an enriched Stremio meta from the TMDB addon.
// id accepts either an IMDB ID (tt...) or a tmdb:<id> identifier.
func (c *Client) GetAddonMeta(ctx context.Context, stremioType, id string) (*models.Meta, error) {
	reqURL := fmt.Sprintf("%s/meta/%s/%s.json",
		c.addonURL, url.PathEscape(models.NormalizeStremioType(stremioType)), url.PathEscape(id))

	var wrapped addonMetaResponse
	if err := c.makeRequest(ctx, "tmdb-addon", reqURL, &wrapped); err != nil {
		return nil, err
	}

	meta := wrapped.Meta
	if meta.Type == "" {
		meta.Type = stremioType
	}
	meta.Type = models.NormalizeStremioType(meta.Type)

	// Some addon builds only set the meta id. Backfill the explicit
	// identifier fields so deduplication has a canonical key.
	if meta.IMDBID == "" && strings.HasPrefix(meta.ID, "tt") {
		meta.IMDBID = meta.ID
	}
	if meta.TMDBID == 0 {
		if raw, ok := strings.CutPrefix(meta.ID, "tmdb:"); ok {
			if n, err := strconv.Atoi(raw); err == nil {
				meta.TMDBID = n
			}
		}
	}
	return &meta, nil
}
