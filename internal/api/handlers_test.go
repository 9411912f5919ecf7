// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/watchly/watchly/internal/cache"
	"github.com/watchly/watchly/internal/catalog"
	"github.com/watchly/watchly/internal/config"
	"github.com/watchly/watchly/internal/models"
	"github.com/watchly/watchly/internal/recommend"
)

// fakeProvider is a minimal MetadataProvider for handler tests.
type fakeProvider struct {
	findID     int
	candidates []models.Candidate
	discovered []models.Candidate
	metas      map[string]*models.Meta
}

func (f *fakeProvider) FindByIMDBID(context.Context, string) (int, string, error) {
	return f.findID, "movie", nil
}

func (f *fakeProvider) GetRecommendations(context.Context, int, string) ([]models.Candidate, error) {
	return f.candidates, nil
}

func (f *fakeProvider) DiscoverByGenres(_ context.Context, _ string, _ []int, limit int) ([]models.Candidate, error) {
	if limit < len(f.discovered) {
		return f.discovered[:limit], nil
	}
	return f.discovered, nil
}

func (f *fakeProvider) GetAddonMeta(_ context.Context, _, id string) (*models.Meta, error) {
	if meta, ok := f.metas[id]; ok {
		copied := *meta
		return &copied, nil
	}
	return nil, errors.New("meta not found: " + id)
}

// fakeStremio is a stand-in for the credential-scoped Stremio client.
type fakeStremio struct {
	lib       models.Library
	libErr    error
	published []models.CatalogDescriptor
	fetches   int64
}

func (f *fakeStremio) GetLibraryItems(context.Context) (models.Library, error) {
	atomic.AddInt64(&f.fetches, 1)
	return f.lib, f.libErr
}

func (f *fakeStremio) UpdateCatalogs(_ context.Context, descriptors []models.CatalogDescriptor) (bool, error) {
	f.published = descriptors
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			CORSOrigins: []string{"*"},
			StaticDir:   "testdata-none",
		},
		Addon: config.AddonConfig{
			ID:      "com.bimal.watchly",
			Name:    "Watchly",
			Version: "0.1.0",
		},
		Recommend: config.RecommendConfig{
			SourceItemsLimit:         10,
			RecommendationsPerSource: 5,
			MaxResults:               50,
			PerItemLimit:             20,
			GenreSeedItems:           5,
		},
		RateLimit: config.RateLimitConfig{Disabled: true},
	}
}

func newTestServer(t *testing.T, provider recommend.MetadataProvider, stremioStub *fakeStremio, respCache *cache.ResponseCache) *httptest.Server {
	t.Helper()

	cfg := testConfig()
	engine := recommend.NewEngine(provider)
	builder := catalog.NewBuilder(provider, cfg.Recommend.GenreSeedItems)

	handler := NewHandler(cfg, engine, builder, respCache)
	handler.newLibraryClient = func(email, password string) libraryClient {
		return stremioStub
	}

	srv := httptest.NewServer(NewRouter(cfg, handler))
	t.Cleanup(srv.Close)
	return srv
}

func credsSegment() string {
	return base64.RawURLEncoding.EncodeToString([]byte("user@example.com:secret"))
}

func getJSON(t *testing.T, url string, v interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp
}

func TestManifest(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeProvider{}, &fakeStremio{}, nil)

	var manifest models.Manifest
	resp := getJSON(t, srv.URL+"/manifest.json", &manifest)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if manifest.ID != "com.bimal.watchly" {
		t.Fatalf("unexpected manifest id %q", manifest.ID)
	}
	if len(manifest.Catalogs) != 2 || manifest.Catalogs[0].ID != "watchly.rec" {
		t.Fatalf("unexpected catalogs: %+v", manifest.Catalogs)
	}

	// Credential-scoped manifest serves the same payload.
	resp = getJSON(t, srv.URL+"/"+credsSegment()+"/manifest.json", &manifest)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d for scoped manifest", resp.StatusCode)
	}
}

func TestCatalogLibraryRecommendations(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		findID:     100,
		candidates: []models.Candidate{{ID: 101, MediaType: "movie"}},
		metas: map[string]*models.Meta{
			"tmdb:101": {ID: "tt2", IMDBID: "tt2", Type: "movie", Name: "Heat", IMDBRating: 7.5},
		},
	}
	stremioStub := &fakeStremio{
		lib: models.Library{
			Loved: []models.LibraryItem{{ID: "tt1", Type: "movie", Name: "The Matrix"}},
		},
	}
	srv := newTestServer(t, provider, stremioStub, nil)

	var body models.CatalogResponse
	resp := getJSON(t, srv.URL+"/"+credsSegment()+"/catalog/movie/watchly.rec.json", &body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Cache-Control"); got != "public, max-age=14400" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}
	if len(body.Metas) != 1 || body.Metas[0].IMDBID != "tt2" || body.Metas[0].Score != 7.5 {
		t.Fatalf("unexpected metas: %+v", body.Metas)
	}
}

func TestCatalogEmptyLibraryReturnsEmptyMetas(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeProvider{}, &fakeStremio{}, nil)

	resp, err := http.Get(srv.URL + "/" + credsSegment() + "/catalog/movie/watchly.rec.json")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if string(raw["metas"]) != "[]" {
		t.Fatalf("metas must be an empty list, got %s", raw["metas"])
	}
}

func TestCatalogItemSimilarity(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		findID:     100,
		candidates: []models.Candidate{{ID: 101, MediaType: "movie"}},
		metas: map[string]*models.Meta{
			"tmdb:101": {ID: "tt2", IMDBID: "tt2", Type: "movie", Name: "Heat", IMDBRating: 8.0},
		},
	}
	srv := newTestServer(t, provider, &fakeStremio{}, nil)

	var body models.CatalogResponse
	resp := getJSON(t, srv.URL+"/"+credsSegment()+"/catalog/movie/tt1.json", &body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if len(body.Metas) != 1 || body.Metas[0].IMDBID != "tt2" {
		t.Fatalf("unexpected metas: %+v", body.Metas)
	}
}

func TestCatalogGenre(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		discovered: []models.Candidate{{ID: 102, MediaType: "movie"}},
		metas: map[string]*models.Meta{
			"tmdb:102": {ID: "tt3", IMDBID: "tt3", Type: "movie", Name: "Alien", IMDBRating: 8.5},
		},
	}
	srv := newTestServer(t, provider, &fakeStremio{}, nil)

	var body models.CatalogResponse
	resp := getJSON(t, srv.URL+"/"+credsSegment()+"/catalog/movie/watchly.genre.28-18.json", &body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if len(body.Metas) != 1 || body.Metas[0].IMDBID != "tt3" {
		t.Fatalf("unexpected metas: %+v", body.Metas)
	}
}

func TestCatalogValidation(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeProvider{}, &fakeStremio{}, nil)

	tests := []struct {
		name string
		path string
	}{
		{name: "invalid type", path: "/" + credsSegment() + "/catalog/music/watchly.rec.json"},
		{name: "invalid catalog id", path: "/" + credsSegment() + "/catalog/movie/bogus.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var body models.ErrorResponse
			resp := getJSON(t, srv.URL+tt.path, &body)

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if body.Error.Code != "VALIDATION_ERROR" {
				t.Fatalf("unexpected error code %q", body.Error.Code)
			}
		})
	}
}

func TestCatalogBadCredentials(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeProvider{}, &fakeStremio{}, nil)

	var body models.ErrorResponse
	resp := getJSON(t, srv.URL+"/%21%21%21/catalog/movie/watchly.rec.json", &body)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body.Error.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("unexpected error code %q", body.Error.Code)
	}
}

func TestCatalogLibraryFetchFailure(t *testing.T) {
	t.Parallel()

	stremioStub := &fakeStremio{libErr: errors.New("login rejected")}
	srv := newTestServer(t, &fakeProvider{}, stremioStub, nil)

	var body models.ErrorResponse
	resp := getJSON(t, srv.URL+"/"+credsSegment()+"/catalog/movie/watchly.rec.json", &body)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body.Error.Code != "UPSTREAM_ERROR" {
		t.Fatalf("unexpected error code %q", body.Error.Code)
	}
}

func TestCatalogResponseCache(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		findID:     100,
		candidates: []models.Candidate{{ID: 101, MediaType: "movie"}},
		metas: map[string]*models.Meta{
			"tmdb:101": {ID: "tt2", IMDBID: "tt2", Type: "movie", Name: "Heat", IMDBRating: 7.5},
		},
	}
	stremioStub := &fakeStremio{
		lib: models.Library{
			Loved: []models.LibraryItem{{ID: "tt1", Type: "movie", Name: "The Matrix"}},
		},
	}
	respCache := cache.New(time.Minute, 100)
	srv := newTestServer(t, provider, stremioStub, respCache)

	url := srv.URL + "/" + credsSegment() + "/catalog/movie/watchly.rec.json"
	for i := 0; i < 2; i++ {
		var body models.CatalogResponse
		resp := getJSON(t, url, &body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("unexpected status %d", resp.StatusCode)
		}
		if len(body.Metas) != 1 {
			t.Fatalf("unexpected metas: %+v", body.Metas)
		}
	}

	if n := atomic.LoadInt64(&stremioStub.fetches); n != 1 {
		t.Fatalf("expected second request served from cache, got %d library fetches", n)
	}
}

func TestUpdateCatalogs(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		metas: map[string]*models.Meta{
			"tt1": {ID: "tt1", Genres: []int{28, 18}},
		},
	}
	stremioStub := &fakeStremio{
		lib: models.Library{
			Loved:   []models.LibraryItem{{ID: "tt1", Type: "movie", Name: "The Matrix"}},
			Watched: []models.LibraryItem{{ID: "tt4", Type: "series", Name: "The Wire"}},
		},
	}
	srv := newTestServer(t, provider, stremioStub, nil)

	var body models.UpdateResponse
	resp := getJSON(t, srv.URL+"/"+credsSegment()+"/catalog/update", &body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if !body.Success {
		t.Fatal("expected success")
	}
	// One loved-movie slot, one watched-series slot; a single seed
	// cannot meet the two-genre threshold pair requirement, but
	// Action+Drama from tt1 forms the first genre descriptor.
	if body.Count != len(stremioStub.published) {
		t.Fatalf("count %d does not match published %d", body.Count, len(stremioStub.published))
	}
	if len(stremioStub.published) != 3 {
		t.Fatalf("expected 3 descriptors, got %+v", stremioStub.published)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeProvider{}, &fakeStremio{}, nil)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s returned %d", path, resp.StatusCode)
		}
	}
}
