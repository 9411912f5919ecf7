// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/watchly/watchly/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(&config.TMDBConfig{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		AddonURL:          srv.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	})
	return client, srv
}

func TestFindByIMDBID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		wantID        int
		wantMediaType string
	}{
		{
			name:          "movie result",
			body:          `{"movie_results":[{"id":603,"title":"The Matrix"}],"tv_results":[]}`,
			wantID:        603,
			wantMediaType: "movie",
		},
		{
			name:          "tv result",
			body:          `{"movie_results":[],"tv_results":[{"id":1396,"name":"Breaking Bad"}]}`,
			wantID:        1396,
			wantMediaType: "tv",
		},
		{
			name:          "movie wins over tv",
			body:          `{"movie_results":[{"id":1}],"tv_results":[{"id":2}]}`,
			wantID:        1,
			wantMediaType: "movie",
		},
		{
			name:          "miss returns zero values without error",
			body:          `{"movie_results":[],"tv_results":[]}`,
			wantID:        0,
			wantMediaType: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/find/tt0133093" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("external_source"); got != "imdb_id" {
					t.Errorf("expected external_source=imdb_id, got %q", got)
				}
				if got := r.URL.Query().Get("api_key"); got != "test-key" {
					t.Errorf("expected api key on request, got %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			})

			id, mediaType, err := client.FindByIMDBID(context.Background(), "tt0133093")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.wantID || mediaType != tt.wantMediaType {
				t.Fatalf("got (%d, %q), want (%d, %q)", id, mediaType, tt.wantID, tt.wantMediaType)
			}
		})
	}
}

func TestFindByIMDBIDHTTPError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	if _, _, err := client.FindByIMDBID(context.Background(), "tt0133093"); err == nil {
		t.Fatal("expected error for HTTP 401")
	}
}

func TestGetRecommendations(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603/recommendations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":1,"results":[
			{"id":604,"title":"The Matrix Reloaded","media_type":"movie"},
			{"id":605,"title":"The Matrix Revolutions"}
		],"total_pages":1,"total_results":2}`))
	})

	candidates, err := client.GetRecommendations(context.Background(), 603, "movie")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].ID != 604 || candidates[0].Title != "The Matrix Reloaded" {
		t.Fatalf("unexpected first candidate: %+v", candidates[0])
	}
	// media_type absent in payload falls back to the endpoint's type.
	if candidates[1].MediaType != "movie" {
		t.Fatalf("expected fallback media type movie, got %q", candidates[1].MediaType)
	}
}

func TestGetRecommendationsSeriesUsesTVEndpoint(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1396/recommendations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"id":60059,"name":"Better Call Saul"}]}`))
	})

	candidates, err := client.GetRecommendations(context.Background(), 1396, "series")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Title != "Better Call Saul" {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}
	if candidates[0].MediaType != "tv" {
		t.Fatalf("expected media type tv, got %q", candidates[0].MediaType)
	}
}

func TestDiscoverByGenres(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("with_genres"); got != "28,18" {
			t.Errorf("expected with_genres=28,18, got %q", got)
		}
		if got := r.URL.Query().Get("sort_by"); got != "popularity.desc" {
			t.Errorf("expected sort_by=popularity.desc, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"id":1,"title":"A"},{"id":2,"title":"B"},{"id":3,"title":"C"}
		]}`))
	})

	candidates, err := client.DiscoverByGenres(context.Background(), "movie", []int{28, 18}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected limit to truncate to 2, got %d", len(candidates))
	}
}

func TestGetAddonMeta(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/meta/movie/tmdb:603.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meta":{
			"id":"tt0133093","imdb_id":"tt0133093","tmdb_id":603,
			"name":"The Matrix","imdbRating":"8.7",
			"genres":["Action","Science Fiction"]
		}}`))
	})

	meta, err := client.GetAddonMeta(context.Background(), "movie", "tmdb:603")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.IMDBID != "tt0133093" {
		t.Fatalf("unexpected imdb id %q", meta.IMDBID)
	}
	if float64(meta.IMDBRating) != 8.7 {
		t.Fatalf("unexpected rating %f", float64(meta.IMDBRating))
	}
	// Type absent in the payload is filled from the requested type.
	if meta.Type != "movie" {
		t.Fatalf("expected type movie, got %q", meta.Type)
	}
}

func TestGetAddonMetaMalformedJSON(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":`))
	})

	if _, err := client.GetAddonMeta(context.Background(), "movie", "tt1"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGenreNamesForType(t *testing.T) {
	t.Parallel()

	if got := GenreNamesForType("movie")[28]; got != "Action" {
		t.Fatalf("expected movie genre 28 to be Action, got %q", got)
	}
	if got := GenreNamesForType("series")[10765]; got != "Sci-Fi & Fantasy" {
		t.Fatalf("expected series genre 10765 to be Sci-Fi & Fantasy, got %q", got)
	}
}
