// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/watchly/watchly/internal/models"
)

// stubProvider serves addon metas for genre seed fetches. The other
// MetadataProvider methods are unused by the builder.
type stubProvider struct {
	metas map[string]*models.Meta
	errs  map[string]error
}

func (s *stubProvider) FindByIMDBID(context.Context, string) (int, string, error) {
	return 0, "", nil
}

func (s *stubProvider) GetRecommendations(context.Context, int, string) ([]models.Candidate, error) {
	return nil, nil
}

func (s *stubProvider) DiscoverByGenres(context.Context, string, []int, int) ([]models.Candidate, error) {
	return nil, nil
}

func (s *stubProvider) GetAddonMeta(_ context.Context, _, id string) (*models.Meta, error) {
	if err, ok := s.errs[id]; ok {
		return nil, err
	}
	if meta, ok := s.metas[id]; ok {
		return meta, nil
	}
	return nil, errors.New("meta not found: " + id)
}

// stubPublisher records the published descriptors.
type stubPublisher struct {
	published []models.CatalogDescriptor
	ok        bool
	err       error
}

func (s *stubPublisher) UpdateCatalogs(_ context.Context, descriptors []models.CatalogDescriptor) (bool, error) {
	s.published = descriptors
	return s.ok, s.err
}

func item(id, contentType, name string) models.LibraryItem {
	return models.LibraryItem{ID: id, Type: contentType, Name: name}
}

func TestLovedWatchedCatalogsWriteOnceSlots(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(&stubProvider{}, 5)

	lib := models.Library{
		Loved: []models.LibraryItem{
			item("tt1", "movie", "The Matrix"),
			item("tt2", "movie", "Heat"), // movie slot already filled
			item("tt3", "series", "The Wire"),
		},
		Watched: []models.LibraryItem{
			item("tt4", "movie", "Alien"),
			item("tt5", "series", "Chernobyl"),
			item("tt6", "series", "Fargo"), // series slot already filled
		},
	}

	descriptors := builder.LovedWatchedCatalogs(lib)

	if len(descriptors) != 4 {
		t.Fatalf("expected 4 descriptors, got %d: %+v", len(descriptors), descriptors)
	}

	wantNames := []string{
		"Because you loved The Matrix",
		"Because you loved The Wire",
		"Because you watched Alien",
		"Because you watched Chernobyl",
	}
	for i, want := range wantNames {
		if descriptors[i].Name != want {
			t.Fatalf("descriptor %d name = %q, want %q", i, descriptors[i].Name, want)
		}
	}
	if descriptors[0].ID != "tt1" || descriptors[0].Type != "movie" {
		t.Fatalf("unexpected first descriptor: %+v", descriptors[0])
	}
	if descriptors[0].Extra == nil {
		t.Fatal("Extra must be non-nil for serialization")
	}
}

func TestLovedWatchedCatalogsItemNotReusedAcrossLabels(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(&stubProvider{}, 5)

	// tt1 is both loved and watched; it must only claim the loved slot
	// and the watched movie slot goes to tt2.
	lib := models.Library{
		Loved:   []models.LibraryItem{item("tt1", "movie", "The Matrix")},
		Watched: []models.LibraryItem{item("tt1", "movie", "The Matrix"), item("tt2", "movie", "Heat")},
	}

	descriptors := builder.LovedWatchedCatalogs(lib)

	if len(descriptors) != 2 {
		t.Fatalf("expected 2 descriptors, got %+v", descriptors)
	}
	if descriptors[1].ID != "tt2" || descriptors[1].Name != "Because you watched Heat" {
		t.Fatalf("expected tt2 to claim the watched slot: %+v", descriptors[1])
	}
}

func TestLovedWatchedCatalogsEmptyLibrary(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(&stubProvider{}, 5)

	if descriptors := builder.LovedWatchedCatalogs(models.Library{}); len(descriptors) != 0 {
		t.Fatalf("expected no descriptors, got %+v", descriptors)
	}
}

func TestGenreCatalogs(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		metas: map[string]*models.Meta{
			"tt1": {ID: "tt1", Genres: []int{28, 18}},
			"tt2": {ID: "tt2", Genres: []int{28, 18, 35}},
			"tt3": {ID: "tt3", Genres: []int{28, 18}},
		},
	}
	builder := NewBuilder(provider, 5)

	lib := models.Library{
		Loved: []models.LibraryItem{
			item("tt1", "movie", "A"),
			item("tt2", "movie", "B"),
			item("tt3", "movie", "C"),
		},
	}

	descriptors := builder.GenreCatalogs(context.Background(), lib)

	// Action x3, Drama x3, Comedy x1: first slot pairs the top two,
	// second slot takes the rest.
	if len(descriptors) != 2 {
		t.Fatalf("expected 2 movie descriptors, got %+v", descriptors)
	}
	if descriptors[0].ID != "watchly.genre.28-18" || descriptors[0].Name != "Action-Drama" {
		t.Fatalf("unexpected first descriptor: %+v", descriptors[0])
	}
	if descriptors[1].ID != "watchly.genre.35" || descriptors[1].Name != "Comedy" {
		t.Fatalf("unexpected second descriptor: %+v", descriptors[1])
	}
}

func TestGenreCatalogsResolvesGenreNames(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		metas: map[string]*models.Meta{
			"tt1": {ID: "tt1", GenreNames: []string{"Action", "Drama"}},
			"tt2": {ID: "tt2", GenreNames: []string{"Action", "Drama"}},
		},
	}
	builder := NewBuilder(provider, 5)

	lib := models.Library{
		Loved: []models.LibraryItem{item("tt1", "movie", "A"), item("tt2", "movie", "B")},
	}

	descriptors := builder.GenreCatalogs(context.Background(), lib)

	if len(descriptors) != 1 || descriptors[0].ID != "watchly.genre.28-18" {
		t.Fatalf("expected name-resolved genre descriptor, got %+v", descriptors)
	}
}

func TestGenreCatalogsSeedFailureIsolated(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		metas: map[string]*models.Meta{
			"tt1": {ID: "tt1", Genres: []int{28, 18}},
			"tt3": {ID: "tt3", Genres: []int{28, 18}},
		},
		errs: map[string]error{
			"tt2": errors.New("addon unavailable"),
		},
	}
	builder := NewBuilder(provider, 5)

	lib := models.Library{
		Loved: []models.LibraryItem{
			item("tt1", "movie", "A"),
			item("tt2", "movie", "B"),
			item("tt3", "movie", "C"),
		},
	}

	descriptors := builder.GenreCatalogs(context.Background(), lib)

	if len(descriptors) != 1 || descriptors[0].ID != "watchly.genre.28-18" {
		t.Fatalf("healthy seeds must survive a failed fetch: %+v", descriptors)
	}
}

func TestGenreCatalogsSeedLimit(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		metas: map[string]*models.Meta{
			"tt1": {ID: "tt1", Genres: []int{28, 18}},
			"tt2": {ID: "tt2", Genres: []int{28, 18}},
			// tt3 would fail, but the seed limit of 2 keeps it out.
		},
	}
	builder := NewBuilder(provider, 2)

	lib := models.Library{
		Loved: []models.LibraryItem{
			item("tt1", "movie", "A"),
			item("tt2", "movie", "B"),
			item("tt3", "movie", "C"),
		},
	}

	descriptors := builder.GenreCatalogs(context.Background(), lib)

	if len(descriptors) != 1 || descriptors[0].ID != "watchly.genre.28-18" {
		t.Fatalf("unexpected descriptors: %+v", descriptors)
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		metas: map[string]*models.Meta{
			"tt1": {ID: "tt1", Genres: []int{28, 18}},
			"tt2": {ID: "tt2", Genres: []int{28, 18}},
		},
	}
	builder := NewBuilder(provider, 5)
	publisher := &stubPublisher{ok: true}

	lib := models.Library{
		Loved: []models.LibraryItem{item("tt1", "movie", "A"), item("tt2", "movie", "B")},
	}

	count, err := builder.Refresh(context.Background(), publisher, lib)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One loved-movie slot plus one genre descriptor.
	if count != 2 {
		t.Fatalf("expected 2 published descriptors, got %d", count)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("publisher got %d descriptors", len(publisher.published))
	}
}

func TestRefreshPublishError(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(&stubProvider{}, 5)
	publisher := &stubPublisher{err: errors.New("publish failed")}

	if _, err := builder.Refresh(context.Background(), publisher, models.Library{}); err == nil {
		t.Fatal("expected publish error to propagate")
	}
}

func TestRefreshNotApplied(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(&stubProvider{}, 5)
	publisher := &stubPublisher{ok: false}

	count, err := builder.Refresh(context.Background(), publisher, models.Library{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected count 0 when publish not applied, got %d", count)
	}
}
