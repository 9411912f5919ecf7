// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package catalog

import (
	"context"
	"sync"

	"github.com/watchly/watchly/internal/logging"
	"github.com/watchly/watchly/internal/models"
	"github.com/watchly/watchly/internal/recommend"
	"github.com/watchly/watchly/internal/tmdb"
)

// Labels for the "because you ..." catalogs.
const (
	labelLoved   = "loved"
	labelWatched = "watched"
)

// Publisher pushes catalog descriptors to the user's catalog surface.
// Implemented by the stremio client.
type Publisher interface {
	UpdateCatalogs(ctx context.Context, descriptors []models.CatalogDescriptor) (bool, error)
}

// Builder derives personalized catalog descriptors from a library
// snapshot: "Because you loved/watched X" entries and genre-combination
// catalogs from the user's favorite genres.
type Builder struct {
	provider  recommend.MetadataProvider
	seedCount int
}

// NewBuilder creates a builder. seedCount is how many recent loved
// items per type feed the genre catalogs; non-positive means 5.
func NewBuilder(provider recommend.MetadataProvider, seedCount int) *Builder {
	if seedCount <= 0 {
		seedCount = 5
	}
	return &Builder{provider: provider, seedCount: seedCount}
}

// slotKey identifies one write-once descriptor slot.
type slotKey struct {
	label       string
	contentType string
}

// LovedWatchedCatalogs produces up to four "Because you ..." catalog
// descriptors, one per (label, type) combination. Each slot is
// write-once: iterating in library order, the first qualifying item
// claims the slot and later items of the same label and type are
// skipped. An item already used under one label is never reused under
// the other.
func (b *Builder) LovedWatchedCatalogs(lib models.Library) []models.CatalogDescriptor {
	seen := make(map[string]struct{})
	filled := make(map[slotKey]bool)

	descriptors := make([]models.CatalogDescriptor, 0, 4)
	descriptors = append(descriptors, b.processItems(lib.Loved, labelLoved, seen, filled)...)
	descriptors = append(descriptors, b.processItems(lib.Watched, labelWatched, seen, filled)...)
	return descriptors
}

// processItems fills the write-once slots for one label.
func (b *Builder) processItems(items []models.LibraryItem, label string, seen map[string]struct{}, filled map[slotKey]bool) []models.CatalogDescriptor {
	descriptors := make([]models.CatalogDescriptor, 0, 2)

	for _, item := range items {
		contentType := models.NormalizeStremioType(item.Type)
		key := slotKey{label: label, contentType: contentType}

		if _, used := seen[item.ID]; used || filled[key] {
			continue
		}
		seen[item.ID] = struct{}{}
		filled[key] = true

		descriptors = append(descriptors, models.NewCatalogDescriptor(
			contentType, item.ID, "Because you "+label+" "+item.Name))
	}

	return descriptors
}

// GenreCatalogs derives up to four genre-combination descriptors (two
// per type) from the genres of the most recent loved items. Seed meta
// fetches run concurrently; a failed fetch drops that seed's genres
// and nothing else.
func (b *Builder) GenreCatalogs(ctx context.Context, lib models.Library) []models.CatalogDescriptor {
	descriptors := make([]models.CatalogDescriptor, 0, 4)

	for _, contentType := range []string{models.TypeMovie, models.TypeSeries} {
		seeds := lovedOfType(lib.Loved, contentType, b.seedCount)
		if len(seeds) == 0 {
			continue
		}

		genreLists := b.fetchSeedGenres(ctx, seeds, contentType)
		top := recommend.TopGenres(genreLists, 5)
		descriptors = append(descriptors,
			recommend.GenreCatalogs(contentType, top, tmdb.GenreNamesForType(contentType))...)
	}

	return descriptors
}

// lovedOfType returns the first limit loved items of one type,
// preserving the library's most-recent-first order.
func lovedOfType(loved []models.LibraryItem, contentType string, limit int) []models.LibraryItem {
	seeds := make([]models.LibraryItem, 0, limit)
	for _, item := range loved {
		if item.Type != contentType {
			continue
		}
		seeds = append(seeds, item)
		if len(seeds) == limit {
			break
		}
	}
	return seeds
}

// fetchSeedGenres fetches each seed's meta concurrently and collects
// the genre ID lists of the successful fetches.
func (b *Builder) fetchSeedGenres(ctx context.Context, seeds []models.LibraryItem, contentType string) [][]int {
	type genreResult struct {
		genres []int
		err    error
	}

	results := make([]genreResult, len(seeds))
	var wg sync.WaitGroup

	for i, seed := range seeds {
		wg.Add(1)
		go func(idx int, item models.LibraryItem) {
			defer wg.Done()
			meta, err := b.provider.GetAddonMeta(ctx, contentType, item.ID)
			if err != nil {
				results[idx] = genreResult{err: err}
				return
			}
			results[idx] = genreResult{genres: metaGenreIDs(meta, contentType)}
		}(i, seed)
	}

	wg.Wait()

	log := logging.Ctx(ctx)
	lists := make([][]int, 0, len(results))
	for i, result := range results {
		if result.err != nil {
			log.Warn().Err(result.err).Str("seed", seeds[i].ID).Msg("Genre seed fetch failed, skipping")
			continue
		}
		if len(result.genres) > 0 {
			lists = append(lists, result.genres)
		}
	}
	return lists
}

// metaGenreIDs extracts TMDB genre IDs from a meta, resolving names
// through the genre tables when the meta only carries display names.
func metaGenreIDs(meta *models.Meta, contentType string) []int {
	if meta == nil {
		return nil
	}
	if len(meta.Genres) > 0 {
		return meta.Genres
	}

	names := tmdb.GenreNamesForType(contentType)
	byName := make(map[string]int, len(names))
	for id, name := range names {
		byName[name] = id
	}

	ids := make([]int, 0, len(meta.GenreNames))
	for _, name := range meta.GenreNames {
		if id, ok := byName[name]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Refresh builds the full dynamic catalog payload and publishes it.
// Returns the number of descriptors handed to the publisher.
func (b *Builder) Refresh(ctx context.Context, publisher Publisher, lib models.Library) (int, error) {
	descriptors := b.LovedWatchedCatalogs(lib)
	descriptors = append(descriptors, b.GenreCatalogs(ctx, lib)...)

	ok, err := publisher.UpdateCatalogs(ctx, descriptors)
	if err != nil {
		return 0, err
	}
	if !ok {
		logging.Ctx(ctx).Warn().Msg("Catalog publish was not applied")
		return 0, nil
	}

	logging.Ctx(ctx).Info().Int("count", len(descriptors)).Msg("Published dynamic catalogs")
	return len(descriptors), nil
}
