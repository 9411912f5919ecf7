// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package recommend

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/watchly/watchly/internal/logging"
	"github.com/watchly/watchly/internal/models"
)

// Catalog identifiers served by the addon.
const (
	// CatalogID is the library-driven recommendation catalog.
	CatalogID = "watchly.rec"

	// GenreCatalogPrefix prefixes genre-combination catalog IDs.
	GenreCatalogPrefix = "watchly.genre."
)

// MetadataProvider is the upstream collaborator the engine queries for
// external-ID resolution, recommendation candidates and enriched metas.
// Implemented by the tmdb package; mocked in tests.
type MetadataProvider interface {
	FindByIMDBID(ctx context.Context, imdbID string) (int, string, error)
	GetRecommendations(ctx context.Context, tmdbID int, mediaType string) ([]models.Candidate, error)
	DiscoverByGenres(ctx context.Context, mediaType string, genreIDs []int, limit int) ([]models.Candidate, error)
	GetAddonMeta(ctx context.Context, stremioType, id string) (*models.Meta, error)
}

// Options tunes the aggregation pipeline. Zero or negative fields fall
// back to the defaults.
type Options struct {
	// SourceItemsLimit is how many loved items become seeds.
	SourceItemsLimit int

	// RecommendationsPerSource caps candidates fetched per seed.
	RecommendationsPerSource int

	// MaxResults caps the number of unique items in the final list.
	MaxResults int

	// PerItemLimit caps single-item similarity results.
	PerItemLimit int
}

// DefaultOptions returns the stock pipeline tuning.
func DefaultOptions() Options {
	return Options{
		SourceItemsLimit:         10,
		RecommendationsPerSource: 5,
		MaxResults:               50,
		PerItemLimit:             20,
	}
}

// normalized fills defaults for unset fields.
func (o Options) normalized() Options {
	defaults := DefaultOptions()
	if o.SourceItemsLimit <= 0 {
		o.SourceItemsLimit = defaults.SourceItemsLimit
	}
	if o.RecommendationsPerSource <= 0 {
		o.RecommendationsPerSource = defaults.RecommendationsPerSource
	}
	if o.MaxResults <= 0 {
		o.MaxResults = defaults.MaxResults
	}
	if o.PerItemLimit <= 0 {
		o.PerItemLimit = defaults.PerItemLimit
	}
	return o
}

// Engine turns a user's library into a ranked recommendation list. It
// holds no request state; everything is computed per call.
type Engine struct {
	provider MetadataProvider
}

// NewEngine creates an engine backed by the given provider.
func NewEngine(provider MetadataProvider) *Engine {
	return &Engine{provider: provider}
}

// exclusionSet holds the identifiers of already-watched content.
type exclusionSet struct {
	imdbIDs map[string]struct{}
	tmdbIDs map[int]struct{}
}

// buildExclusionSet parses every watched item. Individual parse misses
// contribute nothing; they never abort the build.
func buildExclusionSet(watched []models.LibraryItem) exclusionSet {
	excl := exclusionSet{
		imdbIDs: make(map[string]struct{}, len(watched)),
		tmdbIDs: make(map[int]struct{}, len(watched)),
	}
	for _, item := range watched {
		imdbID, tmdbID := ParseIdentifier(item.ID)
		if imdbID != "" {
			excl.imdbIDs[imdbID] = struct{}{}
		}
		if tmdbID != 0 {
			excl.tmdbIDs[tmdbID] = struct{}{}
		}
	}
	return excl
}

// contains reports whether a meta matches the exclusion set on either
// identifier.
func (e exclusionSet) contains(meta *models.Meta) bool {
	if meta.IMDBID != "" {
		if _, ok := e.imdbIDs[meta.IMDBID]; ok {
			return true
		}
	}
	if meta.TMDBID != 0 {
		if _, ok := e.tmdbIDs[meta.TMDBID]; ok {
			return true
		}
	}
	return false
}

// FetchForSeed fetches up to limit recommendation candidates for one
// seed library item. The seed identifier is resolved to a TMDB ID
// first; an unresolvable seed yields an empty list, not an error.
// Provider ordering is preserved.
func (e *Engine) FetchForSeed(ctx context.Context, seedID, seedType string, limit int) ([]models.Candidate, error) {
	imdbID, tmdbID := ParseIdentifier(seedID)

	mediaType := seedType
	if tmdbID == 0 {
		if imdbID == "" {
			return nil, nil
		}
		resolved, resolvedType, err := e.provider.FindByIMDBID(ctx, imdbID)
		if err != nil {
			return nil, err
		}
		if resolved == 0 {
			logging.Ctx(ctx).Warn().Str("seed", seedID).Msg("No TMDB ID found for seed")
			return nil, nil
		}
		tmdbID = resolved
		if mediaType == "" {
			mediaType = resolvedType
		}
	}

	candidates, err := e.provider.GetRecommendations(ctx, tmdbID, models.NormalizeTMDBType(mediaType))
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// candidateResult is one seed's fetch outcome.
type candidateResult struct {
	candidates []models.Candidate
	err        error
}

// metaResult is one candidate's enrichment outcome.
type metaResult struct {
	meta *models.Meta
	err  error
}

// fetchSeedCandidates fans out FetchForSeed over all seeds, one
// goroutine per seed writing into its own result slot.
func (e *Engine) fetchSeedCandidates(ctx context.Context, seeds []models.LibraryItem, perSeed int) []candidateResult {
	results := make([]candidateResult, len(seeds))
	var wg sync.WaitGroup

	for i, seed := range seeds {
		wg.Add(1)
		go func(idx int, item models.LibraryItem) {
			defer wg.Done()
			candidates, err := e.FetchForSeed(ctx, item.ID, item.Type, perSeed)
			results[idx] = candidateResult{candidates: candidates, err: err}
		}(i, seed)
	}

	wg.Wait()
	return results
}

// enrichCandidates fans out addon meta fetches over all candidates,
// preserving candidate order in the result slice.
func (e *Engine) enrichCandidates(ctx context.Context, candidates []models.Candidate) []metaResult {
	results := make([]metaResult, len(candidates))
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)
		go func(idx int, c models.Candidate) {
			defer wg.Done()
			stremioType := models.NormalizeStremioType(c.MediaType)
			meta, err := e.provider.GetAddonMeta(ctx, stremioType, "tmdb:"+strconv.Itoa(c.ID))
			results[idx] = metaResult{meta: meta, err: err}
		}(i, candidate)
	}

	wg.Wait()
	return results
}

// Aggregate produces the ranked recommendation list for a library.
//
// Loved items matching contentType seed concurrent candidate fetches;
// candidates are enriched concurrently; then a single sequential merge
// deduplicates by canonical ID, accumulates score for repeated hits,
// drops watched items and caps the unique result count. The final list
// is sorted by descending score; the sort is stable, so ties keep
// first-encounter order.
//
// The returned slice is always non-nil. No upstream call is made when
// contentType is empty or no matching loved item exists.
func (e *Engine) Aggregate(ctx context.Context, lib models.Library, contentType string, opts Options) []models.Meta {
	log := logging.Ctx(ctx)

	if contentType == "" {
		log.Warn().Msg("Content type must be specified (movie or series)")
		return []models.Meta{}
	}
	if len(lib.Loved) == 0 {
		log.Warn().Msg("No loved library items found, returning empty recommendations")
		return []models.Meta{}
	}

	opts = opts.normalized()

	lovedOfType := make([]models.LibraryItem, 0, len(lib.Loved))
	for _, item := range lib.Loved {
		if item.Type == contentType {
			lovedOfType = append(lovedOfType, item)
		}
	}
	if len(lovedOfType) == 0 {
		log.Warn().Str("type", contentType).Msg("No loved items of requested type in library")
		return []models.Meta{}
	}

	seeds := lovedOfType
	if len(seeds) > opts.SourceItemsLimit {
		seeds = seeds[:opts.SourceItemsLimit]
	}
	log.Info().Int("seeds", len(seeds)).Str("type", contentType).Msg("Selected recommendation seeds")

	excl := buildExclusionSet(lib.Watched)

	seedResults := e.fetchSeedCandidates(ctx, seeds, opts.RecommendationsPerSource)

	var candidates []models.Candidate
	for i, result := range seedResults {
		if result.err != nil {
			log.Warn().Err(result.err).Str("seed", seeds[i].ID).Msg("Seed fetch failed, skipping")
			continue
		}
		candidates = append(candidates, result.candidates...)
	}

	metaResults := e.enrichCandidates(ctx, candidates)

	return mergeMetas(ctx, metaResults, excl, opts.MaxResults)
}

// mergeMetas is the sequential aggregation step. It runs after the
// fan-outs join, so no locking is needed.
func mergeMetas(ctx context.Context, results []metaResult, excl exclusionSet, maxResults int) []models.Meta {
	log := logging.Ctx(ctx)

	unique := make(map[string]*models.Meta, len(results))
	order := make([]string, 0, len(results))

	for _, result := range results {
		if result.err != nil {
			log.Warn().Err(result.err).Msg("Candidate enrichment failed, skipping")
			continue
		}
		meta := result.meta
		if meta == nil {
			continue
		}

		key := meta.CanonicalID()
		if key == "" || excl.contains(meta) {
			continue
		}

		if existing, ok := unique[key]; ok {
			// Recommended by multiple seeds: scores add up.
			existing.Score += float64(meta.IMDBRating)
			continue
		}

		// The cap only blocks new keys; known keys keep
		// accumulating score past it.
		if len(unique) >= maxResults {
			continue
		}

		m := *meta
		m.Score = float64(m.IMDBRating)
		unique[key] = &m
		order = append(order, key)
	}

	ranked := make([]models.Meta, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, *unique[key])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	log.Info().Int("count", len(ranked)).Msg("Generated unique recommendations")
	return ranked
}

// RecommendForItem returns similar titles for one item, used when the
// user opens a specific title. No library filtering applies and the
// provider's relevance order is kept.
func (e *Engine) RecommendForItem(ctx context.Context, itemID, contentType string, limit int) ([]models.Meta, error) {
	if limit <= 0 {
		limit = DefaultOptions().PerItemLimit
	}

	candidates, err := e.FetchForSeed(ctx, itemID, contentType, limit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logging.Ctx(ctx).Warn().Str("item", itemID).Msg("No recommendations found for item")
		return []models.Meta{}, nil
	}

	return e.collectMetas(ctx, candidates), nil
}

// RecommendForGenre returns popular titles matching a genre
// combination, serving the genre catalogs.
func (e *Engine) RecommendForGenre(ctx context.Context, contentType string, genreIDs []int, limit int) ([]models.Meta, error) {
	if limit <= 0 {
		limit = DefaultOptions().MaxResults
	}

	candidates, err := e.provider.DiscoverByGenres(ctx, contentType, genreIDs, limit)
	if err != nil {
		return nil, err
	}

	return e.collectMetas(ctx, candidates), nil
}

// collectMetas enriches candidates and keeps the successful metas in
// candidate order.
func (e *Engine) collectMetas(ctx context.Context, candidates []models.Candidate) []models.Meta {
	log := logging.Ctx(ctx)

	metas := make([]models.Meta, 0, len(candidates))
	for _, result := range e.enrichCandidates(ctx, candidates) {
		if result.err != nil {
			log.Warn().Err(result.err).Msg("Candidate enrichment failed, skipping")
			continue
		}
		if result.meta == nil {
			continue
		}
		m := *result.meta
		m.Score = float64(m.IMDBRating)
		metas = append(metas, m)
	}
	return metas
}
