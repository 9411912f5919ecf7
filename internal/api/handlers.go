// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/watchly/watchly/internal/cache"
	"github.com/watchly/watchly/internal/catalog"
	"github.com/watchly/watchly/internal/config"
	"github.com/watchly/watchly/internal/logging"
	"github.com/watchly/watchly/internal/metrics"
	"github.com/watchly/watchly/internal/models"
	"github.com/watchly/watchly/internal/recommend"
	"github.com/watchly/watchly/internal/stremio"
	"github.com/watchly/watchly/internal/validation"
)

// libraryClient is the credential-scoped Stremio surface the handlers
// need. Implemented by stremio.Client; stubbed in tests.
type libraryClient interface {
	GetLibraryItems(ctx context.Context) (models.Library, error)
	UpdateCatalogs(ctx context.Context, descriptors []models.CatalogDescriptor) (bool, error)
}

// catalogRequest carries the validated catalog path parameters.
type catalogRequest struct {
	Type string `validate:"required,stremio_type"`
	ID   string `validate:"required,catalog_id"`
}

// Handler serves the addon HTTP surface. Stremio clients are built per
// request from the decoded path credentials; everything else is shared
// and read-only.
type Handler struct {
	cfg     *config.Config
	engine  *recommend.Engine
	builder *catalog.Builder
	cache   *cache.ResponseCache

	// newLibraryClient builds the credential-scoped Stremio client.
	// Swapped out in tests.
	newLibraryClient func(email, password string) libraryClient
}

// NewHandler wires the handler with its collaborators. respCache may
// be nil when response caching is disabled.
func NewHandler(cfg *config.Config, engine *recommend.Engine, builder *catalog.Builder, respCache *cache.ResponseCache) *Handler {
	h := &Handler{
		cfg:     cfg,
		engine:  engine,
		builder: builder,
		cache:   respCache,
	}
	h.newLibraryClient = func(email, password string) libraryClient {
		return stremio.NewClient(&cfg.Stremio, cfg.Addon.ID, email, password)
	}
	return h
}

// manifest builds the addon manifest from configuration. The default
// catalog list announces the recommendation catalog per content type;
// personalized entries are pushed into the user's addon collection by
// the catalog update endpoint.
func (h *Handler) manifest() models.Manifest {
	return models.Manifest{
		ID:          h.cfg.Addon.ID,
		Version:     h.cfg.Addon.Version,
		Name:        h.cfg.Addon.Name,
		Description: h.cfg.Addon.Description,
		Resources:   []string{"catalog"},
		Types:       []string{models.TypeMovie, models.TypeSeries},
		Catalogs: []models.CatalogDescriptor{
			models.NewCatalogDescriptor(models.TypeMovie, recommend.CatalogID, "Recommended Movies"),
			models.NewCatalogDescriptor(models.TypeSeries, recommend.CatalogID, "Recommended Series"),
		},
		IDPrefixes: []string{"tt", "tmdb:"},
		BehaviorHints: models.ManifestBehaviorHints{
			Configurable:          true,
			ConfigurationRequired: false,
		},
	}
}

// Manifest serves the addon manifest, with or without a credentials
// path segment.
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manifest())
}

// Catalog serves GET /{credentials}/catalog/{type}/{id}.json. The id
// selects the pipeline: the library-driven recommendation catalog, a
// genre-combination catalog, or single-item similarity for item ids.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	email, password, err := decodeCredentials(chi.URLParam(r, "credentials"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Credentials must be base64url encoded email:password", err)
		return
	}

	contentType := chi.URLParam(r, "contentType")
	catalogID := strings.TrimSuffix(chi.URLParam(r, "id"), ".json")

	req := catalogRequest{Type: contentType, ID: catalogID}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
		return
	}

	metrics.CatalogRequests.WithLabelValues(contentType, catalogKind(catalogID)).Inc()

	cacheKey := ""
	if h.cache != nil {
		cacheKey = cache.Key(email+":"+password, contentType, catalogID)
		if metas, ok := h.cache.Get(cacheKey); ok {
			h.writeCatalog(w, contentType, metas)
			return
		}
	}

	metas, err := h.buildCatalog(r, email, password, contentType, catalogID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to build catalog", err)
		return
	}

	if h.cache != nil {
		h.cache.Set(cacheKey, metas)
	}
	h.writeCatalog(w, contentType, metas)
}

// buildCatalog runs the pipeline matching the catalog id.
func (h *Handler) buildCatalog(r *http.Request, email, password, contentType, catalogID string) ([]models.Meta, error) {
	ctx := r.Context()

	switch {
	case catalogID == recommend.CatalogID:
		client := h.newLibraryClient(email, password)
		lib, err := client.GetLibraryItems(ctx)
		if err != nil {
			return nil, err
		}
		return h.engine.Aggregate(ctx, lib, contentType, recommend.Options{
			SourceItemsLimit:         h.cfg.Recommend.SourceItemsLimit,
			RecommendationsPerSource: h.cfg.Recommend.RecommendationsPerSource,
			MaxResults:               h.cfg.Recommend.MaxResults,
		}), nil

	case strings.HasPrefix(catalogID, recommend.GenreCatalogPrefix):
		genreIDs, ok := recommend.ParseGenreCatalogID(catalogID)
		if !ok {
			// The id validator admits the prefix; non-numeric
			// suffixes end up here with an empty catalog.
			logging.Ctx(ctx).Warn().Str("catalog", catalogID).Msg("Malformed genre catalog id")
			return []models.Meta{}, nil
		}
		return h.engine.RecommendForGenre(ctx, contentType, genreIDs, h.cfg.Recommend.MaxResults)

	default:
		// Validated shape guarantees an item identifier here.
		return h.engine.RecommendForItem(ctx, catalogID, contentType, h.cfg.Recommend.PerItemLimit)
	}
}

// writeCatalog writes the metas envelope with catalog cache headers.
func (h *Handler) writeCatalog(w http.ResponseWriter, contentType string, metas []models.Meta) {
	if metas == nil {
		metas = []models.Meta{}
	}
	metrics.CatalogResultSize.WithLabelValues(contentType).Observe(float64(len(metas)))

	w.Header().Set("Cache-Control", catalogCacheControl)
	respondJSON(w, http.StatusOK, models.CatalogResponse{Metas: metas})
}

// catalogKind classifies a catalog id for metrics.
func catalogKind(catalogID string) string {
	switch {
	case catalogID == recommend.CatalogID:
		return "library"
	case strings.HasPrefix(catalogID, recommend.GenreCatalogPrefix):
		return "genre"
	default:
		return "item"
	}
}

// UpdateCatalogs serves GET /{credentials}/catalog/update. It rebuilds
// the user's dynamic catalogs and publishes them to their Stremio
// account.
func (h *Handler) UpdateCatalogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email, password, err := decodeCredentials(chi.URLParam(r, "credentials"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Credentials must be base64url encoded email:password", err)
		return
	}

	client := h.newLibraryClient(email, password)
	lib, err := client.GetLibraryItems(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to fetch library", err)
		return
	}

	count, err := h.builder.Refresh(ctx, client, lib)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to publish catalogs", err)
		return
	}

	// Catalog composition changed; cached responses are stale.
	if h.cache != nil && count > 0 {
		h.cache.Clear()
	}

	respondJSON(w, http.StatusOK, models.UpdateResponse{Success: count > 0, Count: count})
}

// Configure serves the static configure page, with a JSON fallback
// when no static assets are deployed.
func (h *Handler) Configure(w http.ResponseWriter, r *http.Request) {
	page := filepath.Join(h.cfg.Server.StaticDir, "configure.html")
	if _, err := os.Stat(page); err == nil {
		http.ServeFile(w, r, page)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Install " + h.cfg.Addon.Name + " with /{credentials}/manifest.json, where credentials is base64url(email:password)",
	})
}

// Root redirects to the configure page.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/configure", http.StatusTemporaryRedirect)
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthLive is the liveness probe.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe. The addon has no local state to
// warm up; it is ready as soon as it serves.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
