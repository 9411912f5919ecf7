// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package recommend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/watchly/watchly/internal/models"
)

// GenreCount is one genre's occurrence count across a set of items.
type GenreCount struct {
	ID    int
	Count int
}

// TopGenres flattens the per-item genre lists, counts occurrences and
// returns the k most frequent genres. Ordering is by descending count;
// ties keep first-encounter order across the flattened input.
func TopGenres(genreLists [][]int, k int) []GenreCount {
	counts := make(map[int]int)
	order := make([]int, 0)

	for _, genres := range genreLists {
		for _, id := range genres {
			if _, seen := counts[id]; !seen {
				order = append(order, id)
			}
			counts[id]++
		}
	}

	top := make([]GenreCount, 0, len(order))
	for _, id := range order {
		top = append(top, GenreCount{ID: id, Count: counts[id]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})

	if len(top) > k {
		top = top[:k]
	}
	return top
}

// GenreCatalogs derives up to two genre-combination catalog
// descriptors from a ranked genre list: one for the top two genres and
// one for the remainder. A slot whose genre count precondition is not
// met (fewer than 2, fewer than 3) is simply omitted.
func GenreCatalogs(contentType string, top []GenreCount, names map[int]string) []models.CatalogDescriptor {
	descriptors := make([]models.CatalogDescriptor, 0, 2)

	if len(top) >= 2 {
		id := fmt.Sprintf("%s%d-%d", GenreCatalogPrefix, top[0].ID, top[1].ID)
		name := genreName(names, top[0].ID) + "-" + genreName(names, top[1].ID)
		descriptors = append(descriptors, models.NewCatalogDescriptor(contentType, id, name))
	}

	if len(top) >= 3 {
		rest := top[2:]
		ids := make([]string, 0, len(rest))
		parts := make([]string, 0, len(rest))
		for _, g := range rest {
			ids = append(ids, strconv.Itoa(g.ID))
			parts = append(parts, genreName(names, g.ID))
		}
		id := GenreCatalogPrefix + strings.Join(ids, "_")
		descriptors = append(descriptors, models.NewCatalogDescriptor(contentType, id, strings.Join(parts, "-")))
	}

	return descriptors
}

// genreName resolves a genre ID to its display name, falling back to
// the numeric ID for genres missing from the table.
func genreName(names map[int]string, id int) string {
	if name, ok := names[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}

// ParseGenreCatalogID extracts the genre IDs from a genre catalog
// identifier ("watchly.genre.28-18" or "watchly.genre.80_9648_53").
// Returns false when the identifier is not a well-formed genre catalog
// ID.
func ParseGenreCatalogID(catalogID string) ([]int, bool) {
	suffix, ok := strings.CutPrefix(catalogID, GenreCatalogPrefix)
	if !ok || suffix == "" {
		return nil, false
	}

	sep := "-"
	if strings.Contains(suffix, "_") {
		sep = "_"
	}

	parts := strings.Split(suffix, sep)
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, false
		}
		ids = append(ids, n)
	}
	return ids, true
}
