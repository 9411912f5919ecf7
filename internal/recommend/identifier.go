// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package recommend

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseIdentifier extracts the IMDB ID and TMDB ID from a raw library
// identifier. Identifiers may be URL-encoded and may carry several
// comma-separated tokens ("tt0111161,tmdb:278"); the first tt-prefixed
// token and the first well-formed tmdb:<int> token win. Malformed
// tokens are skipped, never fatal. Missing parts come back as the zero
// value ("" and 0).
func ParseIdentifier(raw string) (imdbID string, tmdbID int) {
	if raw == "" {
		return "", 0
	}

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}

	for _, token := range strings.Split(decoded, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		switch {
		case strings.HasPrefix(token, "tt") && imdbID == "":
			imdbID = token
		case tmdbID == 0:
			suffix, ok := strings.CutPrefix(token, "tmdb:")
			if !ok {
				continue
			}
			n, err := strconv.Atoi(suffix)
			if err != nil || n <= 0 {
				continue
			}
			tmdbID = n
		}

		if imdbID != "" && tmdbID != 0 {
			break
		}
	}

	return imdbID, tmdbID
}
