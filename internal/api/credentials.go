// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package api

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidCredentials marks a credential path segment that cannot be
// decoded into an email and password pair.
var ErrInvalidCredentials = errors.New("invalid credentials segment")

// decodeCredentials decodes the base64url credentials path segment
// ("email:password"). Both padded and unpadded encodings are accepted.
func decodeCredentials(segment string) (email, password string, err error) {
	if segment == "" {
		return "", "", ErrInvalidCredentials
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	email, password, ok := strings.Cut(string(raw), ":")
	if !ok || email == "" || password == "" {
		return "", "", ErrInvalidCredentials
	}
	return email, password, nil
}
