// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package stremio provides the credential-scoped Stremio API client.
// It authenticates with user credentials, fetches the library split
// into loved and watched sets, and publishes dynamic catalogs back to
// the user's installed addon collection.
package stremio
