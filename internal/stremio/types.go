// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package stremio

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/watchly/watchly/internal/models"
)

// apiResponse is the common Stremio API envelope. Exactly one of
// Result and Error is populated.
type apiResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *apiError       `json:"error"`
}

// apiError is the error shape the Stremio API returns.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// loginRequest is the /api/login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResult carries the session auth key.
type loginResult struct {
	AuthKey string `json:"authKey"`
}

// datastoreGetRequest asks for all records of a datastore collection.
type datastoreGetRequest struct {
	AuthKey    string   `json:"authKey"`
	Collection string   `json:"collection"`
	IDs        []string `json:"ids"`
	All        bool     `json:"all"`
}

// itemState is the playback state embedded in a library record.
type itemState struct {
	TimesWatched   int    `json:"timesWatched"`
	FlaggedWatched int    `json:"flaggedWatched"`
	LastWatched    string `json:"lastWatched,omitempty"`
}

// libraryRecord is a raw libraryItem datastore record.
type libraryRecord struct {
	ID      string    `json:"_id"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	ModTime time.Time `json:"_mtime"`
	Temp    bool      `json:"temp"`
	Removed bool      `json:"removed"`
	State   itemState `json:"state"`
}

// toLibraryItem converts a raw record into the domain shape.
func (r libraryRecord) toLibraryItem() models.LibraryItem {
	return models.LibraryItem{
		ID:      r.ID,
		Type:    models.NormalizeStremioType(r.Type),
		Name:    r.Name,
		ModTime: r.ModTime,
	}
}

// watched reports whether the record has playback history.
func (r libraryRecord) watched() bool {
	return r.State.TimesWatched > 0 || r.State.FlaggedWatched > 0
}

// loved reports whether the user explicitly keeps the item in their
// library. Temp records are transient detail-page visits, not picks.
func (r libraryRecord) loved() bool {
	return !r.Temp
}

// addonCollectionGetRequest fetches the user's installed addons.
type addonCollectionGetRequest struct {
	AuthKey string `json:"authKey"`
	Update  bool   `json:"update"`
}

// addonCollectionSetRequest replaces the user's installed addons.
type addonCollectionSetRequest struct {
	AuthKey string       `json:"authKey"`
	Addons  []addonEntry `json:"addons"`
}

// addonEntry is one installed addon in the user's collection. Only the
// manifest catalogs are touched; everything else round-trips untouched.
type addonEntry struct {
	TransportURL  string          `json:"transportUrl"`
	TransportName string          `json:"transportName,omitempty"`
	Manifest      addonManifest   `json:"manifest"`
	Flags         json.RawMessage `json:"flags,omitempty"`
}

// addonManifest keeps the manifest fields we must preserve while
// swapping the catalog list.
type addonManifest struct {
	ID          string                     `json:"id"`
	Version     string                     `json:"version,omitempty"`
	Name        string                     `json:"name,omitempty"`
	Description string                     `json:"description,omitempty"`
	Resources   json.RawMessage            `json:"resources,omitempty"`
	Types       []string                   `json:"types,omitempty"`
	Catalogs    []models.CatalogDescriptor `json:"catalogs"`
	IDPrefixes  []string                   `json:"idPrefixes,omitempty"`
	Behavior    json.RawMessage            `json:"behaviorHints,omitempty"`
}

// addonCollectionResult wraps the installed addon list.
type addonCollectionResult struct {
	Addons []addonEntry `json:"addons"`
}

// addonCollectionSetResult reports whether the set call was applied.
type addonCollectionSetResult struct {
	Success bool `json:"success"`
}
