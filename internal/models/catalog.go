// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package models

// CatalogExtra describes an extra query parameter a catalog supports.
type CatalogExtra struct {
	Name       string   `json:"name"`
	IsRequired bool     `json:"isRequired,omitempty"`
	Options    []string `json:"options,omitempty"`
}

// CatalogDescriptor is a synthetic catalog entry published to the Stremio
// catalog surface: either a "Because you loved/watched X" catalog or a
// genre-combination catalog.
type CatalogDescriptor struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`

	// Extra is always present in the serialized form, even when empty.
	Extra []CatalogExtra `json:"extra"`
}

// NewCatalogDescriptor builds a descriptor with a non-nil Extra slice so the
// JSON form always carries an empty list rather than null.
func NewCatalogDescriptor(contentType, id, name string) CatalogDescriptor {
	return CatalogDescriptor{
		Type:  contentType,
		ID:    id,
		Name:  name,
		Extra: []CatalogExtra{},
	}
}

// Manifest is the Stremio addon manifest.
type Manifest struct {
	ID          string              `json:"id"`
	Version     string              `json:"version"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Resources   []string            `json:"resources"`
	Types       []string            `json:"types"`
	Catalogs    []CatalogDescriptor `json:"catalogs"`
	IDPrefixes  []string            `json:"idPrefixes,omitempty"`

	BehaviorHints ManifestBehaviorHints `json:"behaviorHints"`
}

// ManifestBehaviorHints signals addon capabilities to the Stremio client.
type ManifestBehaviorHints struct {
	Configurable          bool `json:"configurable"`
	ConfigurationRequired bool `json:"configurationRequired"`
}

// CatalogResponse is the payload of the catalog endpoint. Metas is always
// a well-formed (possibly empty) list, never null.
type CatalogResponse struct {
	Metas []Meta `json:"metas"`
}

// UpdateResponse is the payload of the catalog update endpoint.
type UpdateResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// APIError carries a machine-readable error code and a human message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse is the error envelope returned for rejected requests.
type ErrorResponse struct {
	Error APIError `json:"error"`
}
