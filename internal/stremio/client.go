// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package stremio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/watchly/watchly/internal/config"
	"github.com/watchly/watchly/internal/logging"
	"github.com/watchly/watchly/internal/metrics"
	"github.com/watchly/watchly/internal/models"
)

// libraryCollection is the datastore collection holding library items.
const libraryCollection = "libraryItem"

// maxErrorBodySize limits how much of an upstream error body is read
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// Client is a credential-scoped Stremio API client. One client is
// constructed per request from the decoded path credentials; the auth
// key obtained on first login is cached for the client's lifetime.
//
// Thread safety: safe for concurrent use within a request.
type Client struct {
	apiURL   string
	addonID  string
	email    string
	password string
	client   *http.Client

	mu      sync.Mutex
	authKey string
}

// NewClient creates a Stremio client for one set of user credentials.
func NewClient(cfg *config.StremioConfig, addonID, email, password string) *Client {
	return &Client{
		apiURL:   strings.TrimRight(cfg.APIURL, "/"),
		addonID:  addonID,
		email:    email,
		password: password,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// makeRequest POSTs a JSON payload to a Stremio API method and decodes
// the result envelope into result.
func (c *Client) makeRequest(ctx context.Context, method string, payload, result interface{}) (err error) {
	defer func() { metrics.RecordUpstream("stremio", err) }()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", method, err)
	}

	reqURL := fmt.Sprintf("%s/api/%s", c.apiURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if readErr != nil {
			errBody = []byte("(failed to read response body)")
		}
		return fmt.Errorf("%s request failed with status %d: %s", method, resp.StatusCode, string(errBody))
	}

	var envelope apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s rejected: %s (code %d)", method, envelope.Error.Message, envelope.Error.Code)
	}
	if result != nil {
		if err = json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// Login authenticates with the user's credentials and caches the auth
// key. Subsequent calls return the cached key without a network trip.
func (c *Client) Login(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.authKey != "" {
		return c.authKey, nil
	}

	var result loginResult
	err := c.makeRequest(ctx, "login", loginRequest{
		Email:    c.email,
		Password: c.password,
	}, &result)
	if err != nil {
		return "", fmt.Errorf("stremio login failed: %w", err)
	}
	if result.AuthKey == "" {
		return "", fmt.Errorf("stremio login returned no auth key")
	}

	c.authKey = result.AuthKey
	return c.authKey, nil
}

// GetLibraryItems fetches the user's full library and splits it into
// loved and watched sets, each ordered most-recent-first. Removed
// records are dropped; an item with playback history on a kept library
// entry appears in both sets.
func (c *Client) GetLibraryItems(ctx context.Context) (models.Library, error) {
	authKey, err := c.Login(ctx)
	if err != nil {
		return models.Library{}, err
	}

	var records []libraryRecord
	err = c.makeRequest(ctx, "datastoreGet", datastoreGetRequest{
		AuthKey:    authKey,
		Collection: libraryCollection,
		IDs:        []string{},
		All:        true,
	}, &records)
	if err != nil {
		return models.Library{}, fmt.Errorf("library fetch failed: %w", err)
	}

	var lib models.Library
	for _, rec := range records {
		if rec.Removed || rec.ID == "" {
			continue
		}
		item := rec.toLibraryItem()
		if rec.loved() {
			lib.Loved = append(lib.Loved, item)
		}
		if rec.watched() {
			lib.Watched = append(lib.Watched, item)
		}
	}

	sortRecentFirst(lib.Loved)
	sortRecentFirst(lib.Watched)

	logging.Ctx(ctx).Debug().
		Int("loved", len(lib.Loved)).
		Int("watched", len(lib.Watched)).
		Msg("Fetched Stremio library")

	return lib, nil
}

// sortRecentFirst orders items by modification time, newest first.
// The sort is stable so records sharing a timestamp keep API order.
func sortRecentFirst(items []models.LibraryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ModTime.After(items[j].ModTime)
	})
}

// UpdateCatalogs replaces this addon's catalog list in the user's
// installed addon collection. Returns false without error when the
// addon is not installed for this account.
func (c *Client) UpdateCatalogs(ctx context.Context, descriptors []models.CatalogDescriptor) (bool, error) {
	authKey, err := c.Login(ctx)
	if err != nil {
		return false, err
	}

	var collection addonCollectionResult
	err = c.makeRequest(ctx, "addonCollectionGet", addonCollectionGetRequest{
		AuthKey: authKey,
		Update:  true,
	}, &collection)
	if err != nil {
		return false, fmt.Errorf("addon collection fetch failed: %w", err)
	}

	found := false
	for i := range collection.Addons {
		if collection.Addons[i].Manifest.ID != c.addonID {
			continue
		}
		collection.Addons[i].Manifest.Catalogs = descriptors
		found = true
	}
	if !found {
		logging.Ctx(ctx).Warn().
			Str("addon_id", c.addonID).
			Msg("Addon not installed for account, skipping catalog update")
		return false, nil
	}

	var result addonCollectionSetResult
	err = c.makeRequest(ctx, "addonCollectionSet", addonCollectionSetRequest{
		AuthKey: authKey,
		Addons:  collection.Addons,
	}, &result)
	if err != nil {
		return false, fmt.Errorf("addon collection update failed: %w", err)
	}

	return result.Success, nil
}
