// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package validation provides struct validation using go-playground/validator
// v10. It exposes a thread-safe singleton validator with custom rules for
// the addon's path parameters.
//
// Custom validators:
//   - stremio_type: value must be "movie" or "series"
//   - catalog_id: value must be a recognized catalog identifier
//     ("watchly.rec", an item id "tt..." or "tmdb:...", or "watchly.genre.<ids>")
//
// Example:
//
//	type CatalogRequest struct {
//	    Type string `validate:"required,stremio_type"`
//	    ID   string `validate:"required,catalog_id"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    // reject with 400
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// RequestValidationError is a collection of field validation failures.
type RequestValidationError struct {
	fields   []string
	messages []string
}

// Error implements the error interface.
func (ve *RequestValidationError) Error() string {
	if len(ve.messages) == 0 {
		return "validation failed"
	}
	return strings.Join(ve.messages, "; ")
}

// Fields returns the names of the fields that failed validation.
func (ve *RequestValidationError) Fields() []string {
	return ve.fields
}

// getValidator returns the singleton validator, initializing it on first use.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails for blank tags; these are constants.
		_ = validate.RegisterValidation("stremio_type", validateStremioType)
		_ = validate.RegisterValidation("catalog_id", validateCatalogID)
	})
	return validate
}

// validateStremioType accepts exactly the two content types the addon serves.
func validateStremioType(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return v == "movie" || v == "series"
}

// validateCatalogID accepts the catalog identifiers the addon understands:
// the library recommendation catalog, single-item similarity (IMDB or
// TMDB ids), and genre-combination catalogs.
func validateCatalogID(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if v == "watchly.rec" {
		return true
	}
	if strings.HasPrefix(v, "tt") && len(v) > 2 {
		return true
	}
	if strings.HasPrefix(v, "tmdb:") && len(v) > len("tmdb:") {
		return true
	}
	if strings.HasPrefix(v, "watchly.genre.") && len(v) > len("watchly.genre.") {
		return true
	}
	return false
}

// ValidateStruct validates a struct using its validate tags.
// Returns nil when validation passes, or a *RequestValidationError
// describing every failing field.
func ValidateStruct(v interface{}) *RequestValidationError {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestValidationError{
			messages: []string{err.Error()},
		}
	}

	result := &RequestValidationError{}
	for _, fe := range verrs {
		result.fields = append(result.fields, fe.Field())
		result.messages = append(result.messages, describeFieldError(fe))
	}
	return result
}

// describeFieldError produces a human-readable message for one failure.
func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "stremio_type":
		return fmt.Sprintf("%s must be 'movie' or 'series'", fe.Field())
	case "catalog_id":
		return fmt.Sprintf("%s must be 'watchly.rec', an item id, or 'watchly.genre.<ids>'", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
