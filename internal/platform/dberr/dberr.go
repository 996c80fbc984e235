// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies low-level database errors for the layers above.
//
// Single-entity lookups in the directory translate "no rows" into an absent
// result instead of an error, so the classification must survive wrapping:
// [Wrap] keeps [pgx.ErrNoRows] reachable through [errors.Is].
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/promptlib/internal/platform/apperr"
)

// ErrNotFound is returned when a queried row doesn't exist.
var ErrNotFound = apperr.NotFound("Resource")

// Wrap annotates a database error with the failed action.
//
// "No rows" becomes an [apperr.AppError] with code NOT_FOUND whose cause is the
// original error. Anything else becomes an internal error carrying the action
// name for the server log.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		notFound := apperr.NotFound("Resource")
		notFound.Cause = err
		return notFound
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// IsNotFound reports whether err means the queried row does not exist.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	ae := apperr.As(err)
	return ae != nil && ae.Code == "NOT_FOUND"
}
