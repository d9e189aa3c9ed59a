// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package validation provides request validation on top of
// go-playground/validator v10.
//
// A thread-safe singleton validator is initialized on first use with two
// custom rules:
//
//   - watchkind: the value must be one of the watch kind wire names
//     (scheduled, manual, grace)
//   - utcdate: the value must parse as a YYYY-MM-DD calendar date
//
// Validation failures are translated into human-readable messages and can
// be converted to the application's VALIDATION_ERROR response shape via
// RequestValidationError.ToAPIError.
package validation
