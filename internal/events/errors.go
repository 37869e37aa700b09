// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package events

import "errors"

// ErrInvalidEvent is returned for payloads that fail decoding or validation.
var ErrInvalidEvent = errors.New("invalid interaction event")

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// ErrUnknownBackend is returned by NewBus for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown events backend")
