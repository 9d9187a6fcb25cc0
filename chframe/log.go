// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package chframe

import "log/slog"

// logger receives debug-level traces of schema negotiation and block
// movement. Discarded unless the embedding application installs one.
var logger = slog.New(slog.DiscardHandler)

// SetLogger installs the logger used for the package's debug traces.
// Intended to be called once at startup; a nil logger is ignored.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}
