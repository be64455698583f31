/*
 * This file is part of firebot-script-google-cloud-tts (https://github.com/heyaapl/firebot-script-google-cloud-tts).
 * Copyright (C) 2025 heyaapl
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/effect"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/security"
)

const maxEffectBody = 64 << 10

// EffectRunner runs one effect to completion
type EffectRunner interface {
	Run(ctx context.Context, req effect.Request) effect.Outcome
}

// EffectsHandler triggers the TTS effect over HTTP
type EffectsHandler struct {
	runner EffectRunner
}

// NewEffectsHandler creates a new effects handler
func NewEffectsHandler(runner EffectRunner) *EffectsHandler {
	return &EffectsHandler{runner: runner}
}

// ValidationResponse lists the problems with a rejected effect request
type ValidationResponse struct {
	Errors []string `json:"errors"`
}

// HandleRunEffect handles POST /api/effects/google-tts
func (h *EffectsHandler) HandleRunEffect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req effect.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxEffectBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, ValidationResponse{Errors: errs})
		return
	}

	logging.LogTTSOperation("effect_triggered",
		zap.String("voice", security.SanitizeLogInput(req.VoiceName)),
		zap.Bool("wait_complete", req.Waits()),
		zap.String("source", "http"),
	)

	// Waiting for playback outlives the server write timeout
	if req.Waits() {
		err := http.NewResponseController(w).SetWriteDeadline(time.Time{})
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			logging.LogWarn("Failed to clear write deadline", zap.Error(err))
		}
	}

	outcome := h.runner.Run(r.Context(), req)
	writeJSON(w, http.StatusOK, outcome.Result())
}
