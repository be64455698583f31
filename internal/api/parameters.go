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
	"encoding/json"
	"io"
	"net/http"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
)

// CredentialStore is the live API key holder
type CredentialStore interface {
	APIKey() string
	SetAPIKey(apiKey string)
	Clear()
}

// Parameters are the plugin's user-editable script parameters
type Parameters struct {
	GoogleCloudAPIKey *string `json:"googleCloudAPIKey"`
}

// ParametersStatus never echoes the key itself
type ParametersStatus struct {
	APIKeyConfigured bool `json:"apiKeyConfigured"`
}

// ParametersHandler applies parameter updates while the plugin runs
type ParametersHandler struct {
	credentials CredentialStore
}

// NewParametersHandler creates a new parameters handler
func NewParametersHandler(credentials CredentialStore) *ParametersHandler {
	return &ParametersHandler{credentials: credentials}
}

// HandleParameters handles GET, PUT and DELETE /api/parameters. DELETE
// forgets the key, as when the plugin is stopped.
func (h *ParametersHandler) HandleParameters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var params Parameters
		if err := json.NewDecoder(io.LimitReader(r.Body, 16<<10)).Decode(&params); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if params.GoogleCloudAPIKey != nil {
			h.credentials.SetAPIKey(*params.GoogleCloudAPIKey)
			logging.LogTTSOperation("parameters_updated")
		}
	case http.MethodDelete:
		h.credentials.Clear()
		logging.LogTTSOperation("parameters_cleared")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, ParametersStatus{APIKeyConfigured: h.credentials.APIKey() != ""})
}
