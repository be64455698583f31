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
	"net/http"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/events"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/voices"
)

// VoiceResponse is one entry of GET /api/voices
type VoiceResponse struct {
	Name         string        `json:"name"`
	Language     string        `json:"language"`
	LanguageCode string        `json:"language_code"`
	Gender       voices.Gender `json:"gender"`
	PricingTier  string        `json:"pricing_tier"`
}

// VoicesResponse is the response of GET /api/voices
type VoicesResponse struct {
	Voices       []VoiceResponse      `json:"voices"`
	PricingTiers []events.PresetValue `json:"pricing_tiers"`
}

// HandleVoices handles GET /api/voices. The optional language query
// parameter filters by language code, e.g. "en-US".
func HandleVoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	language := r.URL.Query().Get("language")
	response := VoicesResponse{
		Voices:       []VoiceResponse{},
		PricingTiers: events.PricingTierPresets(),
	}
	for _, v := range voices.GetSupportedVoices() {
		if language != "" && v.LanguageCode() != language {
			continue
		}
		response.Voices = append(response.Voices, VoiceResponse{
			Name:         v.Name,
			Language:     v.Language,
			LanguageCode: v.LanguageCode(),
			Gender:       v.Gender,
			PricingTier:  v.Category().Bucket,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
