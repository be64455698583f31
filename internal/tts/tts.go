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

// Package tts talks to the Google Cloud Text-to-Speech REST API.
package tts

import "context"

// SynthesisRequest holds the parameters of a single synthesis call
type SynthesisRequest struct {
	Text         string
	VoiceName    string
	LanguageCode string   // Derived from VoiceName when empty
	Pitch        *float64 // Omitted from the request when nil
	SpeakingRate *float64 // Omitted from the request when nil
}

// Synthesizer defines the interface for text-to-speech synthesis services
type Synthesizer interface {
	// Synthesize returns the base64 encoded audio for req. apiKey is passed per
	// call because the credential may change while the process runs.
	Synthesize(ctx context.Context, req SynthesisRequest, apiKey string) (string, error)
}
