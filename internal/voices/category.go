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

// Package voices holds the static Google Cloud voice catalog and the pricing
// rules derived from voice names.
package voices

import (
	"regexp"
	"strings"
)

// Category is the pricing SKU a voice is billed under.
type Category struct {
	// Key identifies the bucket in usage events and filters (e.g. "Wavenet").
	Key string `json:"key"`

	// Bucket is the pricing tier label reported to the host (e.g. "WaveNet").
	Bucket string `json:"bucket"`

	// DisplayName is the label used by the event source and filter presets.
	DisplayName string `json:"display_name"`

	// CountBytes is true when the tier is billed by UTF-8 byte length
	// instead of character count.
	CountBytes bool `json:"count_bytes"`
}

var (
	CategoryStandard = Category{Key: "Standard", Bucket: "Standard", DisplayName: "Standard"}
	CategoryWavenet  = Category{Key: "Wavenet", Bucket: "WaveNet", DisplayName: "WaveNet"}
	CategoryNeural   = Category{Key: "Neural", Bucket: "Neural2", DisplayName: "Neural2"}
	CategoryPolyglot = Category{Key: "Polyglot", Bucket: "Polyglot", DisplayName: "Polyglot"}
	CategoryChirp    = Category{Key: "Chirp", Bucket: "Chirp", DisplayName: "Chirp 3: HD", CountBytes: true}
	CategoryStudio   = Category{Key: "Studio", Bucket: "Studio", DisplayName: "Casual, News, or Studio", CountBytes: true}
	CategoryUnknown  = Category{Key: "Unknown", Bucket: "Unknown", DisplayName: "Unknown"}
)

// Categories lists every category in filter preset order.
var Categories = []Category{
	CategoryStudio,
	CategoryChirp,
	CategoryNeural,
	CategoryPolyglot,
	CategoryStandard,
	CategoryWavenet,
	CategoryUnknown,
}

// legacyKeys maps retired bucket keys onto their current key. "Journey" voices
// were renamed to "Chirp-HD" in 2025/Q1 and the SKU became "Chirp 3: HD".
var legacyKeys = map[string]string{
	"Journey": CategoryChirp.Key,
}

// CanonicalKey resolves a possibly retired bucket key to the current one.
func CanonicalKey(key string) string {
	if current, ok := legacyKeys[key]; ok {
		return current
	}
	return key
}

// CategoryByKey returns the category for a bucket key, honouring legacy keys.
func CategoryByKey(key string) (Category, bool) {
	key = CanonicalKey(key)
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return CategoryUnknown, false
}

type rule struct {
	pattern  *regexp.Regexp
	category Category
}

// familyPattern matches "<lang>-<region>-<family>-<variant>", e.g. "en-US-Wavenet-C"
// or "en-US-Chirp3-HD-Charon".
func familyPattern(families ...string) *regexp.Regexp {
	return regexp.MustCompile(`^[a-z]{2,3}-[A-Za-z0-9]{2,4}-(?:` + strings.Join(families, "|") + `)-[A-Za-z0-9]+$`)
}

// rules is evaluated top to bottom; family names overlap by substring so the
// most specific family comes first.
var rules = []rule{
	{familyPattern("Chirp3-HD", "Chirp-HD", "Chirp", "Journey"), CategoryChirp},
	{familyPattern("Studio", "News", "Casual"), CategoryStudio},
	{familyPattern("Polyglot"), CategoryPolyglot},
	{familyPattern("Neural2"), CategoryNeural},
	{familyPattern("Wavenet"), CategoryWavenet},
	{familyPattern("Standard"), CategoryStandard},
}

// GetVoiceCategory returns the pricing category of a voice name, or
// CategoryUnknown when no family pattern matches.
func GetVoiceCategory(voiceName string) Category {
	for _, r := range rules {
		if r.pattern.MatchString(voiceName) {
			return r.category
		}
	}
	return CategoryUnknown
}

// IsKnownVoice reports whether voiceName belongs to a recognised voice family.
func IsKnownVoice(voiceName string) bool {
	return GetVoiceCategory(voiceName) != CategoryUnknown
}

// IsChirpVoice reports whether the voice ignores pitch and speaking rate.
func IsChirpVoice(voiceName string) bool {
	return GetVoiceCategory(voiceName) == CategoryChirp
}

// GetVoiceLangCode returns the locale prefix of a voice name ("en-US" for
// "en-US-Wavenet-C").
func GetVoiceLangCode(voiceName string) string {
	parts := strings.SplitN(voiceName, "-", 3)
	if len(parts) < 2 {
		return voiceName
	}
	return parts[0] + "-" + parts[1]
}
