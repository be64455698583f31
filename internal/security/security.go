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

package security

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidVoiceName is returned when a voice name contains unsafe characters
	ErrInvalidVoiceName = errors.New("invalid voice name")

	// ErrInvalidResourceToken is returned when a resource token is malformed
	ErrInvalidResourceToken = errors.New("invalid resource token")

	// voiceNamePattern allows the characters Google uses in voice names
	voiceNamePattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

	// resourceTokenPattern matches the hex-with-dashes form of issued tokens
	resourceTokenPattern = regexp.MustCompile(`^[a-f0-9-]{32,36}$`)
)

// SanitizeLogInput removes newline characters to prevent log injection attacks
// This function should be used for all user-controlled data before logging
func SanitizeLogInput(input string) string {
	sanitized := strings.ReplaceAll(input, "\n", "")
	sanitized = strings.ReplaceAll(sanitized, "\r", "")
	return sanitized
}

// ValidateVoiceName rejects voice names that could not have come from the
// provider's catalogue. It does not check that the voice exists.
func ValidateVoiceName(name string) error {
	if !voiceNamePattern.MatchString(name) {
		return ErrInvalidVoiceName
	}
	return nil
}

// ValidateResourceToken ensures a token taken from a URL path has the issued
// shape and cannot traverse paths.
func ValidateResourceToken(token string) error {
	if token == "" || strings.ContainsAny(token, `/\.`) {
		return ErrInvalidResourceToken
	}
	if !resourceTokenPattern.MatchString(token) {
		return ErrInvalidResourceToken
	}
	return nil
}
