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

package tts

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrCredentialMissing is returned before any request is issued when no API key is set
	ErrCredentialMissing = errors.New("google tts: API key is not configured")

	// ErrNoAudioContent is returned when a successful response carries no audio
	ErrNoAudioContent = errors.New("google tts: response contained no audio content")
)

// unknownStatus tags provider failures whose body could not be parsed
const unknownStatus = "UNKNOWN"

// ProviderError is a failed response from the provider. It is implemented by
// *APIError (structured error body) and *HTTPError (anything else).
type ProviderError interface {
	error
	HTTPStatus() int
	StatusName() string
}

// APIError is the structured error body returned by Google APIs
type APIError struct {
	// Code is the HTTP status code
	Code int `json:"code"`
	// Status is an error identifier, such as "PERMISSION_DENIED"
	Status string `json:"status"`
	// Message is optional, such as "Requests from referer XYZ are blocked"
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("E_%s (code %d): %s", e.Status, e.Code, e.Message)
}

// HTTPStatus returns the HTTP status code
func (e *APIError) HTTPStatus() int { return e.Code }

// StatusName returns the provider error identifier
func (e *APIError) StatusName() string { return e.Status }

// HTTPError is a failed response whose body was not a structured error
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("E_%s (code %d): %s", unknownStatus, e.StatusCode, e.Body)
}

// HTTPStatus returns the HTTP status code
func (e *HTTPError) HTTPStatus() int { return e.StatusCode }

// StatusName always reports UNKNOWN
func (e *HTTPError) StatusName() string { return unknownStatus }

// AsProviderError extracts a ProviderError from err's chain
func AsProviderError(err error) (ProviderError, bool) {
	var pe ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// parseErrorResponse turns a non-success response into a ProviderError
func parseErrorResponse(statusCode int, body []byte) ProviderError {
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Status != "" {
		if envelope.Error.Code == 0 {
			envelope.Error.Code = statusCode
		}
		return envelope.Error
	}
	return &HTTPError{StatusCode: statusCode, Body: string(body)}
}
