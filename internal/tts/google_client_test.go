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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GoogleClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGoogleClient(config.TTSConfig{
		URL:           server.URL,
		Timeout:       5 * time.Second,
		MaxConcurrent: 2,
		AudioEncoding: "MP3",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, server
}

func TestGoogleClient_NewGoogleClient_InvalidURL(t *testing.T) {
	_, err := NewGoogleClient(config.TTSConfig{URL: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL cannot be empty")
}

func TestGoogleClient_Synthesize_MissingCredential(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hello", VoiceName: "en-US-Wavenet-C"}, "")
	assert.ErrorIs(t, err, ErrCredentialMissing)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "no request should be issued without a key")
}

func TestGoogleClient_Synthesize_Success(t *testing.T) {
	var captured synthesizeRequest
	var rawBody map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/text:synthesize", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("X-Goog-Api-Key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&rawBody))
		raw, _ := json.Marshal(rawBody)
		require.NoError(t, json.Unmarshal(raw, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"audioContent":"SUQzBAAAAA=="}`))
	})

	audio, err := client.Synthesize(context.Background(), SynthesisRequest{
		Text:      "hello chat",
		VoiceName: "en-GB-Wavenet-A",
	}, "secret-key")
	require.NoError(t, err)
	assert.Equal(t, "SUQzBAAAAA==", audio)

	assert.Equal(t, "hello chat", captured.Input.Text)
	assert.Equal(t, "en-GB", captured.Voice.LanguageCode)
	assert.Equal(t, "en-GB-Wavenet-A", captured.Voice.Name)
	assert.Equal(t, "MP3", captured.AudioConfig.AudioEncoding)

	audioCfg, ok := rawBody["audioConfig"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, audioCfg, "pitch")
	assert.NotContains(t, audioCfg, "speakingRate")
}

func TestGoogleClient_Synthesize_PitchAndRate(t *testing.T) {
	var captured synthesizeRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"audioContent":"AAAA"}`))
	})

	pitch, rate := -2.5, 1.25
	_, err := client.Synthesize(context.Background(), SynthesisRequest{
		Text:         "hi",
		VoiceName:    "en-US-Neural2-C",
		LanguageCode: "en-US",
		Pitch:        &pitch,
		SpeakingRate: &rate,
	}, "k")
	require.NoError(t, err)
	require.NotNil(t, captured.AudioConfig.Pitch)
	require.NotNil(t, captured.AudioConfig.SpeakingRate)
	assert.Equal(t, pitch, *captured.AudioConfig.Pitch)
	assert.Equal(t, rate, *captured.AudioConfig.SpeakingRate)
}

func TestGoogleClient_Synthesize_ProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus string
		wantCode   int
		wantAPIErr bool
	}{
		{
			name:       "Structured permission error",
			status:     http.StatusForbidden,
			body:       `{"error":{"code":403,"status":"PERMISSION_DENIED","message":"Requests from referer are blocked."}}`,
			wantStatus: "PERMISSION_DENIED",
			wantCode:   403,
			wantAPIErr: true,
		},
		{
			name:       "Structured error without code",
			status:     http.StatusBadRequest,
			body:       `{"error":{"status":"INVALID_ARGUMENT","message":"bad voice"}}`,
			wantStatus: "INVALID_ARGUMENT",
			wantCode:   400,
			wantAPIErr: true,
		},
		{
			name:       "Plain text body",
			status:     http.StatusInternalServerError,
			body:       "upstream exploded",
			wantStatus: "UNKNOWN",
			wantCode:   500,
		},
		{
			name:       "Error envelope missing status",
			status:     http.StatusBadGateway,
			body:       `{"error":{"code":502}}`,
			wantStatus: "UNKNOWN",
			wantCode:   502,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hi", VoiceName: "en-US-Standard-A"}, "k")
			require.Error(t, err)

			pe, ok := AsProviderError(err)
			require.True(t, ok, "expected a provider error, got %T", err)
			assert.Equal(t, tt.wantStatus, pe.StatusName())
			assert.Equal(t, tt.wantCode, pe.HTTPStatus())

			var apiErr *APIError
			assert.Equal(t, tt.wantAPIErr, errors.As(err, &apiErr))
		})
	}
}

func TestGoogleClient_Synthesize_NoAudioContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Synthesize(context.Background(), SynthesisRequest{Text: "hi", VoiceName: "en-US-Standard-A"}, "k")
	assert.ErrorIs(t, err, ErrNoAudioContent)
}

func TestGoogleClient_Synthesize_EmptyText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be issued for empty text")
	})

	_, err := client.Synthesize(context.Background(), SynthesisRequest{VoiceName: "en-US-Standard-A"}, "k")
	assert.Error(t, err)
}

func TestGoogleClient_Synthesize_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"audioContent":"AAAA"}`))
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Synthesize(ctx, SynthesisRequest{Text: "hi", VoiceName: "en-US-Standard-A"}, "k")
	assert.Error(t, err)
}

func TestAPIError_Format(t *testing.T) {
	err := &APIError{Code: 403, Status: "PERMISSION_DENIED", Message: "blocked"}
	assert.Equal(t, "E_PERMISSION_DENIED (code 403): blocked", err.Error())
}
