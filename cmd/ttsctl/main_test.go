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

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/api"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/effect"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/storage"
)

func runCLI(t *testing.T, host string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--host", host}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVoicesCommand(t *testing.T) {
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/voices", r.URL.Path)
		assert.Equal(t, "en-GB", r.URL.Query().Get("language"))
		_ = json.NewEncoder(w).Encode(api.VoicesResponse{Voices: []api.VoiceResponse{
			{Name: "en-GB-Wavenet-A", Language: "English (UK)", LanguageCode: "en-GB", Gender: "FEMALE", PricingTier: "WaveNet"},
		}})
	}))
	defer host.Close()

	out, err := runCLI(t, host.URL, "voices", "--language", "en-GB")
	require.NoError(t, err)
	assert.Contains(t, out, "en-GB-Wavenet-A")
	assert.Contains(t, out, "Total: 1 voices")
}

func TestSpeakCommand(t *testing.T) {
	var got effect.Request
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(effect.Outcome{
			Succeeded:            true,
			Billed:               true,
			AudioDurationSeconds: 1.5,
			CostUnits:            11,
			PricingTier:          "WaveNet",
			ResolvedVoiceName:    got.VoiceName,
		}.Result())
	}))
	defer host.Close()

	out, err := runCLI(t, host.URL, "speak", "hello", "world", "--voice", "en-US-Wavenet-B", "--pitch", "2", "--no-wait")
	require.NoError(t, err)

	assert.Equal(t, "hello world", got.Text)
	assert.Equal(t, "en-US-Wavenet-B", got.VoiceName)
	require.NotNil(t, got.Pitch)
	assert.Equal(t, 2.0, *got.Pitch)
	assert.Nil(t, got.SpeakingRate)
	assert.False(t, got.Waits())
	assert.Contains(t, out, "Cost:      11 (WaveNet)")
}

func TestSpeakCommand_Failure(t *testing.T) {
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(effect.Outcome{Err: effect.ErrEmptyText}.Result())
	}))
	defer host.Close()

	out, err := runCLI(t, host.URL, "speak", "x")
	require.Error(t, err)
	assert.Contains(t, out, "Error:")
}

func TestUsageSummaryCommand(t *testing.T) {
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/usage/summary", r.URL.Path)
		assert.Equal(t, "Chirp", r.URL.Query().Get("tier"))
		assert.Empty(t, r.URL.Query().Get("cost"))
		_ = json.NewEncoder(w).Encode(api.SummaryResponse{
			Buckets:   []storage.BucketSummary{{Bucket: "Chirp", DisplayName: "Chirp 3: HD", Events: 2, TotalCost: 40}},
			TotalCost: 40,
		})
	}))
	defer host.Close()

	out, err := runCLI(t, host.URL, "usage", "summary", "--tier", "Chirp")
	require.NoError(t, err)
	assert.Contains(t, out, "Chirp 3: HD")
	assert.Contains(t, out, "Total: 40 units")
}

func TestKeyCommands(t *testing.T) {
	var methods []string
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		configured := r.Method != http.MethodDelete
		if r.Method == http.MethodPut {
			var params api.Parameters
			require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
			require.NotNil(t, params.GoogleCloudAPIKey)
			assert.Equal(t, "abc", *params.GoogleCloudAPIKey)
		}
		_ = json.NewEncoder(w).Encode(api.ParametersStatus{APIKeyConfigured: configured})
	}))
	defer host.Close()

	out, err := runCLI(t, host.URL, "key", "set", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "✓")

	out, err = runCLI(t, host.URL, "key", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "✗")

	assert.Equal(t, []string{http.MethodPut, http.MethodDelete}, methods)
}

func TestHostClient_ErrorStatus(t *testing.T) {
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer host.Close()

	err := newHostClient(host.URL).do(http.MethodGet, "/api/usage", nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500: boom")
}
