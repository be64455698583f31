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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/config"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/security"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/voices"
	"go.uber.org/zap"
)

// synthesizeRequest is the body of POST /text:synthesize
type synthesizeRequest struct {
	Input       synthesisInput `json:"input"`
	Voice       voiceSelection `json:"voice"`
	AudioConfig audioConfig    `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type audioConfig struct {
	AudioEncoding string   `json:"audioEncoding"`
	Pitch         *float64 `json:"pitch,omitempty"`
	SpeakingRate  *float64 `json:"speakingRate,omitempty"`
}

// synthesizeResponse carries base64 encoded audio
type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// GoogleClient implements Synthesizer against the Google Cloud TTS REST API
type GoogleClient struct {
	baseURL   string
	client    *http.Client
	config    config.TTSConfig
	semaphore chan struct{} // Limits concurrent requests
}

// NewGoogleClient creates a new Google Cloud TTS client. No request is made
// here; the API key is commonly empty right after the plugin loads.
func NewGoogleClient(cfg config.TTSConfig) (*GoogleClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("TTS URL cannot be empty")
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.AudioEncoding == "" {
		cfg.AudioEncoding = "MP3"
	}

	c := &GoogleClient{
		baseURL:   strings.TrimSuffix(cfg.URL, "/"),
		client:    &http.Client{Timeout: cfg.Timeout},
		config:    cfg,
		semaphore: make(chan struct{}, cfg.MaxConcurrent),
	}

	if logging.Sugar != nil {
		logging.Sugar.Infow("🔊 Google TTS client initialized",
			"url", cfg.URL,
			"max_concurrent", cfg.MaxConcurrent,
		)
	}

	return c, nil
}

// Synthesize converts text to speech and returns base64 encoded audio
func (c *GoogleClient) Synthesize(ctx context.Context, req SynthesisRequest, apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrCredentialMissing
	}
	if req.Text == "" {
		return "", fmt.Errorf("text cannot be empty")
	}

	select {
	case c.semaphore <- struct{}{}:
		defer func() { <-c.semaphore }()
	case <-ctx.Done():
		return "", fmt.Errorf("TTS synthesis queue wait cancelled: %w", ctx.Err())
	}

	languageCode := req.LanguageCode
	if languageCode == "" {
		languageCode = voices.GetVoiceLangCode(req.VoiceName)
	}

	body, err := json.Marshal(synthesizeRequest{
		Input: synthesisInput{Text: req.Text},
		Voice: voiceSelection{LanguageCode: languageCode, Name: req.VoiceName},
		AudioConfig: audioConfig{
			AudioEncoding: c.config.AudioEncoding,
			Pitch:         req.Pitch,
			SpeakingRate:  req.SpeakingRate,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal TTS request: %w", err)
	}

	voiceField := zap.String("voice", security.SanitizeLogInput(req.VoiceName))
	logging.LogTTSOperation("synthesis_start",
		voiceField,
		zap.String("language_code", languageCode),
		zap.Int("text_length", len(req.Text)),
	)
	startTime := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text:synthesize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		logging.LogError(err, "TTS HTTP request failed", voiceField)
		return "", fmt.Errorf("TTS HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read TTS response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		providerErr := parseErrorResponse(resp.StatusCode, respBody)
		logging.LogWarn("TTS request failed",
			voiceField,
			zap.Int("status_code", resp.StatusCode),
			zap.String("status", providerErr.StatusName()),
			zap.String("error", providerErr.Error()),
		)
		return "", providerErr
	}

	var result synthesizeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode TTS response: %w", err)
	}
	if result.AudioContent == "" {
		return "", ErrNoAudioContent
	}

	logging.LogTTSOperation("synthesis_complete",
		voiceField,
		zap.Duration("processing_time", time.Since(startTime)),
		zap.Int("audio_base64_length", len(result.AudioContent)),
	)

	return result.AudioContent, nil
}

// Close cleans up resources
func (c *GoogleClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
