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

package playback

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/config"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
)

// OverlayDeviceID selects the overlay delivery path
const OverlayDeviceID = "overlay"

// Route names the delivery path taken for a job
type Route string

const (
	RouteLocal   Route = "local"
	RouteOverlay Route = "overlay"
)

// OutputDevice is the audio output selected on the effect
type OutputDevice struct {
	DeviceID string `json:"deviceId,omitempty"`
	Label    string `json:"label,omitempty"`
}

// LocalPayload is sent on the local playback channel
type LocalPayload struct {
	FilePath          string       `json:"filepath"`
	Format            string       `json:"format"`
	Volume            int          `json:"volume"`
	MaxSoundLength    float64      `json:"maxSoundLength"`
	AudioOutputDevice OutputDevice `json:"audioOutputDevice"`
}

// OverlayPayload is sent on the overlay channel. The overlay fetches the
// audio through ResourceToken instead of reading the file directly.
type OverlayPayload struct {
	ResourceToken     string       `json:"resourceToken"`
	Format            string       `json:"format"`
	Volume            int          `json:"volume"`
	MaxSoundLength    float64      `json:"maxSoundLength"`
	OverlayInstance   string       `json:"overlayInstance,omitempty"`
	AudioOutputDevice OutputDevice `json:"audioOutputDevice"`
}

// Dispatcher delivers playback payloads to the host
type Dispatcher interface {
	SendLocal(ctx context.Context, payload LocalPayload) error
	SendOverlay(ctx context.Context, payload OverlayPayload) error
}

// TokenIssuer grants temporary remote read access to a local file
type TokenIssuer interface {
	Issue(path string, ttl time.Duration) string
}

// Job describes one persisted audio file ready for playback
type Job struct {
	FilePath        string
	Format          string
	Volume          int
	Device          OutputDevice
	OverlayInstance string
	MaxSoundLength  time.Duration
}

// Result reports which path a job took
type Result struct {
	Route           Route
	Device          OutputDevice
	ResourceToken   string
	OverlayInstance string
}

// Router picks the delivery path for a job and builds its payload
type Router struct {
	config     config.PlaybackConfig
	dispatcher Dispatcher
	tokens     TokenIssuer
}

// NewRouter creates a router over the host's dispatcher and token issuer
func NewRouter(cfg config.PlaybackConfig, dispatcher Dispatcher, tokens TokenIssuer) *Router {
	return &Router{
		config:     cfg,
		dispatcher: dispatcher,
		tokens:     tokens,
	}
}

var filePathEscaper = strings.NewReplacer("%", "%25", "#", "%23")

// EscapeFilePath escapes the characters the host player treats as control characters
func EscapeFilePath(path string) string {
	return filePathEscaper.Replace(path)
}

// ResolveDevice substitutes the configured default for an empty or "App Default" device
func (r *Router) ResolveDevice(device OutputDevice) OutputDevice {
	if device.Label == config.AppDefaultDevice || (device.DeviceID == "" && device.Label == "") {
		return r.defaultDevice()
	}
	return device
}

func (r *Router) defaultDevice() OutputDevice {
	return OutputDevice{DeviceID: r.config.DefaultDeviceID, Label: r.config.DefaultDeviceLabel}
}

// OverlayInstanceAllowed reports whether instance may be attached to an overlay payload
func (r *Router) OverlayInstanceAllowed(instance string) bool {
	if instance == "" || !r.config.UseOverlayInstances {
		return false
	}
	return slices.Contains(r.config.OverlayInstances, instance)
}

// TokenTTL is the lifetime of a resource token for a sound of the given length
func (r *Router) TokenTTL(maxSoundLength time.Duration) time.Duration {
	return maxSoundLength + r.config.TokenTTLFloor
}

// Route dispatches job on the local or overlay channel. Dispatch failures are
// logged and do not fail the effect.
func (r *Router) Route(ctx context.Context, job Job) Result {
	device := r.ResolveDevice(job.Device)
	format := job.Format
	if format == "" {
		format = "mp3"
	}
	seconds := job.MaxSoundLength.Seconds()

	if device.DeviceID != OverlayDeviceID {
		payload := LocalPayload{
			FilePath:          EscapeFilePath(job.FilePath),
			Format:            format,
			Volume:            job.Volume,
			MaxSoundLength:    seconds,
			AudioOutputDevice: device,
		}
		if err := r.dispatcher.SendLocal(ctx, payload); err != nil {
			logging.LogError(err, "Failed to dispatch local playback",
				zap.String("file_path", job.FilePath),
				zap.String("device", device.Label),
			)
		}
		logging.LogPlayback(string(RouteLocal), job.FilePath,
			zap.String("device", device.Label),
			zap.Float64("max_sound_length", seconds),
		)
		return Result{Route: RouteLocal, Device: device}
	}

	token := r.tokens.Issue(job.FilePath, r.TokenTTL(job.MaxSoundLength))
	payload := OverlayPayload{
		ResourceToken:     token,
		Format:            format,
		Volume:            job.Volume,
		MaxSoundLength:    seconds,
		AudioOutputDevice: device,
	}
	if r.OverlayInstanceAllowed(job.OverlayInstance) {
		payload.OverlayInstance = job.OverlayInstance
	}

	if err := r.dispatcher.SendOverlay(ctx, payload); err != nil {
		logging.LogError(err, "Failed to dispatch overlay playback",
			zap.String("file_path", job.FilePath),
			zap.String("overlay_instance", payload.OverlayInstance),
		)
	}
	logging.LogPlayback(string(RouteOverlay), job.FilePath,
		zap.String("overlay_instance", payload.OverlayInstance),
		zap.Float64("max_sound_length", seconds),
	)

	return Result{
		Route:           RouteOverlay,
		Device:          device,
		ResourceToken:   token,
		OverlayInstance: payload.OverlayInstance,
	}
}
