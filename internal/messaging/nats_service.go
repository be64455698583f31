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

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/config"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/effect"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/events"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/playback"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/usage"
)

// Plugin-owned NATS subjects
const (
	SubjectUsage     = usage.SourceID + ".usage"
	SubjectEffectRun = usage.SourceID + ".effects.run"
)

// effectRunTimeout bounds one effect triggered over NATS, including the wait for playback
const effectRunTimeout = 5 * time.Minute

// EffectRunner runs one effect to completion
type EffectRunner interface {
	Run(ctx context.Context, req effect.Request) effect.Outcome
}

// NATSService connects the plugin to the host over NATS. It implements
// playback.Dispatcher and carries usage events and effect triggers.
type NATSService struct {
	conn   *nats.Conn
	config config.NATSConfig

	// triggers tracks effect runs started from NATS
	mu       sync.Mutex
	draining bool
	triggers sync.WaitGroup
}

// NewNATSService creates a new NATS service instance
func NewNATSService(cfg config.NATSConfig) *NATSService {
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "firebot"
	}
	return &NATSService{config: cfg}
}

// SubjectPlaybackSound is where local playback commands go
func (ns *NATSService) SubjectPlaybackSound() string {
	return ns.config.SubjectPrefix + ".playback.sound"
}

// SubjectOverlaySound is where overlay playback commands go
func (ns *NATSService) SubjectOverlaySound() string {
	return ns.config.SubjectPrefix + ".overlay.sound"
}

// Connect establishes connection to NATS server
func (ns *NATSService) Connect() error {
	logging.LogNATSEvent(ns.config.URL, "connecting")

	opts := []nats.Option{
		nats.Name(usage.SourceID),
		nats.ReconnectWait(ns.config.ReconnectWait),
		nats.MaxReconnects(ns.config.MaxReconnect),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.LogWarn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.LogNATSEvent(nc.ConnectedUrl(), "reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logging.LogNATSEvent(ns.config.URL, "closed")
		}),
	}

	conn, err := nats.Connect(ns.config.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	ns.conn = conn
	logging.LogNATSEvent(conn.ConnectedUrl(), "connected")
	return nil
}

func (ns *NATSService) publishJSON(subject string, v any) error {
	if ns.conn == nil {
		return fmt.Errorf("NATS connection not established")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for %s: %w", subject, err)
	}

	if err := ns.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// SendLocal publishes a local playback command
func (ns *NATSService) SendLocal(_ context.Context, payload playback.LocalPayload) error {
	subject := ns.SubjectPlaybackSound()
	if err := ns.publishJSON(subject, payload); err != nil {
		return err
	}
	logging.LogNATSEvent(subject, "published",
		zap.String("device", payload.AudioOutputDevice.Label),
		zap.Float64("max_sound_length", payload.MaxSoundLength),
	)
	return nil
}

// SendOverlay publishes an overlay playback command
func (ns *NATSService) SendOverlay(_ context.Context, payload playback.OverlayPayload) error {
	subject := ns.SubjectOverlaySound()
	if err := ns.publishJSON(subject, payload); err != nil {
		return err
	}
	logging.LogNATSEvent(subject, "published",
		zap.String("overlay_instance", payload.OverlayInstance),
		zap.Float64("max_sound_length", payload.MaxSoundLength),
	)
	return nil
}

// PublishUsage publishes a usage event for host-side listeners
func (ns *NATSService) PublishUsage(event *events.UsageEvent) error {
	if err := ns.publishJSON(SubjectUsage, event); err != nil {
		return err
	}
	logging.LogNATSEvent(SubjectUsage, "published",
		zap.String("bucket", event.Bucket),
		zap.Int("cost", event.Cost),
	)
	return nil
}

// SubscribeToEffectTriggers answers effect requests on SubjectEffectRun with
// the effect result. Cancelling ctx interrupts runs that are waiting for
// playback; WaitTriggers drains them.
func (ns *NATSService) SubscribeToEffectTriggers(ctx context.Context, runner EffectRunner) (*nats.Subscription, error) {
	if ns.conn == nil {
		return nil, fmt.Errorf("NATS connection not established")
	}

	return ns.conn.Subscribe(SubjectEffectRun, func(msg *nats.Msg) {
		// Effects wait for playback, so each trigger runs on its own goroutine
		started := ns.track(func() {
			runCtx, cancel := context.WithTimeout(ctx, effectRunTimeout)
			defer cancel()

			reply := handleEffectRequest(runCtx, msg.Data, runner)
			if msg.Reply == "" {
				return
			}
			if err := msg.Respond(reply); err != nil {
				logging.LogError(err, "Failed to reply to effect trigger", zap.String("subject", msg.Subject))
			}
		})
		if !started {
			logging.LogWarn("Dropped effect trigger during shutdown", zap.String("subject", msg.Subject))
		}
	})
}

// track runs fn on its own goroutine unless the service is draining
func (ns *NATSService) track(fn func()) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if ns.draining {
		return false
	}
	ns.triggers.Add(1)
	go func() {
		defer ns.triggers.Done()
		fn()
	}()
	return true
}

// WaitTriggers stops accepting new effect triggers and blocks until the
// running ones have finished
func (ns *NATSService) WaitTriggers() {
	ns.mu.Lock()
	ns.draining = true
	ns.mu.Unlock()
	ns.triggers.Wait()
}

// handleEffectRequest decodes, validates and runs one effect request and
// returns the JSON encoded result
func handleEffectRequest(ctx context.Context, data []byte, runner EffectRunner) []byte {
	var req effect.Request
	var result effect.Result

	if err := json.Unmarshal(data, &req); err != nil {
		logging.LogWarn("Invalid effect trigger payload", zap.Error(err))
		result = effect.Outcome{Err: fmt.Errorf("invalid effect request: %w", err)}.Result()
	} else if errs := req.Validate(); len(errs) > 0 {
		outcome := effect.Outcome{Err: effect.ErrEmptyText, Control: effect.Decide(false, req.StopOnError)}
		result = outcome.Result()
		result.Error = errs[0]
	} else {
		logging.LogNATSEvent(SubjectEffectRun, "received", zap.Bool("wait_complete", req.Waits()))
		result = runner.Run(ctx, req).Result()
	}

	reply, err := json.Marshal(result)
	if err != nil {
		return []byte(`{"success":false,"execution":{"stop":false,"bubbleStop":false}}`)
	}
	return reply
}

// Close closes the NATS connection
func (ns *NATSService) Close() {
	if ns.conn != nil {
		ns.conn.Close()
	}
}

// IsConnected returns true if connected to NATS
func (ns *NATSService) IsConnected() bool {
	return ns.conn != nil && ns.conn.IsConnected()
}
