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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/config"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/effect"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/events"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/playback"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/usage"
)

type fakeRunner struct {
	requests []effect.Request
	outcome  effect.Outcome
}

func (r *fakeRunner) Run(_ context.Context, req effect.Request) effect.Outcome {
	r.requests = append(r.requests, req)
	return r.outcome
}

func TestNATSService_Subjects(t *testing.T) {
	ns := NewNATSService(config.NATSConfig{URL: "nats://localhost:4222"})
	assert.Equal(t, "firebot.playback.sound", ns.SubjectPlaybackSound())
	assert.Equal(t, "firebot.overlay.sound", ns.SubjectOverlaySound())
	assert.Equal(t, "google-cloud-tts.usage", SubjectUsage)
	assert.Equal(t, "google-cloud-tts.effects.run", SubjectEffectRun)

	custom := NewNATSService(config.NATSConfig{SubjectPrefix: "studio"})
	assert.Equal(t, "studio.playback.sound", custom.SubjectPlaybackSound())
}

func TestNATSService_NotConnected(t *testing.T) {
	ns := NewNATSService(config.NATSConfig{})
	ctx := context.Background()

	assert.False(t, ns.IsConnected())
	assert.Error(t, ns.SendLocal(ctx, playback.LocalPayload{FilePath: "/tmp/a.mp3"}))
	assert.Error(t, ns.SendOverlay(ctx, playback.OverlayPayload{ResourceToken: "t"}))
	assert.Error(t, ns.PublishUsage(events.NewUsageEvent(usage.SourceID, usage.EventID, usage.Metadata{Bucket: "Standard", Cost: 1})))

	_, err := ns.SubscribeToEffectTriggers(ctx, &fakeRunner{})
	assert.Error(t, err)
	ns.Close()
}

func TestNATSService_ImplementsDispatcher(t *testing.T) {
	var _ playback.Dispatcher = NewNATSService(config.NATSConfig{})
}

func TestHandleEffectRequest(t *testing.T) {
	runner := &fakeRunner{outcome: effect.Outcome{
		Succeeded:            true,
		Billed:               true,
		AudioDurationSeconds: 3,
		CostUnits:            2,
		PricingTier:          "WaveNet",
		ResolvedVoiceName:    "en-US-Wavenet-A",
	}}

	reply := handleEffectRequest(context.Background(),
		[]byte(`{"text":"hi","voiceName":"en-US-Wavenet-A","waitComplete":false}`), runner)

	var result effect.Result
	require.NoError(t, json.Unmarshal(reply, &result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Outputs.CostUnits)
	assert.Equal(t, "WaveNet", result.Outputs.PricingTier)

	require.Len(t, runner.requests, 1)
	assert.Equal(t, "en-US-Wavenet-A", runner.requests[0].VoiceName)
	assert.False(t, runner.requests[0].Waits())
}

func TestHandleEffectRequest_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantError string
		wantStop  bool
	}{
		{name: "Malformed JSON", payload: `{"text":`, wantError: "invalid effect request"},
		{name: "Empty text", payload: `{"voiceName":"en-US-Wavenet-A","stopOnError":"stop"}`, wantError: effect.EmptyTextMessage, wantStop: true},
		{name: "Empty text bubble+stop", payload: `{"stopOnError":"bubble+stop"}`, wantError: effect.EmptyTextMessage, wantStop: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			reply := handleEffectRequest(context.Background(), []byte(tt.payload), runner)

			var result effect.Result
			require.NoError(t, json.Unmarshal(reply, &result))
			assert.False(t, result.Success)
			assert.Contains(t, result.Error, tt.wantError)
			assert.Equal(t, tt.wantStop, result.Execution.Stop)
			assert.Empty(t, runner.requests, "invalid requests never reach the orchestrator")
		})
	}
}

func TestHandleEffectRequest_BubblePlusStop(t *testing.T) {
	runner := &fakeRunner{outcome: effect.Outcome{Err: effect.ErrUnknownVoice}}

	reply := handleEffectRequest(context.Background(),
		[]byte(`{"text":"hi","voiceName":"en-US-Wavenet-A","stopOnError":"bubble+stop"}`), runner)

	require.Len(t, runner.requests, 1)
	assert.Equal(t, effect.StopOnErrorBubbleStop, runner.requests[0].StopOnError)

	var result effect.Result
	require.NoError(t, json.Unmarshal(reply, &result))
	assert.False(t, result.Success)
}

func TestNATSService_TrackTriggers(t *testing.T) {
	ns := NewNATSService(config.NATSConfig{})

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, ns.track(func() {
		close(started)
		<-release
	}))
	<-started

	drained := make(chan struct{})
	go func() {
		ns.WaitTriggers()
		close(drained)
	}()

	select {
	case <-drained:
		t.Fatal("WaitTriggers returned while a trigger was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		t.Fatal("WaitTriggers did not return after the trigger finished")
	}

	assert.False(t, ns.track(func() { t.Error("trigger ran after drain") }), "no triggers start once drained")
}
