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

package events

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/usage"
)

func TestNewUsageEvent(t *testing.T) {
	event := NewUsageEvent(usage.SourceID, usage.EventID, usage.Metadata{Bucket: "Wavenet", Cost: 12})

	require.NoError(t, event.IsValid())
	assert.Len(t, event.UUID, 36)
	assert.Equal(t, "google-cloud-tts", event.SourceID)
	assert.Equal(t, "usage", event.EventID)
	assert.Equal(t, map[string]any{"bucket": "Wavenet", "cost": 12}, event.Metadata())
	assert.Contains(t, event.String(), "Bucket: Wavenet")
}

func TestUsageEvent_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UsageEvent)
	}{
		{"Missing UUID", func(e *UsageEvent) { e.UUID = "" }},
		{"Missing source", func(e *UsageEvent) { e.SourceID = "" }},
		{"Missing bucket", func(e *UsageEvent) { e.Bucket = "" }},
		{"Negative cost", func(e *UsageEvent) { e.Cost = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewUsageEvent(usage.SourceID, usage.EventID, usage.Metadata{Bucket: "Standard", Cost: 1})
			tt.mutate(event)
			assert.Error(t, event.IsValid())
		})
	}
}

func TestBus_EmitFansOut(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var syncSeen, asyncSeen []*UsageEvent
	require.NoError(t, bus.Subscribe(func(e *UsageEvent) {
		mu.Lock()
		defer mu.Unlock()
		syncSeen = append(syncSeen, e)
	}))
	require.NoError(t, bus.SubscribeAsync(func(e *UsageEvent) {
		mu.Lock()
		defer mu.Unlock()
		asyncSeen = append(asyncSeen, e)
	}))

	require.NoError(t, bus.Emit(context.Background(), usage.SourceID, usage.EventID, usage.Metadata{Bucket: "Chirp", Cost: 40}))
	bus.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, syncSeen, 1)
	require.Len(t, asyncSeen, 1)
	assert.Equal(t, syncSeen[0].UUID, asyncSeen[0].UUID)
	assert.Equal(t, 40, syncSeen[0].Cost)
	assert.Equal(t, syncSeen[0], bus.Last())
}

func TestBus_PanickingHandler(t *testing.T) {
	bus := NewBus()
	require.NoError(t, bus.Subscribe(func(*UsageEvent) { panic("boom") }))

	assert.NotPanics(t, func() {
		_ = bus.Emit(context.Background(), usage.SourceID, usage.EventID, usage.Metadata{Bucket: "Standard", Cost: 1})
	})
}

func TestBus_EmitInvalid(t *testing.T) {
	bus := NewBus()
	err := bus.Emit(context.Background(), usage.SourceID, usage.EventID, usage.Metadata{Cost: 3})
	assert.Error(t, err)
	assert.Nil(t, bus.Last())
}

func TestBus_ImplementsSink(t *testing.T) {
	var _ usage.Sink = NewBus()
}

func TestCostFilter(t *testing.T) {
	tests := []struct {
		comparison Comparison
		value      float64
		meta       map[string]any
		want       bool
	}{
		{ComparisonIs, 5, map[string]any{"cost": 5}, true},
		{ComparisonIs, 5, map[string]any{"cost": 6}, false},
		{ComparisonIsNot, 5, map[string]any{"cost": 6}, true},
		{ComparisonLessThan, 10, map[string]any{"cost": 9.5}, true},
		{ComparisonLessThanOrEqual, 10, map[string]any{"cost": 10}, true},
		{ComparisonGreaterThan, 10, map[string]any{"cost": 10}, false},
		{ComparisonGreaterThanOrEqual, 10, map[string]any{"cost": int64(10)}, true},
		{ComparisonIs, 0, map[string]any{}, true},
		{ComparisonIs, 0, map[string]any{"cost": math.NaN()}, true},
		{ComparisonIs, 0, map[string]any{"cost": "not a number"}, true},
		{ComparisonIs, 7, map[string]any{"cost": "7"}, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.comparison), func(t *testing.T) {
			f, err := NewCostFilter(tt.comparison, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Matches(tt.meta))
		})
	}

	_, err := NewCostFilter("contains", 1)
	assert.Error(t, err)
}

func TestPricingTierFilter(t *testing.T) {
	tests := []struct {
		name       string
		comparison Comparison
		value      string
		bucket     any
		want       bool
	}{
		{"Is match", ComparisonIs, "Wavenet", "Wavenet", true},
		{"Is mismatch", ComparisonIs, "Wavenet", "Standard", false},
		{"Is not", ComparisonIsNot, "Wavenet", "Standard", true},
		{"Journey matches Chirp", ComparisonIs, "Journey", "Chirp", true},
		{"Is not Journey excludes Chirp", ComparisonIsNot, "Journey", "Chirp", false},
		{"Missing bucket", ComparisonIs, "Unknown", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewPricingTierFilter(tt.comparison, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Matches(map[string]any{"bucket": tt.bucket}))
		})
	}

	_, err := NewPricingTierFilter(ComparisonLessThan, "Chirp")
	assert.Error(t, err)
}

func TestMatchesAll(t *testing.T) {
	cost, _ := NewCostFilter(ComparisonGreaterThan, 10)
	tier, _ := NewPricingTierFilter(ComparisonIs, "Chirp")
	meta := NewUsageEvent(usage.SourceID, usage.EventID, usage.Metadata{Bucket: "Chirp", Cost: 20}).Metadata()

	assert.True(t, MatchesAll(meta, cost, tier))
	assert.True(t, MatchesAll(meta))

	meta["cost"] = 5
	assert.False(t, MatchesAll(meta, cost, tier))
}

func TestPricingTierPresets(t *testing.T) {
	presets := PricingTierPresets()
	require.NotEmpty(t, presets)
	assert.Contains(t, presets, PresetValue{Value: "Studio", Display: "Casual, News, or Studio"})
	assert.Contains(t, presets, PresetValue{Value: "Wavenet", Display: "WaveNet"})
}

func TestEvaluateUsageVariable(t *testing.T) {
	event := NewUsageEvent(usage.SourceID, usage.EventID, usage.Metadata{Bucket: "Neural", Cost: 33})
	eventTrigger := TriggerFor(event)
	manualTrigger := Trigger{Metadata: map[string]any{"cost": 4, "bucket": "Standard"}}
	emptyTrigger := Trigger{}

	assert.Equal(t, 33, EvaluateUsageVariable(eventTrigger, "cost"))
	assert.Equal(t, "Neural", EvaluateUsageVariable(eventTrigger, "TIER"))
	assert.Equal(t, UsageSummary{Cost: 33, Tier: "Neural"}, EvaluateUsageVariable(eventTrigger))

	assert.Equal(t, 4, EvaluateUsageVariable(manualTrigger, "cost"))
	assert.Equal(t, "Standard", EvaluateUsageVariable(manualTrigger, "tier"))

	assert.Equal(t, 0, EvaluateUsageVariable(emptyTrigger, "cost"))
	assert.Equal(t, "unknown", EvaluateUsageVariable(emptyTrigger, "tier"))
	assert.Equal(t, UsageSummary{Cost: 0, Tier: "unknown"}, EvaluateUsageVariable(emptyTrigger, "other"))
	assert.Equal(t, UsageSummary{Cost: 0, Tier: "unknown"}, EvaluateUsageVariable(TriggerFor(nil)))
}
