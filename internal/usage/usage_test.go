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

package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	sourceID string
	eventID  string
	meta     Metadata
}

type fakeSink struct {
	events []emitted
	err    error
}

func (s *fakeSink) Emit(_ context.Context, sourceID, eventID string, meta Metadata) error {
	s.events = append(s.events, emitted{sourceID, eventID, meta})
	return s.err
}

func TestComputeUsage(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		voice      string
		wantCost   int
		wantTier   string
		wantBucket string
	}{
		{"Empty text", "", "en-US-Wavenet-C", 0, "WaveNet", "Wavenet"},
		{"Character billed", "hello", "en-US-Wavenet-C", 5, "WaveNet", "Wavenet"},
		{"Multibyte characters", "héllo", "en-US-Standard-A", 5, "Standard", "Standard"},
		{"Byte billed Studio", "héllo", "en-US-Studio-O", 6, "Studio", "Studio"},
		{"Byte billed Chirp", "日本", "ja-JP-Chirp3-HD-Aoede", 6, "Chirp", "Chirp"},
		{"Journey billed as Chirp", "hi", "en-US-Journey-D", 2, "Chirp", "Chirp"},
		{"Unknown voice", "hello", "mystery", 5, "Unknown", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := ComputeUsage(tt.text, tt.voice)
			assert.Equal(t, tt.wantCost, u.CostUnits)
			assert.Equal(t, tt.wantTier, u.PricingTier)
			assert.Equal(t, tt.wantBucket, u.Bucket)
		})
	}
}

func TestAccountant_Report(t *testing.T) {
	sink := &fakeSink{}
	a := NewAccountant(sink)

	u := a.Report(context.Background(), "hello", "en-US-Wavenet-C", true)
	assert.Equal(t, 5, u.CostUnits)
	require.Len(t, sink.events, 1)
	assert.Equal(t, SourceID, sink.events[0].sourceID)
	assert.Equal(t, EventID, sink.events[0].eventID)
	assert.Equal(t, Metadata{Bucket: "Wavenet", Cost: 5}, sink.events[0].meta)
}

func TestAccountant_Report_NotBilled(t *testing.T) {
	sink := &fakeSink{}
	a := NewAccountant(sink)

	u := a.Report(context.Background(), "hello", "en-US-Wavenet-C", false)
	assert.Equal(t, 0, u.CostUnits)
	assert.Equal(t, "WaveNet", u.PricingTier)
	assert.Empty(t, sink.events, "zero cost must not emit")
}

func TestAccountant_Report_EmptyText(t *testing.T) {
	sink := &fakeSink{}
	u := NewAccountant(sink).Report(context.Background(), "", "en-US-Wavenet-C", true)
	assert.Equal(t, 0, u.CostUnits)
	assert.Empty(t, sink.events)
}

func TestAccountant_Report_SinkError(t *testing.T) {
	sink := &fakeSink{err: errors.New("bus closed")}
	u := NewAccountant(sink).Report(context.Background(), "hey", "en-US-Neural2-A", true)
	assert.Equal(t, 3, u.CostUnits)
	assert.Len(t, sink.events, 1)
}

func TestAccountant_Report_NilSink(t *testing.T) {
	u := NewAccountant(nil).Report(context.Background(), "hey", "en-US-Neural2-A", true)
	assert.Equal(t, 3, u.CostUnits)
	assert.Equal(t, "Neural2", u.PricingTier)
}
