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
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/security"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/voices"
)

// Event source and event ids under which usage is reported
const (
	SourceID = "google-cloud-tts"
	EventID  = "usage"
)

// Metadata is the payload of a usage event
type Metadata struct {
	Bucket string `json:"bucket"`
	Cost   int    `json:"cost"`
}

// Sink receives usage events
type Sink interface {
	Emit(ctx context.Context, sourceID, eventID string, meta Metadata) error
}

// Usage is the billing outcome of one synthesis
type Usage struct {
	CostUnits   int
	PricingTier string // Display bucket, e.g. "WaveNet"
	Bucket      string // Category key, e.g. "Wavenet"
}

// ComputeUsage returns the units the provider bills for text on voiceName.
// Byte-billed tiers count UTF-8 bytes, the rest count characters.
func ComputeUsage(text, voiceName string) Usage {
	category := voices.GetVoiceCategory(voiceName)
	u := Usage{PricingTier: category.Bucket, Bucket: category.Key}

	if category.CountBytes {
		u.CostUnits = len(text)
	} else {
		u.CostUnits = utf8.RuneCountInString(text)
	}
	return u
}

// Accountant computes usage for finished syntheses and reports non-zero cost
type Accountant struct {
	sink Sink
}

// NewAccountant creates an accountant reporting to sink. A nil sink disables reporting.
func NewAccountant(sink Sink) *Accountant {
	return &Accountant{sink: sink}
}

// Report computes usage for text on voiceName. Cost is zero when the text was
// never billed. An event is emitted only when cost is positive.
func (a *Accountant) Report(ctx context.Context, text, voiceName string, billed bool) Usage {
	u := ComputeUsage(text, voiceName)
	if !billed {
		u.CostUnits = 0
	}
	if u.CostUnits <= 0 || a.sink == nil {
		return u
	}

	meta := Metadata{Bucket: u.Bucket, Cost: u.CostUnits}
	if err := a.sink.Emit(ctx, SourceID, EventID, meta); err != nil {
		logging.LogError(err, "Failed to emit usage event",
			zap.String("voice", security.SanitizeLogInput(voiceName)),
			zap.String("bucket", u.Bucket),
		)
		return u
	}

	logging.LogUsageEvent(u.Bucket, u.CostUnits, zap.String("pricing_tier", u.PricingTier))
	return u
}
