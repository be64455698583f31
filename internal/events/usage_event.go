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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/usage"
)

// UsageEvent is one billed synthesis as seen by event listeners and the ledger
type UsageEvent struct {
	UUID      string    `json:"uuid" db:"uuid"`
	SourceID  string    `json:"source_id" db:"source_id"`
	EventID   string    `json:"event_id" db:"event_id"`
	Bucket    string    `json:"bucket" db:"bucket"`
	Cost      int       `json:"cost" db:"cost"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// NewUsageEvent creates an event with a fresh UUID and the current time
func NewUsageEvent(sourceID, eventID string, meta usage.Metadata) *UsageEvent {
	return &UsageEvent{
		UUID:      uuid.NewString(),
		SourceID:  sourceID,
		EventID:   eventID,
		Bucket:    meta.Bucket,
		Cost:      meta.Cost,
		Timestamp: time.Now(),
	}
}

// Metadata returns the event metadata as seen by filters and variables
func (e *UsageEvent) Metadata() map[string]any {
	return map[string]any{
		"bucket": e.Bucket,
		"cost":   e.Cost,
	}
}

// IsValid performs basic validation on the usage event
func (e *UsageEvent) IsValid() error {
	if e.UUID == "" {
		return fmt.Errorf("UUID is required")
	}
	if e.SourceID == "" || e.EventID == "" {
		return fmt.Errorf("source and event ids are required")
	}
	if e.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if e.Cost < 0 {
		return fmt.Errorf("cost cannot be negative")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

func (e *UsageEvent) String() string {
	return fmt.Sprintf("UsageEvent{UUID: %s, Source: %s:%s, Bucket: %s, Cost: %d}",
		e.UUID, e.SourceID, e.EventID, e.Bucket, e.Cost)
}
