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
	"fmt"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/usage"
)

// Topic returns the bus topic for an event source and event id
func Topic(sourceID, eventID string) string {
	return sourceID + ":" + eventID
}

// UsageTopic is the topic usage events are published on
var UsageTopic = Topic(usage.SourceID, usage.EventID)

// UsageHandler consumes usage events
type UsageHandler func(event *UsageEvent)

// Bus fans usage events out to in-process subscribers. It implements usage.Sink.
type Bus struct {
	bus evbus.Bus

	mu   sync.RWMutex
	last *UsageEvent
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{bus: evbus.New()}
}

// Emit publishes a usage event for the given source and event id
func (b *Bus) Emit(ctx context.Context, sourceID, eventID string, meta usage.Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event := NewUsageEvent(sourceID, eventID, meta)
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid usage event: %w", err)
	}

	b.mu.Lock()
	b.last = event
	b.mu.Unlock()

	b.bus.Publish(Topic(sourceID, eventID), event)
	logging.LogUsageEvent(event.Bucket, event.Cost, zap.String("uuid", event.UUID), zap.String("action", "published"))
	return nil
}

// Subscribe registers a handler run synchronously on the publishing goroutine
func (b *Bus) Subscribe(handler UsageHandler) error {
	if err := b.bus.Subscribe(UsageTopic, b.guard(handler)); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", UsageTopic, err)
	}
	return nil
}

// SubscribeAsync registers a handler run on its own goroutine. Events for one
// handler are delivered in order.
func (b *Bus) SubscribeAsync(handler UsageHandler) error {
	if err := b.bus.SubscribeAsync(UsageTopic, b.guard(handler), true); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", UsageTopic, err)
	}
	return nil
}

// guard keeps a panicking subscriber from taking down the publisher
func (b *Bus) guard(handler UsageHandler) func(*UsageEvent) {
	return func(event *UsageEvent) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.LogError(fmt.Errorf("panic: %v", rec), "Usage event handler panicked",
					zap.String("uuid", event.UUID))
			}
		}()
		handler(event)
	}
}

// Last returns the most recently emitted usage event, or nil
func (b *Bus) Last() *UsageEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

// Wait blocks until asynchronous handlers have drained
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}
