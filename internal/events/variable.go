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

import "strings"

// UsageVariableHandle is the replace variable name
const UsageVariableHandle = "googleTtsUsage"

// Trigger is the metadata a replace variable is evaluated against. Event
// triggers carry the event metadata under "eventData"; manual triggers put
// it at the top level.
type Trigger struct {
	Metadata map[string]any `json:"metadata"`
}

// TriggerFor wraps an event as an event trigger
func TriggerFor(event *UsageEvent) Trigger {
	if event == nil {
		return Trigger{}
	}
	return Trigger{Metadata: map[string]any{"eventData": event.Metadata()}}
}

// UsageSummary is the object form of the variable
type UsageSummary struct {
	Cost any `json:"cost"`
	Tier any `json:"tier"`
}

// EvaluateUsageVariable resolves googleTtsUsage[cost], googleTtsUsage[tier]
// and the bare googleTtsUsage object.
func EvaluateUsageVariable(trigger Trigger, args ...string) any {
	cost := lookup(trigger, "cost", 0)
	tier := lookup(trigger, "bucket", "unknown")

	if len(args) > 0 && args[0] != "" {
		switch strings.ToLower(args[0]) {
		case "cost":
			return cost
		case "tier":
			return tier
		}
	}
	return UsageSummary{Cost: cost, Tier: tier}
}

func lookup(trigger Trigger, key string, fallback any) any {
	if eventData, ok := trigger.Metadata["eventData"].(map[string]any); ok {
		if v, ok := eventData[key]; ok && v != nil {
			return v
		}
	}
	if v, ok := trigger.Metadata[key]; ok && v != nil {
		return v
	}
	return fallback
}
