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
	"math"
	"strconv"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/voices"
)

// Filter ids
const (
	CostFilterID        = "google-cloud-tts:cost"
	PricingTierFilterID = "google-cloud-tts:pricing-tier"
)

// Comparison is an event filter comparison type
type Comparison string

const (
	ComparisonIs                 Comparison = "is"
	ComparisonIsNot              Comparison = "is not"
	ComparisonLessThan           Comparison = "less than"
	ComparisonLessThanOrEqual    Comparison = "less than or equal to"
	ComparisonGreaterThan        Comparison = "greater than"
	ComparisonGreaterThanOrEqual Comparison = "greater than or equal to"
)

// Filter decides whether an event's metadata passes
type Filter interface {
	ID() string
	Matches(meta map[string]any) bool
}

// CostFilter compares the event's cost against Value
type CostFilter struct {
	Comparison Comparison
	Value      float64
}

// NewCostFilter validates the comparison type
func NewCostFilter(comparison Comparison, value float64) (*CostFilter, error) {
	switch comparison {
	case ComparisonIs, ComparisonIsNot, ComparisonLessThan, ComparisonLessThanOrEqual,
		ComparisonGreaterThan, ComparisonGreaterThanOrEqual:
		return &CostFilter{Comparison: comparison, Value: value}, nil
	}
	return nil, fmt.Errorf("unsupported comparison %q for %s", comparison, CostFilterID)
}

func (f *CostFilter) ID() string { return CostFilterID }

// Matches treats a missing or non-numeric cost as 0
func (f *CostFilter) Matches(meta map[string]any) bool {
	cost := numericValue(meta["cost"])
	switch f.Comparison {
	case ComparisonIs:
		return cost == f.Value
	case ComparisonIsNot:
		return cost != f.Value
	case ComparisonLessThan:
		return cost < f.Value
	case ComparisonLessThanOrEqual:
		return cost <= f.Value
	case ComparisonGreaterThan:
		return cost > f.Value
	case ComparisonGreaterThanOrEqual:
		return cost >= f.Value
	}
	return false
}

// PricingTierFilter compares the event's bucket key against Value
type PricingTierFilter struct {
	Comparison Comparison
	Value      string
}

// NewPricingTierFilter validates the comparison type. Legacy bucket names are
// rewritten to their current key.
func NewPricingTierFilter(comparison Comparison, value string) (*PricingTierFilter, error) {
	if comparison != ComparisonIs && comparison != ComparisonIsNot {
		return nil, fmt.Errorf("unsupported comparison %q for %s", comparison, PricingTierFilterID)
	}
	return &PricingTierFilter{Comparison: comparison, Value: voices.CanonicalKey(value)}, nil
}

func (f *PricingTierFilter) ID() string { return PricingTierFilterID }

func (f *PricingTierFilter) Matches(meta map[string]any) bool {
	bucket, _ := meta["bucket"].(string)
	value := voices.CanonicalKey(f.Value)
	switch f.Comparison {
	case ComparisonIs:
		return bucket == value
	case ComparisonIsNot:
		return bucket != value
	}
	return false
}

// PresetValue is one selectable pricing tier
type PresetValue struct {
	Value   string `json:"value"`
	Display string `json:"display"`
}

// PricingTierPresets lists the tiers offered by the pricing tier filter
func PricingTierPresets() []PresetValue {
	presets := make([]PresetValue, 0, len(voices.Categories))
	for _, c := range voices.Categories {
		presets = append(presets, PresetValue{Value: c.Key, Display: c.DisplayName})
	}
	return presets
}

// MatchesAll reports whether meta passes every filter
func MatchesAll(meta map[string]any, filters ...Filter) bool {
	for _, f := range filters {
		if !f.Matches(meta) {
			return false
		}
	}
	return true
}

func numericValue(v any) float64 {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case float32:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
