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

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/events"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/security"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// LastEventSource returns the most recent usage event, or nil
type LastEventSource interface {
	Last() *events.UsageEvent
}

// UsageHandler serves the usage ledger and the googleTtsUsage variable
type UsageHandler struct {
	store *storage.UsageEventsStore
	last  LastEventSource
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(store *storage.UsageEventsStore, last LastEventSource) *UsageHandler {
	return &UsageHandler{store: store, last: last}
}

// ListUsageResponse is the response of GET /api/usage
type ListUsageResponse struct {
	Events     []*events.UsageEvent `json:"events"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// SummaryResponse is the response of GET /api/usage/summary
type SummaryResponse struct {
	Buckets   []storage.BucketSummary `json:"buckets"`
	TotalCost int64                   `json:"total_cost"`
}

// HandleUsage handles GET /api/usage
func (h *UsageHandler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	page := parseIntParam(query.Get("page"), 1)
	pageSize := parseIntParam(query.Get("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	options, err := parseListOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	options.Limit = pageSize
	options.Offset = (page - 1) * pageSize
	options.SortBy = strings.ToLower(query.Get("sort_by"))
	options.SortOrder = query.Get("sort_order")

	total, err := h.store.Count(r.Context(), options)
	if err != nil {
		logging.LogError(err, "Failed to count usage events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	list, err := h.store.List(r.Context(), options)
	if err != nil {
		logging.LogError(err, "Failed to list usage events")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if list == nil {
		list = []*events.UsageEvent{}
	}

	writeJSON(w, http.StatusOK, ListUsageResponse{
		Events:     list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	})
}

// HandleUsageByID handles GET /api/usage/{id}
func (h *UsageHandler) HandleUsageByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	if err := security.ValidateResourceToken(id); err != nil {
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}

	event, err := h.store.GetByUUID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Usage event not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.LogError(err, "Failed to get usage event", zap.String("uuid", id))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// HandleUsageSummary handles GET /api/usage/summary
func (h *UsageHandler) HandleUsageSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	options, err := parseListOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	buckets, err := h.store.SummaryByBucket(r.Context(), options)
	if err != nil {
		logging.LogError(err, "Failed to summarize usage events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := SummaryResponse{Buckets: buckets}
	if response.Buckets == nil {
		response.Buckets = []storage.BucketSummary{}
	}
	for _, b := range buckets {
		response.TotalCost += b.TotalCost
	}
	writeJSON(w, http.StatusOK, response)
}

// HandleUsageVariable handles GET /api/usage/variable?arg=cost|tier and
// evaluates googleTtsUsage against the latest usage event
func (h *UsageHandler) HandleUsageVariable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var trigger events.Trigger
	if h.last != nil {
		trigger = events.TriggerFor(h.last.Last())
	}

	var args []string
	if arg := r.URL.Query().Get("arg"); arg != "" {
		args = append(args, arg)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"handle": events.UsageVariableHandle,
		"value":  events.EvaluateUsageVariable(trigger, args...),
	})
}

// parseListOptions reads the pricing tier, cost and time filters shared by
// the list and summary endpoints
func parseListOptions(r *http.Request) (storage.ListOptions, error) {
	query := r.URL.Query()
	var options storage.ListOptions

	if tier := query.Get("tier"); tier != "" {
		comparison := events.Comparison(query.Get("tier_comparison"))
		if comparison == "" {
			comparison = events.ComparisonIs
		}
		if _, err := events.NewPricingTierFilter(comparison, tier); err != nil {
			return options, err
		}
		options.Bucket = tier
		options.BucketComparison = comparison
	}

	if costStr := query.Get("cost"); costStr != "" {
		cost, err := strconv.ParseFloat(costStr, 64)
		if err != nil {
			return options, errors.New("cost must be a number")
		}
		comparison := events.Comparison(query.Get("cost_comparison"))
		if comparison == "" {
			comparison = events.ComparisonIs
		}
		if _, err := events.NewCostFilter(comparison, cost); err != nil {
			return options, err
		}
		options.Cost = &cost
		options.CostComparison = comparison
	}

	if startTimeStr := query.Get("start_time"); startTimeStr != "" {
		startTime, err := time.Parse(time.RFC3339, startTimeStr)
		if err != nil {
			return options, errors.New("start_time must be RFC3339")
		}
		options.StartTime = &startTime
	}
	if endTimeStr := query.Get("end_time"); endTimeStr != "" {
		endTime, err := time.Parse(time.RFC3339, endTimeStr)
		if err != nil {
			return options, errors.New("end_time must be RFC3339")
		}
		options.EndTime = &endTime
	}

	if sortBy := strings.ToLower(query.Get("sort_by")); sortBy != "" && sortBy != "timestamp" && sortBy != "cost" {
		return options, errors.New("sort_by must be timestamp or cost")
	}
	return options, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.LogError(err, "Failed to encode response")
	}
}

// parseIntParam parses integer parameter with default value
func parseIntParam(param string, defaultValue int) int {
	if param == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(param); err == nil {
		return value
	}
	return defaultValue
}
