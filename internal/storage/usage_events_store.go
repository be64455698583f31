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

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/events"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/voices"
)

// ErrNotFound is returned when no usage event matches
var ErrNotFound = errors.New("usage event not found")

const usageColumns = "uuid, source_id, event_id, bucket, cost, timestamp_ms"

// UsageEventsStore is the usage ledger
type UsageEventsStore struct {
	db *Database
}

// NewUsageEventsStore creates a new usage events store
func NewUsageEventsStore(db *Database) *UsageEventsStore {
	return &UsageEventsStore{db: db}
}

// Insert stores a usage event
func (s *UsageEventsStore) Insert(ctx context.Context, event *events.UsageEvent) error {
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid usage event: %w", err)
	}

	_, err := s.db.DB().ExecContext(ctx,
		"INSERT INTO usage_events ("+usageColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		event.UUID, event.SourceID, event.EventID, event.Bucket, event.Cost, event.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage event: %w", err)
	}

	logging.LogDatabaseOperation("insert", "usage_events",
		zap.String("uuid", event.UUID),
		zap.String("bucket", event.Bucket),
		zap.Int("cost", event.Cost),
	)
	return nil
}

// GetByUUID retrieves a usage event by its UUID
func (s *UsageEventsStore) GetByUUID(ctx context.Context, uuid string) (*events.UsageEvent, error) {
	row := s.db.DB().QueryRowContext(ctx,
		"SELECT "+usageColumns+" FROM usage_events WHERE uuid = ?", uuid)

	event, err := scanUsageEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return event, err
}

// ListOptions defines filtering and pagination options
type ListOptions struct {
	// Pricing tier filter; legacy bucket names are accepted
	Bucket           string
	BucketComparison events.Comparison // is (default) or is not

	// Cost filter, applied when Cost is set
	Cost           *float64
	CostComparison events.Comparison

	StartTime *time.Time
	EndTime   *time.Time

	Limit  int
	Offset int

	SortBy    string // "timestamp" or "cost"
	SortOrder string // "ASC" or "DESC"
}

var costOperators = map[events.Comparison]string{
	events.ComparisonIs:                 "=",
	events.ComparisonIsNot:              "<>",
	events.ComparisonLessThan:           "<",
	events.ComparisonLessThanOrEqual:    "<=",
	events.ComparisonGreaterThan:        ">",
	events.ComparisonGreaterThanOrEqual: ">=",
}

var sortColumns = map[string]string{
	"":          "timestamp_ms",
	"timestamp": "timestamp_ms",
	"cost":      "cost",
}

// buildWhere renders the filter part of a query
func buildWhere(options ListOptions) (string, []any, error) {
	var clauses []string
	var args []any

	if options.Bucket != "" {
		op := "="
		switch options.BucketComparison {
		case "", events.ComparisonIs:
		case events.ComparisonIsNot:
			op = "<>"
		default:
			return "", nil, fmt.Errorf("unsupported pricing tier comparison %q", options.BucketComparison)
		}
		clauses = append(clauses, "bucket "+op+" ?")
		args = append(args, voices.CanonicalKey(options.Bucket))
	}

	if options.Cost != nil {
		comparison := options.CostComparison
		if comparison == "" {
			comparison = events.ComparisonIs
		}
		op, ok := costOperators[comparison]
		if !ok {
			return "", nil, fmt.Errorf("unsupported cost comparison %q", comparison)
		}
		clauses = append(clauses, "cost "+op+" ?")
		args = append(args, *options.Cost)
	}

	if options.StartTime != nil {
		clauses = append(clauses, "timestamp_ms >= ?")
		args = append(args, options.StartTime.UnixMilli())
	}
	if options.EndTime != nil {
		clauses = append(clauses, "timestamp_ms <= ?")
		args = append(args, options.EndTime.UnixMilli())
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// List retrieves usage events with pagination and filtering
func (s *UsageEventsStore) List(ctx context.Context, options ListOptions) ([]*events.UsageEvent, error) {
	where, args, err := buildWhere(options)
	if err != nil {
		return nil, err
	}

	column, ok := sortColumns[options.SortBy]
	if !ok {
		return nil, fmt.Errorf("unsupported sort field %q", options.SortBy)
	}
	order := strings.ToUpper(options.SortOrder)
	if order != "ASC" {
		order = "DESC"
	}

	query := "SELECT " + usageColumns + " FROM usage_events" + where +
		fmt.Sprintf(" ORDER BY %s %s, uuid %s", column, order, order)
	if options.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, options.Limit)
		if options.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, options.Offset)
		}
	}

	rows, err := s.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []*events.UsageEvent
	for rows.Next() {
		event, err := scanUsageEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage event: %w", err)
		}
		list = append(list, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage events: %w", err)
	}
	return list, nil
}

// Count returns the number of usage events matching the filters
func (s *UsageEventsStore) Count(ctx context.Context, options ListOptions) (int64, error) {
	where, args, err := buildWhere(options)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM usage_events"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count usage events: %w", err)
	}
	return count, nil
}

// BucketSummary totals usage for one pricing bucket
type BucketSummary struct {
	Bucket      string `json:"bucket"`
	DisplayName string `json:"display_name"`
	Events      int64  `json:"events"`
	TotalCost   int64  `json:"total_cost"`
}

// SummaryByBucket totals cost per bucket for events matching the filters
func (s *UsageEventsStore) SummaryByBucket(ctx context.Context, options ListOptions) ([]BucketSummary, error) {
	where, args, err := buildWhere(options)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.DB().QueryContext(ctx,
		"SELECT bucket, COUNT(*), COALESCE(SUM(cost), 0) FROM usage_events"+where+
			" GROUP BY bucket ORDER BY bucket", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize usage events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []BucketSummary
	for rows.Next() {
		var sum BucketSummary
		if err := rows.Scan(&sum.Bucket, &sum.Events, &sum.TotalCost); err != nil {
			return nil, fmt.Errorf("failed to scan usage summary: %w", err)
		}
		sum.DisplayName = sum.Bucket
		if category, ok := voices.CategoryByKey(sum.Bucket); ok {
			sum.DisplayName = category.DisplayName
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage summary: %w", err)
	}
	return summaries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUsageEvent(row rowScanner) (*events.UsageEvent, error) {
	var event events.UsageEvent
	var timestampMS int64

	if err := row.Scan(&event.UUID, &event.SourceID, &event.EventID, &event.Bucket, &event.Cost, &timestampMS); err != nil {
		return nil, err
	}
	event.Timestamp = time.UnixMilli(timestampMS)
	return &event, nil
}
