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

package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/api"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/events"
)

type usageFilters struct {
	tier           string
	tierComparison string
	cost           float64
	costComparison string
	since          time.Duration
}

func (f *usageFilters) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tier, "tier", "", "Pricing tier key, e.g. Wavenet or Chirp")
	cmd.Flags().StringVar(&f.tierComparison, "tier-comparison", string(events.ComparisonIs), "is or is not")
	cmd.Flags().Float64Var(&f.cost, "cost", 0, "Cost to compare against")
	cmd.Flags().StringVar(&f.costComparison, "cost-comparison", string(events.ComparisonIs), "Cost comparison, e.g. \"greater than\"")
	cmd.Flags().DurationVar(&f.since, "since", 0, "Only include events newer than this, e.g. 24h")
}

func (f *usageFilters) query(cmd *cobra.Command) url.Values {
	query := url.Values{}
	if f.tier != "" {
		query.Set("tier", f.tier)
		query.Set("tier_comparison", f.tierComparison)
	}
	if cmd.Flags().Changed("cost") {
		query.Set("cost", strconv.FormatFloat(f.cost, 'f', -1, 64))
		query.Set("cost_comparison", f.costComparison)
	}
	if f.since > 0 {
		query.Set("start_time", time.Now().Add(-f.since).UTC().Format(time.RFC3339))
	}
	return query
}

func newUsageCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Report billed usage from the usage ledger",
	}
	cmd.AddCommand(newUsageListCmd(opts), newUsageSummaryCmd(opts))
	return cmd
}

func newUsageListCmd(opts *options) *cobra.Command {
	var (
		filters  usageFilters
		page     int
		pageSize int
		sortBy   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded usage events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := filters.query(cmd)
			query.Set("page", strconv.Itoa(page))
			query.Set("page_size", strconv.Itoa(pageSize))
			query.Set("sort_by", sortBy)

			var result api.ListUsageResponse
			if err := newHostClient(opts.hostURL).do(http.MethodGet, "/api/usage", query, nil, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return writeJSONOutput(out, result)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tTIER\tCOST\tID")
			for _, e := range result.Events {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Bucket, e.Cost, e.UUID)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("error flushing output: %w", err)
			}
			fmt.Fprintf(out, "\nPage %d of %d (%d events)\n", result.Page, result.TotalPages, result.Total)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Events per page")
	cmd.Flags().StringVar(&sortBy, "sort-by", "timestamp", "timestamp or cost")
	return cmd
}

func newUsageSummaryCmd(opts *options) *cobra.Command {
	var filters usageFilters

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total billed usage per pricing tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var result api.SummaryResponse
			if err := newHostClient(opts.hostURL).do(http.MethodGet, "/api/usage/summary", filters.query(cmd), nil, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return writeJSONOutput(out, result)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIER\tEVENTS\tUNITS")
			for _, b := range result.Buckets {
				fmt.Fprintf(w, "%s\t%d\t%d\n", b.DisplayName, b.Events, b.TotalCost)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("error flushing output: %w", err)
			}
			fmt.Fprintf(out, "\nTotal: %d units\n", result.TotalCost)
			return nil
		},
	}

	filters.register(cmd)
	return cmd
}
