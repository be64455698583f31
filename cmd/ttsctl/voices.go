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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/api"
)

func newVoicesCmd(opts *options) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List the voices the effect can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := newHostClient(opts.hostURL)

			query := url.Values{}
			if language != "" {
				query.Set("language", language)
			}

			var result api.VoicesResponse
			if err := client.do(http.MethodGet, "/api/voices", query, nil, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return writeJSONOutput(out, result.Voices)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLANGUAGE\tCODE\tGENDER\tTIER")
			for _, v := range result.Voices {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.Name, v.Language, v.LanguageCode, v.Gender, v.PricingTier)
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("error flushing output: %w", err)
			}
			fmt.Fprintf(out, "\nTotal: %d voices\n", len(result.Voices))
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "Only list voices for this language code, e.g. en-US")
	return cmd
}
