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

	"github.com/spf13/cobra"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/api"
)

func newKeyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Google Cloud API key held by the host",
	}

	report := func(cmd *cobra.Command, method string, body any) error {
		var status api.ParametersStatus
		if err := newHostClient(opts.hostURL).do(method, "/api/parameters", nil, body, &status); err != nil {
			return err
		}
		if opts.format == "json" {
			return writeJSONOutput(cmd.OutOrStdout(), status)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "API key configured: %s\n", formatBool(status.APIKeyConfigured))
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether an API key is configured",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return report(cmd, http.MethodGet, nil)
			},
		},
		&cobra.Command{
			Use:   "set <api-key>",
			Short: "Replace the API key used for new effects",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return report(cmd, http.MethodPut, api.Parameters{GoogleCloudAPIKey: &args[0]})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the API key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return report(cmd, http.MethodDelete, nil)
			},
		},
	)
	return cmd
}
