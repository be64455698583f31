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
	"os"

	"github.com/spf13/cobra"
)

const defaultHostURL = "http://127.0.0.1:7473"

type options struct {
	hostURL string
	format  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ttsctl",
		Short:         "Inspect and drive the Google Cloud TTS effect host",
		SilenceUsage:  true,
		SilenceErrors: false,
		Long: `ttsctl talks to a running Google Cloud TTS effect host over HTTP.

It can trigger the text-to-speech effect, browse the voice catalog,
manage the API key and report billed usage from the usage ledger.`,
	}

	rootCmd.PersistentFlags().StringVar(&opts.hostURL, "host", envOr("TTSCTL_HOST", defaultHostURL), "URL of the effect host")
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "table", "Output format: table or json")

	rootCmd.AddCommand(
		newVoicesCmd(opts),
		newSpeakCmd(opts),
		newUsageCmd(opts),
		newKeyCmd(opts),
	)
	return rootCmd
}

func envOr(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
