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
	"strings"

	"github.com/spf13/cobra"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/effect"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/playback"
)

func newSpeakCmd(opts *options) *cobra.Command {
	var (
		voice       string
		backupVoice string
		pitch       float64
		rate        float64
		volume      int
		device      string
		overlay     string
		stopOnError string
		noWait      bool
	)

	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Trigger the text-to-speech effect on the host",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wait := !noWait
			req := effect.Request{
				Text:              strings.Join(args, " "),
				VoiceName:         voice,
				BackupVoice:       backupVoice,
				Volume:            volume,
				AudioOutputDevice: playback.OutputDevice{Label: device},
				OverlayInstance:   overlay,
				StopOnError:       effect.ParseStopOnError(stopOnError),
				WaitComplete:      &wait,
			}
			if device == playback.OverlayDeviceID {
				req.AudioOutputDevice = playback.OutputDevice{DeviceID: playback.OverlayDeviceID, Label: "Overlay"}
			}
			if cmd.Flags().Changed("pitch") {
				req.Pitch = &pitch
			}
			if cmd.Flags().Changed("rate") {
				req.SpeakingRate = &rate
			}

			var result effect.Result
			if err := newHostClient(opts.hostURL).do(http.MethodPost, "/api/effects/google-tts", nil, req, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return writeJSONOutput(out, result)
			}

			fmt.Fprintf(out, "Succeeded: %s\n", formatBool(result.Outputs.Succeeded))
			fmt.Fprintf(out, "Voice:     %s\n", result.Outputs.ResolvedVoiceName)
			fmt.Fprintf(out, "Duration:  %.2fs\n", result.Outputs.AudioDurationSeconds)
			fmt.Fprintf(out, "Cost:      %d (%s)\n", result.Outputs.CostUnits, result.Outputs.PricingTier)
			if result.Error != "" {
				fmt.Fprintf(out, "Error:     %s\n", result.Error)
			}
			if !result.Outputs.Succeeded {
				return fmt.Errorf("effect failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&voice, "voice", "en-US-Wavenet-A", "Voice name")
	cmd.Flags().StringVar(&backupVoice, "backup-voice", "", "Voice used when --voice is unknown")
	cmd.Flags().Float64Var(&pitch, "pitch", 0, "Pitch in semitones, -20 to 20")
	cmd.Flags().Float64Var(&rate, "rate", 1, "Speaking rate, 0.25 to 4")
	cmd.Flags().IntVar(&volume, "volume", effect.DefaultVolume, "Playback volume, 1 to 10")
	cmd.Flags().StringVar(&device, "device", "", `Output device label, or "overlay"`)
	cmd.Flags().StringVar(&overlay, "overlay-instance", "", "Overlay instance when --device=overlay")
	cmd.Flags().StringVar(&stopOnError, "stop-on-error", "none", "none, stop, bubble or bubble-stop")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return as soon as playback starts")
	return cmd
}
