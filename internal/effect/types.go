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

package effect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/playback"
)

const (
	// DefaultVolume is used when the request leaves the volume slider unset
	DefaultVolume = 10

	// EffectID is the identifier the host registers this effect under
	EffectID = "heyaapl:google-cloud-tts"

	// EmptyTextMessage is shown by the effect editor when no text was entered
	EmptyTextMessage = "Please input some text."
)

var (
	ErrEmptyText    = errors.New("effect text is empty")
	ErrUnknownVoice = errors.New("no known voice could be resolved")
)

// PersistenceError reports a failed write or delete of the temp audio file
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s audio file %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StopOnError selects how a failure affects the containing effect list
type StopOnError string

const (
	StopOnErrorNone       StopOnError = "none"
	StopOnErrorStop       StopOnError = "stop"
	StopOnErrorBubble     StopOnError = "bubble"
	StopOnErrorBubbleStop StopOnError = "bubble-stop"
)

// ParseStopOnError accepts the canonical names plus "bubble+stop". Anything
// else, including "", is StopOnErrorNone.
func ParseStopOnError(s string) StopOnError {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stop":
		return StopOnErrorStop
	case "bubble":
		return StopOnErrorBubble
	case "bubble-stop", "bubble+stop", "bubblestop":
		return StopOnErrorBubbleStop
	default:
		return StopOnErrorNone
	}
}

// UnmarshalText accepts every spelling ParseStopOnError does, so JSON
// requests carrying "bubble+stop" decode to StopOnErrorBubbleStop
func (s *StopOnError) UnmarshalText(text []byte) error {
	*s = ParseStopOnError(string(text))
	return nil
}

// Request is one effect invocation
type Request struct {
	Text              string                `json:"text"`
	VoiceName         string                `json:"voiceName"`
	BackupVoice       string                `json:"backupVoice,omitempty"`
	Pitch             *float64              `json:"pitch,omitempty"`
	SpeakingRate      *float64              `json:"speakingRate,omitempty"`
	Volume            int                   `json:"volume,omitempty"`
	AudioOutputDevice playback.OutputDevice `json:"audioOutputDevice"`
	OverlayInstance   string                `json:"overlayInstance,omitempty"`
	StopOnError       StopOnError           `json:"stopOnError,omitempty"`
	// WaitComplete defaults to true when omitted
	WaitComplete *bool `json:"waitComplete,omitempty"`
}

// Validate returns the user-facing validation errors for r
func (r Request) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Text) == "" {
		errs = append(errs, EmptyTextMessage)
	}
	return errs
}

// Waits reports whether the effect blocks until playback has finished
func (r Request) Waits() bool {
	return r.WaitComplete == nil || *r.WaitComplete
}

// ControlDecision tells the host effect runner whether to keep going
type ControlDecision struct {
	Stop       bool `json:"stop"`
	BubbleStop bool `json:"bubbleStop"`
}

// Decide derives the control decision. A succeeded effect never stops anything.
func Decide(succeeded bool, stopOnError StopOnError) ControlDecision {
	if succeeded {
		return ControlDecision{}
	}
	return ControlDecision{
		Stop:       stopOnError == StopOnErrorStop || stopOnError == StopOnErrorBubbleStop,
		BubbleStop: stopOnError == StopOnErrorBubble || stopOnError == StopOnErrorBubbleStop,
	}
}

// Outcome is the result of one effect run
type Outcome struct {
	Succeeded            bool
	Billed               bool
	AudioDurationSeconds float64
	CostUnits            int
	PricingTier          string
	ResolvedVoiceName    string
	Route                playback.Route
	Control              ControlDecision
	Err                  error
}

// Outputs are the named values published to the host
type Outputs struct {
	AudioDurationSeconds float64 `json:"audioDurationSeconds"`
	CostUnits            int     `json:"costUnits"`
	PricingTier          string  `json:"pricingTier"`
	Succeeded            bool    `json:"succeeded"`
	Billed               bool    `json:"billed"`
	ResolvedVoiceName    string  `json:"resolvedVoiceName"`
}

// Result is the host-facing effect result
type Result struct {
	Success   bool            `json:"success"`
	Execution ControlDecision `json:"execution"`
	Outputs   Outputs         `json:"outputs"`
	Error     string          `json:"error,omitempty"`
}

// Result converts the outcome into the shape the host effect runner consumes
func (o Outcome) Result() Result {
	r := Result{
		Success:   o.Succeeded,
		Execution: o.Control,
		Outputs: Outputs{
			AudioDurationSeconds: o.AudioDurationSeconds,
			CostUnits:            o.CostUnits,
			PricingTier:          o.PricingTier,
			Succeeded:            o.Succeeded,
			Billed:               o.Billed,
			ResolvedVoiceName:    o.ResolvedVoiceName,
		},
	}
	if o.Err != nil {
		r.Error = o.Err.Error()
	}
	return r
}
