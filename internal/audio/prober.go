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

package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always decodes to 16-bit stereo
const bytesPerSampleFrame = 4

var (
	ErrUnsupportedFormat = errors.New("audio: unsupported format")
	ErrUnknownLength     = errors.New("audio: stream length is unknown")
)

// DurationProber reports the playback length of an audio file
type DurationProber interface {
	Probe(ctx context.Context, path, format string) (time.Duration, error)
}

// MP3Prober reads MP3 frame headers to compute duration
type MP3Prober struct {
	timeout time.Duration
}

// NewMP3Prober creates a prober. A zero timeout relies on the caller's context only.
func NewMP3Prober(timeout time.Duration) *MP3Prober {
	return &MP3Prober{timeout: timeout}
}

type probeResult struct {
	duration time.Duration
	err      error
}

// Probe returns the duration of the file at path
func (p *MP3Prober) Probe(ctx context.Context, path, format string) (time.Duration, error) {
	if format != "" && !strings.EqualFold(format, "mp3") {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	done := make(chan probeResult, 1)
	go func() {
		d, err := mp3Duration(path)
		done <- probeResult{duration: d, err: err}
	}()

	select {
	case r := <-done:
		return r.duration, r.err
	case <-ctx.Done():
		return 0, fmt.Errorf("duration probe for %s: %w", path, ctx.Err())
	}
}

func mp3Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	length := decoder.Length()
	rate := decoder.SampleRate()
	if length <= 0 || rate <= 0 {
		return 0, ErrUnknownLength
	}

	frames := length / bytesPerSampleFrame
	return time.Duration(frames) * time.Second / time.Duration(rate), nil
}
