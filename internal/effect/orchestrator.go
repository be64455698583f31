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
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/audio"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/config"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/host"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/playback"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/security"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/tts"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/usage"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/voices"
)

const audioFormat = "mp3"

// CredentialProvider returns the current API key or ""
type CredentialProvider interface {
	APIKey() string
}

// PlaybackRouter delivers a persisted file to its playback target
type PlaybackRouter interface {
	Route(ctx context.Context, job playback.Job) playback.Result
}

// UsageReporter computes and reports billed usage
type UsageReporter interface {
	Report(ctx context.Context, text, voiceName string, billed bool) usage.Usage
}

// TokenRevoker withdraws a resource token once its file is gone
type TokenRevoker interface {
	Revoke(token string)
}

// Observer is notified of synthesis timings and effect outcomes
type Observer interface {
	ObserveSynthesis(elapsed time.Duration, err error)
	ObserveOutcome(outcome Outcome)
}

// Dependencies are the collaborators an Orchestrator runs against. Tokens
// and Observer are optional.
type Dependencies struct {
	Credentials CredentialProvider
	Synthesizer tts.Synthesizer
	FileSystem  host.FileSystem
	Prober      audio.DurationProber
	Router      PlaybackRouter
	Usage       UsageReporter
	Tokens      TokenRevoker
	Observer    Observer
}

// Orchestrator runs the synthesize, persist, play and clean up pipeline
type Orchestrator struct {
	config config.EffectConfig
	deps   Dependencies

	sleep    func(ctx context.Context, d time.Duration) error
	fileName func() string

	// cleanups holds deferred deletions; Close cancels their delay
	mu            sync.Mutex
	closed        bool
	cleanups      sync.WaitGroup
	cleanupCtx    context.Context
	cancelCleanup context.CancelFunc
}

// NewOrchestrator creates an orchestrator. The temp directory in cfg is
// fixed for the orchestrator's lifetime.
func NewOrchestrator(cfg config.EffectConfig, deps Dependencies) (*Orchestrator, error) {
	if cfg.TempDir == "" {
		return nil, fmt.Errorf("temp directory cannot be empty")
	}
	if deps.Credentials == nil || deps.Synthesizer == nil || deps.FileSystem == nil ||
		deps.Prober == nil || deps.Router == nil || deps.Usage == nil {
		return nil, fmt.Errorf("orchestrator dependencies are incomplete")
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		config:        cfg,
		deps:          deps,
		sleep:         sleepContext,
		fileName:      func() string { return "tts" + uuid.NewString() + "." + audioFormat },
		cleanupCtx:    ctx,
		cancelCleanup: cancel,
	}, nil
}

// run carries the state of one invocation through the pipeline
type run struct {
	req      Request
	voice    string
	billed   bool
	filePath string
	token    string
	duration time.Duration
	route    playback.Route
	err      error
}

// Run executes one effect. It never returns an error; failures become a
// failed Outcome.
func (o *Orchestrator) Run(ctx context.Context, req Request) Outcome {
	r := &run{req: req}
	if req.Volume <= 0 {
		r.req.Volume = DefaultVolume
	}

	o.execute(ctx, r)
	return o.finish(ctx, r)
}

func (o *Orchestrator) execute(ctx context.Context, r *run) {
	if r.req.Text == "" {
		r.err = ErrEmptyText
		logging.LogWarn("TTS effect has no text")
		return
	}

	// ResolvingVoice
	voice, err := resolveVoice(r.req.VoiceName, r.req.BackupVoice)
	if err != nil {
		r.err = err
		logging.LogWarn("No usable voice for TTS effect",
			zap.String("voice", security.SanitizeLogInput(r.req.VoiceName)),
			zap.String("backup_voice", security.SanitizeLogInput(r.req.BackupVoice)),
		)
		return
	}
	r.voice = voice

	// Synthesizing
	audioContent, err := o.synthesize(ctx, r)
	if err != nil {
		r.err = err
		return
	}
	r.billed = true

	// Persisting
	if err := o.persist(ctx, r, audioContent); err != nil {
		r.err = err
		return
	}

	// ProbingDuration
	r.duration = o.probe(ctx, r.filePath)

	// Routing
	result := o.deps.Router.Route(ctx, playback.Job{
		FilePath:        r.filePath,
		Format:          audioFormat,
		Volume:          r.req.Volume,
		Device:          r.req.AudioOutputDevice,
		OverlayInstance: r.req.OverlayInstance,
		MaxSoundLength:  r.duration,
	})
	r.route = result.Route
	r.token = result.ResourceToken

	// WaitingForCompletion or FireAndForget
	if !r.req.Waits() {
		o.scheduleCleanup(r.filePath, r.token, r.duration+o.config.CleanupDelay)
		return
	}
	if err := o.sleep(ctx, r.duration+o.config.WaitBuffer); err != nil {
		logging.LogWarn("Wait for TTS playback interrupted, deferring cleanup",
			zap.String("file_path", r.filePath),
			zap.Error(err),
		)
		o.scheduleCleanup(r.filePath, r.token, r.duration+o.config.CleanupDelay)
		return
	}
	o.release(context.WithoutCancel(ctx), r.filePath, r.token)
}

func (o *Orchestrator) finish(ctx context.Context, r *run) Outcome {
	// Usage is reported even when the caller has gone away
	u := o.deps.Usage.Report(context.WithoutCancel(ctx), r.req.Text, r.voice, r.billed)

	succeeded := r.billed && r.duration > 0 && r.err == nil
	outcome := Outcome{
		Succeeded:            succeeded,
		Billed:               r.billed,
		AudioDurationSeconds: r.duration.Seconds(),
		CostUnits:            u.CostUnits,
		PricingTier:          u.PricingTier,
		ResolvedVoiceName:    r.voice,
		Route:                r.route,
		Control:              Decide(succeeded, r.req.StopOnError),
		Err:                  r.err,
	}

	if o.deps.Observer != nil {
		o.deps.Observer.ObserveOutcome(outcome)
	}

	logging.LogTTSOperation("effect_complete",
		zap.Bool("succeeded", outcome.Succeeded),
		zap.Bool("billed", outcome.Billed),
		zap.String("voice", security.SanitizeLogInput(outcome.ResolvedVoiceName)),
		zap.Float64("duration_seconds", outcome.AudioDurationSeconds),
		zap.Int("cost", outcome.CostUnits),
		zap.String("route", string(outcome.Route)),
	)
	return outcome
}

// resolveVoice returns primary when known, else backup when known
func resolveVoice(primary, backup string) (string, error) {
	if voices.IsKnownVoice(primary) {
		return primary, nil
	}
	if backup != "" && voices.IsKnownVoice(backup) {
		logging.LogWarn("Falling back to backup voice",
			zap.String("voice", security.SanitizeLogInput(primary)),
			zap.String("backup_voice", security.SanitizeLogInput(backup)),
		)
		return backup, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVoice, primary)
}

func (o *Orchestrator) synthesize(ctx context.Context, r *run) (string, error) {
	req := tts.SynthesisRequest{
		Text:         r.req.Text,
		VoiceName:    r.voice,
		LanguageCode: voices.GetVoiceLangCode(r.voice),
		Pitch:        r.req.Pitch,
		SpeakingRate: r.req.SpeakingRate,
	}
	if voices.IsChirpVoice(r.voice) {
		req.Pitch = nil
		req.SpeakingRate = nil
	}

	start := time.Now()
	audioContent, err := o.deps.Synthesizer.Synthesize(ctx, req, o.deps.Credentials.APIKey())
	if o.deps.Observer != nil {
		o.deps.Observer.ObserveSynthesis(time.Since(start), err)
	}
	if err != nil {
		fields := []zap.Field{zap.String("voice", security.SanitizeLogInput(r.voice))}
		if pe, ok := tts.AsProviderError(err); ok {
			fields = append(fields,
				zap.Int("status_code", pe.HTTPStatus()),
				zap.String("status", pe.StatusName()),
			)
		}
		logging.LogError(err, "TTS synthesis failed", fields...)
		return "", err
	}
	return audioContent, nil
}

func (o *Orchestrator) persist(ctx context.Context, r *run, audioContent string) error {
	r.filePath = filepath.Join(o.config.TempDir, o.fileName())

	data, err := base64.StdEncoding.DecodeString(audioContent)
	if err != nil {
		return o.persistFailed(r, "decode", err)
	}
	exists, err := o.deps.FileSystem.Exists(ctx, o.config.TempDir)
	if err != nil {
		return o.persistFailed(r, "stat directory for", err)
	}
	if !exists {
		if err := o.deps.FileSystem.MkdirAll(ctx, o.config.TempDir); err != nil {
			return o.persistFailed(r, "create directory for", err)
		}
	}
	if err := o.deps.FileSystem.WriteFile(ctx, r.filePath, data); err != nil {
		// A failed write can leave a truncated file behind
		o.remove(context.WithoutCancel(ctx), r.filePath)
		return o.persistFailed(r, "write", err)
	}
	return nil
}

func (o *Orchestrator) persistFailed(r *run, op string, err error) error {
	perr := &PersistenceError{Op: op, Path: r.filePath, Err: err}
	logging.LogError(perr, "Failed to persist TTS audio",
		zap.String("voice", security.SanitizeLogInput(r.voice)),
		zap.String("file_path", r.filePath),
	)
	r.filePath = ""
	return perr
}

func (o *Orchestrator) probe(ctx context.Context, path string) time.Duration {
	d, err := o.deps.Prober.Probe(ctx, path, audioFormat)
	if err != nil || d <= 0 {
		if err == nil {
			err = errors.New("non-positive duration")
		}
		logging.LogWarn("Duration probe failed, using default",
			zap.String("file_path", path),
			zap.Duration("default", o.config.DefaultDuration),
			zap.Error(err),
		)
		return o.config.DefaultDuration
	}
	return d
}

func (o *Orchestrator) remove(ctx context.Context, path string) {
	if err := o.deps.FileSystem.Remove(ctx, path); err != nil {
		logging.LogError(&PersistenceError{Op: "delete", Path: path, Err: err},
			"Failed to delete TTS audio", zap.String("file_path", path))
	}
}

// release deletes the file and withdraws its overlay token, if any
func (o *Orchestrator) release(ctx context.Context, path, token string) {
	o.remove(ctx, path)
	if token != "" && o.deps.Tokens != nil {
		o.deps.Tokens.Revoke(token)
	}
}

// scheduleCleanup releases path after delay in the background. Close cuts the
// delay short so no file outlives the orchestrator; once closed, release is
// immediate.
func (o *Orchestrator) scheduleCleanup(path, token string, delay time.Duration) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.release(context.Background(), path, token)
		return
	}
	o.cleanups.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.cleanups.Done()
		defer func() {
			if rec := recover(); rec != nil {
				logging.LogError(fmt.Errorf("panic: %v", rec), "Deferred TTS cleanup panicked",
					zap.String("file_path", path))
			}
		}()

		_ = o.sleep(o.cleanupCtx, delay)
		o.release(context.Background(), path, token)
	}()
}

// Wait blocks until every scheduled cleanup has run
func (o *Orchestrator) Wait() {
	o.cleanups.Wait()
}

// Close runs pending cleanups immediately and waits for them
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.cancelCleanup()
	o.cleanups.Wait()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
