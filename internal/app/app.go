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

// Package app assembles the effect host from configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/audio"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/config"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/effect"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/events"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/host"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/messaging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/metrics"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/playback"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/resources"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/server"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/storage"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/tts"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/usage"
)

const (
	ledgerWriteTimeout = 5 * time.Second
	checkpointInterval = 5 * time.Minute
)

// App holds the wired components of one effect host process
type App struct {
	Config       *config.Config
	Database     *storage.Database
	UsageStore   *storage.UsageEventsStore
	Bus          *events.Bus
	NATS         *messaging.NATSService // nil when disabled or unreachable
	Tokens       *resources.TokenStore
	Credentials  *host.CredentialStore
	Metrics      *metrics.Recorder
	Orchestrator *effect.Orchestrator
	Server       *server.Server

	synthesizer *tts.GoogleClient
}

// New builds every component. Call Close to release them.
func New(cfg *config.Config) (_ *App, err error) {
	a := &App{
		Config:      cfg,
		Bus:         events.NewBus(),
		Tokens:      resources.NewTokenStore(resources.DefaultMaxTokens, resources.DefaultMaxTTL),
		Credentials: host.NewCredentialStore(cfg.TTS.APIKey),
		Metrics:     metrics.NewRecorder(),
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Database, err = storage.NewDatabase(storage.DatabaseConfig{Path: cfg.Server.DBPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open usage ledger: %w", err)
	}
	a.UsageStore = storage.NewUsageEventsStore(a.Database)

	var dispatcher playback.Dispatcher = logDispatcher{}
	if cfg.NATS.Enabled {
		ns := messaging.NewNATSService(cfg.NATS)
		if connErr := ns.Connect(); connErr != nil {
			logging.LogWarn("NATS unavailable, playback commands will only be logged", zap.Error(connErr))
		} else {
			a.NATS = ns
			dispatcher = ns
		}
	}

	if err = a.subscribeUsage(); err != nil {
		return nil, err
	}

	a.synthesizer, err = tts.NewGoogleClient(cfg.TTS)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis client: %w", err)
	}

	a.Orchestrator, err = effect.NewOrchestrator(cfg.Effect, effect.Dependencies{
		Credentials: a.Credentials,
		Synthesizer: a.synthesizer,
		FileSystem:  host.NewOSFileSystem(),
		Prober:      audio.NewMP3Prober(cfg.Effect.ProbeTimeout),
		Router:      playback.NewRouter(cfg.Playback, dispatcher, a.Tokens),
		Usage:       usage.NewAccountant(a.Bus),
		Tokens:      a.Tokens,
		Observer:    a.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	deps := server.Dependencies{
		Runner:      a.Orchestrator,
		Credentials: a.Credentials,
		UsageStore:  a.UsageStore,
		LastUsage:   a.Bus,
		Resources:   a.Tokens,
		Database:    a.Database,
		Metrics:     a.Metrics.Handler(),
	}
	if a.NATS != nil {
		deps.Messaging = a.NATS
	}
	a.Server, err = server.New(cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return a, nil
}

// subscribeUsage fans usage events out to the ledger, metrics and NATS
func (a *App) subscribeUsage() error {
	if err := a.Bus.Subscribe(a.Metrics.ObserveUsage); err != nil {
		return err
	}

	if err := a.Bus.SubscribeAsync(func(event *events.UsageEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), ledgerWriteTimeout)
		defer cancel()
		if err := a.UsageStore.Insert(ctx, event); err != nil {
			logging.LogError(err, "Failed to record usage event", zap.String("uuid", event.UUID))
		}
	}); err != nil {
		return err
	}

	if a.NATS == nil {
		return nil
	}
	return a.Bus.SubscribeAsync(func(event *events.UsageEvent) {
		if err := a.NATS.PublishUsage(event); err != nil {
			logging.LogError(err, "Failed to publish usage event", zap.String("uuid", event.UUID))
		}
	})
}

// Run serves HTTP and NATS effect triggers until ctx is cancelled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)

	if a.NATS != nil {
		sub, err := a.NATS.SubscribeToEffectTriggers(groupCtx, a.Orchestrator)
		if err != nil {
			return fmt.Errorf("failed to subscribe to effect triggers: %w", err)
		}
		defer func() { _ = sub.Unsubscribe() }()
	}

	group.Go(a.Server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		return a.Server.Stop()
	})
	group.Go(func() error {
		ticker := time.NewTicker(checkpointInterval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				if err := a.Database.Checkpoint(); err != nil {
					logging.LogWarn("WAL checkpoint failed", zap.Error(err))
				}
			}
		}
	})

	return group.Wait()
}

// Close finishes pending cleanups and releases every component
func (a *App) Close() error {
	var errs []error
	if a.NATS != nil {
		a.NATS.WaitTriggers()
	}
	if a.Orchestrator != nil {
		errs = append(errs, a.Orchestrator.Close())
	}
	if a.Bus != nil {
		a.Bus.Wait()
	}
	if a.NATS != nil {
		a.NATS.Close()
	}
	if a.synthesizer != nil {
		errs = append(errs, a.synthesizer.Close())
	}
	if a.Database != nil {
		errs = append(errs, a.Database.Close())
	}
	return errors.Join(errs...)
}

// logDispatcher stands in for the host when NATS is not available
type logDispatcher struct{}

func (logDispatcher) SendLocal(_ context.Context, payload playback.LocalPayload) error {
	logging.LogPlayback(string(playback.RouteLocal), payload.FilePath,
		zap.String("device", payload.AudioOutputDevice.Label),
		zap.Int("volume", payload.Volume),
		zap.Bool("delivered", false))
	return nil
}

func (logDispatcher) SendOverlay(_ context.Context, payload playback.OverlayPayload) error {
	logging.LogPlayback(string(playback.RouteOverlay), payload.ResourceToken,
		zap.String("overlay_instance", payload.OverlayInstance),
		zap.Int("volume", payload.Volume),
		zap.Bool("delivered", false))
	return nil
}
