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
	"context"
	"log"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/app"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/config"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeWithConfig(logging.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	a, err := app.New(cfg)
	if err != nil {
		logging.LogError(err, "Failed to initialize effect host")
		log.Fatalf("Failed to initialize effect host: %v", err)
	}

	logging.Sugar.Infow("🚀 google-cloud-tts starting",
		"http_port", cfg.Server.Port,
		"db_path", cfg.Server.DBPath,
		"temp_dir", cfg.Effect.TempDir,
		"nats_enabled", a.NATS != nil,
	)

	runErr := a.Run(context.Background())
	if err := a.Close(); err != nil {
		logging.LogError(err, "Shutdown finished with errors")
	}
	if runErr != nil {
		logging.LogError(runErr, "Effect host stopped")
		log.Fatalf("Effect host stopped: %v", runErr)
	}
}
