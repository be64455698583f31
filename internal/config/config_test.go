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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads so defaults are observable.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TTS_ENV_FILE", "TTS_HOST", "TTS_PORT", "DB_PATH", "METRICS_ENABLED",
		"GOOGLE_TTS_API_KEY", "GOOGLE_TTS_URL", "GOOGLE_TTS_TIMEOUT", "GOOGLE_TTS_MAX_CONCURRENT",
		"TTS_TEMP_DIR", "TTS_WAIT_BUFFER", "TTS_CLEANUP_DELAY", "TTS_DEFAULT_DURATION",
		"AUDIO_OUTPUT_DEVICE", "AUDIO_OUTPUT_DEVICE_ID", "OVERLAY_INSTANCES_ENABLED", "OVERLAY_INSTANCES",
		"NATS_ENABLED", "NATS_URL", "NATS_SUBJECT_PREFIX",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TTS_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Port != 7473 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7473)
	}
	if cfg.TTS.URL != "https://texttospeech.googleapis.com/v1" {
		t.Errorf("TTS.URL = %q", cfg.TTS.URL)
	}
	if cfg.TTS.APIKey != "" {
		t.Errorf("TTS.APIKey = %q, want empty", cfg.TTS.APIKey)
	}
	if cfg.Effect.WaitBuffer != 1500*time.Millisecond {
		t.Errorf("Effect.WaitBuffer = %s, want 1.5s", cfg.Effect.WaitBuffer)
	}
	if cfg.Effect.CleanupDelay != 5*time.Second {
		t.Errorf("Effect.CleanupDelay = %s, want 5s", cfg.Effect.CleanupDelay)
	}
	if cfg.Effect.DefaultDuration != 30*time.Second {
		t.Errorf("Effect.DefaultDuration = %s, want 30s", cfg.Effect.DefaultDuration)
	}
	if !strings.HasSuffix(cfg.Effect.TempDir, "google-tts") {
		t.Errorf("Effect.TempDir = %q, want google-tts suffix", cfg.Effect.TempDir)
	}
	if cfg.Playback.UseOverlayInstances {
		t.Error("Playback.UseOverlayInstances should default to false")
	}
	if len(cfg.Playback.OverlayInstances) != 0 {
		t.Errorf("Playback.OverlayInstances = %v, want none", cfg.Playback.OverlayInstances)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "TTS configuration",
			envVars: map[string]string{
				"GOOGLE_TTS_API_KEY":        "secret",
				"GOOGLE_TTS_URL":            "http://localhost:9000/v1",
				"GOOGLE_TTS_TIMEOUT":        "3s",
				"GOOGLE_TTS_MAX_CONCURRENT": "8",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.TTS.APIKey != "secret" {
					t.Errorf("TTS.APIKey = %q, want %q", cfg.TTS.APIKey, "secret")
				}
				if cfg.TTS.URL != "http://localhost:9000/v1" {
					t.Errorf("TTS.URL = %q", cfg.TTS.URL)
				}
				if cfg.TTS.Timeout != 3*time.Second {
					t.Errorf("TTS.Timeout = %s, want 3s", cfg.TTS.Timeout)
				}
				if cfg.TTS.MaxConcurrent != 8 {
					t.Errorf("TTS.MaxConcurrent = %d, want 8", cfg.TTS.MaxConcurrent)
				}
			},
		},
		{
			name: "Overlay instances",
			envVars: map[string]string{
				"OVERLAY_INSTANCES_ENABLED": "true",
				"OVERLAY_INSTANCES":         "Main, Alerts,,",
			},
			validate: func(t *testing.T, cfg *Config) {
				if !cfg.Playback.UseOverlayInstances {
					t.Error("Playback.UseOverlayInstances = false, want true")
				}
				want := []string{"Main", "Alerts"}
				if len(cfg.Playback.OverlayInstances) != len(want) {
					t.Fatalf("Playback.OverlayInstances = %v, want %v", cfg.Playback.OverlayInstances, want)
				}
				for i := range want {
					if cfg.Playback.OverlayInstances[i] != want[i] {
						t.Errorf("OverlayInstances[%d] = %q, want %q", i, cfg.Playback.OverlayInstances[i], want[i])
					}
				}
			},
		},
		{
			name: "Invalid values fall back to defaults",
			envVars: map[string]string{
				"TTS_PORT":        "not-a-number",
				"TTS_WAIT_BUFFER": "soon",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 7473 {
					t.Errorf("Server.Port = %d, want default 7473", cfg.Server.Port)
				}
				if cfg.Effect.WaitBuffer != 1500*time.Millisecond {
					t.Errorf("Effect.WaitBuffer = %s, want default", cfg.Effect.WaitBuffer)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TTS_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			tt.validate(t, cfg)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "GOOGLE_TTS_API_KEY=from-file\nTTS_PORT=9100\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("TTS_ENV_FILE", envFile)
	t.Setenv("TTS_PORT", "9200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.TTS.APIKey != "from-file" {
		t.Errorf("TTS.APIKey = %q, want %q", cfg.TTS.APIKey, "from-file")
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, environment should win over the file", cfg.Server.Port)
	}
	_ = os.Unsetenv("GOOGLE_TTS_API_KEY")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 7473},
			TTS:    TTSConfig{URL: "http://x", MaxConcurrent: 1, Timeout: time.Second},
			Effect: EffectConfig{TempDir: "/tmp/google-tts", DefaultDuration: 30 * time.Second},
			NATS:   NATSConfig{Enabled: false},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "invalid server port"},
		{name: "no url", mutate: func(c *Config) { c.TTS.URL = "" }, wantErr: "TTS URL"},
		{name: "no concurrency", mutate: func(c *Config) { c.TTS.MaxConcurrent = 0 }, wantErr: "max concurrent"},
		{name: "no temp dir", mutate: func(c *Config) { c.Effect.TempDir = "" }, wantErr: "temp directory"},
		{name: "nats without url", mutate: func(c *Config) { c.NATS.Enabled = true }, wantErr: "NATS URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
