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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppDefaultDevice is the device label meaning "use the host's configured output".
const AppDefaultDevice = "App Default"

// Config holds all configuration for the Google Cloud TTS effect host
type Config struct {
	Server   ServerConfig
	TTS      TTSConfig
	Effect   EffectConfig
	Playback PlaybackConfig
	Logging  LoggingConfig
	NATS     NATSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	DBPath         string
	MetricsEnabled bool
}

// TTSConfig holds Google Cloud Text-to-Speech configuration
type TTSConfig struct {
	APIKey        string        // Initial API key; may be replaced at runtime
	URL           string        // REST base URL, e.g. https://texttospeech.googleapis.com/v1
	Timeout       time.Duration // Request timeout
	MaxConcurrent int           // Maximum concurrent synthesis requests
	AudioEncoding string        // Requested encoding; playback assumes MP3
}

// EffectConfig holds orchestration timing and the temp directory. TempDir is
// resolved once at startup and never changes afterwards.
type EffectConfig struct {
	TempDir         string
	WaitBuffer      time.Duration // Added to the sound duration when waiting
	CleanupDelay    time.Duration // Added to the sound duration for deferred deletion
	DefaultDuration time.Duration // Used when the duration probe fails
	ProbeTimeout    time.Duration
}

// PlaybackConfig describes the host's output devices and overlay instances
type PlaybackConfig struct {
	DefaultDeviceLabel  string
	DefaultDeviceID     string
	UseOverlayInstances bool
	OverlayInstances    []string
	TokenTTLFloor       time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// NATSConfig holds NATS messaging configuration
type NATSConfig struct {
	Enabled       bool
	URL           string
	SubjectPrefix string
	MaxReconnect  int
	ReconnectWait time.Duration
}

// Load loads configuration from an optional .env file and environment
// variables with defaults. Variables already present in the environment win
// over the file.
func Load() (*Config, error) {
	envFile := getEnvString("TTS_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	config := &Config{
		Server: ServerConfig{
			Host:           getEnvString("TTS_HOST", "127.0.0.1"),
			Port:           getEnvInt("TTS_PORT", 7473),
			ReadTimeout:    getEnvDuration("TTS_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvDuration("TTS_WRITE_TIMEOUT", 2*time.Minute),
			DBPath:         getEnvString("DB_PATH", "./data/google-tts.db"),
			MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		},
		TTS: TTSConfig{
			APIKey:        getEnvString("GOOGLE_TTS_API_KEY", ""),
			URL:           getEnvString("GOOGLE_TTS_URL", "https://texttospeech.googleapis.com/v1"),
			Timeout:       getEnvDuration("GOOGLE_TTS_TIMEOUT", 15*time.Second),
			MaxConcurrent: getEnvInt("GOOGLE_TTS_MAX_CONCURRENT", 4),
			AudioEncoding: getEnvString("GOOGLE_TTS_AUDIO_ENCODING", "MP3"),
		},
		Effect: EffectConfig{
			TempDir:         getEnvString("TTS_TEMP_DIR", filepath.Join(os.TempDir(), "google-tts")),
			WaitBuffer:      getEnvDuration("TTS_WAIT_BUFFER", 1500*time.Millisecond),
			CleanupDelay:    getEnvDuration("TTS_CLEANUP_DELAY", 5*time.Second),
			DefaultDuration: getEnvDuration("TTS_DEFAULT_DURATION", 30*time.Second),
			ProbeTimeout:    getEnvDuration("TTS_PROBE_TIMEOUT", 10*time.Second),
		},
		Playback: PlaybackConfig{
			DefaultDeviceLabel:  getEnvString("AUDIO_OUTPUT_DEVICE", "System Default"),
			DefaultDeviceID:     getEnvString("AUDIO_OUTPUT_DEVICE_ID", "default"),
			UseOverlayInstances: getEnvBool("OVERLAY_INSTANCES_ENABLED", false),
			OverlayInstances:    getEnvList("OVERLAY_INSTANCES"),
			TokenTTLFloor:       getEnvDuration("RESOURCE_TOKEN_TTL_FLOOR", 5*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "console"),
		},
		NATS: NATSConfig{
			Enabled:       getEnvBool("NATS_ENABLED", true),
			URL:           getEnvString("NATS_URL", "nats://localhost:4222"),
			SubjectPrefix: getEnvString("NATS_SUBJECT_PREFIX", "firebot"),
			MaxReconnect:  getEnvInt("NATS_MAX_RECONNECT", -1),
			ReconnectWait: getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.TTS.URL == "" {
		return fmt.Errorf("TTS URL must be provided")
	}

	if c.TTS.MaxConcurrent <= 0 {
		return fmt.Errorf("TTS max concurrent must be positive: %d", c.TTS.MaxConcurrent)
	}

	if c.TTS.Timeout <= 0 {
		return fmt.Errorf("TTS timeout must be positive: %s", c.TTS.Timeout)
	}

	if c.Effect.TempDir == "" {
		return fmt.Errorf("temp directory must be provided")
	}

	if c.Effect.DefaultDuration <= 0 {
		return fmt.Errorf("default sound duration must be positive: %s", c.Effect.DefaultDuration)
	}

	if c.Effect.WaitBuffer < 0 || c.Effect.CleanupDelay < 0 {
		return fmt.Errorf("wait buffer and cleanup delay must not be negative")
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("NATS URL must be provided when NATS is enabled")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
