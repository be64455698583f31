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

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/effect"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/events"
)

const namespace = "google_tts"

// Effect result labels
const (
	ResultSucceeded  = "succeeded"
	ResultFailed     = "failed"
	ResultBilledOnly = "billed_failed"
)

// Recorder owns the plugin's Prometheus collectors. It implements effect.Observer.
type Recorder struct {
	registry *prometheus.Registry

	usageUnits     *prometheus.CounterVec
	effects        *prometheus.CounterVec
	synthesis      *prometheus.HistogramVec
	soundDurations prometheus.Histogram
}

// NewRecorder creates a recorder on a fresh registry, including Go runtime collectors
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		usageUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "usage_units_total",
				Help:      "Characters or bytes billed, by pricing bucket",
			},
			[]string{"bucket"},
		),
		effects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "effects_total",
				Help:      "Effect runs by result",
			},
			[]string{"result"},
		),
		synthesis: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "synthesis_seconds",
				Help:      "Duration of Google Cloud TTS synthesis calls in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 15},
			},
			[]string{"status"},
		),
		soundDurations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sound_duration_seconds",
				Help:      "Length of synthesized audio in seconds",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
			},
		),
	}

	r.registry.MustRegister(r.usageUnits, r.effects, r.synthesis, r.soundDurations)
	r.registry.MustRegister(collectors.NewGoCollector())
	r.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// Registry returns the underlying Prometheus registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveSynthesis records one synthesis call
func (r *Recorder) ObserveSynthesis(elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.synthesis.WithLabelValues(status).Observe(elapsed.Seconds())
}

// ObserveOutcome records one effect run
func (r *Recorder) ObserveOutcome(outcome effect.Outcome) {
	switch {
	case outcome.Succeeded:
		r.effects.WithLabelValues(ResultSucceeded).Inc()
		r.soundDurations.Observe(outcome.AudioDurationSeconds)
	case outcome.Billed:
		r.effects.WithLabelValues(ResultBilledOnly).Inc()
	default:
		r.effects.WithLabelValues(ResultFailed).Inc()
	}
}

// ObserveUsage is a usage event handler counting billed units
func (r *Recorder) ObserveUsage(event *events.UsageEvent) {
	r.usageUnits.WithLabelValues(event.Bucket).Add(float64(event.Cost))
}
