// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes archfilter's Prometheus counters: chain
// throughput, worker spawns, and protocol call outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every counter/histogram archfilter exports, registered
// once against a private registry so tests can build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	ChainBytesTotal        *prometheus.CounterVec
	ChainDurationSeconds   prometheus.Histogram
	WorkerSpawnsTotal      *prometheus.CounterVec
	WorkerSpawnFailures    *prometheus.CounterVec
	ProtocolCallsTotal     *prometheus.CounterVec
}

// New builds and registers every metric against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ChainBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archfilter_chain_bytes_total",
			Help: "Bytes entering and leaving a filter chain.",
		}, []string{"direction"}),
		ChainDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "archfilter_chain_duration_seconds",
			Help:    "Wall time of one chain process/close cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		WorkerSpawnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archfilter_worker_spawns_total",
			Help: "Successful ExecChild.Open calls.",
		}, []string{"kind"}),
		WorkerSpawnFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archfilter_worker_spawn_failures_total",
			Help: "Failed ExecChild.Open calls.",
		}, []string{"kind"}),
		ProtocolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "archfilter_protocol_calls_total",
			Help: "ProtocolClient.Call outcomes.",
		}, []string{"command", "status"}),
	}

	reg.MustRegister(
		m.ChainBytesTotal,
		m.ChainDurationSeconds,
		m.WorkerSpawnsTotal,
		m.WorkerSpawnFailures,
		m.ProtocolCallsTotal,
	)
	return m
}

// WorkerSpawned implements protocolhelper.Metrics.
func (m *Metrics) WorkerSpawned(kind string) { m.WorkerSpawnsTotal.WithLabelValues(kind).Inc() }

// WorkerSpawnFailed implements protocolhelper.Metrics.
func (m *Metrics) WorkerSpawnFailed(kind string) { m.WorkerSpawnFailures.WithLabelValues(kind).Inc() }

// ProtocolCall records the outcome of one ProtocolClient.Call.
func (m *Metrics) ProtocolCall(command, status string) {
	m.ProtocolCallsTotal.WithLabelValues(command, status).Inc()
}

// Handler returns the HTTP handler to serve this registry's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
