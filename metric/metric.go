/*
 * Copyright 2018 The CovenantSQL Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metric builds the prometheus registry and exposition handler of a ledger node.
package metric

import (
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"

	"github.com/CovenantSQL/multichain/utils/log"
)

// Namespace prefixes every metric exported by the ledger.
const Namespace = "multichain"

// NewRegistry returns a registry holding the go runtime, process and build info
// collectors, plus any extra collectors given.
func NewRegistry(extra ...prometheus.Collector) (registry *prometheus.Registry, err error) {
	registry = prometheus.NewRegistry()
	collectors := map[string]prometheus.Collector{
		"go":      prometheus.NewGoCollector(),
		"process": prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		"version": version.NewCollector(Namespace),
	}
	for name, c := range collectors {
		if err = registry.Register(c); err != nil {
			log.WithError(err).WithField("collector", name).Error("register collector failed")
			return nil, err
		}
	}
	for _, c := range extra {
		if err = registry.Register(c); err != nil {
			log.WithError(err).Error("register collector failed")
			return nil, err
		}
	}

	names := make([]string, 0, len(collectors))
	for n := range collectors {
		names = append(names, n)
	}
	sort.Strings(names)
	log.WithField("collectors", names).WithField("extra", len(extra)).Debug("metric registry created")
	return
}

// Handler returns the exposition handler of registry.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
