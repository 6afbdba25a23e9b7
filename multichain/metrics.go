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

package multichain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CovenantSQL/multichain/metric"
	"github.com/CovenantSQL/multichain/types"
)

const (
	resultAdded     = "added"
	resultDuplicate = "duplicate"
	resultInvariant = "invariant_violation"
	resultHash      = "hash_mismatch"
	resultVerify    = "verification_failed"
	resultForeign   = "foreign"
	resultError     = "error"
)

type chainMetrics struct {
	addBlocks    *prometheus.CounterVec
	addDuration  prometheus.Histogram
	cacheLookups *prometheus.CounterVec
}

func newChainMetrics() *chainMetrics {
	return &chainMetrics{
		addBlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "ledger",
			Name:      "add_block_total",
			Help:      "Number of AddBlock calls by result.",
		}, []string{"result"}),
		addDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metric.Namespace,
			Subsystem: "ledger",
			Name:      "add_block_duration_seconds",
			Help:      "Duration of AddBlock calls.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "ledger",
			Name:      "block_cache_lookups_total",
			Help:      "Number of block cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *chainMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.addBlocks, m.addDuration, m.cacheLookups}
}

func (m *chainMetrics) observeAdd(result string, d time.Duration) {
	m.addBlocks.WithLabelValues(result).Inc()
	m.addDuration.Observe(d.Seconds())
}

func (m *chainMetrics) observeCache(hit bool) {
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func classify(err error) string {
	switch errors.Cause(err) {
	case nil:
		return resultAdded
	case ErrChainInvariantViolation:
		return resultInvariant
	case ErrBlockHashMismatch:
		return resultHash
	case types.ErrBlockVerification:
		return resultVerify
	case ErrForeignBlock:
		return resultForeign
	default:
		return resultError
	}
}
