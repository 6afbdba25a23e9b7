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

package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CovenantSQL/multichain/utils/log"
)

// LedgerStats is the view of a ledger store needed by LedgerCollector.
type LedgerStats interface {
	Count() (uint64, error)
	IdentityCount() int
}

type ledgerStatsMetrics []struct {
	desc    *prometheus.Desc
	eval    func(LedgerStats) (float64, error)
	valType prometheus.ValueType
}

// LedgerCollector reports the size of a ledger store at scrape time.
type LedgerCollector struct {
	stats   LedgerStats
	metrics ledgerStatsMetrics
}

// NewLedgerCollector returns a collector reading stats on every scrape.
func NewLedgerCollector(stats LedgerStats) *LedgerCollector {
	return &LedgerCollector{
		stats: stats,
		metrics: ledgerStatsMetrics{
			{
				desc: prometheus.NewDesc(
					prometheus.BuildFQName(Namespace, "ledger", "blocks"),
					"Number of blocks stored in the ledger.",
					nil, nil,
				),
				eval: func(s LedgerStats) (float64, error) {
					n, err := s.Count()
					return float64(n), err
				},
				valType: prometheus.GaugeValue,
			},
			{
				desc: prometheus.NewDesc(
					prometheus.BuildFQName(Namespace, "ledger", "identities"),
					"Number of identities with a known personal chain head.",
					nil, nil,
				),
				eval: func(s LedgerStats) (float64, error) {
					return float64(s.IdentityCount()), nil
				},
				valType: prometheus.GaugeValue,
			},
		},
	}
}

// Describe returns all descriptions of the collector.
func (lc *LedgerCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range lc.metrics {
		ch <- m.desc
	}
}

// Collect returns the current state of all metrics of the collector.
func (lc *LedgerCollector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range lc.metrics {
		v, err := m.eval(lc.stats)
		if err != nil {
			log.WithError(err).WithField("metric", m.desc.String()).Warning("collect ledger stats failed")
			ch <- prometheus.NewInvalidMetric(m.desc, err)
			continue
		}
		ch <- prometheus.MustNewConstMetric(m.desc, m.valType, v)
	}
}
