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
	"sync"

	"github.com/ivpusic/grpool"

	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/utils/log"
)

const defaultAuditWorkers = 4

// ValidateAll runs ValidatePersonalChain on every known identity with the given number of
// workers, and returns the failures by identity. An empty result means the whole ledger is
// consistent.
func (c *Chain) ValidateAll(workers int) (failures map[proto.Identity]error) {
	if workers <= 0 {
		workers = defaultAuditWorkers
	}
	var (
		ids  = c.Identities()
		pool = grpool.NewPool(workers, len(ids))
		lock sync.Mutex
	)
	defer pool.Release()

	failures = make(map[proto.Identity]error)
	for _, id := range ids {
		id := id
		pool.WaitCount(1)
		pool.JobQueue <- func() {
			defer pool.JobDone()
			if err := c.ValidatePersonalChain(id); err != nil {
				lock.Lock()
				failures[id] = err
				lock.Unlock()
			}
		}
	}
	pool.WaitAll()

	log.WithFields(log.Fields{
		"identities": len(ids),
		"failures":   len(failures),
	}).Info("ledger validated")
	return
}
