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

// Package timer records the phases of an operation for debug logging.
package timer

import (
	"sync"
	"time"

	"github.com/CovenantSQL/multichain/utils/log"
)

type pivot struct {
	name string
	at   time.Time
}

// Timer is a stop watch splitting an operation into named phases.
type Timer struct {
	sync.Mutex
	start  time.Time
	pivots []pivot
}

// NewTimer returns a new stop watch timer instance.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Add closes the current phase under name.
func (t *Timer) Add(name string) {
	t.Lock()
	defer t.Unlock()
	t.pivots = append(t.pivots, pivot{name: name, at: time.Now()})
}

// Total returns the time elapsed since the timer was created.
func (t *Timer) Total() time.Duration {
	return time.Since(t.start)
}

// ToMap returns the duration of every phase plus the total under "total".
func (t *Timer) ToMap() map[string]time.Duration {
	t.Lock()
	defer t.Unlock()

	m := make(map[string]time.Duration, 1+len(t.pivots))
	last := t.start
	for _, p := range t.pivots {
		m[p.name] = p.at.Sub(last)
		last = p.at
	}
	if len(t.pivots) > 0 {
		m["total"] = last.Sub(t.start)
	}
	return m
}

// ToLogFields returns the phases as log fields.
func (t *Timer) ToLogFields() log.Fields {
	f := log.Fields{}
	for k, v := range t.ToMap() {
		f[k] = v
	}
	return f
}
