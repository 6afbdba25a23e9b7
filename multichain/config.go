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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/types"
)

const (
	// BackendSQLite stores the ledger in a sqlite file.
	BackendSQLite = "sqlite"
	// BackendLevelDB stores the ledger in a leveldb directory.
	BackendLevelDB = "leveldb"

	defaultCacheSize = 1024
)

// Config is the configuration of a Chain.
type Config struct {
	// Backend is BackendSQLite or BackendLevelDB, BackendSQLite if empty.
	Backend string
	// DataFile is the sqlite file or leveldb directory of the ledger.
	DataFile string
	// CacheSize is the number of decoded blocks kept in memory.
	CacheSize int
	// VerifyOnAdd enables the full signature and agreement verification of inserted blocks.
	VerifyOnAdd bool
	// Codec decodes the agreements of blocks, agreements are compared byte-wise if nil.
	Codec types.AgreementCodec
	// Owner enables the partial-view mode when set: only blocks involving the owner are
	// accepted and only the owner's personal chain is required to be contiguous.
	Owner proto.Identity
	// Registerer receives the chain metrics if not nil.
	Registerer prometheus.Registerer
}

func (c *Config) backend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

func (c *Config) cacheSize() int {
	if c.CacheSize <= 0 {
		return defaultCacheSize
	}
	return c.CacheSize
}
