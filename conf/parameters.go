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

package conf

import "time"

const (
	// DefaultPrivateKeyFile is the private key file name under the working root.
	DefaultPrivateKeyFile = "private.key"
	// DefaultLedgerBackend is the ledger storage backend.
	DefaultLedgerBackend = "sqlite"
	// DefaultBlockCacheSize is the number of decoded blocks cached by a ledger.
	DefaultBlockCacheSize = 1024
	// DefaultAPIListenAddr is the listen address of the query API.
	DefaultAPIListenAddr = "127.0.0.1:4665"
	// DefaultHandshakeTimeout bounds a signing round.
	DefaultHandshakeTimeout = 10 * time.Second
	// LedgerDirName is the ledger directory name under the working root.
	LedgerDirName = "ledger"
)
