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
	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/types"
)

// ChainHead is the latest known position of a personal chain.
type ChainHead struct {
	Seq  uint64
	Hash hash.Hash
}

// Storage persists encoded blocks and the (identity, sequence number) index of both
// parties of every block.
type Storage interface {
	// Put stores b and its index rows atomically.
	Put(b *types.Block, enc []byte) error
	// Get returns the encoded block stored under h, or ErrBlockNotFound.
	Get(h hash.Hash) ([]byte, error)
	// Lookup returns the hash of the block at position seq of the chain of id, or
	// ErrBlockNotFound.
	Lookup(id proto.Identity, seq uint64) (hash.Hash, error)
	// PersonalChain returns the block hashes of the chain of id ordered by sequence number.
	PersonalChain(id proto.Identity) ([]hash.Hash, error)
	// Heads returns the latest position of every known personal chain.
	Heads() (map[proto.Identity]ChainHead, error)
	// Count returns the number of stored blocks.
	Count() (uint64, error)
	// Close releases the storage.
	Close() error
}

// OpenStorage opens the storage backend named backend at path.
func OpenStorage(backend, path string) (Storage, error) {
	switch backend {
	case BackendSQLite, "":
		return openSQLiteStorage(path)
	case BackendLevelDB:
		return openLevelDBStorage(path)
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "backend %q", backend)
	}
}
