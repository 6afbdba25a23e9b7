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
)

var (
	// ErrBlockNotFound indicates no block matches a lookup.
	ErrBlockNotFound = errors.New("block not found")
	// ErrChainInvariantViolation indicates a block does not extend a personal chain by
	// exactly one position.
	ErrChainInvariantViolation = errors.New("chain invariant violation")
	// ErrBlockHashMismatch indicates the recorded hash of a block is not the hash of its
	// content.
	ErrBlockHashMismatch = errors.New("block hash mismatch")
	// ErrCorruptedBlock indicates a stored block does not match the key it is stored under.
	ErrCorruptedBlock = errors.New("corrupted block in storage")
	// ErrForeignBlock indicates a block not involving the owner of a partial-view ledger.
	ErrForeignBlock = errors.New("block does not involve the ledger owner")
	// ErrNilBlock indicates a nil block is added.
	ErrNilBlock = errors.New("nil block")
	// ErrUnknownBackend indicates an unsupported storage backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
	// ErrChainClosed indicates an operation on a closed chain.
	ErrChainClosed = errors.New("chain is closed")
	// ErrIdentityNotFound indicates no known identity matches a prefix.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrAmbiguousIdentity indicates more than one known identity matches a prefix.
	ErrAmbiguousIdentity = errors.New("ambiguous identity prefix")
)
