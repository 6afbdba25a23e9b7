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

// checkLink checks that (seq, prev) extends the chain at head by exactly one position.
// The zero head stands for an empty chain whose only valid successor is the genesis
// link (1, hash.Genesis).
func checkLink(id proto.Identity, r types.Role, seq uint64, prev hash.Hash, head ChainHead) error {
	switch {
	case seq <= head.Seq:
		return errors.Wrapf(ErrChainInvariantViolation,
			"%s %s: sequence number %d already taken, head is %d", r, id.Short(8), seq, head.Seq)
	case seq > head.Seq+1:
		return errors.Wrapf(ErrChainInvariantViolation,
			"%s %s: sequence number %d skips ahead of %d", r, id.Short(8), seq, head.Seq+1)
	case !prev.IsEqual(&head.Hash):
		return errors.Wrapf(ErrChainInvariantViolation,
			"%s %s: previous hash %s does not match head %s", r, id.Short(8), prev.Short(8), head.Hash.Short(8))
	}
	return nil
}

// checkForward is the relaxed check applied to the counterparties of a partial-view
// ledger, which only sees the blocks shared with its owner: the chain must move strictly
// forward, and link to the known head when the new block directly follows it.
func checkForward(id proto.Identity, r types.Role, seq uint64, prev hash.Hash, head ChainHead) error {
	if seq <= head.Seq {
		return errors.Wrapf(ErrChainInvariantViolation,
			"%s %s: sequence number %d does not move past %d", r, id.Short(8), seq, head.Seq)
	}
	if seq == head.Seq+1 && !prev.IsEqual(&head.Hash) {
		return errors.Wrapf(ErrChainInvariantViolation,
			"%s %s: previous hash %s does not match head %s", r, id.Short(8), prev.Short(8), head.Hash.Short(8))
	}
	return nil
}
