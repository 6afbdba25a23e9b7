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

package handshake

import (
	"bytes"
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/conf"
	"github.com/CovenantSQL/multichain/crypto/asymmetric"
	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/multichain"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/types"
	"github.com/CovenantSQL/multichain/utils/log"
)

type reservation struct {
	round  string
	role   types.Role
	offer  Offer
	digest *hash.Hash
}

// LedgerParticipant is a participant signing with a private key and recording blocks in
// a ledger. It takes part in one round at a time, other rounds wait in Prepare.
type LedgerParticipant struct {
	priv  *asymmetric.PrivateKey
	id    proto.Identity
	chain *multichain.Chain
	codec types.AgreementCodec
	sem   chan struct{}

	mu       sync.Mutex
	reserved *reservation
}

// NewLedgerParticipant returns a participant for the key priv appending to chain. Agreements
// are checked with codec, byte-wise if codec is nil.
func NewLedgerParticipant(
	priv *asymmetric.PrivateKey, chain *multichain.Chain, codec types.AgreementCodec,
) *LedgerParticipant {
	return &LedgerParticipant{
		priv:  priv,
		id:    proto.NewIdentity(priv.PubKey()),
		chain: chain,
		codec: codec,
		sem:   make(chan struct{}, 1),
	}
}

// Identity returns the identity of the participant.
func (p *LedgerParticipant) Identity() proto.Identity {
	return p.id
}

// Prepare waits until the participant is free, reserves it for round and offers the next link
// of its personal chain. The participant must be able to read agreement.
func (p *LedgerParticipant) Prepare(
	ctx context.Context, round string, r types.Role, agreement []byte,
) (offer Offer, err error) {
	if !r.Valid() {
		err = errors.Wrapf(types.ErrUnknownRole, "role %d", r)
		return
	}
	if len(agreement) > conf.MaxAgreementSize {
		err = errors.Wrapf(ErrAgreementTooLarge, "%d bytes", len(agreement))
		return
	}
	if p.codec != nil {
		if _, err = p.codec.DecodeAgreement(agreement); err != nil {
			return
		}
	}
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		err = errors.Wrap(ctx.Err(), "wait for participant")
		return
	}
	offer = Offer{
		SequenceNumber: p.chain.GetLatestSequenceNumber(p.id) + 1,
		PreviousHash:   p.chain.GetLatestHash(p.id),
		Agreement:      append([]byte(nil), agreement...),
	}
	p.mu.Lock()
	p.reserved = &reservation{round: round, role: r, offer: offer}
	p.mu.Unlock()
	log.WithFields(log.Fields{
		"round":    round,
		"identity": p.id.Short(8),
		"role":     r,
		"seq":      offer.SequenceNumber,
	}).Debug("participant prepared")
	return
}

func (p *LedgerParticipant) lookup(round string) (*reservation, error) {
	if p.reserved == nil || p.reserved.round != round {
		return nil, errors.Wrapf(ErrNotPrepared, "round %s", round)
	}
	return p.reserved, nil
}

// Sign signs h if it carries the offer of the participant and an agreement equal to its own,
// and if its ledger would record the block.
func (p *LedgerParticipant) Sign(ctx context.Context, round string, h *types.Header) (sig []byte, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var res *reservation
	if res, err = p.lookup(round); err != nil {
		return
	}
	r := res.role
	prev := h.PreviousHash(r)
	if h.Party(r) != p.id ||
		h.SequenceNumber(r) != res.offer.SequenceNumber ||
		!prev.IsEqual(&res.offer.PreviousHash) ||
		!bytes.Equal(h.Agreement(r), res.offer.Agreement) {
		return nil, errors.Wrapf(ErrHeaderMismatch, "%s side of round %s", r, round)
	}
	if err = p.checkCounterpart(h, r); err != nil {
		return
	}
	// the counterparty link must be acceptable to the ledger as well
	if err = p.chain.CheckBlock(h); err != nil {
		return nil, errors.Wrapf(err, "%s side of round %s", r, round)
	}
	var digest hash.Hash
	if digest, err = h.ContentHash(); err != nil {
		return
	}
	if sig, err = h.Sign(p.priv); err != nil {
		return
	}
	res.digest = &digest
	return
}

func (p *LedgerParticipant) checkCounterpart(h *types.Header, r types.Role) error {
	mine, theirs := h.Agreement(r), h.Agreement(r.Counterpart())
	if p.codec == nil {
		if !bytes.Equal(mine, theirs) {
			return errors.Wrap(ErrHeaderMismatch, "agreement copies differ")
		}
		return nil
	}
	equal, err := p.codec.EqualAgreements(mine, theirs)
	if err != nil {
		return errors.Wrap(err, "compare agreements")
	}
	if !equal {
		return errors.Wrap(ErrHeaderMismatch, "agreement copies differ")
	}
	return nil
}

// Commit appends b to the ledger if it is the block the participant signed, and releases
// the participant.
func (p *LedgerParticipant) Commit(ctx context.Context, round string, b *types.Block) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var res *reservation
	if res, err = p.lookup(round); err != nil {
		return
	}
	if res.digest == nil {
		return errors.Wrapf(ErrNotPrepared, "round %s was not signed", round)
	}
	var digest hash.Hash
	if digest, err = b.Header.ContentHash(); err != nil {
		return
	}
	if !digest.IsEqual(res.digest) {
		return errors.Wrapf(ErrHeaderMismatch, "block %s of round %s", b.BlockHash.Short(8), round)
	}
	if err = p.chain.AddBlock(b); err != nil {
		return
	}
	p.release()
	return
}

// Rollback releases the participant if it is reserved by round.
func (p *LedgerParticipant) Rollback(ctx context.Context, round string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.lookup(round); err != nil {
		return nil
	}
	p.release()
	log.WithFields(log.Fields{"round": round, "identity": p.id.Short(8)}).Debug("participant rolled back")
	return nil
}

func (p *LedgerParticipant) release() {
	p.reserved = nil
	<-p.sem
}
