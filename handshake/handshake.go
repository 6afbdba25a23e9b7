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
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/types"
	"github.com/CovenantSQL/multichain/utils/log"
)

// Hook are called during a handshake round.
type Hook func(ctx context.Context) error

// Options represents options of a handshake coordinator.
type Options struct {
	timeout        time.Duration
	codec          types.AgreementCodec
	beforePrepare  Hook
	beforeCommit   Hook
	beforeRollback Hook
	afterCommit    Hook
}

// NewOptions returns a new coordinator option.
func NewOptions(timeout time.Duration, codec types.AgreementCodec) *Options {
	return &Options{
		timeout: timeout,
		codec:   codec,
	}
}

// NewOptionsWithCallback returns a new coordinator option with before prepare/commit/rollback
// and after commit callbacks.
func NewOptionsWithCallback(timeout time.Duration, codec types.AgreementCodec,
	beforePrepare Hook, beforeCommit Hook, beforeRollback Hook, afterCommit Hook) *Options {
	return &Options{
		timeout:        timeout,
		codec:          codec,
		beforePrepare:  beforePrepare,
		beforeCommit:   beforeCommit,
		beforeRollback: beforeRollback,
		afterCommit:    afterCommit,
	}
}

// Offer is what a participant brings to a round: the next link of its personal chain and
// its own copy of the agreement.
type Offer struct {
	SequenceNumber uint64
	PreviousHash   hash.Hash
	Agreement      []byte
}

// Participant is one side of a handshake round. Every call carries the round id, Prepare
// reserves the participant for the round until Commit or Rollback.
type Participant interface {
	Identity() proto.Identity
	Prepare(ctx context.Context, round string, r types.Role, agreement []byte) (Offer, error)
	Sign(ctx context.Context, round string, h *types.Header) ([]byte, error)
	Commit(ctx context.Context, round string, b *types.Block) error
	Rollback(ctx context.Context, round string) error
}

// Coordinator drives handshake rounds.
type Coordinator struct {
	option *Options
}

// NewCoordinator creates a new handshake Coordinator.
func NewCoordinator(opt *Options) *Coordinator {
	return &Coordinator{
		option: opt,
	}
}

// both runs f on the two sides concurrently and returns the first error by role order.
func both(parties [2]Participant, f func(r types.Role, p Participant) error) error {
	var (
		errs [2]error
		wg   sync.WaitGroup
	)
	for _, r := range types.Roles {
		wg.Add(1)
		go func(r types.Role, e *error) {
			defer wg.Done()
			*e = f(r, parties[r])
		}(r, &errs[r])
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return errors.Wrapf(err, "%s %s", types.Role(i), parties[i].Identity().Short(8))
		}
	}
	return nil
}

func (c *Coordinator) rollback(ctx context.Context, parties [2]Participant, round string) {
	if c.option.beforeRollback != nil {
		// ignore rollback hook failures
		c.option.beforeRollback(ctx)
	}
	if err := both(parties, func(_ types.Role, p Participant) error {
		return p.Rollback(ctx, round)
	}); err != nil {
		log.WithError(err).WithField("round", round).Warning("rollback failed")
	}
}

// Agree runs a round in which benefactor and beneficiary co-sign a block recording
// agreement, and returns the block stored by both sides.
func (c *Coordinator) Agree(
	ctx context.Context, benefactor, beneficiary Participant, agreement []byte,
) (b *types.Block, err error) {
	if benefactor == nil || beneficiary == nil {
		return nil, ErrNilParticipant
	}
	if benefactor.Identity() == beneficiary.Identity() {
		return nil, errors.Wrapf(ErrSelfAgreement, "identity %s", benefactor.Identity())
	}
	if c.option.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.option.timeout)
		defer cancel()
	}

	var (
		parties = [2]Participant{benefactor, beneficiary}
		round   = uuid.Must(uuid.NewV4()).String()
		le      = log.WithFields(log.Fields{
			"round":       round,
			"benefactor":  benefactor.Identity().Short(8),
			"beneficiary": beneficiary.Identity().Short(8),
		})
	)

	if c.option.beforePrepare != nil {
		if err = c.option.beforePrepare(ctx); err != nil {
			return
		}
	}

	// Phase one: reserve both chains and collect the offers. Participants are reserved one
	// at a time in identity order, so rounds sharing participants cannot deadlock.
	var (
		offers [2]Offer
		order  = types.Roles
	)
	if beneficiary.Identity() < benefactor.Identity() {
		order[0], order[1] = order[1], order[0]
	}
	for _, r := range order {
		if offers[r], err = parties[r].Prepare(ctx, round, r, agreement); err != nil {
			err = errors.Wrapf(err, "%s %s", r, parties[r].Identity().Short(8))
			le.WithError(err).Debug("prepare failed")
			c.rollback(ctx, parties, round)
			return nil, err
		}
	}

	msg := &types.SignedConfirm{
		Header: types.Header{
			Benefactor:  benefactor.Identity(),
			Beneficiary: beneficiary.Identity(),
			Timestamp:   time.Now().UTC(),
		},
	}
	for _, r := range types.Roles {
		msg.Header.SetLink(r, offers[r].SequenceNumber, offers[r].PreviousHash)
	}
	msg.Header.AgreementBenefactor = offers[types.Benefactor].Agreement
	msg.Header.AgreementBeneficiary = offers[types.Beneficiary].Agreement

	var sigs [2][]byte
	if err = both(parties, func(r types.Role, p Participant) (err error) {
		sigs[r], err = p.Sign(ctx, round, &msg.Header)
		return
	}); err != nil {
		le.WithError(err).Debug("sign failed")
		c.rollback(ctx, parties, round)
		return nil, err
	}
	for _, r := range types.Roles {
		msg.SetSignature(r, sigs[r])
	}

	if b, err = types.NewBlockFromSignedConfirm(msg, c.option.codec); err == nil {
		err = b.Verify(c.option.codec).Err()
	}
	if err != nil {
		le.WithError(err).Warning("co-signed block is not valid")
		c.rollback(ctx, parties, round)
		return nil, err
	}

	if c.option.beforeCommit != nil {
		if err = c.option.beforeCommit(ctx); err != nil {
			le.WithError(err).Debug("before commit failed")
			c.rollback(ctx, parties, round)
			return nil, err
		}
	}

	// Phase two: both sides append the block
	if err = both(parties, func(_ types.Role, p Participant) error {
		return p.Commit(ctx, round, b)
	}); err != nil {
		le.WithError(err).Error("commit failed")
		c.rollback(ctx, parties, round)
		return nil, err
	}

	if c.option.afterCommit != nil {
		if err := c.option.afterCommit(ctx); err != nil {
			le.WithError(err).Debug("after commit failed")
		}
	}
	le.WithField("hash", b.BlockHash.Short(8)).Debug("handshake committed")
	return b, nil
}
