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
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/metric"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/types"
	"github.com/CovenantSQL/multichain/utils/log"
	"github.com/CovenantSQL/multichain/utils/timer"
)

// Chain is the ledger store of a participant.
type Chain struct {
	// mu serializes writers, the check-then-append of AddBlock runs under it.
	mu     sync.Mutex
	closed bool

	cfg     *Config
	st      Storage
	cache   *lru.Cache
	metrics *chainMetrics

	headsLock sync.RWMutex
	heads     map[proto.Identity]ChainHead
	index     *identityIndex
}

// NewChain opens the storage described by cfg and loads the chain heads from it.
func NewChain(cfg *Config) (c *Chain, err error) {
	var st Storage
	if st, err = OpenStorage(cfg.backend(), cfg.DataFile); err != nil {
		return
	}
	if c, err = NewChainWithStorage(cfg, st); err != nil {
		st.Close()
		return nil, err
	}
	return
}

// NewChainWithStorage returns a chain on an opened storage.
func NewChainWithStorage(cfg *Config, st Storage) (c *Chain, err error) {
	var (
		heads map[proto.Identity]ChainHead
		cache *lru.Cache
	)
	if heads, err = st.Heads(); err != nil {
		return nil, errors.Wrap(err, "load chain heads failed")
	}
	if cache, err = lru.New(cfg.cacheSize()); err != nil {
		return nil, errors.Wrap(err, "create block cache failed")
	}
	c = &Chain{
		cfg:     cfg,
		st:      st,
		cache:   cache,
		metrics: newChainMetrics(),
		heads:   heads,
		index:   newIdentityIndex(),
	}
	for id := range heads {
		c.index.insert(id)
	}
	if cfg.Registerer != nil {
		collectors := append(c.metrics.collectors(), metric.NewLedgerCollector(c))
		for _, col := range collectors {
			if err = cfg.Registerer.Register(col); err != nil {
				return nil, errors.Wrap(err, "register chain metrics failed")
			}
		}
	}
	log.WithFields(log.Fields{
		"backend":    cfg.backend(),
		"file":       cfg.DataFile,
		"identities": len(heads),
		"owner":      cfg.Owner.Short(8),
	}).Info("ledger loaded")
	return
}

// AddBlock appends b if it extends the personal chains of both of its parties by exactly
// one position. Re-adding a stored block is a no-op. Nothing is stored on failure.
func (c *Chain) AddBlock(b *types.Block) (err error) {
	if b == nil {
		return ErrNilBlock
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChainClosed
	}

	var (
		t      = timer.NewTimer()
		result string
	)
	defer func() {
		if result == "" {
			result = classify(err)
		}
		c.metrics.observeAdd(result, t.Total())
		le := log.WithFields(log.Fields{
			"hash":        b.BlockHash.Short(8),
			"benefactor":  b.Header.Benefactor.Short(8),
			"beneficiary": b.Header.Beneficiary.Short(8),
			"result":      result,
		}).WithFields(t.ToLogFields())
		if err != nil {
			le.WithError(err).Warning("add block rejected")
		} else {
			le.Debug("add block")
		}
	}()

	var computed hash.Hash
	if computed, err = b.ComputeHash(); err != nil {
		return errors.Wrap(err, "compute block hash failed")
	}
	if !computed.IsEqual(&b.BlockHash) {
		return errors.Wrapf(ErrBlockHashMismatch, "computed %s, recorded %s", computed, b.BlockHash)
	}
	t.Add("hash")

	var exists bool
	if exists, err = c.exists(b.BlockHash); err != nil {
		return
	}
	if exists {
		result = resultDuplicate
		return nil
	}

	h := &b.Header
	if err = c.checkParties(h); err != nil {
		return
	}

	if c.cfg.VerifyOnAdd {
		if r := b.Verify(c.cfg.Codec); !r.IsValid() {
			return r.Err()
		}
		t.Add("verify")
	}

	if err = c.checkLinks(h); err != nil {
		return
	}
	t.Add("validate")

	var enc []byte
	if enc, err = b.Encode(); err != nil {
		return
	}
	if err = c.st.Put(b, enc); err != nil {
		return errors.Wrap(err, "store block failed")
	}
	t.Add("store")

	c.headsLock.Lock()
	for _, r := range types.Roles {
		id, seq := h.Party(r), h.SequenceNumber(r)
		head, known := c.heads[id]
		if !known {
			c.index.insert(id)
		}
		if seq > head.Seq {
			c.heads[id] = ChainHead{Seq: seq, Hash: b.BlockHash}
		}
	}
	c.headsLock.Unlock()
	c.cache.Add(b.BlockHash, b.Clone())
	return
}

// CheckBlock reports whether a block with header h would be accepted by AddBlock, without
// storing anything. Content hash and signatures are not checked.
func (c *Chain) CheckBlock(h *types.Header) error {
	if h == nil {
		return ErrNilBlock
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChainClosed
	}
	if err := c.checkParties(h); err != nil {
		return err
	}
	return c.checkLinks(h)
}

func (c *Chain) checkParties(h *types.Header) error {
	for _, r := range types.Roles {
		if err := h.Party(r).Validate(); err != nil {
			return errors.Wrapf(ErrChainInvariantViolation, "%s %s: %v", r, h.Party(r).Short(8), err)
		}
	}
	if h.Benefactor == h.Beneficiary {
		return errors.Wrap(ErrChainInvariantViolation, "benefactor and beneficiary are the same identity")
	}
	if !c.cfg.Owner.IsEmpty() {
		if _, ok := h.RoleOf(c.cfg.Owner); !ok {
			return errors.Wrapf(ErrForeignBlock, "parties %s and %s", h.Benefactor.Short(8), h.Beneficiary.Short(8))
		}
	}
	return nil
}

// checkLinks runs the chain validator for both roles against the current heads.
func (c *Chain) checkLinks(h *types.Header) error {
	for _, r := range types.Roles {
		id := h.Party(r)
		head, _ := c.Head(id)
		check := checkLink
		if !c.strict(id) {
			check = checkForward
		}
		if err := check(id, r, h.SequenceNumber(r), h.PreviousHash(r), head); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chain) strict(id proto.Identity) bool {
	return c.cfg.Owner.IsEmpty() || c.cfg.Owner == id
}

func (c *Chain) exists(h hash.Hash) (bool, error) {
	if c.cache.Contains(h) {
		return true, nil
	}
	if _, err := c.st.Get(h); err != nil {
		if errors.Cause(err) == ErrBlockNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "lookup block failed")
	}
	return true, nil
}

// GetByHash returns a copy of the block stored under h.
func (c *Chain) GetByHash(h hash.Hash) (*types.Block, error) {
	if v, ok := c.cache.Get(h); ok {
		c.metrics.observeCache(true)
		return v.(*types.Block).Clone(), nil
	}
	c.metrics.observeCache(false)

	enc, err := c.st.Get(h)
	if err != nil {
		return nil, err
	}
	b, err := types.DecodeBlock(enc)
	if err != nil {
		log.WithError(err).WithField("hash", h.String()).Error("stored block does not decode")
		return nil, errors.Wrapf(ErrCorruptedBlock, "decode block %s: %v", h, err)
	}
	computed, err := b.ComputeHash()
	if err != nil || !computed.IsEqual(&h) || !b.BlockHash.IsEqual(&h) {
		log.WithFields(log.Fields{
			"key":      h.String(),
			"recorded": b.BlockHash.String(),
			"computed": computed.String(),
		}).Error("stored block does not match its key")
		return nil, errors.Wrapf(ErrCorruptedBlock, "block %s", h)
	}
	c.cache.Add(h, b)
	return b.Clone(), nil
}

// GetLatestHash returns the hash of the latest block of the chain of id, or the genesis
// sentinel if none is known.
func (c *Chain) GetLatestHash(id proto.Identity) hash.Hash {
	head, _ := c.Head(id)
	return head.Hash
}

// GetLatestSequenceNumber returns the latest sequence number of the chain of id, 0 if
// none is known.
func (c *Chain) GetLatestSequenceNumber(id proto.Identity) uint64 {
	head, _ := c.Head(id)
	return head.Seq
}

// GetByIdentityAndSequenceNumber returns the block at position seq of the chain of id,
// whichever role id takes in it.
func (c *Chain) GetByIdentityAndSequenceNumber(id proto.Identity, seq uint64) (*types.Block, error) {
	if seq == 0 {
		return nil, errors.Wrapf(ErrBlockNotFound, "identity %s seq 0", id)
	}
	h, err := c.st.Lookup(id, seq)
	if err != nil {
		return nil, err
	}
	return c.GetByHash(h)
}

// Head returns the head of the chain of id and whether the chain is known.
func (c *Chain) Head(id proto.Identity) (head ChainHead, ok bool) {
	c.headsLock.RLock()
	defer c.headsLock.RUnlock()
	head, ok = c.heads[id]
	return
}

// Identities returns the identities with a known chain, sorted.
func (c *Chain) Identities() (ids []proto.Identity) {
	c.headsLock.RLock()
	ids = make([]proto.Identity, 0, len(c.heads))
	for id := range c.heads {
		ids = append(ids, id)
	}
	c.headsLock.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return
}

// IdentityCount returns the number of identities with a known chain.
func (c *Chain) IdentityCount() int {
	c.headsLock.RLock()
	defer c.headsLock.RUnlock()
	return len(c.heads)
}

// GetPersonalChain returns the stored blocks of the chain of id ordered by its sequence
// number, both roles interleaved.
func (c *Chain) GetPersonalChain(id proto.Identity) (blocks []*types.Block, err error) {
	var hashes []hash.Hash
	if hashes, err = c.st.PersonalChain(id); err != nil {
		return
	}
	blocks = make([]*types.Block, 0, len(hashes))
	for _, h := range hashes {
		var b *types.Block
		if b, err = c.GetByHash(h); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return
}

// ValidatePersonalChain audits the stored chain of id: continuity of sequence numbers
// and previous hashes, and full verification of every block.
func (c *Chain) ValidatePersonalChain(id proto.Identity) (err error) {
	var blocks []*types.Block
	if blocks, err = c.GetPersonalChain(id); err != nil {
		return
	}
	check := checkLink
	if !c.strict(id) {
		check = checkForward
	}
	var prev ChainHead
	for _, b := range blocks {
		r, ok := b.Header.RoleOf(id)
		if !ok {
			return errors.Wrapf(ErrCorruptedBlock, "block %s indexed for %s", b.BlockHash.Short(8), id.Short(8))
		}
		seq := b.Header.SequenceNumber(r)
		if err = check(id, r, seq, b.Header.PreviousHash(r), prev); err != nil {
			return
		}
		if res := b.Verify(c.cfg.Codec); !res.IsValid() {
			return errors.Wrapf(res.Err(), "block %d of %s", seq, id.Short(8))
		}
		prev = ChainHead{Seq: seq, Hash: b.BlockHash}
	}
	log.WithFields(log.Fields{"identity": id.Short(8), "blocks": len(blocks)}).Debug("personal chain validated")
	return
}

// Count returns the number of stored blocks.
func (c *Chain) Count() (uint64, error) {
	return c.st.Count()
}

// Close closes the chain and its storage.
func (c *Chain) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.cache.Purge()
	return c.st.Close()
}
