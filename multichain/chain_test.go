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
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/types"
)

func TestChain(t *testing.T) {
	for _, backend := range backends {
		Convey("Given an empty "+backend+" ledger", t, func() {
			var (
				a, b, c = newTestParty(), newTestParty(), newTestParty()
				cfg     = &Config{Backend: backend, DataFile: testDataFile(backend), Codec: codec}
			)
			chain, err := NewChain(cfg)
			So(err, ShouldBeNil)
			Reset(func() { chain.Close() })

			So(chain.GetLatestHash(a.id), ShouldResemble, hash.Genesis)
			So(chain.GetLatestSequenceNumber(a.id), ShouldEqual, 0)
			_, ok := chain.Head(a.id)
			So(ok, ShouldBeFalse)

			Convey("The first block of two parties should link both to genesis", func() {
				first := newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)
				So(chain.AddBlock(first), ShouldBeNil)
				So(chain.GetLatestHash(a.id), ShouldResemble, first.BlockHash)
				So(chain.GetLatestHash(b.id), ShouldResemble, first.BlockHash)
				So(chain.GetLatestSequenceNumber(a.id), ShouldEqual, 1)
				So(chain.GetLatestSequenceNumber(b.id), ShouldEqual, 1)
				So(chain.IdentityCount(), ShouldEqual, 2)

				got, err := chain.GetByHash(first.BlockHash)
				So(err, ShouldBeNil)
				So(got.BlockHash, ShouldResemble, first.BlockHash)
				So(got.Header.Timestamp.Equal(first.Header.Timestamp), ShouldBeTrue)
				So(got.Verify(codec).IsValid(), ShouldBeTrue)

				Convey("A party should link its next block to its latest one in either role", func() {
					second := newBlock(c, a, 1, 2, hash.Genesis, first.BlockHash)
					So(chain.AddBlock(second), ShouldBeNil)
					So(chain.GetLatestSequenceNumber(a.id), ShouldEqual, 2)
					So(chain.GetLatestHash(c.id), ShouldResemble, second.BlockHash)
					So(chain.GetLatestHash(b.id), ShouldResemble, first.BlockHash)

					byBf, err := chain.GetByIdentityAndSequenceNumber(c.id, 1)
					So(err, ShouldBeNil)
					So(byBf.BlockHash, ShouldResemble, second.BlockHash)
					byBn, err := chain.GetByIdentityAndSequenceNumber(a.id, 2)
					So(err, ShouldBeNil)
					So(byBn.BlockHash, ShouldResemble, second.BlockHash)
					byBf, err = chain.GetByIdentityAndSequenceNumber(a.id, 1)
					So(err, ShouldBeNil)
					So(byBf.BlockHash, ShouldResemble, first.BlockHash)

					blocks, err := chain.GetPersonalChain(a.id)
					So(err, ShouldBeNil)
					So(blocks, ShouldHaveLength, 2)
					So(blocks[0].BlockHash, ShouldResemble, first.BlockHash)
					So(blocks[1].BlockHash, ShouldResemble, second.BlockHash)
					for _, p := range []*testParty{a, b, c} {
						So(chain.ValidatePersonalChain(p.id), ShouldBeNil)
					}

					n, err := chain.Count()
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 2)
					So(chain.Identities(), ShouldHaveLength, 3)
				})
				Convey("A taken sequence number should be rejected", func() {
					dup := newBlock(a, c, 1, 1, hash.Genesis, hash.Genesis)
					err := chain.AddBlock(dup)
					So(errors.Cause(err), ShouldEqual, ErrChainInvariantViolation)
					_, err = chain.GetByHash(dup.BlockHash)
					So(errors.Cause(err), ShouldEqual, ErrBlockNotFound)
					So(chain.GetLatestSequenceNumber(c.id), ShouldEqual, 0)
				})
				Convey("A gap in the sequence should be rejected", func() {
					err := chain.AddBlock(newBlock(a, c, 3, 1, first.BlockHash, hash.Genesis))
					So(errors.Cause(err), ShouldEqual, ErrChainInvariantViolation)
					So(chain.GetLatestSequenceNumber(a.id), ShouldEqual, 1)
				})
				Convey("A wrong previous hash should be rejected", func() {
					err := chain.AddBlock(newBlock(a, c, 2, 1, generateRandomHash(), hash.Genesis))
					So(errors.Cause(err), ShouldEqual, ErrChainInvariantViolation)
					err = chain.AddBlock(newBlock(a, c, 2, 1, first.BlockHash, generateRandomHash()))
					So(errors.Cause(err), ShouldEqual, ErrChainInvariantViolation)
					So(chain.GetLatestHash(a.id), ShouldResemble, first.BlockHash)
				})
				Convey("Adding a stored block again should be a no-op", func() {
					So(chain.AddBlock(first.Clone()), ShouldBeNil)
					n, err := chain.Count()
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 1)
				})
				Convey("The ledger should be restored when reopened", func() {
					second := nextBlock(chain, b, c)
					So(chain.AddBlock(second), ShouldBeNil)
					So(chain.Close(), ShouldBeNil)
					So(errors.Cause(chain.AddBlock(nextBlock(chain, a, b))), ShouldEqual, ErrChainClosed)

					reopened, err := NewChain(cfg)
					So(err, ShouldBeNil)
					defer reopened.Close()
					So(reopened.GetLatestHash(a.id), ShouldResemble, first.BlockHash)
					So(reopened.GetLatestHash(b.id), ShouldResemble, second.BlockHash)
					So(reopened.GetLatestSequenceNumber(b.id), ShouldEqual, 2)
					So(reopened.GetLatestSequenceNumber(c.id), ShouldEqual, 1)
					So(reopened.AddBlock(nextBlock(reopened, c, a)), ShouldBeNil)
					So(reopened.ValidatePersonalChain(a.id), ShouldBeNil)
				})
			})
			Convey("A block not starting at genesis should be rejected", func() {
				err := chain.AddBlock(newBlock(a, b, 2, 1, generateRandomHash(), hash.Genesis))
				So(errors.Cause(err), ShouldEqual, ErrChainInvariantViolation)
				err = chain.AddBlock(newBlock(a, b, 1, 1, generateRandomHash(), hash.Genesis))
				So(errors.Cause(err), ShouldEqual, ErrChainInvariantViolation)
				So(chain.IdentityCount(), ShouldEqual, 0)
			})
			Convey("A block whose hash does not match its content should be rejected", func() {
				blk := newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)
				blk.BlockHash = generateRandomHash()
				So(errors.Cause(chain.AddBlock(blk)), ShouldEqual, ErrBlockHashMismatch)

				blk = newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)
				blk.Header.SequenceNumberBeneficiary = 2
				So(errors.Cause(chain.AddBlock(blk)), ShouldEqual, ErrBlockHashMismatch)
				So(errors.Cause(chain.AddBlock(nil)), ShouldEqual, ErrNilBlock)
			})
			Convey("Unknown lookups should report not found", func() {
				_, err := chain.GetByHash(generateRandomHash())
				So(errors.Cause(err), ShouldEqual, ErrBlockNotFound)
				_, err = chain.GetByIdentityAndSequenceNumber(a.id, 1)
				So(errors.Cause(err), ShouldEqual, ErrBlockNotFound)
				_, err = chain.GetByIdentityAndSequenceNumber(a.id, 0)
				So(errors.Cause(err), ShouldEqual, ErrBlockNotFound)
				blocks, err := chain.GetPersonalChain(a.id)
				So(err, ShouldBeNil)
				So(blocks, ShouldBeEmpty)
				So(chain.ValidatePersonalChain(a.id), ShouldBeNil)
			})
			Convey("Concurrent writers should not fork a chain", func() {
				var (
					wg       sync.WaitGroup
					mu       sync.Mutex
					accepted int
				)
				for i := 0; i < 8; i++ {
					blk := newBlock(a, newTestParty(), 1, 1, hash.Genesis, hash.Genesis)
					wg.Add(1)
					go func() {
						defer wg.Done()
						if chain.AddBlock(blk) == nil {
							mu.Lock()
							accepted++
							mu.Unlock()
						}
					}()
				}
				wg.Wait()
				So(accepted, ShouldEqual, 1)
				So(chain.GetLatestSequenceNumber(a.id), ShouldEqual, 1)
			})
		})
	}
}

func TestVerifyOnAdd(t *testing.T) {
	Convey("Given a ledger verifying inserted blocks", t, func() {
		var (
			a, b = newTestParty(), newTestParty()
			cfg  = &Config{DataFile: testDataFile(BackendSQLite), Codec: codec, VerifyOnAdd: true}
		)
		chain, err := NewChain(cfg)
		So(err, ShouldBeNil)
		Reset(func() { chain.Close() })

		Convey("A block signed by a third key should be rejected", func() {
			blk := newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)
			forged, err := blk.Header.Sign(newTestParty().priv)
			So(err, ShouldBeNil)
			blk.SignatureBeneficiary = forged
			blk.BlockHash, err = blk.ComputeHash()
			So(err, ShouldBeNil)
			So(errors.Cause(chain.AddBlock(blk)), ShouldEqual, types.ErrBlockVerification)
			So(chain.IdentityCount(), ShouldEqual, 0)
		})
		Convey("A block with diverging agreements should be rejected", func() {
			msg := newSignedConfirm(a, b, 1, 1, hash.Genesis, hash.Genesis)
			msg.Header.AgreementBeneficiary = testInvestment()
			for _, r := range types.Roles {
				signer := a
				if r == types.Beneficiary {
					signer = b
				}
				sig, err := msg.Header.Sign(signer.priv)
				So(err, ShouldBeNil)
				msg.SetSignature(r, sig)
			}
			blk, err := types.NewBlockFromSignedConfirm(msg, codec)
			So(err, ShouldBeNil)
			So(errors.Cause(chain.AddBlock(blk)), ShouldEqual, types.ErrBlockVerification)
		})
		Convey("A sound block should be accepted", func() {
			So(chain.AddBlock(newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)), ShouldBeNil)
		})
	})
}

func TestPartialView(t *testing.T) {
	for _, backend := range backends {
		Convey("Given a "+backend+" ledger owned by one party", t, func() {
			var (
				owner, b, c = newTestParty(), newTestParty(), newTestParty()
				cfg         = &Config{
					Backend:  backend,
					DataFile: testDataFile(backend),
					Codec:    codec,
					Owner:    owner.id,
				}
			)
			chain, err := NewChain(cfg)
			So(err, ShouldBeNil)
			Reset(func() { chain.Close() })

			Convey("Blocks between other parties should be refused", func() {
				err := chain.AddBlock(newBlock(b, c, 1, 1, hash.Genesis, hash.Genesis))
				So(errors.Cause(err), ShouldEqual, ErrForeignBlock)
			})
			Convey("A counterparty may appear in the middle of its chain", func() {
				first := newBlock(owner, b, 1, 5, hash.Genesis, generateRandomHash())
				So(chain.AddBlock(first), ShouldBeNil)
				So(chain.GetLatestSequenceNumber(b.id), ShouldEqual, 5)

				Convey("but must keep moving forward", func() {
					err := chain.AddBlock(newBlock(b, owner, 4, 2, generateRandomHash(), first.BlockHash))
					So(errors.Cause(err), ShouldEqual, ErrChainInvariantViolation)
					So(chain.AddBlock(newBlock(b, owner, 9, 2, generateRandomHash(), first.BlockHash)), ShouldBeNil)
					So(chain.ValidatePersonalChain(b.id), ShouldBeNil)
					So(chain.ValidatePersonalChain(owner.id), ShouldBeNil)
				})
				Convey("and link to its head when directly following it", func() {
					err := chain.AddBlock(newBlock(b, owner, 6, 2, generateRandomHash(), first.BlockHash))
					So(errors.Cause(err), ShouldEqual, ErrChainInvariantViolation)
					So(chain.AddBlock(newBlock(b, owner, 6, 2, first.BlockHash, first.BlockHash)), ShouldBeNil)
				})
				Convey("while the owner chain stays strict", func() {
					err := chain.AddBlock(newBlock(owner, c, 3, 1, first.BlockHash, hash.Genesis))
					So(errors.Cause(err), ShouldEqual, ErrChainInvariantViolation)
				})
			})
			Convey("A first-seen counterparty at position 1 should start from genesis", func() {
				err := chain.AddBlock(newBlock(owner, c, 1, 1, hash.Genesis, generateRandomHash()))
				So(errors.Cause(err), ShouldEqual, ErrChainInvariantViolation)
			})
		})
	}
}

func sampleValue(m *dto.Metric) float64 {
	switch {
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	case m.GetHistogram() != nil:
		return float64(m.GetHistogram().GetSampleCount())
	}
	return 0
}

// gatherValues flattens the samples of registry, keyed by name and label values.
func gatherValues(registry prometheus.Gatherer) (values map[string]float64, err error) {
	var families []*dto.MetricFamily
	if families, err = registry.Gather(); err != nil {
		return
	}
	values = make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range m.GetLabel() {
				key += "/" + l.GetValue()
			}
			values[key] = sampleValue(m)
		}
	}
	return
}

func TestMetrics(t *testing.T) {
	Convey("Given a ledger reporting to a registry", t, func() {
		var (
			a, b     = newTestParty(), newTestParty()
			registry = prometheus.NewRegistry()
			cfg      = &Config{DataFile: testDataFile(BackendSQLite), Codec: codec, Registerer: registry}
		)
		chain, err := NewChain(cfg)
		So(err, ShouldBeNil)
		defer chain.Close()

		blk := newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)
		So(chain.AddBlock(blk), ShouldBeNil)
		So(chain.AddBlock(blk), ShouldBeNil)
		So(chain.AddBlock(newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)), ShouldNotBeNil)
		_, err = chain.GetByHash(blk.BlockHash)
		So(err, ShouldBeNil)

		values, err := gatherValues(registry)
		So(err, ShouldBeNil)
		So(values["multichain_ledger_add_block_total/"+resultAdded], ShouldEqual, 1)
		So(values["multichain_ledger_add_block_total/"+resultDuplicate], ShouldEqual, 1)
		So(values["multichain_ledger_add_block_total/"+resultInvariant], ShouldEqual, 1)
		So(values["multichain_ledger_block_cache_lookups_total/hit"], ShouldEqual, 1)
		So(values["multichain_ledger_blocks"], ShouldEqual, 1)
		So(values["multichain_ledger_identities"], ShouldEqual, 2)
		So(values["multichain_ledger_add_block_duration_seconds"], ShouldEqual, 3)

		Convey("Registering a second ledger on the same registry should fail", func() {
			other := &Config{DataFile: testDataFile(BackendSQLite), Registerer: registry}
			_, err := NewChain(other)
			So(err, ShouldNotBeNil)
		})
	})
}

// upperCase returns b with its benefactor written in upper-case hex, signed again by bf and
// bn so that the signatures cover the altered header.
func upperCase(b *types.Block, bf, bn *testParty) *types.Block {
	var err error
	b.Header.Benefactor = proto.Identity(strings.ToUpper(string(bf.id)))
	if b.SignatureBenefactor, err = b.Header.Sign(bf.priv); err != nil {
		panic(err)
	}
	if b.SignatureBeneficiary, err = b.Header.Sign(bn.priv); err != nil {
		panic(err)
	}
	if b.BlockHash, err = b.ComputeHash(); err != nil {
		panic(err)
	}
	return b
}

func TestCanonicalIdentities(t *testing.T) {
	for _, verify := range []bool{false, true} {
		Convey(fmt.Sprintf("Given a ledger holding a first block, verify on add %v", verify), t, func() {
			var (
				a, b, c = newTestParty(), newTestParty(), newTestParty()
				cfg     = &Config{DataFile: testDataFile(BackendSQLite), Codec: codec, VerifyOnAdd: verify}
			)
			chain, err := NewChain(cfg)
			So(err, ShouldBeNil)
			Reset(func() { chain.Close() })
			So(chain.AddBlock(newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)), ShouldBeNil)

			Convey("The same key in upper-case hex should not open a second chain", func() {
				fork := upperCase(newBlock(a, c, 1, 1, hash.Genesis, hash.Genesis), a, c)
				So(errors.Cause(chain.AddBlock(fork)), ShouldEqual, ErrChainInvariantViolation)
				So(errors.Cause(chain.CheckBlock(&fork.Header)), ShouldEqual, ErrChainInvariantViolation)
				So(chain.IdentityCount(), ShouldEqual, 2)
				n, err := chain.Count()
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})
	}
}

func TestCheckBlock(t *testing.T) {
	Convey("Given a ledger with one block", t, func() {
		var (
			a, b, c = newTestParty(), newTestParty(), newTestParty()
			cfg     = &Config{DataFile: testDataFile(BackendLevelDB), Backend: BackendLevelDB, Codec: codec}
		)
		chain, err := NewChain(cfg)
		So(err, ShouldBeNil)
		Reset(func() { chain.Close() })
		first := newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)
		So(chain.AddBlock(first), ShouldBeNil)

		Convey("A block AddBlock would accept should pass without being stored", func() {
			next := nextBlock(chain, b, c)
			So(chain.CheckBlock(&next.Header), ShouldBeNil)
			So(chain.GetLatestSequenceNumber(c.id), ShouldEqual, 0)
			n, err := chain.Count()
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			So(chain.AddBlock(next), ShouldBeNil)
		})
		Convey("A block AddBlock would refuse should fail the same way", func() {
			skip := newBlock(a, c, 3, 1, first.BlockHash, hash.Genesis)
			So(errors.Cause(chain.CheckBlock(&skip.Header)), ShouldEqual, ErrChainInvariantViolation)
			self := nextBlock(chain, a, b)
			self.Header.Beneficiary = a.id
			So(errors.Cause(chain.CheckBlock(&self.Header)), ShouldEqual, ErrChainInvariantViolation)
			So(chain.CheckBlock(nil), ShouldEqual, ErrNilBlock)
		})
		Convey("A closed ledger should refuse the check", func() {
			So(chain.Close(), ShouldBeNil)
			So(chain.CheckBlock(&first.Header), ShouldEqual, ErrChainClosed)
		})
	})
}

var errDiskFull = errors.New("disk full")

type failingStorage struct {
	Storage
}

func (s *failingStorage) Put(b *types.Block, enc []byte) error {
	return errDiskFull
}

func TestStorageFailure(t *testing.T) {
	Convey("Given a ledger whose storage refuses writes", t, func() {
		var (
			a, b = newTestParty(), newTestParty()
			cfg  = &Config{DataFile: testDataFile(BackendSQLite), Codec: codec}
		)
		st, err := OpenStorage(BackendSQLite, cfg.DataFile)
		So(err, ShouldBeNil)
		chain, err := NewChainWithStorage(cfg, &failingStorage{Storage: st})
		So(err, ShouldBeNil)
		Reset(func() { chain.Close() })

		Convey("A failed insert should be reported and leave the ledger unchanged", func() {
			blk := newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)
			err := chain.AddBlock(blk)
			So(err, ShouldNotBeNil)
			So(errors.Cause(err), ShouldEqual, errDiskFull)
			So(chain.GetLatestSequenceNumber(a.id), ShouldEqual, 0)
			So(chain.GetLatestSequenceNumber(b.id), ShouldEqual, 0)
			_, err = chain.GetByHash(blk.BlockHash)
			So(errors.Cause(err), ShouldEqual, ErrBlockNotFound)
			So(chain.IdentityCount(), ShouldEqual, 0)
			_, err = chain.ResolveIdentity(string(a.id))
			So(errors.Cause(err), ShouldEqual, ErrIdentityNotFound)
		})
	})
}
