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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/CovenantSQL/multichain/agreement"
	"github.com/CovenantSQL/multichain/crypto/asymmetric"
	"github.com/CovenantSQL/multichain/multichain"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/utils/log"
)

var (
	testDataDir string
	codec       agreement.Codec
)

func newTestChain() *multichain.Chain {
	return newOwnedChain("")
}

// newOwnedChain returns a ledger only recording the blocks of owner, or every block if
// owner is empty.
func newOwnedChain(owner proto.Identity) *multichain.Chain {
	dir, err := ioutil.TempDir(testDataDir, "ledger")
	if err != nil {
		panic(err)
	}
	chain, err := multichain.NewChain(&multichain.Config{
		DataFile:    filepath.Join(dir, "ledger.db"),
		Codec:       codec,
		VerifyOnAdd: true,
		Owner:       owner,
	})
	if err != nil {
		panic(err)
	}
	return chain
}

func newTestParticipant(chain *multichain.Chain) *LedgerParticipant {
	priv, _, err := asymmetric.GenSecp256k1KeyPair()
	if err != nil {
		panic(err)
	}
	return NewLedgerParticipant(priv, chain, codec)
}

// newOwnedParticipant returns a participant recording its blocks in a ledger it owns.
func newOwnedParticipant() (*LedgerParticipant, *multichain.Chain) {
	priv, pub, err := asymmetric.GenSecp256k1KeyPair()
	if err != nil {
		panic(err)
	}
	chain := newOwnedChain(proto.NewIdentity(pub))
	return NewLedgerParticipant(priv, chain, codec), chain
}

func testLoan(amount uint64) []byte {
	enc, err := codec.Encode(&agreement.LoanRequest{
		ID:           agreement.NewID(),
		HouseID:      agreement.NewID(),
		MortgageType: 1,
		Description:  "terraced house",
		AmountWanted: amount,
	})
	if err != nil {
		panic(err)
	}
	return enc
}

func TestMain(m *testing.M) {
	os.Exit(func() int {
		var err error
		log.SetLevel(log.DebugLevel)
		if testDataDir, err = ioutil.TempDir("", "handshake"); err != nil {
			panic(err)
		}
		defer os.RemoveAll(testDataDir)
		return m.Run()
	}())
}
