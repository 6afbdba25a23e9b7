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
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/CovenantSQL/multichain/crypto/hash"
)

func TestOpenStorage(t *testing.T) {
	Convey("Unknown backends should be refused", t, func() {
		_, err := OpenStorage("bolt", testDataFile("bolt"))
		So(errors.Cause(err), ShouldEqual, ErrUnknownBackend)
		_, err = NewChain(&Config{Backend: "bolt", DataFile: testDataFile("bolt")})
		So(errors.Cause(err), ShouldEqual, ErrUnknownBackend)
	})
	Convey("The empty backend name should select sqlite", t, func() {
		st, err := OpenStorage("", testDataFile(BackendSQLite))
		So(err, ShouldBeNil)
		_, ok := st.(*sqliteStorage)
		So(ok, ShouldBeTrue)
		So(st.Close(), ShouldBeNil)
	})
}

func TestStorageIndex(t *testing.T) {
	for _, backend := range backends {
		Convey("Given a "+backend+" storage holding two blocks", t, func() {
			st, err := OpenStorage(backend, testDataFile(backend))
			So(err, ShouldBeNil)
			Reset(func() { st.Close() })

			a, b, c := newTestParty(), newTestParty(), newTestParty()
			first := newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)
			second := newBlock(c, a, 1, 2, hash.Genesis, first.BlockHash)
			enc, err := first.Encode()
			So(err, ShouldBeNil)
			So(st.Put(first, enc), ShouldBeNil)
			enc, err = second.Encode()
			So(err, ShouldBeNil)
			So(st.Put(second, enc), ShouldBeNil)

			Convey("Blocks should be reachable by hash and by position", func() {
				got, err := st.Get(second.BlockHash)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, enc)

				h, err := st.Lookup(a.id, 2)
				So(err, ShouldBeNil)
				So(h, ShouldResemble, second.BlockHash)
				h, err = st.Lookup(b.id, 1)
				So(err, ShouldBeNil)
				So(h, ShouldResemble, first.BlockHash)
				_, err = st.Lookup(b.id, 2)
				So(errors.Cause(err), ShouldEqual, ErrBlockNotFound)

				hashes, err := st.PersonalChain(a.id)
				So(err, ShouldBeNil)
				So(hashes, ShouldResemble, []hash.Hash{first.BlockHash, second.BlockHash})

				n, err := st.Count()
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
			Convey("Heads should hold the latest position of every identity", func() {
				heads, err := st.Heads()
				So(err, ShouldBeNil)
				So(heads, ShouldHaveLength, 3)
				So(heads[a.id], ShouldResemble, ChainHead{Seq: 2, Hash: second.BlockHash})
				So(heads[b.id], ShouldResemble, ChainHead{Seq: 1, Hash: first.BlockHash})
				So(heads[c.id], ShouldResemble, ChainHead{Seq: 1, Hash: second.BlockHash})
			})
		})
	}
}

func TestCorruptionDetection(t *testing.T) {
	Convey("Given blocks stored under swapped keys", t, func() {
		a, b := newTestParty(), newTestParty()
		first := newBlock(a, b, 1, 1, hash.Genesis, hash.Genesis)
		second := newBlock(b, a, 2, 2, first.BlockHash, first.BlockHash)
		enc, err := second.Encode()
		So(err, ShouldBeNil)

		Convey("The sqlite backend should report the corruption", func() {
			st, err := openSQLiteStorage(testDataFile(BackendSQLite))
			So(err, ShouldBeNil)
			chain, err := NewChainWithStorage(&Config{Codec: codec}, st)
			So(err, ShouldBeNil)
			defer chain.Close()
			So(chain.AddBlock(first), ShouldBeNil)

			_, err = st.st.Writer().Exec(
				`UPDATE "blocks" SET "encoded"=? WHERE "hash"=?`, enc, first.BlockHash.String())
			So(err, ShouldBeNil)
			chain.cache.Purge()
			_, err = chain.GetByHash(first.BlockHash)
			So(errors.Cause(err), ShouldEqual, ErrCorruptedBlock)

			_, err = st.st.Writer().Exec(
				`UPDATE "blocks" SET "encoded"=? WHERE "hash"=?`, []byte{0x1, 0x2}, first.BlockHash.String())
			So(err, ShouldBeNil)
			_, err = chain.GetByIdentityAndSequenceNumber(a.id, 1)
			So(errors.Cause(err), ShouldEqual, ErrCorruptedBlock)
		})
		Convey("The leveldb backend should report the corruption", func() {
			st, err := openLevelDBStorage(testDataFile(BackendLevelDB))
			So(err, ShouldBeNil)
			chain, err := NewChainWithStorage(&Config{Codec: codec}, st)
			So(err, ShouldBeNil)
			defer chain.Close()
			So(chain.AddBlock(first), ShouldBeNil)

			So(st.db.Put(blockKey(first.BlockHash), enc, nil), ShouldBeNil)
			chain.cache.Purge()
			_, err = chain.GetByHash(first.BlockHash)
			So(errors.Cause(err), ShouldEqual, ErrCorruptedBlock)
			So(errors.Cause(chain.ValidatePersonalChain(a.id)), ShouldEqual, ErrCorruptedBlock)
		})
	})
}
