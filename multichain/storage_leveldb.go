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
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/types"
)

var (
	blockPrefix = []byte("B")
	chainPrefix = []byte("C")
	headPrefix  = []byte("L")
	// chain keys end with a separator before the big endian sequence number, identities
	// are hex so it never appears inside one.
	keySeparator = byte(':')
)

type levelDBStorage struct {
	db *leveldb.DB
}

func openLevelDBStorage(path string) (s *levelDBStorage, err error) {
	var db *leveldb.DB
	if db, err = leveldb.OpenFile(path, &opt.Options{}); err != nil {
		return nil, errors.Wrapf(err, "open leveldb %s failed", path)
	}
	return &levelDBStorage{db: db}, nil
}

func blockKey(h hash.Hash) []byte {
	return append(append([]byte{}, blockPrefix...), h[:]...)
}

func chainKeyPrefix(id proto.Identity) []byte {
	key := append(append([]byte{}, chainPrefix...), string(id)...)
	return append(key, keySeparator)
}

func chainKey(id proto.Identity, seq uint64) []byte {
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	return append(chainKeyPrefix(id), seqBytes[:]...)
}

func headKey(id proto.Identity) []byte {
	return append(append([]byte{}, headPrefix...), string(id)...)
}

func encodeHead(head ChainHead) []byte {
	buf := make([]byte, 8+hash.HashSize)
	binary.BigEndian.PutUint64(buf, head.Seq)
	copy(buf[8:], head.Hash[:])
	return buf
}

func decodeHead(buf []byte) (head ChainHead, err error) {
	if len(buf) != 8+hash.HashSize {
		err = errors.Wrapf(ErrCorruptedBlock, "invalid head record length %d", len(buf))
		return
	}
	head.Seq = binary.BigEndian.Uint64(buf)
	copy(head.Hash[:], buf[8:])
	return
}

func (s *levelDBStorage) Put(b *types.Block, enc []byte) (err error) {
	batch := new(leveldb.Batch)
	batch.Put(blockKey(b.BlockHash), enc)
	for _, r := range types.Roles {
		id, seq := b.Header.Party(r), b.Header.SequenceNumber(r)
		batch.Put(chainKey(id, seq), b.BlockHash[:])

		var current ChainHead
		if current, err = s.head(id); err != nil {
			return
		}
		if seq > current.Seq {
			batch.Put(headKey(id), encodeHead(ChainHead{Seq: seq, Hash: b.BlockHash}))
		}
	}
	return errors.Wrap(s.db.Write(batch, &opt.WriteOptions{Sync: true}), "write block batch failed")
}

func (s *levelDBStorage) head(id proto.Identity) (head ChainHead, err error) {
	var buf []byte
	if buf, err = s.db.Get(headKey(id), nil); err == leveldb.ErrNotFound {
		return ChainHead{}, nil
	} else if err != nil {
		err = errors.Wrap(err, "get chain head failed")
		return
	}
	return decodeHead(buf)
}

func (s *levelDBStorage) Get(h hash.Hash) (enc []byte, err error) {
	if enc, err = s.db.Get(blockKey(h), nil); err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(ErrBlockNotFound, "hash %s", h)
	}
	return enc, errors.Wrap(err, "get block failed")
}

func (s *levelDBStorage) Lookup(id proto.Identity, seq uint64) (h hash.Hash, err error) {
	var buf []byte
	if buf, err = s.db.Get(chainKey(id, seq), nil); err == leveldb.ErrNotFound {
		err = errors.Wrapf(ErrBlockNotFound, "identity %s seq %d", id, seq)
		return
	} else if err != nil {
		err = errors.Wrap(err, "get chain index failed")
		return
	}
	err = h.SetBytes(buf)
	return
}

func (s *levelDBStorage) PersonalChain(id proto.Identity) (hashes []hash.Hash, err error) {
	iter := s.db.NewIterator(util.BytesPrefix(chainKeyPrefix(id)), nil)
	defer iter.Release()
	for iter.Next() {
		var h hash.Hash
		if err = h.SetBytes(iter.Value()); err != nil {
			return nil, errors.Wrap(err, "decode block hash failed")
		}
		hashes = append(hashes, h)
	}
	return hashes, errors.Wrap(iter.Error(), "iterate personal chain failed")
}

func (s *levelDBStorage) Heads() (heads map[proto.Identity]ChainHead, err error) {
	iter := s.db.NewIterator(util.BytesPrefix(headPrefix), nil)
	defer iter.Release()
	heads = make(map[proto.Identity]ChainHead)
	for iter.Next() {
		var head ChainHead
		if head, err = decodeHead(iter.Value()); err != nil {
			return nil, err
		}
		id := proto.Identity(bytes.TrimPrefix(iter.Key(), headPrefix))
		heads[id] = head
	}
	return heads, errors.Wrap(iter.Error(), "iterate chain heads failed")
}

func (s *levelDBStorage) Count() (n uint64, err error) {
	iter := s.db.NewIterator(util.BytesPrefix(blockPrefix), nil)
	defer iter.Release()
	for iter.Next() {
		n++
	}
	return n, errors.Wrap(iter.Error(), "count blocks failed")
}

func (s *levelDBStorage) Close() error {
	return s.db.Close()
}
