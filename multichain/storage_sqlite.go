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
	"database/sql"

	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/storage"
	"github.com/CovenantSQL/multichain/types"
	"github.com/CovenantSQL/multichain/utils/log"
)

var ddls = [...]string{
	`CREATE TABLE IF NOT EXISTS "blocks" (
		"hash"				TEXT PRIMARY KEY,
		"benefactor"		TEXT NOT NULL,
		"beneficiary"		TEXT NOT NULL,
		"seq_benefactor"	INTEGER NOT NULL,
		"seq_beneficiary"	INTEGER NOT NULL,
		"prev_benefactor"	TEXT NOT NULL,
		"prev_beneficiary"	TEXT NOT NULL,
		"timestamp"			INTEGER NOT NULL,
		"encoded"			BLOB NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS "chain" (
		"identity"	TEXT NOT NULL,
		"seq"		INTEGER NOT NULL,
		"role"		INTEGER NOT NULL,
		"hash"		TEXT NOT NULL,
		PRIMARY KEY ("identity", "seq")
	);`,

	`CREATE INDEX IF NOT EXISTS "idx__chain__hash" ON "chain" ("hash");`,
}

type storageProcedure func(tx *sql.Tx) error

type sqliteStorage struct {
	st *storage.SQLite3
}

func openSQLiteStorage(path string) (s *sqliteStorage, err error) {
	var st *storage.SQLite3
	if st, err = storage.NewSqlite(path); err != nil {
		return
	}
	for _, v := range ddls {
		if _, err = st.Writer().Exec(v); err != nil {
			st.Close()
			return nil, errors.Wrap(err, v)
		}
	}
	return &sqliteStorage{st: st}, nil
}

// store runs sps in one write transaction.
func (s *sqliteStorage) store(sps ...storageProcedure) (err error) {
	var tx *sql.Tx
	if tx, err = s.st.Writer().Begin(); err != nil {
		return errors.Wrap(err, "begin transaction failed")
	}
	defer tx.Rollback()
	for _, sp := range sps {
		if err = sp(tx); err != nil {
			return
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction failed")
	}
	log.Debugf("committed database tx %p", tx)
	return
}

func insertBlock(b *types.Block, enc []byte) storageProcedure {
	return func(tx *sql.Tx) (err error) {
		h := &b.Header
		_, err = tx.Exec(`INSERT INTO "blocks" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.BlockHash.String(),
			string(h.Benefactor),
			string(h.Beneficiary),
			h.SequenceNumberBenefactor,
			h.SequenceNumberBeneficiary,
			h.PreviousHashBenefactor.String(),
			h.PreviousHashBeneficiary.String(),
			h.Timestamp.UnixNano(),
			enc,
		)
		return errors.Wrap(err, "insert block failed")
	}
}

func insertChainIndex(b *types.Block, r types.Role) storageProcedure {
	return func(tx *sql.Tx) (err error) {
		_, err = tx.Exec(`INSERT INTO "chain" VALUES (?, ?, ?, ?)`,
			string(b.Header.Party(r)),
			b.Header.SequenceNumber(r),
			int(r),
			b.BlockHash.String(),
		)
		return errors.Wrapf(err, "insert %s chain index failed", r)
	}
}

func (s *sqliteStorage) Put(b *types.Block, enc []byte) error {
	return s.store(
		insertBlock(b, enc),
		insertChainIndex(b, types.Benefactor),
		insertChainIndex(b, types.Beneficiary),
	)
}

func (s *sqliteStorage) Get(h hash.Hash) (enc []byte, err error) {
	err = s.st.Reader().QueryRow(
		`SELECT "encoded" FROM "blocks" WHERE "hash"=?`, h.String()).Scan(&enc)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrBlockNotFound, "hash %s", h)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query block failed")
	}
	return
}

func (s *sqliteStorage) Lookup(id proto.Identity, seq uint64) (h hash.Hash, err error) {
	var hs string
	err = s.st.Reader().QueryRow(
		`SELECT "hash" FROM "chain" WHERE "identity"=? AND "seq"=?`, string(id), seq).Scan(&hs)
	if err == sql.ErrNoRows {
		err = errors.Wrapf(ErrBlockNotFound, "identity %s seq %d", id, seq)
		return
	}
	if err != nil {
		err = errors.Wrap(err, "query chain index failed")
		return
	}
	err = hash.Decode(&h, hs)
	return
}

func (s *sqliteStorage) PersonalChain(id proto.Identity) (hashes []hash.Hash, err error) {
	var rows *sql.Rows
	if rows, err = s.st.Reader().Query(
		`SELECT "hash" FROM "chain" WHERE "identity"=? ORDER BY "seq"`, string(id),
	); err != nil {
		return nil, errors.Wrap(err, "query personal chain failed")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			hs string
			h  hash.Hash
		)
		if err = rows.Scan(&hs); err != nil {
			return nil, errors.Wrap(err, "scan personal chain failed")
		}
		if err = hash.Decode(&h, hs); err != nil {
			return nil, errors.Wrap(err, "decode block hash failed")
		}
		hashes = append(hashes, h)
	}
	return hashes, errors.Wrap(rows.Err(), "iterate personal chain failed")
}

func (s *sqliteStorage) Heads() (heads map[proto.Identity]ChainHead, err error) {
	var rows *sql.Rows
	if rows, err = s.st.Reader().Query(
		`SELECT "c"."identity", "c"."seq", "c"."hash" FROM "chain" AS "c"
		INNER JOIN (
			SELECT "identity", MAX("seq") AS "seq" FROM "chain" GROUP BY "identity"
		) AS "m" ON "c"."identity"="m"."identity" AND "c"."seq"="m"."seq"`,
	); err != nil {
		return nil, errors.Wrap(err, "query chain heads failed")
	}
	defer rows.Close()
	heads = make(map[proto.Identity]ChainHead)
	for rows.Next() {
		var (
			id   string
			head ChainHead
			hs   string
		)
		if err = rows.Scan(&id, &head.Seq, &hs); err != nil {
			return nil, errors.Wrap(err, "scan chain head failed")
		}
		if err = hash.Decode(&head.Hash, hs); err != nil {
			return nil, errors.Wrap(err, "decode head hash failed")
		}
		heads[proto.Identity(id)] = head
	}
	return heads, errors.Wrap(rows.Err(), "iterate chain heads failed")
}

func (s *sqliteStorage) Count() (n uint64, err error) {
	err = errors.Wrap(
		s.st.Reader().QueryRow(`SELECT COUNT(*) FROM "blocks"`).Scan(&n), "count blocks failed")
	return
}

func (s *sqliteStorage) Close() error {
	return s.st.Close()
}
