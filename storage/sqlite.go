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

package storage

import (
	"database/sql"

	sqlite3 "github.com/CovenantSQL/go-sqlite3-encrypt"
	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/utils/log"
)

const ledgerDriver = "sqlite3-ledger"

func init() {
	sql.Register(ledgerDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(c *sqlite3.SQLiteConn) (err error) {
			if _, err = c.Exec("PRAGMA synchronous=FULL", nil); err != nil {
				return
			}
			return
		},
	})
}

// SQLite3 holds a single writer handle and a query-only reader handle on one sqlite file
// in WAL mode, so that readers never wait for an open write transaction.
type SQLite3 struct {
	filename string
	reader   *sql.DB
	writer   *sql.DB
}

// NewSqlite returns a new SQLite3 instance attached to filename, which may carry DSN
// parameters such as _crypto_key for an encrypted ledger file. The file is created if it
// does not exist.
func NewSqlite(filename string) (s *SQLite3, err error) {
	var dsn *DSN
	if dsn, err = NewDSN(filename); err != nil {
		return
	}
	dsnRO := dsn.Clone()
	dsnRO.AddParam("_journal_mode", "WAL")
	dsnRO.AddParam("_query_only", "on")
	dsnRO.AddParam("_busy_timeout", "30000")

	dsnRW := dsn.Clone()
	dsnRW.AddParam("_journal_mode", "WAL")
	dsnRW.AddParam("_busy_timeout", "30000")

	instance := &SQLite3{filename: dsn.GetFileName()}
	if instance.writer, err = sql.Open(ledgerDriver, dsnRW.Format()); err != nil {
		return nil, errors.Wrap(err, "open writer failed")
	}
	// One connection serializes all write transactions of the process.
	instance.writer.SetMaxOpenConns(1)
	if err = instance.writer.Ping(); err != nil {
		instance.writer.Close()
		return nil, errors.Wrapf(err, "open ledger file %s failed", instance.filename)
	}
	if instance.reader, err = sql.Open(ledgerDriver, dsnRO.Format()); err != nil {
		instance.writer.Close()
		return nil, errors.Wrap(err, "open reader failed")
	}

	log.WithField("file", instance.filename).Debug("sqlite ledger file opened")
	s = instance
	return
}

// FileName returns the file name of the database.
func (s *SQLite3) FileName() string {
	return s.filename
}

// Reader returns the query-only handle.
func (s *SQLite3) Reader() *sql.DB {
	return s.reader
}

// Writer returns the read-write handle.
func (s *SQLite3) Writer() *sql.DB {
	return s.writer
}

// Close closes both handles.
func (s *SQLite3) Close() (err error) {
	if err = s.reader.Close(); err != nil {
		return
	}
	return s.writer.Close()
}
