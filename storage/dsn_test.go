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
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDSN(t *testing.T) {
	Convey("Given a DSN with parameters", t, func() {
		dsn, err := NewDSN("file:ledger.db?_journal_mode=WAL&cache=shared")
		So(err, ShouldBeNil)
		So(dsn.GetFileName(), ShouldEqual, "ledger.db")
		v, ok := dsn.GetParam("cache")
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, "shared")
		So(dsn.Format(), ShouldEqual, "file:ledger.db?_journal_mode=WAL&cache=shared")

		Convey("A clone should be independent", func() {
			c := dsn.Clone()
			c.AddParam("cache", "")
			c.AddParam("_query_only", "on")
			c.SetFileName("other.db")
			So(c.Format(), ShouldEqual, "file:other.db?_journal_mode=WAL&_query_only=on")
			So(dsn.Format(), ShouldEqual, "file:ledger.db?_journal_mode=WAL&cache=shared")
		})
	})
	Convey("Plain file names should be accepted", t, func() {
		dsn, err := NewDSN("/tmp/ledger.db")
		So(err, ShouldBeNil)
		So(dsn.Format(), ShouldEqual, "file:/tmp/ledger.db")
		_, ok := dsn.GetParam("cache")
		So(ok, ShouldBeFalse)
	})
	Convey("Malformed strings should be rejected", t, func() {
		_, err := NewDSN("file:ledger.db?cache")
		So(errors.Cause(err), ShouldEqual, ErrInvalidDSN)
		_, err = NewDSN("file:")
		So(errors.Cause(err), ShouldEqual, ErrInvalidDSN)
	})
}
