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

package utils

import (
	"bytes"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type testRecord struct {
	Name   string
	Amount uint64
	Tags   map[string]string
	When   time.Time
}

func TestMsgPack(t *testing.T) {
	Convey("Given a record with a map field", t, func() {
		rec := &testRecord{
			Name:   "mortgage",
			Amount: 250000,
			Tags:   map[string]string{"b": "2", "a": "1", "c": "3"},
			When:   time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC),
		}

		Convey("Plain encoding should round trip", func() {
			buf, err := EncodeMsgPack(rec)
			So(err, ShouldBeNil)
			var out testRecord
			So(DecodeMsgPack(buf.Bytes(), &out), ShouldBeNil)
			So(out.Name, ShouldEqual, rec.Name)
			So(out.Tags, ShouldResemble, rec.Tags)
			So(out.When.Equal(rec.When), ShouldBeTrue)
		})
		Convey("Canonical encoding should be stable across runs", func() {
			first, err := EncodeMsgPackCanonical(rec)
			So(err, ShouldBeNil)
			for i := 0; i < 16; i++ {
				again, err := EncodeMsgPackCanonical(rec)
				So(err, ShouldBeNil)
				So(bytes.Equal(first, again), ShouldBeTrue)
			}
			var out testRecord
			So(DecodeMsgPackCanonical(first, &out), ShouldBeNil)
			So(out.Amount, ShouldEqual, rec.Amount)
		})
	})
	Convey("NormalizeTime should strip the location", t, func() {
		loc := time.FixedZone("UTC+8", 8*3600)
		local := time.Date(2018, 6, 1, 20, 0, 0, 0, loc)
		n := NormalizeTime(local)
		So(n.Location(), ShouldEqual, time.UTC)
		So(n.Equal(local), ShouldBeTrue)
	})
}
