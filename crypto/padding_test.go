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

package crypto

import (
	"bytes"
	"crypto/aes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPKCSPadding(t *testing.T) {
	Convey("Padding should always add between 1 and a full block", t, func() {
		for _, n := range []int{0, 1, 15, 16, 17, 100} {
			in := bytes.Repeat([]byte{0x5a}, n)
			padded := AddPKCSPadding(in)
			So(len(padded)%aes.BlockSize, ShouldEqual, 0)
			So(len(padded), ShouldBeGreaterThan, n)
			out, err := RemovePKCSPadding(padded)
			So(err, ShouldBeNil)
			So(bytes.Equal(out, in), ShouldBeTrue)
		}
	})
	Convey("Malformed padding should be rejected", t, func() {
		_, err := RemovePKCSPadding([]byte{0x1})
		So(err, ShouldEqual, ErrInvalidPadding)
		bad := bytes.Repeat([]byte{0x3}, aes.BlockSize)
		bad[aes.BlockSize-2] = 0x4
		_, err = RemovePKCSPadding(bad)
		So(err, ShouldEqual, ErrInvalidPadding)
		_, err = RemovePKCSPadding(make([]byte, aes.BlockSize))
		So(err, ShouldEqual, ErrInvalidPadding)
	})
}
