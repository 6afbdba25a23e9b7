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

package proto

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/CovenantSQL/multichain/crypto/asymmetric"
)

func TestIdentity(t *testing.T) {
	Convey("Given an identity derived from a public key", t, func() {
		_, pub, err := asymmetric.GenSecp256k1KeyPair()
		So(err, ShouldBeNil)
		id := NewIdentity(pub)
		So(len(id), ShouldEqual, 2*asymmetric.PublicKeyBytesLen)
		So(id.IsEmpty(), ShouldBeFalse)

		Convey("It should parse back to the same key", func() {
			parsed, err := id.PublicKey()
			So(err, ShouldBeNil)
			So(parsed.IsEqual(pub), ShouldBeTrue)
			So(id.Validate(), ShouldBeNil)
		})
		Convey("Short should truncate", func() {
			So(id.Short(8), ShouldEqual, string(id)[:8])
			So(id.Short(1000), ShouldEqual, string(id))
			So(id.String(), ShouldEqual, string(id))
		})
		Convey("Non canonical forms should be rejected", func() {
			upper := Identity(strings.ToUpper(string(id)))
			So(errors.Cause(upper.Validate()), ShouldEqual, ErrInvalidIdentity)
		})
	})
	Convey("Malformed identities should be rejected", t, func() {
		So(Identity("").Validate(), ShouldEqual, ErrEmptyIdentity)
		So(errors.Cause(Identity("zz").Validate()), ShouldEqual, ErrInvalidIdentity)
		So(errors.Cause(Identity("02ab").Validate()), ShouldEqual, ErrInvalidIdentity)
		So(errors.Cause(Identity("02"+strings.Repeat("ff", 32)).Validate()), ShouldEqual, ErrInvalidIdentity)
	})
}
