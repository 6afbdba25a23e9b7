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

package asymmetric

import (
	"bytes"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

var (
	priv *PrivateKey
	pub  *PublicKey
)

func init() {
	var err error
	if priv, pub, err = GenSecp256k1KeyPair(); err != nil {
		panic(err)
	}
}

func TestSign(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{
			name: "Test curve",
			key: []byte{
				0xea, 0xf0, 0x2c, 0xa3, 0x48, 0xc5, 0x24, 0xe6,
				0x39, 0x26, 0x55, 0xba, 0x4d, 0x29, 0x60, 0x3c,
				0xd1, 0xa7, 0x34, 0x7d, 0x9d, 0x65, 0xcf, 0xe9,
				0x3c, 0xe1, 0xeb, 0xff, 0xdc, 0xa2, 0x26, 0x94,
			},
		},
	}

	for _, test := range tests {
		priv, pub := PrivKeyFromBytes(test.key)
		hash := []byte{0x0, 0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8, 0x9}
		sig, err := priv.Sign(hash)
		if err != nil {
			t.Errorf("%s could not sign: %v", test.name, err)
			continue
		}
		if !sig.Verify(hash, pub) {
			t.Errorf("%s could not verify", test.name)
			continue
		}
		if serializedKey := priv.Serialize(); !bytes.Equal(serializedKey, test.key) {
			t.Errorf("%s unexpected serialized bytes - got: %x, want: %x", test.name,
				serializedKey, test.key)
		}
		targetSig, err := ParseDERSignature(sig.Serialize())
		if err != nil {
			t.Errorf("%s could not parse serialized signature: %v", test.name, err)
			continue
		}
		if !sig.IsEqual(targetSig) {
			t.Errorf("%s unexpected signature - got: %x, want: %x", test.name,
				targetSig.Serialize(), sig.Serialize())
		}
	}
}

func TestKeys(t *testing.T) {
	Convey("Given a generated key pair", t, func() {
		digest := make([]byte, 32)
		rand.Read(digest)

		Convey("The compressed public key should parse back to the same key", func() {
			enc := pub.Serialize()
			So(len(enc), ShouldEqual, PublicKeyBytesLen)
			parsed, err := ParsePubKey(enc)
			So(err, ShouldBeNil)
			So(parsed.IsEqual(pub), ShouldBeTrue)
			So(priv.PubKey().IsEqual(pub), ShouldBeTrue)
		})
		Convey("A signature should only verify under its own key and digest", func() {
			sig, err := priv.Sign(digest)
			So(err, ShouldBeNil)
			So(sig.Verify(digest, pub), ShouldBeTrue)

			_, other, err := GenSecp256k1KeyPair()
			So(err, ShouldBeNil)
			So(other.IsEqual(pub), ShouldBeFalse)
			So(sig.Verify(digest, other), ShouldBeFalse)

			tampered := append([]byte(nil), digest...)
			tampered[0] ^= 0xff
			So(sig.Verify(tampered, pub), ShouldBeFalse)
			So(sig.Verify(digest, nil), ShouldBeFalse)
		})
		Convey("Malformed encodings should be reported", func() {
			_, err := ParsePubKey([]byte{0x02, 0x01})
			So(err, ShouldNotBeNil)
			_, err = ParseDERSignature([]byte{0x30, 0x01})
			So(err, ShouldNotBeNil)
		})
		Convey("Nil public keys should compare by identity", func() {
			var a, b *PublicKey
			So(a.IsEqual(b), ShouldBeTrue)
			So(a.IsEqual(pub), ShouldBeFalse)
		})
	})
}

func BenchmarkSign(b *testing.B) {
	var hash [32]byte
	rand.Read(hash[:])
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := priv.Sign(hash[:]); err != nil {
			b.Fatalf("Error occurred: %v", err)
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	var hash [32]byte
	rand.Read(hash[:])
	sig, err := priv.Sign(hash[:])
	if err != nil {
		b.Fatalf("Error occurred: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !sig.Verify(hash[:], pub) {
			b.Fatalf("Failed to verify signature")
		}
	}
}
