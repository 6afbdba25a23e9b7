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

package types

import (
	"bytes"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/CovenantSQL/multichain/agreement"
	"github.com/CovenantSQL/multichain/crypto/hash"
)

func TestNewBlockFromSignedConfirm(t *testing.T) {
	Convey("Given a message signed by both parties", t, func() {
		bf, bn := newTestParty(), newTestParty()
		msg := signedConfirm(bf, bn, 1, 1, hash.Genesis, hash.Genesis)

		Convey("The block should carry every field of the message", func() {
			b, err := NewBlockFromSignedConfirm(msg, codec)
			So(err, ShouldBeNil)
			So(b.Header.Benefactor, ShouldEqual, bf.id)
			So(b.Header.Beneficiary, ShouldEqual, bn.id)
			So(b.Header.SequenceNumber(Benefactor), ShouldEqual, 1)
			So(b.Header.PreviousHash(Beneficiary).IsGenesis(), ShouldBeTrue)
			So(b.Header.Timestamp.Equal(msg.Header.Timestamp), ShouldBeTrue)
			So(b.Header.Timestamp.Location(), ShouldEqual, time.UTC)
			So(bytes.Equal(b.Signature(Beneficiary), msg.SignatureBeneficiary), ShouldBeTrue)

			decoded, err := codec.Decode(b.Header.AgreementBenefactor)
			So(err, ShouldBeNil)
			So(decoded.Kind(), ShouldEqual, agreement.KindMortgage)

			h, err := b.ComputeHash()
			So(err, ShouldBeNil)
			So(h, ShouldResemble, b.BlockHash)
			So(b.Hash(), ShouldResemble, b.BlockHash)
		})
		Convey("The block should not alias the message buffers", func() {
			b, err := NewBlockFromSignedConfirm(msg, codec)
			So(err, ShouldBeNil)
			msg.SignatureBenefactor[0] ^= 0xff
			msg.Header.AgreementBeneficiary[0] ^= 0xff
			So(b.Verify(codec).IsValid(), ShouldBeTrue)
		})
		Convey("Different content should give different hashes", func() {
			b1, err := NewBlockFromSignedConfirm(msg, codec)
			So(err, ShouldBeNil)
			msg2 := signedConfirm(bf, bn, 2, 1, b1.BlockHash, hash.Genesis)
			b2, err := NewBlockFromSignedConfirm(msg2, codec)
			So(err, ShouldBeNil)
			So(b1.BlockHash, ShouldNotResemble, b2.BlockHash)
		})
		Convey("Malformed messages should be rejected", func() {
			cases := []func(m *SignedConfirm){
				func(m *SignedConfirm) { m.SignatureBenefactor = nil },
				func(m *SignedConfirm) { m.SignatureBeneficiary = []byte{} },
				func(m *SignedConfirm) { m.Header.AgreementBenefactor = []byte("garbage") },
				func(m *SignedConfirm) { m.Header.AgreementBeneficiary = nil },
				func(m *SignedConfirm) { m.Header.SequenceNumberBeneficiary = 0 },
				func(m *SignedConfirm) { m.Header.Benefactor = "" },
				func(m *SignedConfirm) { m.Header.Beneficiary = "not-a-key" },
				func(m *SignedConfirm) { m.Header.Beneficiary = m.Header.Benefactor },
			}
			for _, mutate := range cases {
				m := signedConfirm(bf, bn, 1, 1, hash.Genesis, hash.Genesis)
				mutate(m)
				_, err := NewBlockFromSignedConfirm(m, codec)
				So(errors.Cause(err), ShouldEqual, ErrMalformedPayload)
			}
			_, err := NewBlockFromSignedConfirm(nil, codec)
			So(errors.Cause(err), ShouldEqual, ErrMalformedPayload)
		})
	})
}

func TestBlockEncoding(t *testing.T) {
	Convey("Given a block", t, func() {
		bf, bn := newTestParty(), newTestParty()
		b, err := NewBlockFromSignedConfirm(
			signedConfirm(bf, bn, 3, 7, generateRandomHash(), generateRandomHash()), codec)
		So(err, ShouldBeNil)

		Convey("The persistent encoding should round trip", func() {
			enc, err := b.Encode()
			So(err, ShouldBeNil)
			decoded, err := DecodeBlock(enc)
			So(err, ShouldBeNil)
			So(decoded.BlockHash, ShouldResemble, b.BlockHash)
			So(decoded.Header.Timestamp.Equal(b.Header.Timestamp), ShouldBeTrue)
			So(decoded.Verify(codec).IsValid(), ShouldBeTrue)
			h, err := decoded.ComputeHash()
			So(err, ShouldBeNil)
			So(h, ShouldResemble, b.BlockHash)
		})
		Convey("A clone should be independent", func() {
			c := b.Clone()
			So(c.BlockHash, ShouldResemble, b.BlockHash)
			So(c.Header.Timestamp.Equal(b.Header.Timestamp), ShouldBeTrue)
			c.SignatureBenefactor[0] ^= 0xff
			c.Header.SequenceNumberBenefactor++
			So(b.Verify(codec).IsValid(), ShouldBeTrue)
			So(c.Verify(codec).IsValid(), ShouldBeFalse)
			var nilBlock *Block
			So(nilBlock.Clone(), ShouldBeNil)
		})
		Convey("Garbage should not decode", func() {
			_, err := DecodeBlock([]byte{0xc1})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestHeaderSelectors(t *testing.T) {
	Convey("Role selectors should pick the matching fields", t, func() {
		bf, bn := newTestParty(), newTestParty()
		h := &Header{Benefactor: bf.id, Beneficiary: bn.id}
		prev := generateRandomHash()
		h.SetLink(Benefactor, 4, prev)
		h.SetLink(Beneficiary, 9, hash.Genesis)

		So(h.SequenceNumberBenefactor, ShouldEqual, 4)
		So(h.PreviousHashBenefactor, ShouldResemble, prev)
		So(h.SequenceNumber(Beneficiary), ShouldEqual, 9)

		r, ok := h.RoleOf(bn.id)
		So(ok, ShouldBeTrue)
		So(r, ShouldEqual, Beneficiary)
		So(h.Party(r.Counterpart()), ShouldEqual, bf.id)
		_, ok = h.RoleOf(newTestParty().id)
		So(ok, ShouldBeFalse)

		So(Benefactor.String(), ShouldEqual, "Benefactor")
		So(Role(5).Valid(), ShouldBeFalse)
		So(Role(5).String(), ShouldEqual, "Unknown")
	})
	Convey("The content hash should depend on every field", t, func() {
		bf, bn := newTestParty(), newTestParty()
		base := signedConfirm(bf, bn, 1, 1, hash.Genesis, hash.Genesis).Header
		h0, err := base.ContentHash()
		So(err, ShouldBeNil)

		mutations := []func(h *Header){
			func(h *Header) { h.Benefactor, h.Beneficiary = h.Beneficiary, h.Benefactor },
			func(h *Header) { h.AgreementBenefactor = append([]byte{0}, h.AgreementBenefactor...) },
			func(h *Header) { h.SequenceNumberBenefactor = 2 },
			func(h *Header) { h.SequenceNumberBeneficiary = 2 },
			func(h *Header) { h.PreviousHashBeneficiary = generateRandomHash() },
			func(h *Header) { h.Timestamp = h.Timestamp.Add(time.Nanosecond) },
		}
		for _, mutate := range mutations {
			h := base
			mutate(&h)
			hm, err := h.ContentHash()
			So(err, ShouldBeNil)
			So(hm, ShouldNotResemble, h0)
		}

		utc := base
		utc.Timestamp = utc.Timestamp.UTC()
		hu, err := utc.ContentHash()
		So(err, ShouldBeNil)
		So(hu, ShouldResemble, h0)
	})
}
