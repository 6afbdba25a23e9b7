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
	"time"

	hsp "github.com/CovenantSQL/HashStablePack/marshalhash"

	ca "github.com/CovenantSQL/multichain/crypto/asymmetric"
	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/crypto/verifier"
	"github.com/CovenantSQL/multichain/proto"
)

// Header is the signed content of a block.
type Header struct {
	Benefactor                proto.Identity
	Beneficiary               proto.Identity
	AgreementBenefactor       []byte
	AgreementBeneficiary      []byte
	SequenceNumberBenefactor  uint64
	SequenceNumberBeneficiary uint64
	PreviousHashBenefactor    hash.Hash
	PreviousHashBeneficiary   hash.Hash
	Timestamp                 time.Time
}

// headerFields is the number of fields covered by MarshalHash.
const headerFields = 9

// MarshalHash marshals the header fields in their canonical order for hash.
func (z *Header) MarshalHash() (o []byte, err error) {
	o = hsp.Require(nil, z.Msgsize())
	o = hsp.AppendArrayHeader(o, headerFields)
	o = hsp.AppendString(o, string(z.Benefactor))
	o = hsp.AppendString(o, string(z.Beneficiary))
	o = hsp.AppendBytes(o, z.AgreementBenefactor)
	o = hsp.AppendBytes(o, z.AgreementBeneficiary)
	o = hsp.AppendUint64(o, z.SequenceNumberBenefactor)
	o = hsp.AppendUint64(o, z.SequenceNumberBeneficiary)
	o = hsp.AppendBytes(o, z.PreviousHashBenefactor[:])
	o = hsp.AppendBytes(o, z.PreviousHashBeneficiary[:])
	o = hsp.AppendTime(o, z.Timestamp)
	return
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message.
func (z *Header) Msgsize() (s int) {
	s = hsp.ArrayHeaderSize +
		2*hsp.StringPrefixSize + len(z.Benefactor) + len(z.Beneficiary) +
		2*hsp.BytesPrefixSize + len(z.AgreementBenefactor) + len(z.AgreementBeneficiary) +
		2*hsp.Uint64Size +
		2*(hsp.BytesPrefixSize+hash.HashSize) +
		hsp.TimeSize
	return
}

// ContentHash returns the digest both parties sign.
func (z *Header) ContentHash() (hash.Hash, error) {
	return verifier.Digest(z)
}

// Sign signs the content hash of the header and returns the DER signature.
func (z *Header) Sign(signer *ca.PrivateKey) (sig []byte, err error) {
	var digest hash.Hash
	if digest, err = z.ContentHash(); err != nil {
		return
	}
	return verifier.SignDigest(digest, signer)
}

// RoleOf returns the role played by id in the header.
func (z *Header) RoleOf(id proto.Identity) (Role, bool) {
	switch id {
	case z.Benefactor:
		return Benefactor, true
	case z.Beneficiary:
		return Beneficiary, true
	default:
		return Benefactor, false
	}
}

// Party returns the identity taking role r.
func (z *Header) Party(r Role) proto.Identity {
	if r == Beneficiary {
		return z.Beneficiary
	}
	return z.Benefactor
}

// Agreement returns the agreement payload of role r.
func (z *Header) Agreement(r Role) []byte {
	if r == Beneficiary {
		return z.AgreementBeneficiary
	}
	return z.AgreementBenefactor
}

// SequenceNumber returns the sequence number of the block in the chain of role r.
func (z *Header) SequenceNumber(r Role) uint64 {
	if r == Beneficiary {
		return z.SequenceNumberBeneficiary
	}
	return z.SequenceNumberBenefactor
}

// PreviousHash returns the hash of the previous block in the chain of role r.
func (z *Header) PreviousHash(r Role) hash.Hash {
	if r == Beneficiary {
		return z.PreviousHashBeneficiary
	}
	return z.PreviousHashBenefactor
}

// SetLink sets the chain position of role r.
func (z *Header) SetLink(r Role, seq uint64, prev hash.Hash) {
	if r == Beneficiary {
		z.SequenceNumberBeneficiary, z.PreviousHashBeneficiary = seq, prev
		return
	}
	z.SequenceNumberBenefactor, z.PreviousHashBenefactor = seq, prev
}
