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
	hsp "github.com/CovenantSQL/HashStablePack/marshalhash"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/utils"
)

// AgreementCodec decodes and compares the agreement payloads carried by blocks.
type AgreementCodec interface {
	DecodeAgreement(payload []byte) (interface{}, error)
	EqualAgreements(a, b []byte) (bool, error)
}

// Block is an immutable record of one bilateral agreement.
type Block struct {
	Header               Header
	SignatureBenefactor  []byte
	SignatureBeneficiary []byte
	BlockHash            hash.Hash
}

// NewBlockFromSignedConfirm builds the block of a finalized message. Both agreement
// payloads must decode with codec and both signatures must be present; the signatures
// themselves are checked by Verify.
func NewBlockFromSignedConfirm(msg *SignedConfirm, codec AgreementCodec) (b *Block, err error) {
	if msg == nil {
		return nil, errors.Wrap(ErrMalformedPayload, "nil message")
	}
	h := msg.Header
	if h.Benefactor.IsEmpty() || h.Beneficiary.IsEmpty() {
		return nil, errors.Wrap(ErrMalformedPayload, "missing party identity")
	}
	if h.Benefactor == h.Beneficiary {
		return nil, errors.Wrap(ErrMalformedPayload, "benefactor and beneficiary are the same identity")
	}
	for _, r := range Roles {
		if err = h.Party(r).Validate(); err != nil {
			return nil, errors.Wrapf(ErrMalformedPayload, "invalid %s identity: %v", r, err)
		}
		if h.SequenceNumber(r) == 0 {
			return nil, errors.Wrapf(ErrMalformedPayload, "zero %s sequence number", r)
		}
		if len(msg.Signature(r)) == 0 {
			return nil, errors.Wrapf(ErrMalformedPayload, "missing %s signature", r)
		}
		if codec != nil {
			if _, err = codec.DecodeAgreement(h.Agreement(r)); err != nil {
				return nil, errors.Wrapf(ErrMalformedPayload, "decode %s agreement: %v", r, err)
			}
		}
	}

	h.Timestamp = utils.NormalizeTime(h.Timestamp)
	b = &Block{
		Header:               h,
		SignatureBenefactor:  append([]byte(nil), msg.SignatureBenefactor...),
		SignatureBeneficiary: append([]byte(nil), msg.SignatureBeneficiary...),
	}
	b.Header.AgreementBenefactor = append([]byte(nil), h.AgreementBenefactor...)
	b.Header.AgreementBeneficiary = append([]byte(nil), h.AgreementBeneficiary...)
	if b.BlockHash, err = b.ComputeHash(); err != nil {
		return nil, errors.Wrap(err, "compute block hash failed")
	}
	return
}

// ComputeHash returns the hash of the header together with both signatures.
func (b *Block) ComputeHash() (h hash.Hash, err error) {
	var enc []byte
	if enc, err = b.Header.MarshalHash(); err != nil {
		return
	}
	o := hsp.Require(nil, hsp.ArrayHeaderSize+3*hsp.BytesPrefixSize+
		len(enc)+len(b.SignatureBenefactor)+len(b.SignatureBeneficiary))
	o = hsp.AppendArrayHeader(o, 3)
	o = hsp.AppendBytes(o, enc)
	o = hsp.AppendBytes(o, b.SignatureBenefactor)
	o = hsp.AppendBytes(o, b.SignatureBeneficiary)
	h = hash.THashH(o)
	return
}

// Hash returns the block hash.
func (b *Block) Hash() hash.Hash {
	return b.BlockHash
}

// Signature returns the signature of role r.
func (b *Block) Signature(r Role) []byte {
	if r == Beneficiary {
		return b.SignatureBeneficiary
	}
	return b.SignatureBenefactor
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	return deepcopy.Copy(b).(*Block)
}

// Encode returns the persistent encoding of the block.
func (b *Block) Encode() ([]byte, error) {
	buf, err := utils.EncodeMsgPack(b)
	if err != nil {
		return nil, errors.Wrap(err, "encode block failed")
	}
	return buf.Bytes(), nil
}

// DecodeBlock reverses Block.Encode.
func DecodeBlock(enc []byte) (b *Block, err error) {
	b = &Block{}
	if err = utils.DecodeMsgPack(enc, b); err != nil {
		return nil, errors.Wrap(err, "decode block failed")
	}
	b.Header.Timestamp = utils.NormalizeTime(b.Header.Timestamp)
	return
}
