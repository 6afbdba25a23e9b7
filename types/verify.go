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
	"fmt"

	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/crypto/verifier"
)

// VerificationStatus is the outcome of a block verification.
type VerificationStatus int

const (
	// Valid means every check passed.
	Valid VerificationStatus = iota
	// HashMismatch means the stored block hash is not the hash of the block content.
	HashMismatch
	// BadSignature means the signature of one side does not verify.
	BadSignature
	// AgreementMismatch means the two agreement copies are not the same contract.
	AgreementMismatch
)

func (s VerificationStatus) String() string {
	switch s {
	case Valid:
		return "Valid"
	case HashMismatch:
		return "HashMismatch"
	case BadSignature:
		return "BadSignature"
	case AgreementMismatch:
		return "AgreementMismatch"
	default:
		return "Unknown"
	}
}

// VerificationResult is the finding of Block.Verify. Side is only meaningful for
// BadSignature.
type VerificationResult struct {
	Status VerificationStatus
	Side   Role
	Reason string
}

// IsValid returns true if the block passed every check.
func (r VerificationResult) IsValid() bool {
	return r.Status == Valid
}

func (r VerificationResult) String() string {
	switch r.Status {
	case Valid:
		return r.Status.String()
	case BadSignature:
		return fmt.Sprintf("%s(%s): %s", r.Status, r.Side, r.Reason)
	default:
		return fmt.Sprintf("%s: %s", r.Status, r.Reason)
	}
}

// Err returns nil for a valid result, or ErrBlockVerification annotated with the finding.
func (r VerificationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	return errors.Wrap(ErrBlockVerification, r.String())
}

// Verify checks the block hash, both signatures and the agreement copies, in this order,
// and reports the first finding. Agreements are compared byte-wise if codec is nil.
func (b *Block) Verify(codec AgreementCodec) VerificationResult {
	computed, err := b.ComputeHash()
	if err != nil {
		return VerificationResult{Status: HashMismatch, Reason: err.Error()}
	}
	if !computed.IsEqual(&b.BlockHash) {
		return VerificationResult{
			Status: HashMismatch,
			Reason: fmt.Sprintf("computed %s, recorded %s", computed, b.BlockHash),
		}
	}

	var digest hash.Hash
	if digest, err = b.Header.ContentHash(); err != nil {
		return VerificationResult{Status: HashMismatch, Reason: err.Error()}
	}
	for _, r := range Roles {
		id := b.Header.Party(r)
		if err = id.Validate(); err != nil {
			return VerificationResult{Status: BadSignature, Side: r, Reason: err.Error()}
		}
		pub, err := id.PublicKey()
		if err != nil {
			return VerificationResult{Status: BadSignature, Side: r, Reason: err.Error()}
		}
		if err = verifier.VerifyDigest(digest, b.Signature(r), pub); err != nil {
			return VerificationResult{Status: BadSignature, Side: r, Reason: err.Error()}
		}
	}

	bf, bn := b.Header.AgreementBenefactor, b.Header.AgreementBeneficiary
	if codec == nil {
		if !bytes.Equal(bf, bn) {
			return VerificationResult{Status: AgreementMismatch, Reason: "agreement payloads differ"}
		}
		return VerificationResult{Status: Valid}
	}
	for _, r := range Roles {
		if _, err = codec.DecodeAgreement(b.Header.Agreement(r)); err != nil {
			return VerificationResult{
				Status: AgreementMismatch,
				Reason: fmt.Sprintf("decode %s agreement: %v", r, err),
			}
		}
	}
	equal, err := codec.EqualAgreements(bf, bn)
	if err != nil {
		return VerificationResult{Status: AgreementMismatch, Reason: err.Error()}
	}
	if !equal {
		return VerificationResult{Status: AgreementMismatch, Reason: "agreements describe different contracts"}
	}
	return VerificationResult{Status: Valid}
}
