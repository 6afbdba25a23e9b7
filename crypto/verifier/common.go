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

// Package verifier signs and verifies the content digests of hash-stable objects.
package verifier

import (
	"github.com/pkg/errors"

	ca "github.com/CovenantSQL/multichain/crypto/asymmetric"
	"github.com/CovenantSQL/multichain/crypto/hash"
)

// MarshalHasher is the interface implemented by an object that can be stably marshalling hashed.
type MarshalHasher interface {
	MarshalHash() ([]byte, error)
}

// Digest returns THashH of the stable encoding of mh.
func Digest(mh MarshalHasher) (h hash.Hash, err error) {
	var enc []byte
	if enc, err = mh.MarshalHash(); err != nil {
		err = errors.Wrap(err, "marshal hash failed")
		return
	}
	h = hash.THashH(enc)
	return
}

// SignDigest signs digest with signer and returns the DER form of the signature.
func SignDigest(digest hash.Hash, signer *ca.PrivateKey) (sig []byte, err error) {
	var s *ca.Signature
	if s, err = signer.Sign(digest[:]); err != nil {
		err = errors.Wrap(err, "sign digest failed")
		return
	}
	sig = s.Serialize()
	return
}

// VerifyDigest checks that the DER signature sig was produced over digest by signee.
func VerifyDigest(digest hash.Hash, sig []byte, signee *ca.PublicKey) (err error) {
	if signee == nil {
		return ErrMissingSignee
	}
	var s *ca.Signature
	if s, err = ca.ParseDERSignature(sig); err != nil {
		return errors.Wrap(ErrSignatureNotMatch, err.Error())
	}
	if !s.Verify(digest[:], signee) {
		return errors.WithStack(ErrSignatureNotMatch)
	}
	return
}

// VerifyHash recomputes the digest of mh and compares it with expected.
func VerifyHash(mh MarshalHasher, expected hash.Hash) (err error) {
	var h hash.Hash
	if h, err = Digest(mh); err != nil {
		return
	}
	if !h.IsEqual(&expected) {
		return errors.WithStack(ErrHashValueNotMatch)
	}
	return
}
