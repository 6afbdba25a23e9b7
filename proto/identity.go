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

// Package proto contains the identity type shared by the ledger packages.
package proto

import (
	"encoding/hex"

	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/crypto/asymmetric"
)

var (
	// ErrEmptyIdentity indicates an identity string is empty.
	ErrEmptyIdentity = errors.New("empty identity")
	// ErrInvalidIdentity indicates an identity string is not a compressed public key.
	ErrInvalidIdentity = errors.New("invalid identity")
)

// Identity is the lowercase hex string of the compressed secp256k1 public key of a
// ledger participant.
type Identity string

// NewIdentity returns the identity of pub.
func NewIdentity(pub *asymmetric.PublicKey) Identity {
	return Identity(hex.EncodeToString(pub.Serialize()))
}

// IsEmpty returns true if id is empty.
func (id Identity) IsEmpty() bool {
	return id == ""
}

// String implements fmt.Stringer.
func (id Identity) String() string {
	return string(id)
}

// Short returns the first n characters of id.
func (id Identity) Short(n int) string {
	if n >= len(id) || n < 0 {
		return string(id)
	}
	return string(id[:n])
}

// PublicKey parses id back to its public key.
func (id Identity) PublicKey() (pub *asymmetric.PublicKey, err error) {
	if id.IsEmpty() {
		return nil, ErrEmptyIdentity
	}
	var raw []byte
	if raw, err = hex.DecodeString(string(id)); err != nil {
		return nil, errors.Wrap(ErrInvalidIdentity, err.Error())
	}
	if len(raw) != asymmetric.PublicKeyBytesLen {
		return nil, errors.Wrapf(ErrInvalidIdentity, "unexpected key length %d", len(raw))
	}
	if pub, err = asymmetric.ParsePubKey(raw); err != nil {
		return nil, errors.Wrap(ErrInvalidIdentity, err.Error())
	}
	return
}

// Validate checks that id is the canonical form of a compressed public key.
func (id Identity) Validate() (err error) {
	var pub *asymmetric.PublicKey
	if pub, err = id.PublicKey(); err != nil {
		return
	}
	if NewIdentity(pub) != id {
		return errors.Wrap(ErrInvalidIdentity, "identity is not in canonical form")
	}
	return
}
