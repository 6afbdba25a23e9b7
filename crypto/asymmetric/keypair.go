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
	"crypto/ecdsa"

	ec "github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/utils/log"
)

const (
	// PrivateKeyBytesLen defines the length in bytes of a serialized private key.
	PrivateKeyBytesLen = ec.PrivKeyBytesLen
	// PublicKeyBytesLen defines the length in bytes of a compressed public key.
	PublicKeyBytesLen = ec.PubKeyBytesLenCompressed
)

// PrivateKey wraps an ec.PrivateKey as a convenience mainly for signing things with the the
// private key without having to directly import the ecdsa package.
type PrivateKey ec.PrivateKey

// PublicKey wraps an ec.PublicKey as a convenience mainly verifying signatures with the the
// public key without having to directly import the ecdsa package.
type PublicKey ec.PublicKey

// Serialize is a function that converts a public key
// to a byte array in the compressed format.
func (k *PublicKey) Serialize() []byte {
	return (*ec.PublicKey)(k).SerializeCompressed()
}

// IsEqual return true if two keys are equal.
func (k *PublicKey) IsEqual(public *PublicKey) bool {
	if k == nil || public == nil {
		return k == public
	}
	return (*ec.PublicKey)(k).IsEqual((*ec.PublicKey)(public))
}

func (k *PublicKey) toECDSA() *ecdsa.PublicKey {
	return (*ec.PublicKey)(k).ToECDSA()
}

// ParsePubKey recovers the public key from pubKeyStr.
func ParsePubKey(pubKeyStr []byte) (*PublicKey, error) {
	key, err := ec.ParsePubKey(pubKeyStr, ec.S256())
	if err != nil {
		return nil, errors.Wrap(err, "parse public key failed")
	}
	return (*PublicKey)(key), nil
}

// PrivKeyFromBytes returns a private and public key for `curve' based on the private key passed
// as an argument as a byte slice.
func PrivKeyFromBytes(pk []byte) (*PrivateKey, *PublicKey) {
	x, y := ec.PrivKeyFromBytes(ec.S256(), pk)
	return (*PrivateKey)(x), (*PublicKey)(y)
}

// Serialize returns the private key number d as a big-endian binary-encoded number, padded to a
// length of 32 bytes.
func (private *PrivateKey) Serialize() []byte {
	return (*ec.PrivateKey)(private).Serialize()
}

// PubKey return the public key.
func (private *PrivateKey) PubKey() *PublicKey {
	return (*PublicKey)((*ec.PrivateKey)(private).PubKey())
}

// GenSecp256k1KeyPair generate Secp256k1(used by Bitcoin) key pair.
func GenSecp256k1KeyPair() (privateKey *PrivateKey, publicKey *PublicKey, err error) {
	var key *ec.PrivateKey
	if key, err = ec.NewPrivateKey(ec.S256()); err != nil {
		log.WithError(err).Error("private key generation failed")
		return nil, nil, err
	}
	privateKey = (*PrivateKey)(key)
	publicKey = privateKey.PubKey()
	return
}
