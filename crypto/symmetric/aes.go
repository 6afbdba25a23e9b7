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

// Package symmetric implements the password based encryption of local key files.
package symmetric

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/crypto"
	"github.com/CovenantSQL/multichain/crypto/hash"
)

var (
	// ErrInputSize indicates cipher data size is not expected,
	// maybe data is not encrypted by EncryptWithPassword in this package.
	ErrInputSize = errors.New("cipher data size not match")
)

// keyDerivation does sha256 twice to password and salt.
func keyDerivation(password []byte, salt []byte) (out []byte) {
	in := make([]byte, 0, len(password)+len(salt))
	in = append(in, password...)
	return hash.DoubleHashB(append(in, salt...))
}

// EncryptWithPassword encrypts data with AES-256-CBC, the random iv is placed at the head
// of the output.
func EncryptWithPassword(in, password []byte, salt []byte) (out []byte, err error) {
	keyE := keyDerivation(password, salt)
	paddedIn := crypto.AddPKCSPadding(in)
	out = make([]byte, aes.BlockSize+len(paddedIn))

	iv := out[:aes.BlockSize]
	if _, err = io.ReadFull(rand.Reader, iv); err != nil {
		return nil, errors.Wrap(err, "read random iv failed")
	}

	block, err := aes.NewCipher(keyE)
	if err != nil {
		return nil, errors.Wrap(err, "create cipher failed")
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], paddedIn)
	return out, nil
}

// DecryptWithPassword decrypts data produced by EncryptWithPassword.
func DecryptWithPassword(in, password []byte, salt []byte) (out []byte, err error) {
	// IV + padded cipher data == (n + 1 + 1) * aes.BlockSize
	if len(in)%aes.BlockSize != 0 || len(in)/aes.BlockSize < 2 {
		return nil, ErrInputSize
	}

	block, err := aes.NewCipher(keyDerivation(password, salt))
	if err != nil {
		return nil, errors.Wrap(err, "create cipher failed")
	}
	plainData := make([]byte, len(in)-aes.BlockSize)
	cipher.NewCBCDecrypter(block, in[:aes.BlockSize]).CryptBlocks(plainData, in[aes.BlockSize:])

	return crypto.RemovePKCSPadding(plainData)
}
