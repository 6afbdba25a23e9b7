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

package kms

import (
	"bytes"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/crypto/asymmetric"
	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/crypto/symmetric"
	"github.com/CovenantSQL/multichain/utils/log"
)

// keySalt is mixed into the master key of every private key file.
var keySalt = []byte("multichain-private-key-salt")

var (
	// ErrNotKeyFile indicates specified key file is empty.
	ErrNotKeyFile = errors.New("private key file empty")
	// ErrHashNotMatch indicates specified key hash is wrong.
	ErrHashNotMatch = errors.New("private key hash not match")
)

// LoadPrivateKey loads private key from keyFilePath, and verifies the hash head.
func LoadPrivateKey(keyFilePath string, masterKey []byte) (key *asymmetric.PrivateKey, err error) {
	fileContent, err := ioutil.ReadFile(keyFilePath)
	if err != nil {
		log.WithField("path", keyFilePath).WithError(err).Error("read key file failed")
		return nil, errors.Wrap(err, "read key file failed")
	}

	decData, err := symmetric.DecryptWithPassword(fileContent, masterKey, keySalt)
	if err != nil {
		log.WithField("path", keyFilePath).Error("decrypt private key failed")
		return nil, errors.Wrap(err, "decrypt private key failed")
	}

	// sha256 + privateKey
	if len(decData) != hash.HashBSize+asymmetric.PrivateKeyBytesLen {
		log.WithField("path", keyFilePath).Errorf("private key file size should be %d bytes",
			hash.HashBSize+asymmetric.PrivateKeyBytesLen)
		return nil, ErrNotKeyFile
	}

	computedHash := hash.DoubleHashB(decData[hash.HashBSize:])
	if !bytes.Equal(computedHash, decData[:hash.HashBSize]) {
		return nil, ErrHashNotMatch
	}

	key, _ = asymmetric.PrivKeyFromBytes(decData[hash.HashBSize:])
	return
}

// SavePrivateKey saves private key with its hash on the head to keyFilePath,
// default perm is 0600.
func SavePrivateKey(keyFilePath string, key *asymmetric.PrivateKey, masterKey []byte) (err error) {
	serializedKey := key.Serialize()
	rawData := append(hash.DoubleHashB(serializedKey), serializedKey...)
	encKey, err := symmetric.EncryptWithPassword(rawData, masterKey, keySalt)
	if err != nil {
		return errors.Wrap(err, "encrypt private key failed")
	}
	return errors.Wrap(ioutil.WriteFile(keyFilePath, encKey, 0600), "write key file failed")
}
