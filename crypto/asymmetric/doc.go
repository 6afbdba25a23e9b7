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

/*
Package asymmetric wraps the secp256k1 implementation of btcd for the keys of
ledger participants.

An identity in a bilateral ledger is the compressed serialization of its
secp256k1 public key. Both parties of an agreement sign the content digest of a
block with their private key, and anybody holding the block can verify both
signatures from the identities recorded in it.

Signatures produced by PrivateKey.Sign are deterministic (RFC6979) and
canonical (BIP0062), and are serialized in DER form when embedded in a block.
*/
package asymmetric
