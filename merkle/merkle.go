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

// Package merkle computes merkle roots over block hashes.
package merkle

import (
	"github.com/CovenantSQL/multichain/crypto/hash"
)

// Root returns the merkle root of leaves (https://en.wikipedia.org/wiki/Merkle_tree). An odd
// node is merged with itself, the root of a single leaf is the leaf and the root of no leaf
// is the zero hash.
func Root(leaves []hash.Hash) hash.Hash {
	if len(leaves) == 0 {
		return hash.Hash{}
	}
	level := append([]hash.Hash(nil), leaves...)
	for len(level) > 1 {
		next := level[:0]
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, MergeTwoHash(level[i], level[i+1]))
			} else {
				next = append(next, MergeTwoHash(level[i], level[i]))
			}
		}
		level = next
	}
	return level[0]
}

// MergeTwoHash computes the hash of the concatenate of two hash.
func MergeTwoHash(l, r hash.Hash) hash.Hash {
	return hash.THashH(append(append(make([]byte, 0, 2*hash.HashSize), l[:]...), r[:]...))
}
