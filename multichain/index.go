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

package multichain

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tchap/go-patricia/patricia"

	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/merkle"
	"github.com/CovenantSQL/multichain/proto"
)

// identityIndex resolves identities from hex prefixes. It is guarded by the heads lock of
// its chain.
type identityIndex struct {
	trie *patricia.Trie
}

func newIdentityIndex() *identityIndex {
	return &identityIndex{
		trie: patricia.NewTrie(patricia.MaxPrefixPerNode(16), patricia.MaxChildrenPerSparseNode(17)),
	}
}

func (x *identityIndex) insert(id proto.Identity) {
	x.trie.Insert(patricia.Prefix(id), id)
}

func (x *identityIndex) resolve(prefix string) (id proto.Identity, err error) {
	var n int
	if err = x.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		if n++; n > 1 {
			return ErrAmbiguousIdentity
		}
		id = item.(proto.Identity)
		return nil
	}); err != nil {
		return "", errors.Wrapf(err, "prefix %q", prefix)
	}
	if n == 0 {
		return "", errors.Wrapf(ErrIdentityNotFound, "prefix %q", prefix)
	}
	return
}

// ResolveIdentity returns the unique known identity starting with prefix.
func (c *Chain) ResolveIdentity(prefix string) (proto.Identity, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", errors.Wrap(ErrIdentityNotFound, "empty prefix")
	}
	c.headsLock.RLock()
	defer c.headsLock.RUnlock()
	return c.index.resolve(prefix)
}

// ChainDigest returns the merkle root of the block hashes of the personal chain of id, and
// the chain length. Two ledgers holding the same personal chain yield the same digest.
func (c *Chain) ChainDigest(id proto.Identity) (root hash.Hash, n int, err error) {
	var hashes []hash.Hash
	if hashes, err = c.st.PersonalChain(id); err != nil {
		return
	}
	return merkle.Root(hashes), len(hashes), nil
}
