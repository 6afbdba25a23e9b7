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

package internal

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/CovenantSQL/multichain/agreement"
	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/types"
)

// CmdHead is cql-multichain head command entity.
var CmdHead = &Command{
	UsageLine: "cql-multichain head [common params] [identity]",
	Short:     "show the head of a personal chain",
	Long: `
Head shows the latest sequence number and block hash of the personal chain of identity, the
local identity if omitted. Identities may be abbreviated to any unique prefix.
`,
}

// CmdChain is cql-multichain chain command entity.
var CmdChain = &Command{
	UsageLine: "cql-multichain chain [common params] [identity]",
	Short:     "list the blocks of a personal chain",
}

// CmdBlock is cql-multichain block command entity.
var CmdBlock = &Command{
	UsageLine: "cql-multichain block [common params] hash",
	Short:     "dump a block",
}

func init() {
	CmdHead.Run = runHead
	CmdChain.Run = runChain
	CmdBlock.Run = runBlock

	addCommonFlags(CmdHead)
	addCommonFlags(CmdChain)
	addCommonFlags(CmdBlock)
}

func optionalArg(args []string) (string, bool) {
	switch len(args) {
	case 0:
		return "", true
	case 1:
		return args[0], true
	default:
		ConsoleLog.Error("too many params")
		SetExitStatus(1)
		return "", false
	}
}

func runHead(cmd *Command, args []string) {
	arg, ok := optionalArg(args)
	if !ok {
		return
	}
	n, chain, ok := openLocal(nil)
	if !ok {
		return
	}
	defer chain.Close()

	id, err := resolveIdentity(chain, n.id, arg)
	if err != nil {
		ConsoleLog.WithError(err).Error("resolve identity failed")
		SetExitStatus(1)
		return
	}
	head, known := chain.Head(id)
	if !known {
		ConsoleLog.Warningf("identity %s has no block in the ledger", id)
	}
	fmt.Printf("identity: %s\nseq: %d\nhash: %s\n", id, head.Seq, head.Hash)
}

func runChain(cmd *Command, args []string) {
	arg, ok := optionalArg(args)
	if !ok {
		return
	}
	n, chain, ok := openLocal(nil)
	if !ok {
		return
	}
	defer chain.Close()

	id, err := resolveIdentity(chain, n.id, arg)
	if err != nil {
		ConsoleLog.WithError(err).Error("resolve identity failed")
		SetExitStatus(1)
		return
	}
	blocks, err := chain.GetPersonalChain(id)
	if err != nil {
		ConsoleLog.WithError(err).Error("load personal chain failed")
		SetExitStatus(1)
		return
	}
	root, _, err := chain.ChainDigest(id)
	if err != nil {
		ConsoleLog.WithError(err).Error("compute chain digest failed")
		SetExitStatus(1)
		return
	}

	fmt.Printf("identity: %s\nblocks: %d\nroot: %s\n", id, len(blocks), root)
	for _, b := range blocks {
		r, _ := b.Header.RoleOf(id)
		fmt.Printf("%6d  %-11s  %s  %s\n",
			b.Header.SequenceNumber(r), r, b.BlockHash, b.Header.Party(r.Counterpart()).Short(16))
	}
}

func runBlock(cmd *Command, args []string) {
	if len(args) != 1 {
		ConsoleLog.Error("block command needs a block hash as param")
		SetExitStatus(1)
		return
	}
	h, err := hash.NewHashFromStr(args[0])
	if err != nil {
		ConsoleLog.WithError(err).Error("invalid block hash")
		SetExitStatus(1)
		return
	}
	_, chain, ok := openLocal(nil)
	if !ok {
		return
	}
	defer chain.Close()

	b, err := chain.GetByHash(*h)
	if err != nil {
		ConsoleLog.WithError(err).Error("load block failed")
		SetExitStatus(1)
		return
	}

	var codec agreement.Codec
	fmt.Printf("block: %s\ntimestamp: %s\nverification: %s\n",
		b.BlockHash, b.Header.Timestamp, b.Verify(codec))
	spewCfg := spew.NewDefaultConfig()
	spewCfg.MaxDepth = 4
	for _, r := range types.Roles {
		fmt.Printf("%s: %s seq %d previous %s\n",
			r, b.Header.Party(r), b.Header.SequenceNumber(r), b.Header.PreviousHash(r))
		if m, err := codec.Decode(b.Header.Agreement(r)); err == nil {
			spewCfg.Dump(m)
		} else {
			ConsoleLog.WithError(err).Warningf("decode %s agreement failed", r)
		}
	}
}
