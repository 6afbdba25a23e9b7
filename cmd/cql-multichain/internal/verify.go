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
	"sort"

	"github.com/CovenantSQL/multichain/proto"
)

// CmdVerify is cql-multichain verify command entity.
var CmdVerify = &Command{
	UsageLine: "cql-multichain verify [common params] [-workers n] [-all] [identity]",
	Short:     "audit the personal chains of the ledger",
	Long: `
Verify checks the continuity and the signatures of the personal chain of identity, the local
identity if omitted, or of every personal chain of the ledger with -all.
`,
}

var (
	verifyAll     bool
	verifyWorkers int
)

func init() {
	CmdVerify.Run = runVerify

	addCommonFlags(CmdVerify)
	CmdVerify.Flag.BoolVar(&verifyAll, "all", false, "Verify every personal chain of the ledger")
	CmdVerify.Flag.IntVar(&verifyWorkers, "workers", 4, "Number of chains verified concurrently with -all")
}

func runVerify(cmd *Command, args []string) {
	arg, ok := optionalArg(args)
	if !ok {
		return
	}
	n, chain, ok := openLocal(nil)
	if !ok {
		return
	}
	defer chain.Close()

	if verifyAll {
		failures := chain.ValidateAll(verifyWorkers)
		ids := make([]string, 0, len(failures))
		for id := range failures {
			ids = append(ids, string(id))
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("FAIL %s: %v\n", id, failures[proto.Identity(id)])
		}
		if len(failures) > 0 {
			SetExitStatus(1)
			return
		}
		fmt.Printf("OK %d chains\n", chain.IdentityCount())
		return
	}

	id, err := resolveIdentity(chain, n.id, arg)
	if err != nil {
		ConsoleLog.WithError(err).Error("resolve identity failed")
		SetExitStatus(1)
		return
	}
	if err = chain.ValidatePersonalChain(id); err != nil {
		fmt.Printf("FAIL %s: %v\n", id, err)
		SetExitStatus(1)
		return
	}
	fmt.Printf("OK %s seq %d\n", id, chain.GetLatestSequenceNumber(id))
}
