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

	"github.com/CovenantSQL/multichain/conf"
)

// CmdIdentity is cql-multichain identity command entity.
var CmdIdentity = &Command{
	UsageLine: "cql-multichain identity [common params]",
	Short:     "show the identity of the private key",
}

func init() {
	CmdIdentity.Run = runIdentity

	addCommonFlags(CmdIdentity)
}

func runIdentity(cmd *Command, args []string) {
	if !configInit() {
		return
	}
	n, err := loadNode(conf.GConf, []byte(password))
	if err != nil {
		ConsoleLog.WithError(err).Error("load private key failed")
		SetExitStatus(1)
		return
	}
	fmt.Printf("identity: %s\n", n.id)
}
