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
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"

	"github.com/CovenantSQL/multichain/agreement"
	"github.com/CovenantSQL/multichain/conf"
	"github.com/CovenantSQL/multichain/handshake"
	"github.com/CovenantSQL/multichain/types"
	"github.com/CovenantSQL/multichain/utils"
)

// CmdAgree is cql-multichain agree command entity.
var CmdAgree = &Command{
	UsageLine: "cql-multichain agree [common params] -peer config [-peer-password pass] [-role benefactor|beneficiary] agreement.json",
	Short:     "record an agreement with a local peer",
	Long: `
Agree runs a signing round between the local identity and the peer configured by -peer,
and appends the resulting block to the ledgers of both. The agreement file holds the kind
of the agreement and its fields:
    {"kind": "investment", "agreement": {"Amount": 1000, "Duration": 12}}
e.g.
    cql-multichain agree -peer ~/bank/config.yaml -role beneficiary investment.json
`,
}

var (
	agreePeerConfig   string
	agreePeerPassword string
	agreeRole         string
)

func init() {
	CmdAgree.Run = runAgree

	addCommonFlags(CmdAgree)
	CmdAgree.Flag.StringVar(&agreePeerConfig, "peer", "", "Config file of the counterpart")
	CmdAgree.Flag.StringVar(&agreePeerPassword, "peer-password", "", "Master key password of the counterpart private key")
	CmdAgree.Flag.StringVar(&agreeRole, "role", types.Benefactor.String(), "Role of the local identity: benefactor or beneficiary")
}

func parseRole(s string) (types.Role, bool) {
	for _, r := range types.Roles {
		if strings.EqualFold(r.String(), s) {
			return r, true
		}
	}
	return types.Benefactor, false
}

type agreementFile struct {
	Kind      agreement.Kind  `json:"kind"`
	Agreement json.RawMessage `json:"agreement"`
}

// loadAgreement returns the payload of the agreement described in path.
func loadAgreement(path string) (payload []byte, err error) {
	var (
		raw []byte
		af  agreementFile
		m   agreement.Model
	)
	if raw, err = ioutil.ReadFile(utils.HomeDirExpand(path)); err != nil {
		return nil, errors.Wrap(err, "read agreement file failed")
	}
	if err = json.Unmarshal(raw, &af); err != nil {
		return nil, errors.Wrap(err, "decode agreement file failed")
	}
	if m, err = agreement.New(af.Kind); err != nil {
		return
	}
	if len(af.Agreement) > 0 {
		if err = json.Unmarshal(af.Agreement, m); err != nil {
			return nil, errors.Wrapf(err, "decode %s fields failed", af.Kind)
		}
	}
	return agreement.Codec{}.Encode(m)
}

func runAgree(cmd *Command, args []string) {
	if len(args) != 1 {
		ConsoleLog.Error("agree command needs an agreement file as param")
		SetExitStatus(1)
		return
	}
	if agreePeerConfig == "" {
		ConsoleLog.Error("agree command needs the config of the counterpart, see -peer")
		SetExitStatus(1)
		return
	}
	role, ok := parseRole(agreeRole)
	if !ok {
		ConsoleLog.Errorf("unknown role %q", agreeRole)
		SetExitStatus(1)
		return
	}
	payload, err := loadAgreement(args[0])
	if err != nil {
		ConsoleLog.WithError(err).Error("load agreement failed")
		SetExitStatus(1)
		return
	}

	local, localChain, ok := openLocal(nil)
	if !ok {
		return
	}
	defer localChain.Close()

	peerCfg, err := conf.LoadConfig(utils.HomeDirExpand(agreePeerConfig))
	if err != nil {
		ConsoleLog.WithError(err).Error("load peer config failed")
		SetExitStatus(1)
		return
	}
	peer, err := loadNode(peerCfg, []byte(agreePeerPassword))
	if err != nil {
		ConsoleLog.WithError(err).Error("load peer private key failed")
		SetExitStatus(1)
		return
	}
	if peer.id == local.id {
		ConsoleLog.Error("the peer has the same identity as the local participant")
		SetExitStatus(1)
		return
	}
	peerChain, err := peer.openLedger(nil)
	if err != nil {
		ConsoleLog.WithError(err).Error("open peer ledger failed")
		SetExitStatus(1)
		return
	}
	defer peerChain.Close()

	var (
		codec                   = agreement.Codec{}
		benefactor, beneficiary handshake.Participant
		localPart               = handshake.NewLedgerParticipant(local.priv, localChain, codec)
		peerPart                = handshake.NewLedgerParticipant(peer.priv, peerChain, codec)
		coord                   = handshake.NewCoordinator(handshake.NewOptions(conf.GConf.HandshakeTimeout, codec))
	)
	if role == types.Benefactor {
		benefactor, beneficiary = localPart, peerPart
	} else {
		benefactor, beneficiary = peerPart, localPart
	}

	b, err := coord.Agree(context.Background(), benefactor, beneficiary, payload)
	if err != nil {
		ConsoleLog.WithError(err).Error("agreement round failed")
		SetExitStatus(1)
		return
	}

	fmt.Printf("block: %s\n", b.BlockHash)
	for _, r := range types.Roles {
		fmt.Printf("%-12s %s seq %d\n", r.String()+":", b.Header.Party(r), b.Header.SequenceNumber(r))
	}
}
