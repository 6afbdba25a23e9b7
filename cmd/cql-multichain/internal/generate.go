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
	"io/ioutil"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"

	"github.com/CovenantSQL/multichain/conf"
	"github.com/CovenantSQL/multichain/crypto/asymmetric"
	"github.com/CovenantSQL/multichain/crypto/kms"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/utils"
)

// CmdGenerate is cql-multichain generate command entity.
var CmdGenerate = &Command{
	UsageLine: "cql-multichain generate [common params] [-force] [-backend sqlite|leveldb] [-full-view] [-api-listen addr]",
	Short:     "generate a private key and a config file",
	Long: `
Generate creates a new private key and writes a config file using it, the key is stored
next to the config file and encrypted with the master key password.
e.g.
    cql-multichain generate -config ~/.multichain/config.yaml -backend leveldb
`,
}

var (
	generateForce     bool
	generateBackend   string
	generateFullView  bool
	generateAPIListen string
)

func init() {
	CmdGenerate.Run = runGenerate

	addCommonFlags(CmdGenerate)
	CmdGenerate.Flag.BoolVar(&generateForce, "force", false, "Overwrite an existing config file and key")
	CmdGenerate.Flag.StringVar(&generateBackend, "backend", conf.DefaultLedgerBackend, "Ledger storage backend: sqlite or leveldb")
	CmdGenerate.Flag.BoolVar(&generateFullView, "full-view", false, "Record blocks between any parties instead of the local ones only")
	CmdGenerate.Flag.StringVar(&generateAPIListen, "api-listen", conf.DefaultAPIListenAddr, "Listen address of the query API")
}

func runGenerate(cmd *Command, args []string) {
	setConsoleLogLevel()
	configFile = utils.HomeDirExpand(configFile)
	if utils.Exist(configFile) && !generateForce {
		ConsoleLog.Errorf("config file %s already exists, use -force to overwrite it", configFile)
		SetExitStatus(1)
		return
	}
	if !passwordInit() {
		return
	}

	dir := filepath.Dir(configFile)
	if err := utils.EnsureDir(dir, 0700); err != nil {
		ConsoleLog.WithError(err).Error("create config directory failed")
		SetExitStatus(1)
		return
	}
	cfg := conf.NewConfig(dir)
	cfg.Ledger.Backend = generateBackend
	cfg.Ledger.FullView = generateFullView
	cfg.Ledger.VerifyOnAdd = true
	cfg.API.ListenAddr = generateAPIListen
	if err := cfg.Validate(); err != nil {
		ConsoleLog.WithError(err).Error("invalid config")
		SetExitStatus(1)
		return
	}

	priv, _, err := asymmetric.GenSecp256k1KeyPair()
	if err != nil {
		ConsoleLog.WithError(err).Error("generate key pair failed")
		SetExitStatus(1)
		return
	}
	if err = kms.SavePrivateKey(cfg.KeyFile(), priv, []byte(password)); err != nil {
		ConsoleLog.WithError(err).Error("save private key failed")
		SetExitStatus(1)
		return
	}

	// the working root defaults to the config directory on load
	out := *cfg
	out.WorkingRoot = ""
	enc, err := yaml.Marshal(&out)
	if err != nil {
		ConsoleLog.WithError(err).Error("marshal config failed")
		SetExitStatus(1)
		return
	}
	if err = ioutil.WriteFile(configFile, enc, 0600); err != nil {
		ConsoleLog.WithError(err).Error("write config file failed")
		SetExitStatus(1)
		return
	}

	ConsoleLog.Infof("private key file: %s", cfg.KeyFile())
	ConsoleLog.Infof("config file: %s", configFile)
	fmt.Printf("identity: %s\n", proto.NewIdentity(priv.PubKey()))
}
