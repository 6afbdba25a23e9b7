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
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/CovenantSQL/multichain/agreement"
	"github.com/CovenantSQL/multichain/conf"
	"github.com/CovenantSQL/multichain/crypto/asymmetric"
	"github.com/CovenantSQL/multichain/crypto/kms"
	"github.com/CovenantSQL/multichain/multichain"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/utils"
	"github.com/CovenantSQL/multichain/utils/log"
)

const toolName = "cql-multichain"

var (
	// ConsoleLog is logging for console.
	ConsoleLog *logrus.Logger

	// Commands lists the available commands and help topics.
	Commands []*Command
)

// These are general flags used by most commands.
var (
	configFile      string
	password        string
	withPassword    bool
	consoleLogLevel string
)

func init() {
	ConsoleLog = logrus.New()
	ConsoleLog.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
}

func addCommonFlags(cmd *Command) {
	cmd.Flag.StringVar(&configFile, "config", "~/.multichain/config.yaml", "Config file for multichain")
	cmd.Flag.StringVar(&password, "password", "", "Master key password of the private key")
	cmd.Flag.BoolVar(&withPassword, "with-password", false, "Enter the master key password interactively")
	cmd.Flag.StringVar(&consoleLogLevel, "log-level", "info", "Console log level: trace debug info warning error fatal panic")
}

func setConsoleLogLevel() {
	if lvl, err := logrus.ParseLevel(consoleLogLevel); err == nil {
		ConsoleLog.SetLevel(lvl)
	}
}

func readMasterKey() (string, error) {
	fmt.Println("Enter master key(press Enter for default: \"\"): ")
	bytePwd, err := terminal.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(bytePwd), err
}

func passwordInit() bool {
	if withPassword {
		var err error
		if password, err = readMasterKey(); err != nil {
			ConsoleLog.WithError(err).Error("read master key failed")
			SetExitStatus(1)
			return false
		}
	}
	return true
}

// configInit loads the config file into conf.GConf.
func configInit() bool {
	setConsoleLogLevel()
	configFile = utils.HomeDirExpand(configFile)
	cfg, err := conf.LoadConfig(configFile)
	if err != nil {
		ConsoleLog.WithError(err).Error("load config file failed")
		SetExitStatus(1)
		return false
	}
	conf.GConf = cfg
	log.SetStringLevel(cfg.LogLevel, log.InfoLevel)
	return passwordInit()
}

// node is a local participant: its config and its key.
type node struct {
	cfg  *conf.Config
	priv *asymmetric.PrivateKey
	id   proto.Identity
}

func loadNode(cfg *conf.Config, masterKey []byte) (n *node, err error) {
	var priv *asymmetric.PrivateKey
	if priv, err = kms.LoadPrivateKey(cfg.KeyFile(), masterKey); err != nil {
		return
	}
	return &node{
		cfg:  cfg,
		priv: priv,
		id:   proto.NewIdentity(priv.PubKey()),
	}, nil
}

func (n *node) openLedger(registerer prometheus.Registerer) (chain *multichain.Chain, err error) {
	if err = utils.EnsureDir(n.cfg.LedgerDir(), 0700); err != nil {
		return
	}
	mc := &multichain.Config{
		Backend:     n.cfg.Ledger.Backend,
		DataFile:    n.cfg.LedgerFile(n.id),
		CacheSize:   n.cfg.Ledger.CacheSize,
		VerifyOnAdd: n.cfg.Ledger.VerifyOnAdd,
		Codec:       agreement.Codec{},
		Registerer:  registerer,
	}
	if !n.cfg.Ledger.FullView {
		mc.Owner = n.id
	}
	return multichain.NewChain(mc)
}

// openLocal loads the config, the key and the ledger of the local participant.
func openLocal(registerer prometheus.Registerer) (n *node, chain *multichain.Chain, ok bool) {
	if !configInit() {
		return
	}
	var err error
	if n, err = loadNode(conf.GConf, []byte(password)); err != nil {
		ConsoleLog.WithError(err).Error("load private key failed")
		SetExitStatus(1)
		return
	}
	if chain, err = n.openLedger(registerer); err != nil {
		ConsoleLog.WithError(err).Error("open ledger failed")
		SetExitStatus(1)
		return
	}
	return n, chain, true
}

// resolveIdentity returns the identity named by arg: the local identity if arg is empty, a
// full identity, or the unique identity of the ledger starting with arg.
func resolveIdentity(chain *multichain.Chain, self proto.Identity, arg string) (proto.Identity, error) {
	if arg == "" {
		return self, nil
	}
	if id := proto.Identity(arg); id.Validate() == nil {
		return id, nil
	}
	return chain.ResolveIdentity(arg)
}
