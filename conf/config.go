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

package conf

import (
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	validator "gopkg.in/go-playground/validator.v9"
	yaml "gopkg.in/yaml.v2"

	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/utils"
	"github.com/CovenantSQL/multichain/utils/log"
)

// LedgerInfo holds the ledger store settings.
type LedgerInfo struct {
	// Backend is "sqlite" or "leveldb".
	Backend     string `yaml:"Backend" validate:"oneof=sqlite leveldb"`
	CacheSize   int    `yaml:"CacheSize" validate:"gte=0"`
	VerifyOnAdd bool   `yaml:"VerifyOnAdd"`
	// FullView makes the ledger record blocks between any parties and check every personal
	// chain strictly. The ledger is owned by the local identity otherwise, it then only records
	// the blocks the local identity takes part in.
	FullView bool `yaml:"FullView"`
}

// ListenInfo holds the address of a served endpoint.
type ListenInfo struct {
	ListenAddr string `yaml:"ListenAddr" validate:"required"`
}

// Config holds all the config read from yaml config file.
type Config struct {
	WorkingRoot      string        `yaml:"WorkingRoot" validate:"required"`
	PrivateKeyFile   string        `yaml:"PrivateKeyFile" validate:"required"`
	LogLevel         string        `yaml:"LogLevel" validate:"oneof=trace debug info warning warn error fatal panic"`
	HandshakeTimeout time.Duration `yaml:"HandshakeTimeout" validate:"gt=0"`

	Ledger *LedgerInfo `yaml:"Ledger" validate:"required"`
	API    *ListenInfo `yaml:"API" validate:"required"`
	// Metric serves /metrics on its own address if set, it is served with the API otherwise.
	Metric *ListenInfo `yaml:"Metric"`
}

// GConf is the global config pointer.
var GConf *Config

// NewConfig returns a config rooted at workingRoot with default settings.
func NewConfig(workingRoot string) *Config {
	c := &Config{WorkingRoot: workingRoot}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.WorkingRoot = utils.HomeDirExpand(c.WorkingRoot)
	if c.PrivateKeyFile == "" {
		c.PrivateKeyFile = DefaultPrivateKeyFile
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Ledger == nil {
		c.Ledger = &LedgerInfo{}
	}
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = DefaultLedgerBackend
	}
	if c.Ledger.CacheSize <= 0 {
		c.Ledger.CacheSize = DefaultBlockCacheSize
	}
	if c.API == nil {
		c.API = &ListenInfo{ListenAddr: DefaultAPIListenAddr}
	}
}

// LoadConfig loads config from configPath. Relative paths of the config are resolved
// against WorkingRoot, which defaults to the directory of configPath.
func LoadConfig(configPath string) (config *Config, err error) {
	configBytes, err := ioutil.ReadFile(configPath)
	if err != nil {
		log.WithError(err).Error("read config file failed")
		return nil, errors.Wrap(err, "read config file failed")
	}
	config = &Config{}
	if err = yaml.Unmarshal(configBytes, config); err != nil {
		log.WithError(err).Error("unmarshal config file failed")
		return nil, errors.Wrap(err, "unmarshal config file failed")
	}
	if config.WorkingRoot == "" {
		config.WorkingRoot = filepath.Dir(configPath)
	}
	config.setDefaults()
	if err = config.Validate(); err != nil {
		log.WithError(err).Error("invalid config file")
		return nil, err
	}
	return
}

// Validate checks the field constraints of the config.
func (c *Config) Validate() (err error) {
	if err = validator.New().Struct(c); err != nil {
		err = errors.Wrap(err, "validate config failed")
	}
	return
}

func (c *Config) abs(path string) string {
	path = utils.HomeDirExpand(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.WorkingRoot, path)
}

// KeyFile returns the path of the private key file.
func (c *Config) KeyFile() string {
	return c.abs(c.PrivateKeyFile)
}

// LedgerDir returns the directory holding the ledgers.
func (c *Config) LedgerDir() string {
	return c.abs(LedgerDirName)
}

// LedgerFile returns the ledger path of identity id, each identity keeps its own ledger.
func (c *Config) LedgerFile(id proto.Identity) string {
	return filepath.Join(c.LedgerDir(), string(id)+"."+c.Ledger.Backend)
}
