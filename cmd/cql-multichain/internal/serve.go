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
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CovenantSQL/multichain/agreement"
	"github.com/CovenantSQL/multichain/api"
	"github.com/CovenantSQL/multichain/conf"
	"github.com/CovenantSQL/multichain/metric"
	"github.com/CovenantSQL/multichain/multichain"
	"github.com/CovenantSQL/multichain/utils"
)

// CmdServe is cql-multichain serve command entity.
var CmdServe = &Command{
	UsageLine: "cql-multichain serve [common params]",
	Short:     "serve the ledger query API and metrics",
	Long: `
Serve exposes the local ledger on the API listen address of the config, as REST under /v1
and as JSON-RPC over websocket on /v1/ws. Metrics are served on /metrics, on the metric
listen address if one is configured.
`,
}

func init() {
	CmdServe.Run = runServe

	addCommonFlags(CmdServe)
}

// startServers starts the API server of chain, and the metric server if cfg has one.
func startServers(cfg *conf.Config, chain *multichain.Chain, registry *prometheus.Registry) (
	servers []*http.Server, err error,
) {
	apiRegistry := registry
	if cfg.Metric != nil {
		apiRegistry = nil
	}
	var server *http.Server
	if server, err = api.StartAPI(
		cfg.API.ListenAddr, api.NewHandler(chain, agreement.Codec{}, apiRegistry),
	); err != nil {
		return
	}
	servers = append(servers, server)
	ConsoleLog.Infof("api server started on %s", cfg.API.ListenAddr)

	if cfg.Metric != nil {
		router := mux.NewRouter()
		router.Handle("/metrics", metric.Handler(registry)).Methods("GET")
		if server, err = api.StartAPI(cfg.Metric.ListenAddr, router); err != nil {
			stopServers(servers)
			return nil, err
		}
		servers = append(servers, server)
		ConsoleLog.Infof("metric server started on %s", cfg.Metric.ListenAddr)
	}
	return
}

func stopServers(servers []*http.Server) {
	for _, s := range servers {
		if err := api.StopAPI(s); err != nil {
			ConsoleLog.WithError(err).Warning("stop server failed")
		}
	}
}

func runServe(cmd *Command, args []string) {
	registry, err := metric.NewRegistry()
	if err != nil {
		ConsoleLog.WithError(err).Error("create metric registry failed")
		SetExitStatus(1)
		return
	}
	n, chain, ok := openLocal(registry)
	if !ok {
		return
	}
	defer chain.Close()

	servers, err := startServers(conf.GConf, chain, registry)
	if err != nil {
		ConsoleLog.WithError(err).Error("start servers failed")
		SetExitStatus(1)
		return
	}
	defer stopServers(servers)

	ConsoleLog.Infof("serving the ledger of %s", n.id)
	sig := <-utils.WaitForExit()
	ConsoleLog.Infof("received %s, stopping", sig)
}
