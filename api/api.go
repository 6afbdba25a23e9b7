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

// Package api serves read-only queries on a ledger, as a REST API and as JSON-RPC over
// websocket.
package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CovenantSQL/multichain/crypto/hash"
	"github.com/CovenantSQL/multichain/metric"
	"github.com/CovenantSQL/multichain/multichain"
	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/types"
	"github.com/CovenantSQL/multichain/utils/log"
)

var (
	apiTimeout = time.Second * 10
)

// Ledger is the read side of a ledger store.
type Ledger interface {
	GetByHash(h hash.Hash) (*types.Block, error)
	GetByIdentityAndSequenceNumber(id proto.Identity, seq uint64) (*types.Block, error)
	GetPersonalChain(id proto.Identity) ([]*types.Block, error)
	ChainDigest(id proto.Identity) (hash.Hash, int, error)
	Head(id proto.Identity) (multichain.ChainHead, bool)
	Identities() []proto.Identity
	ResolveIdentity(prefix string) (proto.Identity, error)
}

func sendResponse(code int, success bool, msg interface{}, data interface{}, rw http.ResponseWriter) {
	msgStr := "ok"
	if msg != nil {
		msgStr = fmt.Sprint(msg)
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	json.NewEncoder(rw).Encode(map[string]interface{}{
		"status":  msgStr,
		"success": success,
		"data":    data,
	})
}

func sendError(err error, rw http.ResponseWriter) {
	switch errors.Cause(err) {
	case nil:
		sendResponse(http.StatusOK, true, nil, nil, rw)
	case ErrNotFound, multichain.ErrBlockNotFound, multichain.ErrIdentityNotFound:
		sendResponse(http.StatusNotFound, false, err, nil, rw)
	case ErrBadRequest, multichain.ErrAmbiguousIdentity:
		sendResponse(http.StatusBadRequest, false, err, nil, rw)
	default:
		log.WithError(err).Warning("api request failed")
		sendResponse(http.StatusInternalServerError, false, err, nil, rw)
	}
}

func isHex(s string) bool {
	return s != "" && strings.Trim(s, "0123456789abcdefABCDEF") == ""
}

func parseSeq(s string) (seq uint64, err error) {
	if seq, err = strconv.ParseUint(s, 10, 64); err != nil || seq == 0 {
		err = errors.Wrapf(ErrBadRequest, "invalid sequence number %q", s)
	}
	return
}

func parseHash(s string) (h *hash.Hash, err error) {
	if h, err = hash.NewHashFromStr(s); err != nil {
		err = errors.Wrap(ErrBadRequest, err.Error())
	}
	return
}

type ledgerAPI struct {
	ledger Ledger
	codec  types.AgreementCodec
}

// identity parses a full identity, or resolves a unique prefix of a known one.
func (a *ledgerAPI) identity(s string) (id proto.Identity, err error) {
	if id = proto.Identity(s); id.Validate() == nil {
		return
	}
	if !isHex(s) {
		return "", errors.Wrapf(ErrBadRequest, "invalid identity %q", s)
	}
	return a.ledger.ResolveIdentity(s)
}

func (a *ledgerAPI) head(id proto.Identity) map[string]interface{} {
	head, known := a.ledger.Head(id)
	return map[string]interface{}{
		"identity": string(id),
		"known":    known,
		"seq":      head.Seq,
		"hash":     head.Hash.String(),
	}
}

func (a *ledgerAPI) blockByHash(h hash.Hash) (map[string]interface{}, error) {
	b, err := a.ledger.GetByHash(h)
	if err != nil {
		return nil, err
	}
	return a.formatBlock(b), nil
}

func (a *ledgerAPI) blockBySeq(id proto.Identity, seq uint64) (map[string]interface{}, error) {
	b, err := a.ledger.GetByIdentityAndSequenceNumber(id, seq)
	if err != nil {
		return nil, err
	}
	return a.formatBlock(b), nil
}

func (a *ledgerAPI) chain(id proto.Identity) (map[string]interface{}, error) {
	blocks, err := a.ledger.GetPersonalChain(id)
	if err != nil {
		return nil, err
	}
	root, _, err := a.ledger.ChainDigest(id)
	if err != nil {
		return nil, err
	}
	chain := make([]map[string]interface{}, 0, len(blocks))
	for _, b := range blocks {
		role, _ := b.Header.RoleOf(id)
		chain = append(chain, map[string]interface{}{
			"seq":  b.Header.SequenceNumber(role),
			"role": role.String(),
			"hash": b.BlockHash.String(),
		})
	}
	return map[string]interface{}{
		"identity": string(id),
		"root":     root.String(),
		"blocks":   chain,
	}, nil
}

func (a *ledgerAPI) identities() map[string]interface{} {
	ids := a.ledger.Identities()
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		res = append(res, string(id))
	}
	return map[string]interface{}{"identities": res}
}

func (a *ledgerAPI) GetHead(rw http.ResponseWriter, r *http.Request) {
	id, err := a.identity(mux.Vars(r)["identity"])
	if err != nil {
		sendError(err, rw)
		return
	}
	sendResponse(http.StatusOK, true, nil, a.head(id), rw)
}

func (a *ledgerAPI) GetBlockByHash(rw http.ResponseWriter, r *http.Request) {
	h, err := parseHash(mux.Vars(r)["hash"])
	if err != nil {
		sendError(err, rw)
		return
	}
	res, err := a.blockByHash(*h)
	if err != nil {
		sendError(err, rw)
		return
	}
	sendResponse(http.StatusOK, true, nil, res, rw)
}

func (a *ledgerAPI) GetBlockBySeq(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := a.identity(vars["identity"])
	if err != nil {
		sendError(err, rw)
		return
	}
	seq, err := parseSeq(vars["seq"])
	if err != nil {
		sendError(err, rw)
		return
	}
	res, err := a.blockBySeq(id, seq)
	if err != nil {
		sendError(err, rw)
		return
	}
	sendResponse(http.StatusOK, true, nil, res, rw)
}

func (a *ledgerAPI) GetChain(rw http.ResponseWriter, r *http.Request) {
	id, err := a.identity(mux.Vars(r)["identity"])
	if err != nil {
		sendError(err, rw)
		return
	}
	res, err := a.chain(id)
	if err != nil {
		sendError(err, rw)
		return
	}
	sendResponse(http.StatusOK, true, nil, res, rw)
}

func (a *ledgerAPI) GetIdentities(rw http.ResponseWriter, r *http.Request) {
	sendResponse(http.StatusOK, true, nil, a.identities(), rw)
}

func (a *ledgerAPI) formatTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e6
}

func (a *ledgerAPI) formatAgreement(payload []byte) interface{} {
	if a.codec != nil {
		if m, err := a.codec.DecodeAgreement(payload); err == nil {
			return m
		}
	}
	return hex.EncodeToString(payload)
}

func (a *ledgerAPI) formatBlock(b *types.Block) map[string]interface{} {
	sides := make(map[string]interface{}, len(types.Roles))
	for _, r := range types.Roles {
		sides[r.String()] = map[string]interface{}{
			"identity":  string(b.Header.Party(r)),
			"seq":       b.Header.SequenceNumber(r),
			"previous":  b.Header.PreviousHash(r).String(),
			"agreement": a.formatAgreement(b.Header.Agreement(r)),
			"signature": hex.EncodeToString(b.Signature(r)),
		}
	}
	return map[string]interface{}{
		"block": map[string]interface{}{
			"hash":         b.BlockHash.String(),
			"timestamp":    a.formatTime(b.Header.Timestamp),
			"verification": b.Verify(a.codec).String(),
			"sides":        sides,
		},
	}
}

// NewRouter returns the query routes on ledger, and the metrics of registry under
// /metrics if registry is not nil.
func NewRouter(ledger Ledger, codec types.AgreementCodec, registry *prometheus.Registry) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", func(rw http.ResponseWriter, r *http.Request) {
		sendResponse(http.StatusOK, true, nil, nil, rw)
	}).Methods("GET")
	if registry != nil {
		router.Handle("/metrics", metric.Handler(registry)).Methods("GET")
	}

	api := &ledgerAPI{
		ledger: ledger,
		codec:  codec,
	}
	v1Router := router.PathPrefix("/v1").Subrouter()
	v1Router.Handle("/ws", newRPCService(api))
	v1Router.HandleFunc("/identities", api.GetIdentities).Methods("GET")
	v1Router.HandleFunc("/head/{identity}", api.GetHead).Methods("GET")
	v1Router.HandleFunc("/block/{hash}", api.GetBlockByHash).Methods("GET")
	v1Router.HandleFunc("/chain/{identity}", api.GetChain).Methods("GET")
	v1Router.HandleFunc("/chain/{identity}/{seq:[0-9]+}", api.GetBlockBySeq).Methods("GET")
	return router
}

// NewHandler wraps the routes of NewRouter with CORS and panic recovery.
func NewHandler(ledger Ledger, codec types.AgreementCodec, registry *prometheus.Registry) http.Handler {
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.CORS(
			handlers.AllowedHeaders([]string{"Content-Type"}),
			handlers.AllowedMethods([]string{"GET"}),
		)(NewRouter(ledger, codec, registry)),
	)
}

// StartAPI serves handler on listenAddr in the background.
func StartAPI(listenAddr string, handler http.Handler) (server *http.Server, err error) {
	server = &http.Server{
		Addr:         listenAddr,
		WriteTimeout: apiTimeout,
		ReadTimeout:  apiTimeout,
		IdleTimeout:  apiTimeout,
		Handler:      handler,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("start api server failed")
		}
	}()

	return server, err
}

// StopAPI shuts server down.
func StopAPI(server *http.Server) (err error) {
	return server.Shutdown(context.Background())
}
