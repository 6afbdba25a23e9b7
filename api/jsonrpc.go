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

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sourcegraph/jsonrpc2"
	wsstream "github.com/sourcegraph/jsonrpc2/websocket"

	"github.com/CovenantSQL/multichain/multichain"
	"github.com/CovenantSQL/multichain/utils/log"
)

// CodeNotFound is the JSON-RPC error code of an unknown block.
const CodeNotFound = -32004

// rpcMethod handles the positional params of a JSON-RPC request.
type rpcMethod func(ctx context.Context, params []json.RawMessage) (interface{}, error)

type rpcService struct {
	methods  map[string]rpcMethod
	upgrader websocket.Upgrader
}

func stringParam(params []json.RawMessage, i int) (s string, err error) {
	if i >= len(params) {
		return "", errors.Wrapf(ErrBadRequest, "missing parameter #%d", i)
	}
	if err = json.Unmarshal(params[i], &s); err != nil {
		err = errors.Wrapf(ErrBadRequest, "parameter #%d: %v", i, err)
	}
	return
}

func newRPCService(api *ledgerAPI) *rpcService {
	s := &rpcService{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	s.methods = map[string]rpcMethod{
		"ledger_identities": func(ctx context.Context, params []json.RawMessage) (interface{}, error) {
			return api.identities(), nil
		},
		"ledger_head": func(ctx context.Context, params []json.RawMessage) (interface{}, error) {
			p, err := stringParam(params, 0)
			if err != nil {
				return nil, err
			}
			id, err := api.identity(p)
			if err != nil {
				return nil, err
			}
			return api.head(id), nil
		},
		"ledger_block": func(ctx context.Context, params []json.RawMessage) (interface{}, error) {
			p, err := stringParam(params, 0)
			if err != nil {
				return nil, err
			}
			h, err := parseHash(p)
			if err != nil {
				return nil, err
			}
			return api.blockByHash(*h)
		},
		"ledger_blockBySeq": func(ctx context.Context, params []json.RawMessage) (interface{}, error) {
			p, err := stringParam(params, 0)
			if err != nil {
				return nil, err
			}
			id, err := api.identity(p)
			if err != nil {
				return nil, err
			}
			if len(params) < 2 {
				return nil, errors.Wrap(ErrBadRequest, "missing parameter #1")
			}
			seq, err := parseSeq(string(params[1]))
			if err != nil {
				return nil, err
			}
			return api.blockBySeq(id, seq)
		},
		"ledger_chain": func(ctx context.Context, params []json.RawMessage) (interface{}, error) {
			p, err := stringParam(params, 0)
			if err != nil {
				return nil, err
			}
			id, err := api.identity(p)
			if err != nil {
				return nil, err
			}
			return api.chain(id)
		},
	}
	return s
}

func (s *rpcService) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (
	result interface{}, err error,
) {
	defer func() {
		if p := recover(); p != nil {
			err = &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: fmt.Sprint(p)}
		}
	}()

	fn := s.methods[req.Method]
	if fn == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	}
	var params []json.RawMessage
	if req.Params != nil {
		if err = json.Unmarshal(*req.Params, &params); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
	}
	if result, err = fn(ctx, params); err != nil {
		switch errors.Cause(err) {
		case ErrBadRequest, multichain.ErrAmbiguousIdentity:
			err = &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		case ErrNotFound, multichain.ErrBlockNotFound, multichain.ErrIdentityNotFound:
			err = &jsonrpc2.Error{Code: CodeNotFound, Message: err.Error()}
		default:
			log.WithError(err).WithField("method", req.Method).Warning("jsonrpc request failed")
			err = &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
		}
	}
	return
}

// ServeHTTP upgrades the connection to websocket and serves JSON-RPC requests on it until
// the client disconnects.
func (s *rpcService) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.WithError(err).Error("jsonrpc: upgrade http connection to websocket failed")
		return
	}
	defer conn.Close()

	<-jsonrpc2.NewConn(
		r.Context(),
		wsstream.NewObjectStream(conn),
		jsonrpc2.HandlerWithError(s.handle),
	).DisconnectNotify()
}
