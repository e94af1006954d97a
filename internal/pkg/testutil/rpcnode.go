// Package testutil holds helpers shared by tests of several packages.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RPCHandler computes the result of one JSON-RPC method.
type RPCHandler func(params []jsoniter.RawMessage) (any, *RPCError)

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcRequest struct {
	JSONRPC string                `json:"jsonrpc"`
	ID      jsoniter.RawMessage   `json:"id"`
	Method  string                `json:"method"`
	Params  []jsoniter.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id"`
	Result  any                 `json:"result,omitempty"`
	Error   *RPCError           `json:"error,omitempty"`
}

// FakeNode is an in-process JSON-RPC server answering a configurable set of methods.
type FakeNode struct {
	Server *httptest.Server

	mu       sync.Mutex
	handlers map[string]RPCHandler
	calls    map[string]int
	rawTxs   []string
}

// NewFakeNode starts a node reporting networkID for net_version and eth_chainId.
// Balances maps lower-case hex addresses onto hex quantities.
func NewFakeNode(t *testing.T, networkID string, chainIDHex string, balances map[string]string) *FakeNode {
	t.Helper()
	n := &FakeNode{
		handlers: make(map[string]RPCHandler),
		calls:    make(map[string]int),
	}
	n.Handle("net_version", func([]jsoniter.RawMessage) (any, *RPCError) { return networkID, nil })
	n.Handle("eth_chainId", func([]jsoniter.RawMessage) (any, *RPCError) { return chainIDHex, nil })
	n.Handle("web3_clientVersion", func([]jsoniter.RawMessage) (any, *RPCError) { return "FakeNode/v1.0.0", nil })
	n.Handle("eth_gasPrice", func([]jsoniter.RawMessage) (any, *RPCError) { return "0x3b9aca00", nil })
	n.Handle("eth_getTransactionCount", func([]jsoniter.RawMessage) (any, *RPCError) { return "0x5", nil })
	n.Handle("eth_getBalance", func(params []jsoniter.RawMessage) (any, *RPCError) {
		if len(params) == 0 {
			return nil, &RPCError{Code: -32602, Message: "missing address"}
		}
		var addr string
		if err := json.Unmarshal(params[0], &addr); err != nil {
			return nil, &RPCError{Code: -32602, Message: err.Error()}
		}
		if bal, ok := balances[strings.ToLower(addr)]; ok {
			return bal, nil
		}
		return "0x0", nil
	})
	n.Handle("eth_sendRawTransaction", func(params []jsoniter.RawMessage) (any, *RPCError) {
		var raw string
		if len(params) > 0 {
			_ = json.Unmarshal(params[0], &raw)
		}
		n.mu.Lock()
		n.rawTxs = append(n.rawTxs, raw)
		n.mu.Unlock()
		return "0x" + strings.Repeat("ab", 32), nil
	})

	n.Server = httptest.NewServer(http.HandlerFunc(n.serveHTTP))
	t.Cleanup(n.Server.Close)
	return n
}

// URL returns the HTTP endpoint of the node.
func (n *FakeNode) URL() string {
	return n.Server.URL
}

// Handle installs or replaces the handler of method.
func (n *FakeNode) Handle(method string, h RPCHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

// Calls returns how many times method was invoked.
func (n *FakeNode) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

// RawTransactions returns the payloads received by eth_sendRawTransaction.
func (n *FakeNode) RawTransactions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.rawTxs...)
}

func (n *FakeNode) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []rpcRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resps := make([]rpcResponse, 0, len(reqs))
		for _, req := range reqs {
			resps = append(resps, n.dispatch(req))
		}
		_ = json.NewEncoder(w).Encode(resps)
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(n.dispatch(req))
}

func (n *FakeNode) dispatch(req rpcRequest) rpcResponse {
	n.mu.Lock()
	n.calls[req.Method]++
	h, ok := n.handlers[req.Method]
	n.mu.Unlock()

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	if !ok {
		resp.Error = &RPCError{Code: -32601, Message: "method not found: " + req.Method}
		return resp
	}
	resp.Result, resp.Error = h(req.Params)
	return resp
}
