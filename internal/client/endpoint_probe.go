package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonRPCResponse struct {
	ID     int                 `json:"id"`
	Result jsoniter.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// endpointProbeImpl is the fasthttp based implementation of port.EndpointProber.
type endpointProbeImpl struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewEndpointProbe creates a prober that sends a web3_clientVersion + net_version batch.
func NewEndpointProbe(timeout time.Duration, logger *zap.Logger) port.EndpointProber {
	return &endpointProbeImpl{
		client:  &fasthttp.Client{Name: "deploy_networks-probe"},
		timeout: timeout,
		logger:  logger.Named("EndpointProbe"),
	}
}

// Probe implements port.EndpointProber. Only http(s) endpoints are supported.
func (p *endpointProbeImpl) Probe(ctx context.Context, endpoint string) (entity.ProbeResult, error) {
	payload, err := json.Marshal([]jsonRPCRequest{
		{JSONRPC: "2.0", ID: 1, Method: "web3_clientVersion", Params: []interface{}{}},
		{JSONRPC: "2.0", ID: 2, Method: "net_version", Params: []interface{}{}},
	})
	if err != nil {
		return entity.ProbeResult{}, fmt.Errorf("failed to encode probe request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	if deadline, ok := ctx.Deadline(); ok {
		err = p.client.DoDeadline(req, resp, deadline)
	} else {
		err = p.client.DoTimeout(req, resp, p.timeout)
	}
	latency := time.Since(start)
	if err != nil {
		p.logger.Debug("Probe request failed", zap.Error(err))
		return entity.ProbeResult{}, fmt.Errorf("probe request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return entity.ProbeResult{}, fmt.Errorf("probe returned HTTP status %d", resp.StatusCode())
	}

	var replies []jsonRPCResponse
	if err := json.Unmarshal(resp.Body(), &replies); err != nil {
		return entity.ProbeResult{}, fmt.Errorf("failed to decode probe response: %w", err)
	}

	result := entity.ProbeResult{Latency: latency}
	for _, r := range replies {
		if r.Error != nil {
			return result, fmt.Errorf("probe call %d failed: %d %s", r.ID, r.Error.Code, r.Error.Message)
		}
		var s string
		if err := json.Unmarshal(r.Result, &s); err != nil {
			// some nodes answer net_version with a number
			var n uint64
			if err2 := json.Unmarshal(r.Result, &n); err2 != nil {
				return result, fmt.Errorf("unexpected result for probe call %d: %s", r.ID, string(r.Result))
			}
			s = strconv.FormatUint(n, 10)
		}
		switch r.ID {
		case 1:
			result.ClientVersion = s
		case 2:
			result.NetworkVersion = s
		}
	}

	p.logger.Debug("Probe completed",
		zap.String("clientVersion", result.ClientVersion),
		zap.String("networkVersion", result.NetworkVersion),
		zap.Duration("latency", latency))
	return result, nil
}
