package logger

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RequestIDHeader is sent on every outgoing API call.
const RequestIDHeader = "X-Request-ID"

// Transport stamps a request id on outgoing requests and logs each round trip.
type Transport struct {
	Base http.RoundTripper
}

// NewTransport wraps base, falling back to http.DefaultTransport.
func NewTransport(base http.RoundTripper) *Transport {
	return &Transport{Base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	ctx, reqID := EnsureRequestID(req.Context())
	req = req.Clone(ctx)
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, reqID)
	}

	log := FromCtx(ctx)
	start := time.Now()

	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Warn("outgoing request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("outgoing request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}
