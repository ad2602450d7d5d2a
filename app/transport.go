package app

import (
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewTransport(lc fx.Lifecycle, log *zap.Logger) http.RoundTripper {
	return &transport{http.DefaultTransport, log}
}

type transport struct {
	base http.RoundTripper
	log  *zap.Logger
}

func (tpt *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := tpt.base.RoundTrip(req)
	tpt.log.Sugar().Debugw("Outbound request",
		"method", req.Method, "host", req.URL.Host,
		"elapsed_msecs", int(time.Since(start).Milliseconds()), "err", err)
	return resp, err
}
