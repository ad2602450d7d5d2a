package senders

import (
	"context"
	"net/http"

	"github.com/fiffu/matchwatch/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Sender delivers one rendered payload to one destination. The returned
// string is a transport-specific message id, useful only for logging.
//
// Failure contract: a destination that will never succeed again is reported
// as models.ErrEndpointGone (wrapped); anything else is transient.
type Sender interface {
	Send(ctx context.Context, destination string, payload Payload) (string, error)
}

type Registry map[string]Sender

func NewSenderRegistry(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config, transport http.RoundTripper) Registry {
	base := base{log, cfg, transport}
	return Registry{
		"webpush": &webpushSender{base},
		"email":   &mailgunSender{base},
	}
}

type base struct {
	log       *zap.Logger
	cfg       *config.Config
	transport http.RoundTripper
}
