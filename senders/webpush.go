package senders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/fiffu/matchwatch/lib/models"
)

// webpushSender posts the payload as JSON to the subscription's push
// endpoint. The endpoint is opaque to us; the push service behind it decides
// whether the destination still exists.
type webpushSender struct {
	base
}

func (s *webpushSender) Send(ctx context.Context, destination string, payload Payload) (string, error) {
	err := requests.URL(destination).
		Transport(s.transport).
		BodyJSON(&payload).
		Header("TTL", "60").
		Fetch(ctx)

	switch {
	case err == nil:
		return destination, nil
	case requests.HasStatusErr(err, http.StatusGone, http.StatusNotFound):
		return "", fmt.Errorf("%w: %v", models.ErrEndpointGone, err)
	default:
		return "", fmt.Errorf("%w: %v", models.ErrTransientDelivery, err)
	}
}
