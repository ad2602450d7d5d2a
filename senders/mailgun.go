package senders

import (
	"context"
	"fmt"
	"time"

	"github.com/fiffu/matchwatch/lib/models"
	"github.com/mailgun/mailgun-go/v4"
)

// mailgunSender covers subscribers who chose email over browser push; the
// destination is their address.
type mailgunSender struct {
	base
}

func (s *mailgunSender) Send(ctx context.Context, destination string, payload Payload) (string, error) {
	mg := mailgun.NewMailgun(s.cfg.Mailgun.Domain, s.cfg.Mailgun.APIKey)
	mg.Client().Transport = s.transport

	message := mg.NewMessage(s.cfg.Mailgun.SenderFrom, payload.Title, "", destination)
	message.SetHtml(fmt.Sprintf("<p>%s</p>", payload.Body))

	timeout := time.Duration(s.cfg.Mailgun.TimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, id, err := mg.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrTransientDelivery, err)
	}
	return id, nil
}
