package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const (
	smsRetries    = 2
	smsRetryDelay = 500 * time.Millisecond
)

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

// SendText отправляет SMS с ограниченным числом повторов.
// Фатальность ошибки решает вызывающая сторона.
func (s *TwilioSender) SendText(ctx context.Context, to, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	var lastErr error
	for attempt := 0; attempt <= smsRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(smsRetryDelay):
			}
		}
		if _, lastErr = s.client.Api.CreateMessage(params); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("send sms to %s: %w", to, lastErr)
}
