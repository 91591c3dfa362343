package notifications

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/you/emrsvc/domain"
	"go.uber.org/zap"
)

// Twilio error codes that mean the account is being throttled
// (20429 too many requests, 14107 SMS send rate limit exceeded)
var quotaCodes = map[int]bool{20429: true, 14107: true}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioServiceImpl implements domain.NotificationService
type TwilioServiceImpl struct {
	api        messageCreator
	fromNumber string
	logger     *zap.Logger
}

// NewTwilioService creates a new Twilio notification service.
// Without a from number messages are logged instead of sent.
func NewTwilioService(accountSID, authToken, fromNumber string, logger *zap.Logger) domain.NotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		api:        client.Api,
		fromNumber: fromNumber,
		logger:     logger.Named("notifications"),
	}
}

// SendSMS implements domain.NotificationService
func (t *TwilioServiceImpl) SendSMS(to, message string) error {
	if t.fromNumber == "" {
		t.logger.Info("mock sms", zap.String("to", to), zap.String("message", message))
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	if _, err := t.api.CreateMessage(params); err != nil {
		var restErr *twclient.TwilioRestError
		if errors.As(err, &restErr) && (quotaCodes[restErr.Code] || restErr.Status == http.StatusTooManyRequests) {
			return fmt.Errorf("failed to send SMS: %w: %v", domain.ErrSMSQuotaExceeded, err)
		}
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	return nil
}

// SendEmail implements domain.NotificationService. No mail transport is
// configured, so messages go to the log.
func (t *TwilioServiceImpl) SendEmail(to, subject, body string) error {
	t.logger.Info("mock email", zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
	return nil
}
