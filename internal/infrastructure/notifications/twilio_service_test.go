package notifications

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/you/emrsvc/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAPI struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	return &twilioApi.ApiV2010Message{}, f.err
}

func TestTwilioServiceImpl_SendSMS(t *testing.T) {
	tests := []struct {
		name      string
		apiErr    error
		wantErr   bool
		wantQuota bool
	}{
		{name: "sent"},
		{name: "rate limited by code", apiErr: &twclient.TwilioRestError{Code: 20429, Status: 429}, wantErr: true, wantQuota: true},
		{name: "rate limited by status", apiErr: &twclient.TwilioRestError{Code: 1, Status: 429}, wantErr: true, wantQuota: true},
		{name: "invalid number", apiErr: &twclient.TwilioRestError{Code: 21211, Status: 400}, wantErr: true},
		{name: "transport error", apiErr: errors.New("dial tcp: timeout"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{err: tt.apiErr}
			svc := &TwilioServiceImpl{api: api, fromNumber: "+15005550006", logger: zap.NewNop()}

			err := svc.SendSMS("+16502530000", "Your code is 123456")
			if !tt.wantErr {
				require.NoError(t, err)
				require.NotNil(t, api.params)
				assert.Equal(t, "+16502530000", *api.params.To)
				assert.Equal(t, "+15005550006", *api.params.From)
				assert.Equal(t, "Your code is 123456", *api.params.Body)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantQuota, errors.Is(err, domain.ErrSMSQuotaExceeded))
		})
	}
}

func TestTwilioServiceImpl_MockModeLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc := NewTwilioService("", "", "", zap.New(core))

	require.NoError(t, svc.SendSMS("+16502530000", "hello"))
	require.NoError(t, svc.SendEmail("a@example.com", "Reset", "token"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "mock sms", entries[0].Message)
	assert.Equal(t, "mock email", entries[1].Message)
	assert.Equal(t, "a@example.com", entries[1].ContextMap()["to"])
}
