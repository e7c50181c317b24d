package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	lookups "github.com/twilio/twilio-go/rest/lookups/v1"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

var _ Client = (*TwilioClient)(nil)

// TwilioClient sends through the Twilio REST API.
type TwilioClient struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioClient(accountSID, authToken, fromNumber string) *TwilioClient {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioClient{client: client, from: fromNumber}
}

func (t *TwilioClient) Send(_ context.Context, req SendReq) (SendResp, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo(req.To)
	params.SetFrom(t.from)
	params.SetBody(req.Body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return SendResp{}, fmt.Errorf("%w: %w", errs.ErrGatewayFailure, err)
	}
	if resp.Sid == nil {
		return SendResp{}, fmt.Errorf("%w: no message sid returned", errs.ErrGatewayFailure)
	}
	return SendResp{ProviderID: *resp.Sid}, nil
}

func (t *TwilioClient) Lookup(_ context.Context, number string) (bool, error) {
	params := &lookups.FetchPhoneNumberParams{}
	params.SetType([]string{"carrier"})

	resp, err := t.client.LookupsV1.FetchPhoneNumber(number, params)
	if err != nil {
		return false, fmt.Errorf("%w: %w", errs.ErrGatewayFailure, err)
	}
	return smsCapable(resp.Carrier), nil
}

// smsCapable reads the lookup response's untyped carrier blob. Only a
// carrier that positively identifies as a landline blocks SMS; missing or
// unrecognizable carrier data must not block the update.
func smsCapable(carrier *interface{}) bool {
	if carrier == nil {
		return true
	}
	m, ok := (*carrier).(map[string]interface{})
	if !ok {
		return true
	}
	if lineType, ok := m["type"].(string); ok {
		return !strings.EqualFold(lineType, "landline")
	}
	return true
}
