package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

func TestVerifySignature_Valid(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"customer":"cus_1"}}`)
	now := time.Now()
	header := SignPayload(payload, testWebhookSecret, now)

	err := VerifySignature(payload, header, testWebhookSecret, now)
	assert.NoError(t, err)
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.paid"}`)
	now := time.Now()
	header := SignPayload(payload, testWebhookSecret, now)

	err := VerifySignature([]byte(`{"id":"evt_2","type":"invoice.paid"}`), header, testWebhookSecret, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	header := SignPayload(payload, "other_secret", now)

	err := VerifySignature(payload, header, testWebhookSecret, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignature_StaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	sent := time.Now().Add(-10 * time.Minute)
	header := SignPayload(payload, testWebhookSecret, sent)

	err := VerifySignature(payload, header, testWebhookSecret, time.Now())
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerifySignature_MalformedHeader(t *testing.T) {
	err := VerifySignature([]byte(`{}`), "garbage", testWebhookSecret, time.Now())
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_123",
		"type": "checkout.completed",
		"data": {"user_id": "42", "plan": "elite", "customer": "cus_9", "subscription": "sub_9"}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, int64(42), event.Data.UserID)
	assert.Equal(t, "elite", event.Data.Plan)
	assert.Equal(t, "cus_9", event.Data.Customer)
}

func TestParseEvent_MissingType(t *testing.T) {
	_, err := ParseEvent([]byte(`{"id":"evt_1"}`))
	assert.Error(t, err)
}

func TestParseEvent_Garbage(t *testing.T) {
	_, err := ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}
