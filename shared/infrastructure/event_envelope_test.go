package infrastructure

import (
	"encoding/json"
	"testing"

	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelopePayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// The SQS body is the publisher's envelope; a handler on the other side
// must get back the aggregate id and payload it was published with.
func TestSNSMessage_RoundTripPreservesPayload(t *testing.T) {
	orderID := models.GenerateUUID()
	event := events.NewEvent(orderID, events.CompensationPendingEvent, envelopePayload{
		OrderID: orderID.String(),
		Status:  "order_cancelled_pending_compensation",
	})

	message, err := newSNSMessage(event)
	require.NoError(t, err)

	body, err := json.Marshal(message)
	require.NoError(t, err)

	var received snsMessage
	require.NoError(t, json.Unmarshal(body, &received))

	decoded, err := received.toEvent()
	require.NoError(t, err)

	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, orderID, decoded.AggregateID)
	assert.Equal(t, events.CompensationPendingEvent, decoded.EventType)

	var payload envelopePayload
	require.NoError(t, decoded.UnmarshalPayload(&payload))
	assert.Equal(t, orderID.String(), payload.OrderID)
	assert.Equal(t, "order_cancelled_pending_compensation", payload.Status)
}

func TestSNSMessage_ToEvent_InvalidEventID(t *testing.T) {
	message := &snsMessage{ID: "not-a-uuid", EventType: events.CompensationPendingEvent}

	_, err := message.toEvent()

	assert.Error(t, err)
}
