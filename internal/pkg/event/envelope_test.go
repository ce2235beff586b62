package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StampsIDAndTime(t *testing.T) {
	before := time.Now().UTC()
	env := New("CartItemAdded", "cart-1", map[string]any{"item_id": "i-1"}, "corr-1")
	after := time.Now().UTC()

	id, err := uuid.Parse(env.EventID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	assert.Equal(t, "CartItemAdded", env.EventName)
	assert.Equal(t, "cart-1", env.AggregateID)
	assert.Equal(t, "corr-1", env.CorrelationID)
	assert.False(t, env.OccurredAt.Before(before))
	assert.False(t, env.OccurredAt.After(after))
}

func TestNewEventID_TimeOrdered(t *testing.T) {
	first := NewEventID()
	second := NewEventID()

	assert.NotEqual(t, first, second)
	// uuid-v7 ids sort by generation time, so the later id compares greater
	assert.Less(t, first, second)
}

func TestEnvelope_JSONRoundTrip(t *testing.T) {
	env := New("PromotionApplied", "session-9", map[string]any{
		"promotion_id":    "promo-1",
		"discount_amount": float64(1000),
	}, "")

	data, err := env.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, env.EventID, decoded.EventID)
	assert.Equal(t, env.EventName, decoded.EventName)
	assert.Equal(t, env.AggregateID, decoded.AggregateID)
	assert.Equal(t, env.Payload, decoded.Payload)
	assert.True(t, env.OccurredAt.Equal(decoded.OccurredAt))
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte("{not json"))
	assert.ErrorContains(t, err, "unmarshal envelope failed")
}
