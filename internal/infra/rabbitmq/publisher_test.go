package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope("order.created", map[string]any{"orderId": "ORD-003"})

	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "order.created", env.Pattern)
	assert.False(t, env.OccurredAt.IsZero())

	body, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "order.created", decoded["pattern"])
	assert.Equal(t, "ORD-003", decoded["data"].(map[string]any)["orderId"])
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), "order.deleted", nil))
}
