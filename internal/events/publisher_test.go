package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/tenancy-management/internal/config"
	"github.com/taichu-system/tenancy-management/internal/logger"
)

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	actor := uuid.New()

	require.NoError(t, p.Publish(context.Background(), NewEvent("unit.created", actor, "u1", nil)))
	require.NoError(t, p.Publish(context.Background(), NewEvent("unit.deleted", actor, "u1", nil)))

	assert.Equal(t, []string{"unit.created", "unit.deleted"}, p.Types())
	events := p.Events()
	require.Len(t, events, 2)
	assert.Equal(t, actor, events[0].ActorID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent("x", uuid.Nil, "", nil)))
	assert.NoError(t, p.Close())
}

func TestNATSPublisher(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL not set, skipping NATS publisher test")
	}

	nc, err := Connect(config.NATSConfig{URL: url, ConnectWait: 2 * time.Second}, logger.NewNop())
	require.NoError(t, err)

	prefix := "tenancy-test-" + uuid.NewString()
	pub := NewNATSPublisher(nc, prefix)

	received := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(prefix+".>", received)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	event := NewEvent("tenant.onboarded", uuid.New(), "t1", map[string]interface{}{"unit": "A-101"})
	require.NoError(t, pub.Publish(context.Background(), event))

	select {
	case msg := <-received:
		assert.Equal(t, prefix+".tenant.onboarded", msg.Subject)
		var got Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, "A-101", got.Data["unit"])
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}

	require.NoError(t, pub.Close())
}
