package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Revanthgowda45/CityFix1/store"
)

// ReportsChannel is the Redis pub/sub channel carrying issue change
// notifications.
const ReportsChannel = "cityfix:reports:changes"

// publish sends a change notification. Notification delivery is
// best-effort; a failed publish never fails the mutation that caused it.
func (m *MongoStore) publish(ctx context.Context, event store.ChangeEvent) {
	if m.redis == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("MongoStore: failed to marshal change event: %v", err)
		return
	}
	if err := m.redis.Publish(ctx, ReportsChannel, payload).Err(); err != nil {
		log.Printf("MongoStore: failed to publish change event: %v", err)
	}
}

// Subscribe listens on the reports channel and invokes onEvent for every
// notification until the returned cancel func is called. Malformed payloads
// are passed through as empty events; consumers refetch either way.
func (m *MongoStore) Subscribe(ctx context.Context, onEvent func(store.ChangeEvent)) (func(), error) {
	if m.redis == nil {
		return nil, fmt.Errorf("redis client not configured")
	}

	sub := m.redis.Subscribe(ctx, ReportsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", ReportsChannel, err)
	}

	go func() {
		for msg := range sub.Channel() {
			var event store.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				event = store.ChangeEvent{}
			}
			onEvent(event)
		}
	}()

	return func() {
		if err := sub.Close(); err != nil {
			log.Printf("MongoStore: failed to close subscription: %v", err)
		}
	}, nil
}
