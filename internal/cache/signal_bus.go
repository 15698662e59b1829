package cache

import (
	"commons/internal/model"
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
)

const signalChannelPrefix = "signals:"

// Delivery is a signal addressed to one player
type Delivery struct {
	PlayerID string
	Data     []byte
}

// SignalBus fans signals out to every server instance through Redis Pub/Sub.
// Instances deliver to whichever players are connected to them.
type SignalBus struct {
	client *redis.Client
}

func NewSignalBus(client *redis.Client) *SignalBus {
	return &SignalBus{client: client}
}

// Publish implements service.Broadcaster
func (b *SignalBus) Publish(ctx context.Context, playerID string, env *model.SignalEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, signalChannelPrefix+playerID, data).Err()
}

// Subscribe streams deliveries for every player until ctx is done
func (b *SignalBus) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	ps := b.client.PSubscribe(ctx, signalChannelPrefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, err
	}

	out := make(chan Delivery, 256)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				d := Delivery{
					PlayerID: strings.TrimPrefix(msg.Channel, signalChannelPrefix),
					Data:     []byte(msg.Payload),
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
