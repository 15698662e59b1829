package client

import (
	"commons/internal/model"
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// SignalFilter drops signals whose key was already seen. Delivery is at
// least once, so consumers run every signal through one.
type SignalFilter struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewSignalFilter() *SignalFilter {
	return &SignalFilter{seen: make(map[string]struct{})}
}

// First reports whether sig is the first signal with its key
func (f *SignalFilter) First(sig model.Signal) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[sig.Key()]; ok {
		return false
	}
	f.seen[sig.Key()] = struct{}{}
	return true
}

// Subscribe streams the caller's signals, each key at most once. The channel
// closes when ctx is done or the connection drops.
func (c *Client) Subscribe(ctx context.Context) (<-chan model.Signal, error) {
	u, err := url.Parse(c.baseURL + "/v1/ws/signals")
	if err != nil {
		return nil, err
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	out := make(chan model.Signal, 16)
	filter := NewSignalFilter()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(out)
		defer conn.Close()
		for {
			var env model.SignalEnvelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			sig, err := model.DecodeSignal(&env)
			if err != nil || !filter.First(sig) {
				continue
			}
			select {
			case out <- sig:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
