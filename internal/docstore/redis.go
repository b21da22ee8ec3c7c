package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-redis/redis/v8"
)

const defaultRedisPrefix = "sharearecipe:changes"

// RedisNotifier fans changes out over Redis PUBLISH/SUBSCRIBE so several
// server processes sharing one database see each other's writes.
type RedisNotifier struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisNotifier connects to the Redis server at url (redis://host:port/db).
func NewRedisNotifier(ctx context.Context, url string, logger *slog.Logger) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisNotifierFromClient(client, logger), nil
}

func NewRedisNotifierFromClient(client *redis.Client, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, prefix: defaultRedisPrefix, logger: logger}
}

func (n *RedisNotifier) channel(collection string) string {
	return n.prefix + ":" + collection
}

func (n *RedisNotifier) Publish(ctx context.Context, c Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel(c.Collection), payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context, collection string) (<-chan Change, func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	pubsub := n.client.Subscribe(subCtx, n.channel(collection))
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", collection, err)
	}

	out := make(chan Change, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var c Change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					n.logger.Warn("decode change", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- c:
				default:
				}
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return out, unsubscribe, nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
