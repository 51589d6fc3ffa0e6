package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Constants for invalidator configuration
const (
	defaultChannel      = "catalog:invalidation"
	defaultCloseTimeout = 5 * time.Second
)

// CatalogUpdateAction describes what happened to a tenant's catalog.
type CatalogUpdateAction string

const (
	CatalogUpdateActionChanged       CatalogUpdateAction = "changed"
	CatalogUpdateActionInvalidateAll CatalogUpdateAction = "invalidate_all"
)

// CatalogUpdateMessage is the pub/sub payload broadcast when a tenant's
// catalog changes. TenantID is empty for invalidate_all.
type CatalogUpdateMessage struct {
	Action    CatalogUpdateAction `json:"action"`
	TenantID  string              `json:"tenant_id,omitempty"`
	Timestamp int64               `json:"timestamp"`
}

// RedisConfig holds Redis connection settings for the invalidator.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisCatalogInvalidator fans catalog invalidations out to every process
// holding a CatalogCache, using Redis Pub/Sub. The product CRUD layer
// publishes after create/update/delete; subscribers evict the tenant's
// snapshot so the next match re-fetches.
type RedisCatalogInvalidator struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisCatalogInvalidatorOption is a functional option for configuring the invalidator.
type RedisCatalogInvalidatorOption func(*RedisCatalogInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name.
func WithInvalidatorChannel(channel string) RedisCatalogInvalidatorOption {
	return func(i *RedisCatalogInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger for the invalidator.
func WithInvalidatorLogger(logger *zap.Logger) RedisCatalogInvalidatorOption {
	return func(i *RedisCatalogInvalidator) {
		i.logger = logger
	}
}

// NewRedisCatalogInvalidator creates an invalidator with its own Redis client.
func NewRedisCatalogInvalidator(cfg RedisConfig, opts ...RedisCatalogInvalidatorOption) (*RedisCatalogInvalidator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	invalidator := &RedisCatalogInvalidator{
		client:     client,
		ownsClient: true,
		channel:    defaultChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator, nil
}

// NewRedisCatalogInvalidatorWithClient creates an invalidator with an existing
// Redis client. The caller retains ownership of the client.
func NewRedisCatalogInvalidatorWithClient(client *redis.Client, opts ...RedisCatalogInvalidatorOption) *RedisCatalogInvalidator {
	invalidator := &RedisCatalogInvalidator{
		client:     client,
		ownsClient: false,
		channel:    defaultChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator
}

// Publish sends a catalog update notification to all subscribers.
func (i *RedisCatalogInvalidator) Publish(ctx context.Context, msg CatalogUpdateMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish catalog update message",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	i.logger.Debug("Published catalog update message",
		zap.String("action", string(msg.Action)),
		zap.String("tenant_id", msg.TenantID))

	return nil
}

// PublishTenantChanged publishes an invalidation for one tenant's catalog.
func (i *RedisCatalogInvalidator) PublishTenantChanged(ctx context.Context, tenantID string) error {
	return i.Publish(ctx, CatalogUpdateMessage{
		Action:   CatalogUpdateActionChanged,
		TenantID: tenantID,
	})
}

// PublishInvalidateAll publishes an invalidate-all notification.
func (i *RedisCatalogInvalidator) PublishInvalidateAll(ctx context.Context) error {
	return i.Publish(ctx, CatalogUpdateMessage{
		Action: CatalogUpdateActionInvalidateAll,
	})
}

// Subscribe starts listening for catalog update notifications, invoking the
// callback for each message. Blocks until the context is cancelled; run it
// in a goroutine.
func (i *RedisCatalogInvalidator) Subscribe(ctx context.Context, callback func(msg CatalogUpdateMessage)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	i.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	i.mu.Lock()
	i.cancelFn = cancel
	i.mu.Unlock()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(subCtx); err != nil {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	i.logger.Info("Subscribed to catalog invalidation channel",
		zap.String("channel", i.channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("Catalog invalidation subscription stopped")
			i.mu.Lock()
			i.isRunning = false
			i.mu.Unlock()
			i.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Catalog invalidation channel closed")
				i.mu.Lock()
				i.isRunning = false
				i.mu.Unlock()
				i.markDone()
				return nil
			}

			var updateMsg CatalogUpdateMessage
			if err := json.Unmarshal([]byte(msg.Payload), &updateMsg); err != nil {
				i.logger.Error("Failed to unmarshal catalog update message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			go func(m CatalogUpdateMessage) {
				defer func() {
					if r := recover(); r != nil {
						i.logger.Error("Panic in catalog update callback",
							zap.Any("panic", r))
					}
				}()
				callback(m)
			}(updateMsg)
		}
	}
}

// markDone safely marks the invalidator as done.
func (i *RedisCatalogInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close releases any resources held by the invalidator.
func (i *RedisCatalogInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	if i.ownsClient {
		return i.client.Close()
	}
	return nil
}
