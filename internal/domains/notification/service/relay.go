package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"library-gateway/internal/domains/notification/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PubSub is the slice of the Redis broker the relay needs.
type PubSub interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
	Subscribe(ctx context.Context, channel string) *redis.PubSub
}

type envelope struct {
	Origin       string             `json:"origin"`
	UserID       int64              `json:"user_id"`
	Notification model.Notification `json:"notification"`
}

// RedisRelay fans notifications out to every gateway instance over Redis
// pub/sub; each instance delivers to its own Hub. Pub/sub keeps nothing, so
// delivery stays at-most-once.
type RedisRelay struct {
	broker     PubSub
	channel    string
	hub        *Hub
	instanceID string

	// true while Run holds a live subscription
	subscribed atomic.Bool
}

var _ Notifier = (*RedisRelay)(nil)

func NewRedisRelay(broker PubSub, channel string, hub *Hub) *RedisRelay {
	return &RedisRelay{
		broker:     broker,
		channel:    channel,
		hub:        hub,
		instanceID: uuid.NewString(),
	}
}

// Notify publishes n for userID. It reports true when at least one instance
// received the message. If Redis is unreachable it falls back to the local Hub.
// While this instance holds no subscription it cannot hear its own publish, so
// local users are pushed to directly.
func (r *RedisRelay) Notify(ctx context.Context, userID int64, n model.Notification) bool {
	subscribed := r.subscribed.Load()
	local := false
	if !subscribed {
		local = r.hub.Push(userID, n)
	}

	published, err := r.publish(ctx, userID, n)
	if err != nil {
		log.Warn().
			Err(err).
			Int64("user_id", userID).
			Str("channel", r.channel).
			Msg("[RELAY] Publish failed, delivering locally")
		if subscribed {
			return r.hub.Push(userID, n)
		}
	}
	return published || local
}

// Subscribed reports whether Run currently holds a subscription.
func (r *RedisRelay) Subscribed() bool {
	return r.subscribed.Load()
}

func (r *RedisRelay) publish(ctx context.Context, userID int64, n model.Notification) (bool, error) {
	payload, err := json.Marshal(envelope{Origin: r.instanceID, UserID: userID, Notification: n})
	if err != nil {
		return false, fmt.Errorf("encode notification: %w", err)
	}

	receivers, err := r.broker.Publish(ctx, r.channel, payload)
	if err != nil {
		return false, err
	}

	log.Debug().
		Int64("user_id", userID).
		Int64("receivers", receivers).
		Msg("[RELAY] Notification published")
	return receivers > 0, nil
}

// Run subscribes to the relay channel and delivers incoming notifications to
// the local Hub until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.broker.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.subscribed.Store(true)
	defer r.subscribed.Store(false)
	log.Info().
		Str("channel", r.channel).
		Str("instance_id", r.instanceID).
		Msg("[RELAY] Subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(msg.Payload)
		}
	}
}

func (r *RedisRelay) deliver(payload string) bool {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		log.Warn().Err(err).Msg("[RELAY] Dropping malformed message")
		return false
	}
	if env.UserID <= 0 {
		return false
	}
	return r.hub.Push(env.UserID, env.Notification)
}
