// Package flash keeps one-shot messages for a client until they are read.
package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Store must be safe for concurrent use.
type Store interface {
	// Add queues a message for the client.
	Add(ctx context.Context, clientID int, msg Message) error

	// Pop returns the queued messages in order and forgets them. No
	// messages is not an error.
	Pop(ctx context.Context, clientID int) ([]Message, error)
}

// TTL bounds how long an unread message is kept in Redis.
const TTL time.Duration = 24 * time.Hour

// ------------------------------------------------------------------------------

type MemoryStore struct {
	messages map[int][]Message
	mutex    sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[int][]Message)}
}

func (s *MemoryStore) Add(ctx context.Context, clientID int, msg Message) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.messages[clientID] = append(s.messages[clientID], msg)
	return nil
}

func (s *MemoryStore) Pop(ctx context.Context, clientID int) ([]Message, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	msgs := s.messages[clientID]
	delete(s.messages, clientID)
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// ------------------------------------------------------------------------------

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// NewRedisClient connects and pings the server.
func NewRedisClient(cfg *RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func Key(namespace string, clientID int) string {
	return fmt.Sprintf("%s:flash:%d", namespace, clientID)
}

func (s *RedisStore) Add(ctx context.Context, clientID int, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	key := Key(s.namespace, clientID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.Expire(ctx, key, TTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Pop(ctx context.Context, clientID int) ([]Message, error) {
	key := Key(s.namespace, clientID)
	pipe := s.client.TxPipeline()
	values := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	msgs := make([]Message, 0, len(values.Val()))
	for _, v := range values.Val() {
		var m Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, fmt.Errorf("decode flash message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
