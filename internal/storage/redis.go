package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// DefaultRedisNamespace prefixes every key the Redis store touches.
const DefaultRedisNamespace = "trashscan"

// RedisOptions configures NewRedisStorage.
type RedisOptions struct {
	Addr      string
	Password  string
	Namespace string
	DB        int
}

// RedisStorage implements Store on Redis: two string keys for the profile
// and settings documents and a list for feedback.
type RedisStorage struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedisStorage connects to Redis and checks the connection.
func NewRedisStorage(ctx context.Context, opts RedisOptions) (*RedisStorage, error) {
	if err := validateString(opts.Addr, "addr"); err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}
	return NewRedisStorageFromClient(client, opts.Namespace), nil
}

// NewRedisStorageFromClient wraps an existing client.
func NewRedisStorageFromClient(client redis.UniversalClient, namespace string) *RedisStorage {
	if namespace == "" {
		namespace = DefaultRedisNamespace
	}
	return &RedisStorage{client: client, namespace: namespace}
}

func (s *RedisStorage) key(name string) string {
	return s.namespace + ":" + name
}

func (s *RedisStorage) get(ctx context.Context, name string) ([]byte, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (s *RedisStorage) set(ctx context.Context, name string, data []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// LoadProfile returns the stored profile.
func (s *RedisStorage) LoadProfile(ctx context.Context) (*model.UserProfile, error) {
	data, err := s.get(ctx, KeyProfile)
	if err != nil {
		return nil, err
	}
	return decodeProfile(data)
}

// SaveProfile replaces the stored profile.
func (s *RedisStorage) SaveProfile(ctx context.Context, p model.UserProfile) error {
	data, err := encodeProfile(p)
	if err != nil {
		return err
	}
	return s.set(ctx, KeyProfile, data)
}

// LoadSettings returns the stored settings.
func (s *RedisStorage) LoadSettings(ctx context.Context) (*model.AppSettings, error) {
	data, err := s.get(ctx, KeySettings)
	if err != nil {
		return nil, err
	}
	return decodeSettings(data)
}

// SaveSettings replaces the stored settings.
func (s *RedisStorage) SaveSettings(ctx context.Context, settings model.AppSettings) error {
	data, err := encodeSettings(settings)
	if err != nil {
		return err
	}
	return s.set(ctx, KeySettings, data)
}

// AppendFeedback pushes a report onto the feedback list.
func (s *RedisStorage) AppendFeedback(ctx context.Context, f model.Feedback) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	data, err := encodeFeedback(f)
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, s.key("feedback"), data).Err(); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// ListFeedback returns every report, oldest first.
func (s *RedisStorage) ListFeedback(ctx context.Context) ([]model.Feedback, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	items, err := s.client.LRange(ctx, s.key("feedback"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}
	out := make([]model.Feedback, 0, len(items))
	for _, item := range items {
		f, err := decodeFeedback([]byte(item))
		if err != nil {
			slog.Warn("skipping unreadable feedback", "error", err)
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// Reset deletes every key in the namespace.
func (s *RedisStorage) Reset(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	err := s.client.Del(ctx, s.key(KeyProfile), s.key(KeySettings), s.key("feedback")).Err()
	if err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
