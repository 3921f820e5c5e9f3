package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
	goredis "github.com/go-redis/redis/v9"
)

// RedisStore keeps the catalog as a Redis list of JSON encoded records.
type RedisStore struct {
	client *goredis.Client
	key    string
	logger *log.Logger
}

// OpenRedisStore connects to the configured server and checks it answers.
func OpenRedisStore(ctx context.Context, cfg shared.RedisConfig, logger *log.Logger) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Network:  "tcp",
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, shared.TransportError("redis ping "+cfg.Addr+" failed", err)
	}

	key := cfg.Key
	if key == "" {
		key = "music-exporter:catalog"
	}
	return &RedisStore{client: client, key: key, logger: logger}, nil
}

func (s *RedisStore) Location() string {
	return fmt.Sprintf("redis://%s/%d %s", s.client.Options().Addr, s.client.Options().DB, s.key)
}

// Read returns the list at the catalog key. A missing key is an empty catalog.
func (s *RedisStore) Read(ctx context.Context) ([]models.MusicRecord, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, shared.TransportError("redis read "+s.key+" failed", err)
	}

	records, err := decodeRecords(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("read catalog", "key", s.key, "records", len(records))
	return records, nil
}

// Write replaces the list in one MULTI/EXEC transaction.
func (s *RedisStore) Write(ctx context.Context, records []models.MusicRecord) error {
	values, err := encodeRecords(records)
	if err != nil {
		return err
	}

	cmds, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		_ = pipe.Del(ctx, s.key)
		if len(values) > 0 {
			_ = pipe.RPush(ctx, s.key, values...)
		}
		return nil
	})
	if err != nil {
		return shared.TransportError("redis write "+s.key+" failed", err)
	}
	for _, cmd := range cmds {
		if err := cmd.Err(); err != nil {
			return shared.TransportError("redis write "+s.key+" failed", err)
		}
	}

	s.logger.Debug("wrote catalog", "key", s.key, "records", len(records))
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func encodeRecords(records []models.MusicRecord) ([]any, error) {
	values := make([]any, 0, len(records))
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		values = append(values, string(data))
	}
	return values, nil
}

func decodeRecords(raw []string) ([]models.MusicRecord, error) {
	records := make([]models.MusicRecord, 0, len(raw))
	for i, item := range raw {
		var r models.MusicRecord
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, shared.ParseError(fmt.Sprintf("redis catalog entry %d is not a record", i), err)
		}
		records = append(records, r)
	}
	return records, nil
}
