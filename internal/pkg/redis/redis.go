package redis

import (
	"context"
	"fmt"
	"time"

	"rpg-backend/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// Config Redis 连接配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr host:port
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Client 带指标采集的 Redis 客户端
type Client struct {
	*redis.Client
	service string
}

// NewClient 创建客户端并做一次连通性检查
func NewClient(cfg Config, service string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	return Wrap(rdb, service), nil
}

// Wrap 包装已有的 go-redis 客户端
func Wrap(rdb *redis.Client, service string) *Client {
	if service == "" {
		service = metrics.GetServiceName()
	}
	return &Client{Client: rdb, service: service}
}

// IncrWindow 固定窗口计数：INCR 后仅在首次创建键时设置过期时间，返回窗口内的累计次数
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	start := time.Now()

	var incr *redis.IntCmd
	_, err := c.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})

	metrics.DefaultResourceMetrics.RecordRedisOperation("INCR_WINDOW", err == nil, time.Since(start), c.service)
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Healthy PING 检查
func (c *Client) Healthy(ctx context.Context) error {
	start := time.Now()
	err := c.Ping(ctx).Err()
	metrics.DefaultResourceMetrics.RecordRedisOperation("PING", err == nil, time.Since(start), c.service)
	return err
}
