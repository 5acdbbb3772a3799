package cache

import (
	"context"
	"time"
)

// NoopClient é usado quando REDIS_ADDR não está configurado:
// toda leitura é um miss e as escritas são descartadas.
type NoopClient struct{}

func NewNoopClient() Client { return NoopClient{} }

func (NoopClient) Get(context.Context, string) (string, error) { return "", ErrCacheMiss }

func (NoopClient) GetInt(context.Context, string) (int, error) { return 0, ErrCacheMiss }

func (NoopClient) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (NoopClient) Incr(context.Context, string) (int64, error) { return 0, nil }

func (NoopClient) Delete(context.Context, string) error { return nil }
