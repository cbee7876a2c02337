package ctxutil

import (
	"context"
	"time"
)

// приватные ключи, чтобы исключить коллизии
type key int

const (
	keyRequestID key = iota
	keyAccess
	keyOpName
)

// WithRequestID/RequestID: id запроса для логов и ответа
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestID(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(keyRequestID).(string)
	return s, ok
}

// WithAccess/Access: уровень доступа вызывающего сервиса
func WithAccess(ctx context.Context, level int) context.Context {
	return context.WithValue(ctx, keyAccess, level)
}

func Access(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(keyAccess).(int)
	return v, ok
}

// WithOp/Op: имя операции (для логов/трейса)
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(keyOpName).(string)
	return s, ok
}

// DefaultDBTimeout переопределяется из конфига при старте.
var (
	DefaultDBTimeout = 5 * time.Second
)

// WithDBTimeout: стандартный таймаут для БД.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		// если у родителя осталось меньше defaultDBTimeout, берем остаток
		remain := time.Until(dl)
		if remain < DefaultDBTimeout {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
