package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const runKey = "balanca:pipeline:lock"

// ErrBusy indica que outra execução do pipeline já segura o lock.
var ErrBusy = errors.New("outra atualização já está em andamento")

// releaseScript só apaga a chave se o token ainda for o nosso.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock garante um único escritor por par de históricos entre processos.
// Com Client nil o lock não faz nada (execução local sem redis).
type RunLock struct {
	Client *redis.Client
	TTL    time.Duration
}

// Acquire tenta pegar o lock e devolve a função que o libera.
func (l *RunLock) Acquire(ctx context.Context) (func(), error) {
	if l == nil || l.Client == nil {
		return func() {}, nil
	}
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	token := uuid.New().String()
	ok, err := l.Client.SetNX(ctx, runKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() {
		releaseScript.Run(context.Background(), l.Client, []string{runKey}, token)
	}, nil
}
