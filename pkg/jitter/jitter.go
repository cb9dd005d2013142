// Package jitter считает задержки между повторами: экспоненциальный рост и случайная добавка,
// чтобы клиенты после общего сбоя не ломились в сервис одновременно.
package jitter

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter: случайная добавка до 50% от задержки.
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Backoff описывает политику задержек между попытками.
type Backoff struct {
	Base   time.Duration // задержка перед первым повтором
	Max    time.Duration // потолок до добавки джиттера, 0: без роста
	Factor float64
}

// Delay возвращает задержку перед повтором attempt (нумерация с нуля).
func (b Backoff) Delay(attempt int) time.Duration {
	return ExponentialBackoff(b.Base, b.Max, attempt, b.Factor)
}

// Duration возвращает d со случайной добавкой: результат в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	defer randMutex.Unlock()
	return DurationWithSeed(d, jitterFactor, globalRand)
}

// DurationWithSeed: то же, что Duration, но с заданным генератором. Нужен для детерминированных тестов.
func DurationWithSeed(d time.Duration, jitterFactor float64, rng *rand.Rand) time.Duration {
	if d <= 0 || jitterFactor <= 0 {
		return d
	}
	return d + time.Duration(rng.Float64()*jitterFactor*float64(d))
}

// ExponentialBackoff возвращает base*2^attempt, ограниченное max, с джиттером.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	return Duration(capped(base, max, attempt), jitterFactor)
}

func capped(base, max time.Duration, attempt int) time.Duration {
	backoff := base
	for i := 0; i < attempt && backoff < max; i++ {
		backoff *= 2
	}
	if max > 0 && backoff > max {
		backoff = max
	}
	return backoff
}

// Sleep ждёт d или отмены ctx. Возвращает false, если контекст отменили раньше.
func Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
