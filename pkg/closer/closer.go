// Package closer останавливает ресурсы приложения в обратном порядке регистрации.
package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// successIdx возвращается, если все ресурсы закрылись до отмены контекста
	successIdx = -1
)

// Closer потокобезопасно закрывает ресурсы: сначала по очереди (LIFO),
// а то, что не успело закрыться до отмены контекста, принудительно и параллельно.
type Closer struct {
	steps         []step
	mu            sync.Mutex
	once          sync.Once
	forcedTimeout time.Duration
}

// Func: функция закрытия ресурса.
type Func func(ctx context.Context) error

type step struct {
	name string
	fn   Func
}

// NewCloser создаёт Closer. forcedTimeout: время на принудительное закрытие оставшихся ресурсов,
// если контекст Close истёк. 0: значение по умолчанию.
func NewCloser(forcedTimeout time.Duration) *Closer {
	const (
		defaultForcedTimeout = 2 * time.Second
	)

	if forcedTimeout == 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{
		forcedTimeout: forcedTimeout,
	}
}

// Add регистрирует функцию закрытия. name попадает в текст ошибки.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, step{name: name, fn: f})
}

// AddSimple регистрирует закрытие без контекста и без ошибки (например, pgxpool.Pool.Close).
func (c *Closer) AddSimple(name string, f func()) {
	c.Add(name, func(context.Context) error {
		f()
		return nil
	})
}

// Close закрывает всё зарегистрированное. Повторные вызовы ничего не делают и возвращают nil.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		steps := c.steps
		c.mu.Unlock()

		stopIdx, errs := c.gracefulClose(ctx, steps)
		if stopIdx == successIdx {
			if len(errs) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errs, "\n"))
			}
			return
		}

		// Шаг stopIdx мог не закончиться: он попадает в принудительное закрытие вместе с остальными
		remaining := steps[:stopIdx+1]
		errs = append(errs, c.forcedClose(remaining)...)

		err = fmt.Errorf(
			"shutdown interrupted after %d/%d steps:\n%s",
			len(steps)-1-stopIdx,
			len(steps),
			strings.Join(errs, "\n"),
		)
	})

	return err
}

// gracefulClose закрывает шаги в порядке LIFO. При отмене контекста возвращает индекс
// шага, на котором остановился, иначе successIdx.
func (c *Closer) gracefulClose(ctx context.Context, steps []step) (int, []string) {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		var (
			s    = steps[i]
			done = make(chan error, 1)
		)

		go func() {
			done <- s.fn(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Sprintf("[!] %s: %v", s.name, err))
			}
		case <-ctx.Done():
			return i, errs
		}
	}

	return successIdx, errs
}

func (c *Closer) forcedClose(steps []step) []string {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, s := range steps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("[FORCED] %s: %v", s.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
