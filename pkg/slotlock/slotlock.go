package slotlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrBusy возвращается, когда блокировка не получена за отведенное время.
	// Вызывающая сторона может повторить запрос.
	ErrBusy = errors.New("slotlock: lock not acquired within wait bound")

	// ErrKeyHalted возвращается для ключа, остановленного после обнаружения
	// нарушения инварианта. Сбрасывается только оператором.
	ErrKeyHalted = errors.New("slotlock: key is halted pending manual reconciliation")
)

// Key ключ сериализации: провайдер + временная корзина слота.
// Все мутации бронирований одного провайдера в одной корзине взаимоисключающие.
type Key struct {
	ProviderID int64
	Bucket     int64 // unix-время начала корзины
}

// NewKey строит ключ сериализации для слота.
// bucket задает грубость корзины (обычно час): все слоты внутри одной
// корзины делят одну блокировку.
func NewKey(providerID int64, slotStart time.Time, bucket time.Duration) Key {
	return Key{
		ProviderID: providerID,
		Bucket:     slotStart.UTC().Truncate(bucket).Unix(),
	}
}

// String возвращает представление ключа для логов
func (k Key) String() string {
	return fmt.Sprintf("provider=%d bucket=%s", k.ProviderID, time.Unix(k.Bucket, 0).UTC().Format(time.RFC3339))
}

type entry struct {
	sem  chan struct{}
	refs int
}

// Guard набор блокировок по ключам с ограниченным временем ожидания
// и возможностью остановки ключа (poisoning) при порче данных
type Guard struct {
	mu      sync.Mutex
	entries map[Key]*entry
	halted  map[Key]struct{}
	maxWait time.Duration
}

// New создает Guard с заданным максимальным временем ожидания блокировки
func New(maxWait time.Duration) *Guard {
	return &Guard{
		entries: make(map[Key]*entry),
		halted:  make(map[Key]struct{}),
		maxWait: maxWait,
	}
}

// Acquire захватывает блокировку ключа.
// Возвращает функцию освобождения. Ожидание ограничено maxWait (ErrBusy)
// и контекстом. Для остановленного ключа сразу возвращает ErrKeyHalted.
func (g *Guard) Acquire(ctx context.Context, key Key) (func(), error) {
	g.mu.Lock()
	if _, ok := g.halted[key]; ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrKeyHalted, key)
	}
	e, ok := g.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		g.entries[key] = e
	}
	e.refs++
	g.mu.Unlock()

	timer := time.NewTimer(g.maxWait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		// Ключ могли остановить, пока мы ждали
		g.mu.Lock()
		if _, ok := g.halted[key]; ok {
			g.mu.Unlock()
			g.release(key, e, true)
			return nil, fmt.Errorf("%w: %s", ErrKeyHalted, key)
		}
		g.mu.Unlock()
		var once sync.Once
		return func() {
			once.Do(func() { g.release(key, e, true) })
		}, nil
	case <-timer.C:
		g.release(key, e, false)
		return nil, fmt.Errorf("%w: %s", ErrBusy, key)
	case <-ctx.Done():
		g.release(key, e, false)
		return nil, ctx.Err()
	}
}

// Halt останавливает ключ: все последующие Acquire для него завершаются
// ErrKeyHalted до вызова Reset
func (g *Guard) Halt(key Key) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.halted[key] = struct{}{}
}

// IsHalted сообщает, остановлен ли ключ
func (g *Guard) IsHalted(key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.halted[key]
	return ok
}

// ResetProvider снимает остановку со всех ключей провайдера.
// Возвращает количество сброшенных ключей.
func (g *Guard) ResetProvider(providerID int64) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	cleared := 0
	for key := range g.halted {
		if key.ProviderID == providerID {
			delete(g.halted, key)
			cleared++
		}
	}
	return cleared
}

// release освобождает семафор (если held) и подчищает запись без ожидающих
func (g *Guard) release(key Key, e *entry, held bool) {
	if held {
		<-e.sem
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(g.entries, key)
	}
}
