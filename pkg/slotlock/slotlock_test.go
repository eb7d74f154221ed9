package slotlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(providerID int64) Key {
	return NewKey(providerID, time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC), time.Hour)
}

func TestNewKeyBucketsSlotsTogether(t *testing.T) {
	// Слоты одного часа делят один ключ
	k1 := NewKey(1, time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC), time.Hour)
	k2 := NewKey(1, time.Date(2026, 9, 15, 9, 30, 0, 0, time.UTC), time.Hour)
	assert.Equal(t, k1, k2)

	// Разные часы - разные ключи
	k3 := NewKey(1, time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC), time.Hour)
	assert.NotEqual(t, k1, k3)

	// Разные провайдеры - разные ключи
	k4 := NewKey(2, time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC), time.Hour)
	assert.NotEqual(t, k1, k4)

	// Зона не влияет на корзину
	moscow := time.FixedZone("MSK", 3*60*60)
	k5 := NewKey(1, time.Date(2026, 9, 15, 12, 30, 0, 0, moscow), time.Hour)
	assert.Equal(t, k1, k5)
}

func TestAcquireRelease(t *testing.T) {
	g := New(100 * time.Millisecond)
	key := testKey(1)

	release, err := g.Acquire(context.Background(), key)
	require.NoError(t, err)
	release()

	// После освобождения ключ снова доступен
	release2, err := g.Acquire(context.Background(), key)
	require.NoError(t, err)
	release2()

	// Повторный вызов release безопасен
	release2()
}

func TestAcquireBusyOnContention(t *testing.T) {
	g := New(50 * time.Millisecond)
	key := testKey(1)

	release, err := g.Acquire(context.Background(), key)
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = g.Acquire(context.Background(), key)
	assert.ErrorIs(t, err, ErrBusy)
	// Ожидание ограничено maxWait, не бесконечно
	assert.Less(t, time.Since(start), time.Second)
}

func TestAcquireDifferentKeysDoNotBlock(t *testing.T) {
	g := New(50 * time.Millisecond)

	release1, err := g.Acquire(context.Background(), testKey(1))
	require.NoError(t, err)
	defer release1()

	release2, err := g.Acquire(context.Background(), testKey(2))
	require.NoError(t, err)
	defer release2()
}

func TestAcquireContextCancelled(t *testing.T) {
	g := New(time.Minute)
	key := testKey(1)

	release, err := g.Acquire(context.Background(), key)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = g.Acquire(ctx, key)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMutualExclusion(t *testing.T) {
	g := New(5 * time.Second)
	key := testKey(1)

	const workers = 32
	var inSection int32
	var violations int32
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := g.Acquire(context.Background(), key)
			if err != nil {
				atomic.AddInt32(&violations, 1)
				return
			}
			defer release()

			if atomic.AddInt32(&inSection, 1) > 1 {
				atomic.AddInt32(&violations, 1)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inSection, -1)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&violations))
}

func TestHaltBlocksAcquire(t *testing.T) {
	g := New(100 * time.Millisecond)
	key := testKey(1)

	g.Halt(key)
	assert.True(t, g.IsHalted(key))

	_, err := g.Acquire(context.Background(), key)
	assert.ErrorIs(t, err, ErrKeyHalted)

	// Другие ключи того же провайдера не затронуты
	other := NewKey(1, time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC), time.Hour)
	release, err := g.Acquire(context.Background(), other)
	require.NoError(t, err)
	release()
}

func TestHaltWhileWaiting(t *testing.T) {
	g := New(time.Second)
	key := testKey(1)

	release, err := g.Acquire(context.Background(), key)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := g.Acquire(context.Background(), key)
		done <- err
	}()

	// Даем ожидающему встать в очередь, останавливаем ключ и отпускаем
	time.Sleep(20 * time.Millisecond)
	g.Halt(key)
	release()

	assert.ErrorIs(t, <-done, ErrKeyHalted)
}

func TestResetProvider(t *testing.T) {
	g := New(100 * time.Millisecond)

	k1 := NewKey(1, time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC), time.Hour)
	k2 := NewKey(1, time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC), time.Hour)
	k3 := NewKey(2, time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC), time.Hour)

	g.Halt(k1)
	g.Halt(k2)
	g.Halt(k3)

	cleared := g.ResetProvider(1)
	assert.Equal(t, 2, cleared)
	assert.False(t, g.IsHalted(k1))
	assert.False(t, g.IsHalted(k2))
	assert.True(t, g.IsHalted(k3))

	// Повторный сброс ничего не находит
	assert.Zero(t, g.ResetProvider(1))

	// После сброса ключ снова рабочий
	release, err := g.Acquire(context.Background(), k1)
	require.NoError(t, err)
	release()
}
