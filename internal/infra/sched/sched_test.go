//go:build !integration

package sched

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
	"whatsapp-reseller/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type fakeOutbox struct {
	repository.OutboxRepository
	due      []*model.OutboxEvent
	released int64
	cutoff   time.Time
}

func (f *fakeOutbox) ReleaseStale(_ context.Context, _ repository.Tx, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.released, nil
}

func (f *fakeOutbox) ListDue(_ context.Context, _ repository.Tx, _ time.Time, limit int) ([]*model.OutboxEvent, error) {
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

type fakeDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (d *fakeDispatcher) Enqueue(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, id)
}

type fakeLocker struct {
	held     bool
	unlocked int
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (string, error) {
	if l.held {
		return "", domain.ErrLockNotAcquired
	}
	return "tok", nil
}

func (l *fakeLocker) Unlock(context.Context, string, string) error {
	l.unlocked++
	return nil
}

type fakeCallbacks struct {
	usecase.CallbackUseCase
	olderThan time.Time
	n         int
}

func (f *fakeCallbacks) ExpireStale(_ context.Context, olderThan time.Time, _ int) (int, error) {
	f.olderThan = olderThan
	return f.n, nil
}

func TestOutboxRelay_Tick(t *testing.T) {
	ctx := context.Background()

	t.Run("should re-submit due events and release stale claims", func(t *testing.T) {
		ob := &fakeOutbox{due: []*model.OutboxEvent{{ID: "a"}, {ID: "b"}, {ID: "c"}}, released: 1}
		d := &fakeDispatcher{}
		lk := &fakeLocker{}
		r := NewOutboxRelay(ob, d, lk, time.Second, time.Minute, 2, newTestLogger())
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		r.now = func() time.Time { return now }

		n, err := r.Tick(ctx)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if n != 2 || len(d.ids) != 2 || d.ids[0] != "a" {
			t.Errorf("expected the first batch of two, got %v", d.ids)
		}
		if !ob.cutoff.Equal(now.Add(-time.Minute)) {
			t.Errorf("unexpected stale cutoff %v", ob.cutoff)
		}
		if lk.unlocked != 1 {
			t.Errorf("expected the lock to be released, got %d unlocks", lk.unlocked)
		}
	})

	t.Run("should skip the tick when another replica holds the lock", func(t *testing.T) {
		ob := &fakeOutbox{due: []*model.OutboxEvent{{ID: "a"}}}
		d := &fakeDispatcher{}
		r := NewOutboxRelay(ob, d, &fakeLocker{held: true}, time.Second, time.Minute, 10, newTestLogger())

		n, err := r.Tick(ctx)
		if err != nil || n != 0 || len(d.ids) != 0 {
			t.Errorf("expected a skipped tick, got n=%d err=%v ids=%v", n, err, d.ids)
		}
	})

	t.Run("should run without a locker", func(t *testing.T) {
		ob := &fakeOutbox{due: []*model.OutboxEvent{{ID: "a"}}}
		d := &fakeDispatcher{}
		r := NewOutboxRelay(ob, d, nil, 0, 0, 0, newTestLogger())
		if n, _ := r.Tick(ctx); n != 1 {
			t.Errorf("expected one event, got %d", n)
		}
	})
}

func TestPaymentExpirer_Tick(t *testing.T) {
	cb := &fakeCallbacks{n: 3}
	w := NewPaymentExpirer(cb, nil, time.Minute, 2*time.Hour, 10, newTestLogger())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	n, err := w.Tick(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("expected 3 expired, got %d, %v", n, err)
	}
	if !cb.olderThan.Equal(now.Add(-2 * time.Hour)) {
		t.Errorf("unexpected cutoff %v", cb.olderThan)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewOutboxRelay(&fakeOutbox{}, &fakeDispatcher{}, nil, time.Hour, 0, 0, newTestLogger())
	if err := r.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
