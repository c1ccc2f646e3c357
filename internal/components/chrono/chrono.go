package chrono

import (
	"context"
	"sync"
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	Now() time.Time
	// Sleep blocks for the given duration or until ctx is done, in which case
	// it returns ctx.Err().
	Sleep(ctx context.Context, d time.Duration) error
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now()
}

func (StandardTime) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FakeTime is a TimeAPI that never blocks, it advances its own clock by the
// requested duration and remembers every sleep.
type FakeTime struct {
	mutex   sync.Mutex
	current time.Time
	sleeps  []time.Duration
}

func NewFakeTime(start time.Time) *FakeTime {
	return &FakeTime{current: start}
}

func (f *FakeTime) Now() time.Time {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.current
}

func (f *FakeTime) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.sleeps = append(f.sleeps, d)
	f.current = f.current.Add(d)
	return nil
}

// Sleeps returns every duration passed to Sleep in call order.
func (f *FakeTime) Sleeps() []time.Duration {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	out := make([]time.Duration, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}
