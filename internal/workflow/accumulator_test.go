package workflow

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/validator-cli/internal/model"
)

type captureFlush struct {
	mu      sync.Mutex
	calls   []model.ValidationUpdate
	block   chan struct{}
	failErr error
}

func (c *captureFlush) fn(ctx context.Context, update model.ValidationUpdate) error {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.calls = append(c.calls, update)
	c.mu.Unlock()
	return c.failErr
}

func (c *captureFlush) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *captureFlush) last() model.ValidationUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[len(c.calls)-1]
}

func TestAccumulatorLastWriteWins(t *testing.T) {
	acc := NewAccumulator(nil, nil, 0)

	acc.SetAddressValidation(model.AddressValidation{AddressID: 5, IsCorrect: true})
	acc.SetAddressValidation(model.AddressValidation{
		AddressID: 5, IsCorrect: false, CorrectedAddress1: "X",
	})

	update := acc.Snapshot()
	require.Len(t, update.AddressValidations, 1)
	assert.Equal(t, model.AddressValidation{
		AddressID: 5, IsCorrect: false, CorrectedAddress1: "X",
	}, update.AddressValidations[0])
}

func TestAccumulatorSnapshotDeterministicOrder(t *testing.T) {
	acc := NewAccumulator(nil, nil, 0)

	acc.SetAddressValidation(model.AddressValidation{AddressID: 9, IsCorrect: true})
	acc.SetAddressValidation(model.AddressValidation{AddressID: 2, IsCorrect: true})
	acc.SetAddressValidation(model.AddressValidation{AddressID: 5, IsCorrect: true})
	acc.SetPhoneValidation(model.PhoneValidation{PhoneID: 8, IsCorrect: true})
	acc.SetPhoneValidation(model.PhoneValidation{PhoneID: 3, IsCorrect: false})

	update := acc.Snapshot()
	assert.Equal(t, 2, update.AddressValidations[0].AddressID)
	assert.Equal(t, 5, update.AddressValidations[1].AddressID)
	assert.Equal(t, 9, update.AddressValidations[2].AddressID)
	assert.Equal(t, 3, update.PhoneValidations[0].PhoneID)
	assert.Equal(t, 8, update.PhoneValidations[1].PhoneID)
}

func TestAccumulatorNewEntitiesKeepOrder(t *testing.T) {
	acc := NewAccumulator(nil, nil, 0)

	acc.AddNewAddress(model.NewAddress{Address1: "first"})
	acc.AddNewAddress(model.NewAddress{Address1: "second"})
	acc.AddNewAddress(model.NewAddress{Address1: "first"}) // no dedupe
	acc.AddNewPhone(model.NewPhone{Phone: "5551234567"})

	update := acc.Snapshot()
	require.Len(t, update.NewAddresses, 3)
	assert.Equal(t, "first", update.NewAddresses[0].Address1)
	assert.Equal(t, "second", update.NewAddresses[1].Address1)
	require.Len(t, update.NewPhones, 1)
}

func TestAccumulatorRemoveNewAddress(t *testing.T) {
	acc := NewAccumulator(nil, nil, 0)

	acc.AddNewAddress(model.NewAddress{Address1: "keep"})
	acc.AddNewAddress(model.NewAddress{Address1: "drop"})
	acc.RemoveNewAddress(1)
	acc.RemoveNewAddress(7) // out of range, ignored

	update := acc.Snapshot()
	require.Len(t, update.NewAddresses, 1)
	assert.Equal(t, "keep", update.NewAddresses[0].Address1)
}

func TestAccumulatorClear(t *testing.T) {
	acc := NewAccumulator(nil, nil, 0)

	acc.SetAddressValidation(model.AddressValidation{AddressID: 1, IsCorrect: true})
	acc.SetPhoneValidation(model.PhoneValidation{PhoneID: 1, IsCorrect: true})
	acc.AddNewAddress(model.NewAddress{Address1: "x"})
	require.True(t, acc.Dirty())

	acc.Clear()
	assert.False(t, acc.Dirty())
	assert.True(t, acc.Snapshot().Empty())
}

func TestFlushNoopWithoutActiveSession(t *testing.T) {
	capture := &captureFlush{}
	acc := NewAccumulator(capture.fn, func() bool { return false }, 0)

	acc.SetAddressValidation(model.AddressValidation{AddressID: 1, IsCorrect: true})
	require.NoError(t, acc.Flush(context.Background()))
	assert.Zero(t, capture.count())
}

func TestFlushDropsWhileInFlight(t *testing.T) {
	capture := &captureFlush{block: make(chan struct{})}
	acc := NewAccumulator(capture.fn, nil, 0)
	acc.SetAddressValidation(model.AddressValidation{AddressID: 1, IsCorrect: true})

	done := make(chan error, 1)
	go func() {
		done <- acc.Flush(context.Background())
	}()

	// Wait for the first flush to be holding the in-flight flag.
	require.Eventually(t, func() bool {
		acc.mu.Lock()
		defer acc.mu.Unlock()
		return acc.inFlight
	}, time.Second, time.Millisecond)

	// A second flush while one is running is dropped, not queued.
	require.NoError(t, acc.Flush(context.Background()))
	assert.Zero(t, capture.count())

	close(capture.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, capture.count())
}

func TestFlushWrapsError(t *testing.T) {
	capture := &captureFlush{failErr: assert.AnError}
	acc := NewAccumulator(capture.fn, nil, 0)

	err := acc.Flush(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "flush validation state")
}

func TestAutoFlushDebounce(t *testing.T) {
	capture := &captureFlush{}
	acc := NewAccumulator(capture.fn, nil, 50*time.Millisecond)
	defer acc.Close()

	// Three rapid mutations reset the quiet window each time; only one
	// flush fires, carrying all three.
	acc.SetAddressValidation(model.AddressValidation{AddressID: 1, IsCorrect: true})
	time.Sleep(10 * time.Millisecond)
	acc.SetAddressValidation(model.AddressValidation{AddressID: 2, IsCorrect: true})
	time.Sleep(10 * time.Millisecond)
	acc.SetPhoneValidation(model.PhoneValidation{PhoneID: 3, IsCorrect: false})

	assert.Zero(t, capture.count(), "no flush before the quiet window elapses")

	require.Eventually(t, func() bool { return capture.count() == 1 },
		time.Second, 5*time.Millisecond)

	update := capture.last()
	assert.Len(t, update.AddressValidations, 2)
	assert.Len(t, update.PhoneValidations, 1)

	// Quiet afterwards: no second flush.
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, capture.count())
}

func TestAutoFlushDisabledWhenQuietZero(t *testing.T) {
	capture := &captureFlush{}
	acc := NewAccumulator(capture.fn, nil, 0)

	acc.SetAddressValidation(model.AddressValidation{AddressID: 1, IsCorrect: true})
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, capture.count())
}

func TestAutoFlushStopsAfterClose(t *testing.T) {
	var calls atomic.Int32
	flush := func(ctx context.Context, update model.ValidationUpdate) error {
		calls.Add(1)
		return nil
	}
	acc := NewAccumulator(flush, nil, 20*time.Millisecond)

	acc.SetAddressValidation(model.AddressValidation{AddressID: 1, IsCorrect: true})
	acc.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
