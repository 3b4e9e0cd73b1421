package workflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/validator-cli/internal/model"
	"github.com/sells-group/validator-cli/pkg/valapi"
)

// FlushFunc delivers the cumulative update payload to the backend.
type FlushFunc func(ctx context.Context, update model.ValidationUpdate) error

// Accumulator collects the validator's per-entity decisions in memory until
// they are flushed. Decisions upsert by entity id (last write wins); new
// entities append in order. State is cumulative, not a log, which is why a
// flush requested while one is in flight can simply be dropped: the next
// flush carries everything anyway.
//
// The original runs on a single-threaded event loop; here the auto-flush
// timer fires on its own goroutine, so the hot state is mutex-guarded.
type Accumulator struct {
	flush  FlushFunc
	active func() bool
	quiet  time.Duration

	mu           sync.Mutex
	addresses    map[int]model.AddressValidation
	phones       map[int]model.PhoneValidation
	newAddresses []model.NewAddress
	newPhones    []model.NewPhone
	timer        *time.Timer
	inFlight     bool
	closed       bool
}

// NewAccumulator wires an accumulator to a flush function and a session
// gate. quiet is the auto-save debounce window; zero disables auto-save.
func NewAccumulator(flush FlushFunc, active func() bool, quiet time.Duration) *Accumulator {
	if active == nil {
		active = func() bool { return true }
	}
	return &Accumulator{
		flush:     flush,
		active:    active,
		quiet:     quiet,
		addresses: make(map[int]model.AddressValidation),
		phones:    make(map[int]model.PhoneValidation),
	}
}

// SetAddressValidation upserts the verdict for one address.
func (a *Accumulator) SetAddressValidation(v model.AddressValidation) {
	a.mu.Lock()
	a.addresses[v.AddressID] = v
	a.bumpLocked()
	a.mu.Unlock()
}

// SetPhoneValidation upserts the verdict for one phone.
func (a *Accumulator) SetPhoneValidation(v model.PhoneValidation) {
	a.mu.Lock()
	a.phones[v.PhoneID] = v
	a.bumpLocked()
	a.mu.Unlock()
}

// AddNewAddress appends a user-entered address. No client-side dedupe.
func (a *Accumulator) AddNewAddress(addr model.NewAddress) {
	a.mu.Lock()
	a.newAddresses = append(a.newAddresses, addr)
	a.bumpLocked()
	a.mu.Unlock()
}

// AddNewPhone appends a user-entered phone.
func (a *Accumulator) AddNewPhone(p model.NewPhone) {
	a.mu.Lock()
	a.newPhones = append(a.newPhones, p)
	a.bumpLocked()
	a.mu.Unlock()
}

// RemoveNewAddress drops the pending new address at index, if present.
func (a *Accumulator) RemoveNewAddress(index int) {
	a.mu.Lock()
	if index >= 0 && index < len(a.newAddresses) {
		a.newAddresses = append(a.newAddresses[:index], a.newAddresses[index+1:]...)
		a.bumpLocked()
	}
	a.mu.Unlock()
}

// Clear resets all four collections and cancels any pending auto-save.
// Called after a successful completion or when abandoning the session.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	a.addresses = make(map[int]model.AddressValidation)
	a.phones = make(map[int]model.PhoneValidation)
	a.newAddresses = nil
	a.newPhones = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
}

// Dirty reports whether any decision or addition is pending.
func (a *Accumulator) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.addresses) > 0 || len(a.phones) > 0 ||
		len(a.newAddresses) > 0 || len(a.newPhones) > 0
}

// Snapshot builds the update payload. Map entries are emitted in ascending
// id order so payloads are deterministic.
func (a *Accumulator) Snapshot() model.ValidationUpdate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Accumulator) snapshotLocked() model.ValidationUpdate {
	update := model.ValidationUpdate{
		AddressValidations: make([]model.AddressValidation, 0, len(a.addresses)),
		PhoneValidations:   make([]model.PhoneValidation, 0, len(a.phones)),
		NewAddresses:       append([]model.NewAddress(nil), a.newAddresses...),
	}
	if len(a.newPhones) > 0 {
		update.NewPhones = append([]model.NewPhone(nil), a.newPhones...)
	}

	addrIDs := make([]int, 0, len(a.addresses))
	for id := range a.addresses {
		addrIDs = append(addrIDs, id)
	}
	sort.Ints(addrIDs)
	for _, id := range addrIDs {
		update.AddressValidations = append(update.AddressValidations, a.addresses[id])
	}

	phoneIDs := make([]int, 0, len(a.phones))
	for id := range a.phones {
		phoneIDs = append(phoneIDs, id)
	}
	sort.Ints(phoneIDs)
	for _, id := range phoneIDs {
		update.PhoneValidations = append(update.PhoneValidations, a.phones[id])
	}

	return update
}

// Flush sends the cumulative state to the backend. It is a no-op when no
// session is active, and a dropped no-op when another flush is already in
// flight.
func (a *Accumulator) Flush(ctx context.Context) error {
	if !a.active() {
		return nil
	}

	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return nil
	}
	a.inFlight = true
	update := a.snapshotLocked()
	a.mu.Unlock()

	err := a.flush(ctx, update)

	a.mu.Lock()
	a.inFlight = false
	a.mu.Unlock()

	if err != nil {
		return eris.Wrap(err, "workflow: flush validation state")
	}
	return nil
}

// bumpLocked resets the quiet-period timer. Rapid edits coalesce into a
// single flush after the window elapses from the last edit.
func (a *Accumulator) bumpLocked() {
	if a.quiet <= 0 || a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.quiet, a.autoFlush)
}

// autoFlush runs on timer expiry. Failures never surface to the user:
// session-invalid conditions are expected when the backend reclaimed the
// record, anything else is logged for later inspection.
func (a *Accumulator) autoFlush() {
	if !a.active() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Flush(ctx); err != nil {
		if valapi.IsSessionInvalid(err) {
			zap.L().Debug("auto-save skipped: session no longer valid", zap.Error(err))
			return
		}
		zap.L().Warn("auto-save failed", zap.Error(err))
	}
}

// Close cancels any pending auto-save and disables future ones.
func (a *Accumulator) Close() {
	a.mu.Lock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
}
