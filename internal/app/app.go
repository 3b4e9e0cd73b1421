// Package app holds the application state for one validator's working
// session: the claimed provider, the cached preview and stats, and the
// in-memory accumulator of validation decisions. It is constructed and
// injected explicitly rather than living as a package-level singleton, so
// every front end (CLI command or web server) works against its own instance.
package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/validator-cli/internal/auth"
	"github.com/sells-group/validator-cli/internal/format"
	"github.com/sells-group/validator-cli/internal/model"
	"github.com/sells-group/validator-cli/internal/records"
	"github.com/sells-group/validator-cli/internal/workflow"
	"github.com/sells-group/validator-cli/pkg/valapi"
)

// ErrNoProviders signals an empty work queue on claim. Recoverable: retry
// the claim later.
var ErrNoProviders = eris.New("no providers available")

// ErrNoSession signals an operation that needs an active validation session.
var ErrNoSession = eris.New("no active validation session - claim a provider first")

// sessionInvalidHint is surfaced when the backend reports the session row is
// gone or already closed during an explicit user action.
const sessionInvalidHint = "the session is no longer valid - claim a new provider to continue"

// Options tunes App construction.
type Options struct {
	AutosaveDelay time.Duration    // 0 disables auto-save
	Clock         func() time.Time // defaults to time.Now
}

// App coordinates the backend client, the token store, and the client-side
// validation state for one working session.
type App struct {
	api    valapi.Client
	tokens *auth.TokenStore
	clock  func() time.Time
	acc    *workflow.Accumulator

	mu      sync.Mutex
	current *model.ProviderValidationData
	preview *model.ValidationPreview
	stats   *model.ProviderStats
}

// New builds an App around a backend client and token store.
func New(api valapi.Client, tokens *auth.TokenStore, opts Options) *App {
	a := &App{
		api:    api,
		tokens: tokens,
		clock:  opts.Clock,
	}
	if a.clock == nil {
		a.clock = time.Now
	}
	a.acc = workflow.NewAccumulator(a.flushUpdate, a.sessionActive, opts.AutosaveDelay)
	return a
}

// Close stops the auto-save timer.
func (a *App) Close() { a.acc.Close() }

// --- authentication ---

// Login authenticates and persists the bearer token.
func (a *App) Login(ctx context.Context, email, password string) (*model.User, error) {
	if !format.ValidEmail(email) {
		return nil, eris.New("a valid email address is required")
	}
	resp, err := a.api.Login(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, eris.Wrap(err, "app: login")
	}
	if resp.Token == "" {
		return nil, eris.New("app: login response missing token")
	}
	if err := a.tokens.Save(resp.Token); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Register creates an account after local field validation, then persists
// the token exactly as Login does.
func (a *App) Register(ctx context.Context, email, password string) (*model.User, error) {
	if !format.ValidEmail(email) {
		return nil, eris.New("a valid email address is required")
	}
	if res := format.CheckPassword(password); !res.Valid {
		return nil, eris.New(strings.Join(res.Errors, "; "))
	}
	resp, err := a.api.Register(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, eris.Wrap(err, "app: register")
	}
	if err := a.tokens.Save(resp.Token); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout clears the persisted token.
func (a *App) Logout() error {
	return a.tokens.Clear()
}

// CurrentUser fetches the authenticated user. A rejected authentication
// check clears the local token.
func (a *App) CurrentUser(ctx context.Context) (*model.User, error) {
	user, err := a.api.Me(ctx)
	if err != nil {
		if valapi.IsAuth(err) {
			if clearErr := a.tokens.Clear(); clearErr != nil {
				zap.L().Warn("failed to clear token", zap.Error(clearErr))
			}
		}
		return nil, eris.Wrap(err, "app: current user")
	}
	return user, nil
}

// --- provider claim and cached state ---

// ClaimNext claims the next provider and refreshes stats in parallel. A
// stats failure is logged, never fatal. Claiming resets all local session
// state.
func (a *App) ClaimNext(ctx context.Context) (*model.ProviderValidationData, error) {
	var (
		data  *model.ProviderValidationData
		stats *model.ProviderStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := a.api.NextProvider(gctx)
		if err != nil {
			if valapi.IsNotFound(err) {
				return ErrNoProviders
			}
			return eris.Wrap(err, "app: claim next provider")
		}
		data = d
		return nil
	})
	g.Go(func() error {
		s, err := a.api.Stats(gctx)
		if err != nil {
			zap.L().Warn("failed to fetch stats", zap.Error(err))
			return nil
		}
		stats = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.acc.Clear()
	a.mu.Lock()
	a.current = data
	a.preview = nil
	if stats != nil {
		a.stats = stats
	}
	a.mu.Unlock()

	return data, nil
}

// Current returns the cached claimed provider data, if any.
func (a *App) Current() *model.ProviderValidationData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Session returns the cached validation session, or nil.
func (a *App) Session() *model.ValidationSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	return a.current.ValidationSession
}

// GroupedRecords shapes the cached records into display groups.
func (a *App) GroupedRecords() [][]model.AddressPhoneRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	return records.GroupByAddress(a.current.AddressPhoneRecords)
}

// CachedStats returns the last stats snapshot, if any.
func (a *App) CachedStats() *model.ProviderStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// CachedPreview returns the last preview snapshot, if any.
func (a *App) CachedPreview() *model.ValidationPreview {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.preview
}

// RefreshStats fetches and caches the aggregate queue stats.
func (a *App) RefreshStats(ctx context.Context) (*model.ProviderStats, error) {
	stats, err := a.api.Stats(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "app: fetch stats")
	}
	a.mu.Lock()
	a.stats = stats
	a.mu.Unlock()
	return stats, nil
}

func (a *App) sessionActive() bool {
	return a.Session() != nil
}

func (a *App) clearSessionState() {
	a.acc.Clear()
	a.mu.Lock()
	if a.current != nil {
		a.current.ValidationSession = nil
	}
	a.preview = nil
	a.mu.Unlock()
}

// sessionErr converts a backend session-invalid condition into the
// recoverable claim-again state; other errors pass through.
func (a *App) sessionErr(err error, op string) error {
	if valapi.IsSessionInvalid(err) {
		a.clearSessionState()
		return eris.Wrap(err, sessionInvalidHint)
	}
	return eris.Wrap(err, op)
}

// --- validation decisions ---

// SetAddressValidation records a verdict for one address. A correction must
// carry valid replacement fields.
func (a *App) SetAddressValidation(v model.AddressValidation) error {
	if !v.IsCorrect && v.CorrectedAddress1 != "" {
		res := format.CheckAddress(v.CorrectedAddress1, v.CorrectedCity, v.CorrectedState, v.CorrectedZip)
		if !res.Valid {
			return eris.New(strings.Join(res.Errors, "; "))
		}
	}
	a.acc.SetAddressValidation(v)
	return nil
}

// SetPhoneValidation records a verdict for one phone.
func (a *App) SetPhoneValidation(v model.PhoneValidation) error {
	if !v.IsCorrect && v.CorrectedPhone != "" && !format.ValidPhone(v.CorrectedPhone) {
		return eris.New("Valid phone number is required")
	}
	a.acc.SetPhoneValidation(v)
	return nil
}

// AddNewAddress appends a user-entered address after field validation.
func (a *App) AddNewAddress(addr model.NewAddress) error {
	if res := format.CheckAddress(addr.Address1, addr.City, addr.State, addr.Zip); !res.Valid {
		return eris.New(strings.Join(res.Errors, "; "))
	}
	a.acc.AddNewAddress(addr)
	return nil
}

// AddNewPhone appends a user-entered phone after field validation.
func (a *App) AddNewPhone(p model.NewPhone) error {
	if !format.ValidPhone(p.Phone) {
		return eris.New("Valid phone number is required")
	}
	a.acc.AddNewPhone(p)
	return nil
}

// PendingUpdate exposes the accumulator's current cumulative payload.
func (a *App) PendingUpdate() model.ValidationUpdate {
	return a.acc.Snapshot()
}

// flushUpdate is the accumulator's FlushFunc.
func (a *App) flushUpdate(ctx context.Context, update model.ValidationUpdate) error {
	session := a.Session()
	if session == nil {
		return nil
	}
	return a.api.UpdateValidation(ctx, session.ID, update)
}

// Save flushes the accumulated decisions now. Unlike auto-save, failures
// here are surfaced to the caller.
func (a *App) Save(ctx context.Context) error {
	if err := a.acc.Flush(ctx); err != nil {
		return a.sessionErr(err, "app: save progress")
	}
	return nil
}

// --- call attempts ---

// RecordCallAttempt applies the client-side policy, then logs the attempt
// with the backend, stamps it on the cached session, and refreshes the
// preview best-effort. Returns the attempt number that was recorded.
func (a *App) RecordCallAttempt(ctx context.Context) (int, error) {
	session := a.Session()
	if session == nil {
		return 0, ErrNoSession
	}

	now := a.clock()
	decision := workflow.CanAttempt(session, now)
	if !decision.Allowed {
		return 0, eris.New(decision.Reason)
	}

	if err := a.api.RecordCallAttempt(ctx, session.ID, decision.NextNumber); err != nil {
		return 0, a.sessionErr(err, "app: record call attempt")
	}

	a.mu.Lock()
	if a.current != nil && a.current.ValidationSession != nil {
		switch decision.NextNumber {
		case 1:
			a.current.ValidationSession.CallAttempt1 = &now
		case 2:
			a.current.ValidationSession.CallAttempt2 = &now
		}
	}
	a.mu.Unlock()

	if _, err := a.RefreshPreview(ctx); err != nil {
		zap.L().Warn("failed to refresh preview after call attempt", zap.Error(err))
	}

	return decision.NextNumber, nil
}

// --- preview, progress, completion ---

// RefreshPreview fetches and caches the server's validation preview.
func (a *App) RefreshPreview(ctx context.Context) (*model.ValidationPreview, error) {
	session := a.Session()
	if session == nil {
		return nil, ErrNoSession
	}
	preview, err := a.api.Preview(ctx, session.ID)
	if err != nil {
		return nil, a.sessionErr(err, "app: fetch preview")
	}
	a.mu.Lock()
	a.preview = preview
	a.mu.Unlock()
	return preview, nil
}

// Progress derives the workflow checklist from the cached session and
// preview: the steps, the index of the current one, and the percent done.
func (a *App) Progress() ([]workflow.Step, int, int) {
	a.mu.Lock()
	var session *model.ValidationSession
	if a.current != nil {
		session = a.current.ValidationSession
	}
	preview := a.preview
	a.mu.Unlock()

	steps := workflow.Steps(session, preview)
	return steps, workflow.CurrentStep(steps), workflow.Percent(preview)
}

// Complete finishes the session: flush the pending decisions, re-check the
// completion gate against a fresh preview, then issue the completion call
// and drop all local session state. The flush strictly precedes the
// completion request.
func (a *App) Complete(ctx context.Context) error {
	session := a.Session()
	if session == nil {
		return ErrNoSession
	}

	if err := a.acc.Flush(ctx); err != nil {
		return a.sessionErr(err, "app: save before complete")
	}

	preview, err := a.RefreshPreview(ctx)
	if err != nil {
		return err
	}
	if ok, reason := workflow.Gate(preview); !ok {
		return eris.New(reason)
	}

	if err := a.api.Complete(ctx, session.ID); err != nil {
		return a.sessionErr(err, "app: complete session")
	}

	a.acc.Clear()
	a.mu.Lock()
	a.current = nil
	a.preview = nil
	a.mu.Unlock()

	if _, err := a.RefreshStats(ctx); err != nil {
		zap.L().Warn("failed to refresh stats after completion", zap.Error(err))
	}
	return nil
}
