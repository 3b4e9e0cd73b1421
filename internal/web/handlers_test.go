package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/validator-cli/internal/app"
	"github.com/sells-group/validator-cli/internal/auth"
	"github.com/sells-group/validator-cli/internal/model"
	"github.com/sells-group/validator-cli/pkg/valapi"
)

var tuesday = time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)

// newTestServer wires a Server to an App whose backend is the given handler
// map, keyed "METHOD /path". The frozen clock keeps call-attempt policy
// results deterministic.
func newTestServer(t *testing.T, backend map[string]http.HandlerFunc) *Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := backend[r.Method+" "+r.URL.Path]
		if h == nil {
			t.Errorf("unexpected backend request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	orig := timeNow
	timeNow = func() time.Time { return tuesday }
	t.Cleanup(func() { timeNow = orig })

	tokens := auth.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	api := valapi.NewClient(valapi.WithBaseURL(srv.URL + "/api"))
	a := app.New(api, tokens, app.Options{Clock: func() time.Time { return tuesday }})
	t.Cleanup(a.Close)

	return NewServer(a, 0)
}

func jsonBackend(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	}
}

func claimData(sessionID int) model.ProviderValidationData {
	return model.ProviderValidationData{
		Provider: model.Provider{ID: 10, ProviderName: "Dr. Test"},
		AddressPhoneRecords: []model.AddressPhoneRecord{
			{
				ID:      "1-2",
				Address: model.ProviderAddress{ID: 1, AddressCategory: model.AddressCategoryPractice, Address1: "1 Main St", City: "Austin", State: "TX", Zip: "78701"},
				Phone:   model.ProviderPhone{ID: 2, Phone: "5125551234"},
			},
		},
		ValidationSession: &model.ValidationSession{
			ID: sessionID, ProviderID: 10, UserID: 7, Status: model.SessionInProgress,
		},
	}
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestStateEmpty(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload statePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Nil(t, payload.Provider)
	assert.Nil(t, payload.Session)
	assert.Len(t, payload.Steps, 4)
	assert.False(t, payload.CallPolicy.Allowed)
	assert.Equal(t, "no active validation session", payload.CallPolicy.Reason)
}

func TestClaimReturnsFullState(t *testing.T) {
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/providers/next":  jsonBackend(200, claimData(42)),
		"GET /api/providers/stats": jsonBackend(200, model.ProviderStats{TotalPending: 3}),
	})

	rec := do(s, http.MethodPost, "/api/claim", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload statePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotNil(t, payload.Provider)
	assert.Equal(t, "Dr. Test", payload.Provider.ProviderName)
	require.NotNil(t, payload.Session)
	assert.Equal(t, 42, payload.Session.ID)
	assert.Len(t, payload.Groups, 1)
	assert.Equal(t, 3, payload.Stats.TotalPending)
	assert.True(t, payload.CallPolicy.Allowed)
	assert.Equal(t, 1, payload.CallPolicy.NextNumber)
}

func TestClaimEmptyQueueIs404(t *testing.T) {
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/providers/next":  jsonBackend(404, map[string]string{"message": "No more providers available for validation"}),
		"GET /api/providers/stats": jsonBackend(200, model.ProviderStats{}),
	})

	rec := do(s, http.MethodPost, "/api/claim", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no providers available")
}

func TestAddressValidationFieldErrorIs422(t *testing.T) {
	s := newTestServer(t, nil)

	body := `{"address_id": 1, "is_correct": false, "corrected_address1": "1 Main St", "corrected_city": "Austin", "corrected_state": "Texas", "corrected_zip": "78701"}`
	rec := do(s, http.MethodPost, "/api/validations/address", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Valid state abbreviation is required")
}

func TestAddressValidationAccumulates(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodPost, "/api/validations/address", `{"address_id": 1, "is_correct": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload statePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Pending.AddressValidations, 1)
	assert.Equal(t, 1, payload.Pending.AddressValidations[0].AddressID)
}

func TestNewPhoneFieldErrorIs422(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodPost, "/api/phones", `{"phone": "123"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMalformedBodyIs400(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodPost, "/api/validations/address", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallAttemptWithoutSessionIs409(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, http.MethodPost, "/api/call-attempt", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "claim a provider first")
}

func TestCallAttemptSuccess(t *testing.T) {
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/providers/next":            jsonBackend(200, claimData(42)),
		"GET /api/providers/stats":           jsonBackend(200, model.ProviderStats{}),
		"POST /api/sessions/42/call-attempt": jsonBackend(200, nil),
		"GET /api/sessions/42/preview":       jsonBackend(200, model.ValidationPreview{TotalRequired: 2}),
	})

	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/claim", "").Code)

	rec := do(s, http.MethodPost, "/api/call-attempt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"attempt_number": 1}`, rec.Body.String())

	// Same calendar day: the policy blocks before any backend request.
	rec = do(s, http.MethodPost, "/api/call-attempt", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "already made today")
}

func TestSaveSessionInvalidIs409(t *testing.T) {
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/providers/next":       jsonBackend(200, claimData(42)),
		"GET /api/providers/stats":      jsonBackend(200, model.ProviderStats{}),
		"PUT /api/sessions/42/validate": jsonBackend(404, map[string]string{"message": "Validation session not found"}),
	})

	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/claim", "").Code)

	rec := do(s, http.MethodPost, "/api/save", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "claim a new provider")
}

func TestStatsTimeoutIs504(t *testing.T) {
	s := newTestServerWithTimeout(t, map[string]http.HandlerFunc{
		"GET /api/providers/stats": func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		},
	}, 20*time.Millisecond)

	rec := do(s, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request timed out")
}

func newTestServerWithTimeout(t *testing.T, backend map[string]http.HandlerFunc, timeout time.Duration) *Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := backend[r.Method+" "+r.URL.Path]; h != nil {
			h(w, r)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)

	tokens := auth.NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	api := valapi.NewClient(
		valapi.WithBaseURL(srv.URL+"/api"),
		valapi.WithTimeout(timeout),
	)
	a := app.New(api, tokens, app.Options{Clock: func() time.Time { return tuesday }})
	t.Cleanup(a.Close)
	return NewServer(a, 0)
}

func TestCompleteBlockedByGate(t *testing.T) {
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/providers/next":       jsonBackend(200, claimData(42)),
		"GET /api/providers/stats":      jsonBackend(200, model.ProviderStats{}),
		"PUT /api/sessions/42/validate": jsonBackend(200, nil),
		"GET /api/sessions/42/preview": jsonBackend(200, model.ValidationPreview{
			CanComplete:          false,
			UnvalidatedAddresses: []model.ProviderAddress{{ID: 1}},
			TotalRequired:        1,
		}),
	})

	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/claim", "").Code)

	rec := do(s, http.MethodPost, "/api/complete", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 remaining items")
}

func TestCompleteSuccessClearsState(t *testing.T) {
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/providers/next":        jsonBackend(200, claimData(42)),
		"GET /api/providers/stats":       jsonBackend(200, model.ProviderStats{CompletedToday: 1}),
		"PUT /api/sessions/42/validate":  jsonBackend(200, nil),
		"GET /api/sessions/42/preview":   jsonBackend(200, model.ValidationPreview{CanComplete: true, TotalRequired: 1, TotalValidated: 1}),
		"POST /api/sessions/42/complete": jsonBackend(200, nil),
	})

	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/claim", "").Code)

	rec := do(s, http.MethodPost, "/api/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload statePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Nil(t, payload.Provider)
	assert.Nil(t, payload.Session)
	assert.True(t, payload.Pending.Empty())
}
