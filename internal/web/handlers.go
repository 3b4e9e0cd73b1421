package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sells-group/validator-cli/internal/app"
	"github.com/sells-group/validator-cli/internal/model"
	"github.com/sells-group/validator-cli/internal/workflow"
	"github.com/sells-group/validator-cli/pkg/valapi"
)

// timeNow is a test seam for the call-attempt policy clock.
var timeNow = time.Now

// statePayload is everything the page needs to render one provider's
// workflow in a single fetch.
type statePayload struct {
	Provider    *model.Provider              `json:"provider,omitempty"`
	Groups      [][]model.AddressPhoneRecord `json:"groups,omitempty"`
	Session     *model.ValidationSession     `json:"session,omitempty"`
	Preview     *model.ValidationPreview     `json:"preview,omitempty"`
	Stats       *model.ProviderStats         `json:"stats,omitempty"`
	Steps       []workflow.Step              `json:"steps"`
	CurrentStep int                          `json:"current_step"`
	Percent     int                          `json:"percent"`
	CallPolicy  workflow.Decision            `json:"call_policy"`
	Pending     model.ValidationUpdate       `json:"pending"`
}

func (s *Server) statePayload() statePayload {
	steps, current, percent := s.app.Progress()
	p := statePayload{
		Groups:      s.app.GroupedRecords(),
		Session:     s.app.Session(),
		Preview:     s.app.CachedPreview(),
		Stats:       s.app.CachedStats(),
		Steps:       steps,
		CurrentStep: current,
		Percent:     percent,
		Pending:     s.app.PendingUpdate(),
	}
	if data := s.app.Current(); data != nil {
		p.Provider = &data.Provider
	}
	p.CallPolicy = workflow.CanAttempt(p.Session, timeNow())
	return p
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.statePayload())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.RefreshStats(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	if _, err := s.app.ClaimNext(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statePayload())
}

func (s *Server) handleAddressValidation(w http.ResponseWriter, r *http.Request) {
	var v model.AddressValidation
	if !decode(w, r, &v) {
		return
	}
	if err := s.app.SetAddressValidation(v); err != nil {
		writeFieldErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statePayload())
}

func (s *Server) handlePhoneValidation(w http.ResponseWriter, r *http.Request) {
	var v model.PhoneValidation
	if !decode(w, r, &v) {
		return
	}
	if err := s.app.SetPhoneValidation(v); err != nil {
		writeFieldErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statePayload())
}

func (s *Server) handleNewAddress(w http.ResponseWriter, r *http.Request) {
	var addr model.NewAddress
	if !decode(w, r, &addr) {
		return
	}
	if err := s.app.AddNewAddress(addr); err != nil {
		writeFieldErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statePayload())
}

func (s *Server) handleNewPhone(w http.ResponseWriter, r *http.Request) {
	var p model.NewPhone
	if !decode(w, r, &p) {
		return
	}
	if err := s.app.AddNewPhone(p); err != nil {
		writeFieldErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statePayload())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Save(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statePayload())
}

func (s *Server) handleCallAttempt(w http.ResponseWriter, r *http.Request) {
	number, err := s.app.RecordCallAttempt(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"attempt_number": number})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	preview, err := s.app.RefreshPreview(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Complete(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statePayload())
}

// --- helpers ---

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFieldErr reports a client-side field validation failure. These never
// reach the backend.
func writeFieldErr(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
}

// writeErr maps app/backend failures onto one error string each. Exactly one
// error per response; a new error replaces any prior one on the page.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrNoProviders):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrNoSession):
		status = http.StatusConflict
	case valapi.IsAuth(err):
		status = http.StatusUnauthorized
	case valapi.IsTimeout(err):
		status = http.StatusGatewayTimeout
	case valapi.IsSessionInvalid(err):
		status = http.StatusConflict
	case valapi.IsNotFound(err):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
