package workflow

import (
	"fmt"
	"math"

	"github.com/sells-group/validator-cli/internal/model"
)

// StepStatus is the derived state of one workflow step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
)

// Step IDs, in workflow order.
const (
	StepCallAttempt  = "call_attempt"
	StepValidateData = "validate_data"
	StepSaveProgress = "save_progress"
	StepComplete     = "complete"
)

// Step is one entry in the rendered workflow checklist.
type Step struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	Required    bool       `json:"required"`
}

// Steps derives the four workflow steps from the cached session and the
// latest server preview. The complete step is never rendered as completed:
// reaching in_progress is the signal that the Complete action is on offer.
func Steps(s *model.ValidationSession, p *model.ValidationPreview) []Step {
	hasCallAttempt := s != nil && s.CallAttempt1 != nil
	itemsRemain := p == nil || len(p.UnvalidatedAddresses) > 0 || len(p.UnvalidatedPhones) > 0
	canComplete := p != nil && p.CanComplete

	callStatus := StepPending
	if hasCallAttempt {
		callStatus = StepCompleted
	}

	validateStatus := StepPending
	switch {
	case hasCallAttempt && !itemsRemain:
		validateStatus = StepCompleted
	case hasCallAttempt:
		validateStatus = StepInProgress
	}

	// Auto-save runs from the first call attempt on, so the save step is
	// informational from that point.
	saveStatus := StepPending
	if hasCallAttempt {
		saveStatus = StepCompleted
	}

	completeStatus := StepPending
	if canComplete {
		completeStatus = StepInProgress
	}

	return []Step{
		{
			ID:          StepCallAttempt,
			Title:       "Record Call Attempt",
			Description: "Log the first call attempt to the provider",
			Status:      callStatus,
			Required:    true,
		},
		{
			ID:          StepValidateData,
			Title:       "Validate Information",
			Description: "Verify and correct addresses and phone numbers",
			Status:      validateStatus,
			Required:    true,
		},
		{
			ID:          StepSaveProgress,
			Title:       "Save Progress",
			Description: "Save validation changes to the system",
			Status:      saveStatus,
			Required:    false,
		},
		{
			ID:          StepComplete,
			Title:       "Complete Validation",
			Description: "Finalize and submit the validation",
			Status:      completeStatus,
			Required:    true,
		},
	}
}

// CurrentStep picks the step to highlight: the first in_progress step, else
// the first pending one. Returns -1 when every step is completed.
func CurrentStep(steps []Step) int {
	for i, s := range steps {
		if s.Status == StepInProgress {
			return i
		}
	}
	for i, s := range steps {
		if s.Status == StepPending {
			return i
		}
	}
	return -1
}

// MayComplete is the completion gate. The server's can_complete alone is not
// sufficient authority: the client additionally requires zero unvalidated
// items, so a preview claiming can_complete with leftovers still blocks.
func MayComplete(p *model.ValidationPreview) bool {
	return p != nil &&
		p.CanComplete &&
		len(p.UnvalidatedAddresses) == 0 &&
		len(p.UnvalidatedPhones) == 0
}

// Gate returns the completion decision plus a human-readable explanation for
// the blocked case.
func Gate(p *model.ValidationPreview) (bool, string) {
	if MayComplete(p) {
		return true, ""
	}
	if p == nil {
		return false, "No validation preview available yet."
	}
	if p.Message != "" {
		return false, p.Message
	}
	remaining := len(p.UnvalidatedAddresses) + len(p.UnvalidatedPhones)
	return false, fmt.Sprintf("Please validate %d remaining items (%d addresses, %d phones) before completing.",
		remaining, len(p.UnvalidatedAddresses), len(p.UnvalidatedPhones))
}

// Percent is the display progress fraction, rounded to the nearest integer
// percent; zero when nothing is required.
func Percent(p *model.ValidationPreview) int {
	if p == nil || p.TotalRequired == 0 {
		return 0
	}
	return int(math.Round(float64(p.TotalValidated) / float64(p.TotalRequired) * 100))
}
