package model

// AddressCategory labels the role of a provider address.
type AddressCategory string

const (
	AddressCategoryMailing  AddressCategory = "mailing"
	AddressCategoryPractice AddressCategory = "practice"
	AddressCategoryBilling  AddressCategory = "billing"
)

// Provider is the healthcare-provider business entity under validation.
type Provider struct {
	ID            int    `json:"id"`
	NPI           string `json:"npi"`
	GNPI          string `json:"gnpi"`
	ProviderName  string `json:"provider_name"`
	Specialty     string `json:"specialty"`
	ProviderGroup string `json:"provider_group"`
}

// ProviderAddress is one address on file for a provider. The corrected_*
// fields are only meaningful when IsCorrect is Incorrect.
type ProviderAddress struct {
	ID                int             `json:"id"`
	ProviderID        int             `json:"provider_id"`
	AddressCategory   AddressCategory `json:"address_category"`
	Address1          string          `json:"address1"`
	Address2          string          `json:"address2,omitempty"`
	City              string          `json:"city"`
	State             string          `json:"state"`
	Zip               string          `json:"zip"`
	IsCorrect         Correctness     `json:"is_correct"`
	CorrectedAddress1 string          `json:"corrected_address1,omitempty"`
	CorrectedAddress2 string          `json:"corrected_address2,omitempty"`
	CorrectedCity     string          `json:"corrected_city,omitempty"`
	CorrectedState    string          `json:"corrected_state,omitempty"`
	CorrectedZip      string          `json:"corrected_zip,omitempty"`
}

// ProviderPhone is one phone number on file for a provider. ID 0 is a
// sentinel meaning no phone exists for the pairing; sentinel phones carry
// no validation requirement.
type ProviderPhone struct {
	ID             int         `json:"id"`
	ProviderID     int         `json:"provider_id"`
	Phone          string      `json:"phone"`
	IsCorrect      Correctness `json:"is_correct"`
	CorrectedPhone string      `json:"corrected_phone,omitempty"`
}

// NoPhone reports whether this is the no-phone sentinel.
func (p ProviderPhone) NoPhone() bool { return p.ID == 0 }

// AddressPhoneRecord pairs one address with one phone. Several records may
// share the same address (fan-out to multiple phones).
type AddressPhoneRecord struct {
	ID      string          `json:"id"` // composite "addrID-phoneID"
	Address ProviderAddress `json:"address"`
	Phone   ProviderPhone   `json:"phone"`
}

// ProviderValidationData is what the backend returns when a validator claims
// the next provider. ValidationSession is nil when the backend did not open
// a session for the claim.
type ProviderValidationData struct {
	Provider            Provider             `json:"provider"`
	AddressPhoneRecords []AddressPhoneRecord `json:"address_phone_records"`
	ValidationSession   *ValidationSession   `json:"validation_session,omitempty"`
}

// ProviderStats is the backend's aggregate work-queue view.
type ProviderStats struct {
	TotalPending      int `json:"total_pending"`
	CompletedToday    int `json:"completed_today"`
	InProgress        int `json:"in_progress"`
	TotalInconclusive int `json:"total_inconclusive"`
	CurrentlyLocked   int `json:"currently_locked"`
}
