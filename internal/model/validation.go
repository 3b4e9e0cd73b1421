package model

// AddressValidation is the validator's verdict for one address, held in
// client memory until flushed to the backend.
type AddressValidation struct {
	AddressID         int    `json:"address_id"`
	IsCorrect         bool   `json:"is_correct"`
	CorrectedAddress1 string `json:"corrected_address1,omitempty"`
	CorrectedAddress2 string `json:"corrected_address2,omitempty"`
	CorrectedCity     string `json:"corrected_city,omitempty"`
	CorrectedState    string `json:"corrected_state,omitempty"`
	CorrectedZip      string `json:"corrected_zip,omitempty"`
}

// PhoneValidation is the validator's verdict for one phone.
type PhoneValidation struct {
	PhoneID        int    `json:"phone_id"`
	IsCorrect      bool   `json:"is_correct"`
	CorrectedPhone string `json:"corrected_phone,omitempty"`
}

// NewAddress is a user-entered address with no backend identity yet.
type NewAddress struct {
	AddressCategory AddressCategory `json:"address_category"`
	Address1        string          `json:"address1"`
	Address2        string          `json:"address2,omitempty"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	Zip             string          `json:"zip"`
}

// NewPhone is a user-entered phone with no backend identity yet.
type NewPhone struct {
	Phone string `json:"phone"`
}

// ValidationUpdate is the cumulative save payload for
// PUT /sessions/{id}/validate. NewPhones is sent only when non-empty.
type ValidationUpdate struct {
	AddressValidations []AddressValidation `json:"address_validations"`
	PhoneValidations   []PhoneValidation   `json:"phone_validations"`
	NewAddresses       []NewAddress        `json:"new_addresses"`
	NewPhones          []NewPhone          `json:"new_phones,omitempty"`
}

// Empty reports whether the update carries no decisions or additions.
func (u ValidationUpdate) Empty() bool {
	return len(u.AddressValidations) == 0 &&
		len(u.PhoneValidations) == 0 &&
		len(u.NewAddresses) == 0 &&
		len(u.NewPhones) == 0
}

// CallAttemptRequest is the body for POST /sessions/{id}/call-attempt.
type CallAttemptRequest struct {
	AttemptNumber int `json:"attempt_number"`
}
