package booking

import "regexp"

// Gender is the patient's self-reported gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// IsValid returns true if the gender is a recognized value.
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// PatientDetails is a value object holding the contact and demographic
// fields captured on the booking form.
type PatientDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Age     int    `json:"age"`
	Gender  Gender `json:"gender"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
}

// ContactPreferences records which channels the patient agreed to be
// contacted on.
type ContactPreferences struct {
	SMS      bool `json:"sms"`
	Call     bool `json:"call"`
	Email    bool `json:"email"`
	WhatsApp bool `json:"whatsapp"`
}

var (
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern   = regexp.MustCompile(`^(\+?\d{1,4}[- ]?)?\d{10}$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

// Validate returns the list of field problems, empty when the details are
// acceptable.
func (p PatientDetails) Validate() []string {
	var problems []string
	if len(p.Name) < 2 {
		problems = append(problems, "patient name must be at least 2 characters")
	}
	if !emailPattern.MatchString(p.Email) {
		problems = append(problems, "invalid email address")
	}
	if !phonePattern.MatchString(p.Phone) {
		problems = append(problems, "invalid phone number")
	}
	if p.Age < 1 || p.Age > 150 {
		problems = append(problems, "age must be between 1 and 150")
	}
	if !p.Gender.IsValid() {
		problems = append(problems, "invalid gender")
	}
	if len(p.Address) < 10 {
		problems = append(problems, "address must be at least 10 characters")
	}
	if !pincodePattern.MatchString(p.Pincode) {
		problems = append(problems, "invalid pincode")
	}
	return problems
}
