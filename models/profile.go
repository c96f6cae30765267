package models

import (
	"strings"
	"time"
)

const minGraduationYear = 1900

// AlumniProfile is a member's directory profile
type AlumniProfile struct {
	Principal      string           `json:"principal,omitempty"`
	FullName       string           `json:"fullName"`
	GraduationYear int              `json:"graduationYear"`
	Department     string           `json:"department"`
	CurrentCity    string           `json:"currentCity"`
	CurrentCountry string           `json:"currentCountry"`
	Bio            string           `json:"bio"`
	ContactInfo    Optional[string] `json:"contactInfo"`
}

// FieldError describes one invalid form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Normalize trims whitespace and collapses blank contact info to None
func (p *AlumniProfile) Normalize() {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Department = strings.TrimSpace(p.Department)
	p.CurrentCity = strings.TrimSpace(p.CurrentCity)
	p.CurrentCountry = strings.TrimSpace(p.CurrentCountry)
	p.Bio = strings.TrimSpace(p.Bio)
	if c, ok := p.ContactInfo.Get(); ok {
		c = strings.TrimSpace(c)
		if c == "" {
			p.ContactInfo = None[string]()
		} else {
			p.ContactInfo = Some(c)
		}
	}
}

// Validate checks the profile form, now is used to bound the graduation year
func (p AlumniProfile) Validate(now time.Time) []FieldError {
	var errs []FieldError
	if p.FullName == "" {
		errs = append(errs, FieldError{Field: "fullName", Message: "full name is required"})
	}
	if p.Department == "" {
		errs = append(errs, FieldError{Field: "department", Message: "department is required"})
	}
	if p.CurrentCity == "" {
		errs = append(errs, FieldError{Field: "currentCity", Message: "current city is required"})
	}
	if p.CurrentCountry == "" {
		errs = append(errs, FieldError{Field: "currentCountry", Message: "current country is required"})
	}
	if p.GraduationYear < minGraduationYear || p.GraduationYear > now.Year()+10 {
		errs = append(errs, FieldError{Field: "graduationYear", Message: "graduation year is out of range"})
	}
	return errs
}
