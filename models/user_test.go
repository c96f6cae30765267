package models

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseApprovalStatus(t *testing.T) {
	testCases := []struct {
		input   string
		want    ApprovalStatus
		wantErr bool
	}{
		{"pending", ApprovalPending, false},
		{"Approved", ApprovalApproved, false},
		{"REJECTED", ApprovalRejected, false},
		{"banned", "", true},
	}

	for _, tc := range testCases {
		got, err := ParseApprovalStatus(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseApprovalStatus(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseApprovalStatus(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseUserRole(t *testing.T) {
	if role, err := ParseUserRole("admin"); err != nil || role != RoleAdmin {
		t.Errorf("Expected admin role, got %q (%v)", role, err)
	}
	if _, err := ParseUserRole("superadmin"); err == nil {
		t.Error("Expected error for unknown role")
	}
}

func TestOptionalJSON(t *testing.T) {
	var p AlumniProfile
	if err := json.Unmarshal([]byte(`{"fullName":"Ada","contactInfo":null}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.ContactInfo.IsSome() {
		t.Error("Expected null contact info to decode as None")
	}

	if err := json.Unmarshal([]byte(`{"fullName":"Ada"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.ContactInfo.IsSome() {
		t.Error("Expected missing contact info to decode as None")
	}

	if err := json.Unmarshal([]byte(`{"fullName":"Ada","contactInfo":"ada@example.com"}`), &p); err != nil {
		t.Fatal(err)
	}
	if c, ok := p.ContactInfo.Get(); !ok || c != "ada@example.com" {
		t.Errorf("Expected contact info to be set, got %q (%v)", c, ok)
	}

	out, err := json.Marshal(AlumniProfile{FullName: "Bob"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"contactInfo":null`) {
		t.Errorf("Expected None to marshal as null, got %s", out)
	}
}

func TestProfileValidate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := AlumniProfile{
		FullName:       "Ada Lovelace",
		GraduationYear: 2010,
		Department:     "Mathematics",
		CurrentCity:    "London",
		CurrentCountry: "UK",
	}
	if errs := valid.Validate(now); len(errs) != 0 {
		t.Errorf("Expected no validation errors, got %v", errs)
	}

	invalid := AlumniProfile{GraduationYear: 1800}
	errs := invalid.Validate(now)
	if len(errs) != 5 {
		t.Errorf("Expected 5 validation errors, got %d: %v", len(errs), errs)
	}
}

func TestProfileNormalize(t *testing.T) {
	p := AlumniProfile{FullName: "  Ada  ", ContactInfo: Some("   ")}
	p.Normalize()
	if p.FullName != "Ada" {
		t.Errorf("Expected trimmed name, got %q", p.FullName)
	}
	if p.ContactInfo.IsSome() {
		t.Error("Expected blank contact info to become None")
	}
}

func TestValidateImageURL(t *testing.T) {
	small := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	large := base64.StdEncoding.EncodeToString(make([]byte, MaxImageBytes+1))

	testCases := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https url", "https://example.com/a.png", false},
		{"http url", "http://example.com/a.png", false},
		{"png data url", "data:image/png;base64," + small, false},
		{"webp data url", "data:image/webp;base64," + small, false},
		{"empty", "", true},
		{"ftp url", "ftp://example.com/a.png", true},
		{"gif data url", "data:image/gif;base64," + small, true},
		{"not base64", "data:image/png,raw", true},
		{"too large", "data:image/jpeg;base64," + large, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateImageURL(tc.url)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateImageURL() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
