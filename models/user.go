package models

import (
	"fmt"
	"strings"
	"time"
)

// ApprovalStatus is the membership approval state of a principal
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// UserRole is the role assigned to a principal by the data service
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// ParseApprovalStatus validates an approval status string
func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	switch ApprovalStatus(strings.ToLower(s)) {
	case ApprovalPending:
		return ApprovalPending, nil
	case ApprovalApproved:
		return ApprovalApproved, nil
	case ApprovalRejected:
		return ApprovalRejected, nil
	}
	return "", fmt.Errorf("invalid approval status: %s", s)
}

// ParseUserRole validates a role string
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(strings.ToLower(s)) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	case RoleGuest:
		return RoleGuest, nil
	}
	return "", fmt.Errorf("invalid role: %s", s)
}

// UserApprovalInfo pairs a principal with its approval status
type UserApprovalInfo struct {
	Principal string         `json:"principal"`
	Status    ApprovalStatus `json:"status"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ApprovalWithProfile is an approval entry joined with the member profile, if any
type ApprovalWithProfile struct {
	UserApprovalInfo
	Profile *AlumniProfile `json:"profile"`
}
