package models

// Notification levels returned alongside mutation results
const (
	NotifySuccess = "success"
	NotifyError   = "error"
)

// Notification is a transient, user-facing message about a mutation outcome
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
