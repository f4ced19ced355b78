package common

import (
	"strings"
)

// Validate checks required fields and closed enums. Stores call it before
// every insert so nothing partial is written.
func (n *Notification) Validate() error {
	if strings.TrimSpace(n.Recipient.ID) == "" {
		return &ValidationError{Field: "recipient.id", Reason: "is required"}
	}
	if n.Type == "" {
		return &ValidationError{Field: "type", Reason: "is required"}
	}
	if !n.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: "unknown notification type " + string(n.Type)}
	}
	if !n.Category.IsValid() {
		return &ValidationError{Field: "category", Reason: "must be transactional, promotional or informational"}
	}
	if strings.TrimSpace(n.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if strings.TrimSpace(n.Message) == "" {
		return &ValidationError{Field: "message", Reason: "is required"}
	}
	if !n.Priority.IsValid() {
		return &ValidationError{Field: "priority", Reason: "must be low, medium, high or urgent"}
	}
	return nil
}
