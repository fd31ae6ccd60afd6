package models

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrEmptyOrderID      = errors.New("order_id cannot be empty")
	ErrInvalidRecipient  = errors.New("invalid or missing recipient address")
	ErrEmptyAuditContent = errors.New("audit content cannot be empty")
)

// IsValidEmail performs basic email validation.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}

	// Basic check: must contain @ and have content before and after
	atIndex := strings.Index(email, "@")
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	// Must have a dot after @
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex <= atIndex+1 || dotIndex == len(email)-1 {
		return false
	}

	return true
}
