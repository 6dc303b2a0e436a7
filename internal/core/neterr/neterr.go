// Package neterr classifies failures of network, ledger and wallet calls into
// a fixed set of categories that drive retry decisions and user messages.
package neterr

import (
	"errors"
	"fmt"
)

// Category is the classification of a failed call.
type Category int

const (
	Unknown Category = iota
	Offline
	Timeout
	ServerError
	BlockchainError
	WalletError
)

func (c Category) String() string {
	switch c {
	case Offline:
		return "offline"
	case Timeout:
		return "timeout"
	case ServerError:
		return "server_error"
	case BlockchainError:
		return "blockchain_error"
	case WalletError:
		return "wallet_error"
	default:
		return "unknown"
	}
}

// Retryable reports whether repeating the call after a delay may succeed.
// Offline and wallet failures never resolve by repeating, and Unknown is not
// known to be safe.
func (c Category) Retryable() bool {
	switch c {
	case Timeout, ServerError, BlockchainError:
		return true
	default:
		return false
	}
}

// Categories lists every category in classification order.
var Categories = []Category{Offline, Timeout, ServerError, BlockchainError, WalletError, Unknown}

// ClassifiedError is a failure tagged with its category. It is created once
// per failed attempt and never mutated.
type ClassifiedError struct {
	Message  string
	Category Category
	Cause    error
}

func (e *ClassifiedError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *ClassifiedError) Unwrap() error { return e.Cause }

// Is matches another ClassifiedError with the same category, so
// errors.Is(err, &ClassifiedError{Category: Offline}) works.
func (e *ClassifiedError) Is(target error) bool {
	t, ok := target.(*ClassifiedError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Category == e.Category
}

// New creates a ClassifiedError with an explicit category.
func New(category Category, message string, cause error) *ClassifiedError {
	return &ClassifiedError{Message: message, Category: category, Cause: cause}
}

// CategoryOf returns the category carried by err, or Unknown when err has not
// been classified.
func CategoryOf(err error) Category {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return Unknown
}

// IsCategory reports whether err carries category c.
func IsCategory(err error, c Category) bool {
	var ce *ClassifiedError
	return errors.As(err, &ce) && ce.Category == c
}
