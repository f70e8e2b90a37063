package tracker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed input rejected before any write.
	ErrValidation = errors.New("validation error")
	// ErrPermission marks an actor lacking the role a transition requires.
	ErrPermission = errors.New("permission error")
	// ErrPersistence marks an underlying store read/write failure.
	ErrPersistence = errors.New("persistence error")
	// ErrConsistency marks a cascading multi-record operation that was
	// partially applied; it must never be reported as a clean failure.
	ErrConsistency = errors.New("consistency error")
	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrPersistence
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "tracker failure"
	}
	return strings.Join(parts, ": ")
}

// IsRetryable reports whether the user should simply try again: transient
// store failures are retryable, rejected input and permissions are not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}
