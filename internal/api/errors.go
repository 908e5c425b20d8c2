package api

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports an unknown ability or other missing resource.
// Surfaced immediately; no execution is attempted.
type NotFoundError struct {
	// ResourceType categorizes the resource (e.g. "ability", "credential").
	ResourceType string

	// ResourceName is the identifier that was not found.
	ResourceName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a NotFoundError for the given resource.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{ResourceType: resourceType, ResourceName: resourceName}
}

// NewAbilityNotFoundError creates an ability not found error.
func NewAbilityNotFoundError(abilityID string) *NotFoundError {
	return NewNotFoundError("ability", abilityID)
}

// ValidationError reports missing or malformed input parameters. Surfaced
// before any network call.
type ValidationError struct {
	// Field is the offending parameter name.
	Field string

	// Message describes what is wrong with the field.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Message)
}

// IsValidation checks if an error is or wraps a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// MissingCredentialsError reports dynamic header tokens that could not be
// resolved to a stored, non-expired credential. Execution never proceeds
// partially authenticated; this error is surfaced before any network call.
type MissingCredentialsError struct {
	// Tokens lists the unresolved "domain::header" tokens.
	Tokens []string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing credentials for: %s", strings.Join(e.Tokens, ", "))
}

// Domains returns the distinct domains of the unresolved tokens, in first
// occurrence order.
func (e *MissingCredentialsError) Domains() []string {
	seen := make(map[string]bool)
	var domains []string
	for _, token := range e.Tokens {
		domain, _, _ := strings.Cut(token, "::")
		if !seen[domain] {
			seen[domain] = true
			domains = append(domains, domain)
		}
	}
	return domains
}

// IsMissingCredentials checks if an error is or wraps a MissingCredentialsError.
func IsMissingCredentials(err error) bool {
	var missingErr *MissingCredentialsError
	return errors.As(err, &missingErr)
}

// NewMissingCredentialsError creates a MissingCredentialsError naming the
// unresolved tokens.
func NewMissingCredentialsError(tokens []string) *MissingCredentialsError {
	return &MissingCredentialsError{Tokens: tokens}
}

// DecryptionError reports a credential whose ciphertext could not be opened
// (tag mismatch, malformed payload). Distinct from "not found" so callers can
// tell a wrong secret from an absent credential. The message never includes
// ciphertext or plaintext.
type DecryptionError struct {
	Domain string
	Key    string
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("failed to decrypt credential %s::%s", e.Domain, e.Key)
}

// IsDecryption checks if an error is or wraps a DecryptionError.
func IsDecryption(err error) bool {
	var decryptionErr *DecryptionError
	return errors.As(err, &decryptionErr)
}

// NewDecryptionError creates a DecryptionError for the given credential.
func NewDecryptionError(domain, key string) *DecryptionError {
	return &DecryptionError{Domain: domain, Key: key}
}

// ExecutionFaultError reports that the sandbox failed before a response was
// obtained: the logic returned an error, panicked, or the attempt timed out.
// No credential state changes on this path.
type ExecutionFaultError struct {
	// Message is the underlying fault description.
	Message string

	// Timeout distinguishes a wall-clock timeout from a logic fault.
	Timeout bool
}

func (e *ExecutionFaultError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("execution timed out: %s", e.Message)
	}
	return fmt.Sprintf("execution fault: %s", e.Message)
}

// IsExecutionFault checks if an error is or wraps an ExecutionFaultError.
func IsExecutionFault(err error) bool {
	var faultErr *ExecutionFaultError
	return errors.As(err, &faultErr)
}

// NewExecutionFaultError creates an ExecutionFaultError.
func NewExecutionFaultError(message string) *ExecutionFaultError {
	return &ExecutionFaultError{Message: message}
}

// NewExecutionTimeoutError creates an ExecutionFaultError marking a timeout.
func NewExecutionTimeoutError(message string) *ExecutionFaultError {
	return &ExecutionFaultError{Message: message, Timeout: true}
}
