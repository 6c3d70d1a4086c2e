package models

import "fmt"

// Error taxonomy shared by services and handlers. Domain rule violations are
// business-logic precondition failures with user-facing messages; they are
// distinct from malformed input (ValidationError) and from unexpected
// failures, which handlers log and convert to a generic 500.

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func Forbidden(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// RuleError is a domain rule violation: the request was well formed but a
// state-machine precondition refused it.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func RuleViolation(message string) *RuleError {
	return &RuleError{Message: message}
}

// ValidationError carries per-field messages for a 422 response.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Check validates a single value against validator rules and records a
// per-field message on failure. Used by partial updates where only the
// provided fields are validated.
func (e *ValidationError) Check(field string, value interface{}, rules string) {
	err := Validate.Var(value, rules)
	if err == nil {
		return
	}
	for _, tag := range varTags(err) {
		e.Add(field, fieldMessage(field, tag.tag, tag.param))
	}
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// ErrIfAny returns the collected error, or nil when every check passed.
func (e *ValidationError) ErrIfAny() error {
	if e.Empty() {
		return nil
	}
	return e
}
