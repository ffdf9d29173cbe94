package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrUpstream              = errors.New("upstream failure")

	ErrInvalidID             = errors.New("invalid id")
	ErrForbidden             = errors.New("forbidden")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrHostelNotFound        = errors.New("hostel not found")
	ErrRoomNotFound          = errors.New("room not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrComplaintNotFound     = errors.New("complaint not found")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrHostelNotBookable     = errors.New("hostel not bookable")
	ErrPaymentAmountMismatch = errors.New("payment amount mismatch")
	ErrPaymentNotSuccessful  = errors.New("payment not successful")
	ErrUnknownPlan           = errors.New("unknown subscription plan")
	ErrAlreadyExists         = errors.New("already exists")
)

// ValidationError reports a rejected input field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid is shorthand for a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// UpstreamError wraps a failure from an external collaborator
// (identity, object storage, payment gateway). It matches ErrUpstream.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// Upstream wraps err as an *UpstreamError; nil stays nil.
func Upstream(service string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Service: service, Err: err}
}
