package auth

import (
	"errors"
	"fmt"
)

// Code classifies a flow failure. Flows never panic and never leak raw
// store errors to callers; every failure is wrapped in a FlowError with
// one of these codes so handlers can map it to an HTTP status.
type Code string

const (
	CodeAlreadyExists         Code = "ALREADY_EXISTS"
	CodeProvisioningFailed    Code = "PROVISIONING_FAILED"
	CodeProfileCreationFailed Code = "PROFILE_CREATION_FAILED"
	CodeInvalidCredentials    Code = "INVALID_CREDENTIALS"
	CodeAuthProviderError     Code = "AUTH_PROVIDER_ERROR"
	CodeProfileNotFound       Code = "PROFILE_NOT_FOUND"
	CodeDoctorProfileError    Code = "DOCTOR_PROFILE_ERROR"
	CodeAccessDenied          Code = "ACCESS_DENIED"
	CodeUnexpected            Code = "UNEXPECTED_ERROR"
)

// FlowError is the result-with-error value returned by the provisioning
// and resolution flows.
type FlowError struct {
	Code    Code
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FlowError) Unwrap() error { return e.Err }

func flowErr(code Code, message string, cause error) *FlowError {
	return &FlowError{Code: code, Message: message, Err: cause}
}

// CodeOf extracts the flow code from an error chain. Errors that did not
// originate in a flow report CodeUnexpected.
func CodeOf(err error) Code {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeUnexpected
}

// MessageOf extracts the user-facing message from a flow error.
func MessageOf(err error) string {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "unexpected error"
}
