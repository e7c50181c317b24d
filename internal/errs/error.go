package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the engine. Callers match with errors.Is.
var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrInvalidSelector    = errors.New("unknown or malformed broadcast selector")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")

	ErrBroadcastNotFound = errors.New("broadcast record not found")
	ErrAlertNotFound     = errors.New("alert not found")
	ErrPersonNotFound    = errors.New("person not found")
	ErrMessageNotFound   = errors.New("broadcast message not found")

	ErrCreateBroadcastFailed = errors.New("failed to create broadcast record")
	ErrGatewayFailure        = errors.New("delivery gateway call failed")

	// ErrPhoneNumberTaken is a member of the ErrInvalidPhoneNumber family:
	// callers that only care about "this number was rejected" match the
	// family, callers that need the ownership conflict match this one.
	ErrPhoneNumberTaken = fmt.Errorf("%w: already in use by another person", ErrInvalidPhoneNumber)

	ErrRetryInProgress = errors.New("retry already running for this broadcast")
)
