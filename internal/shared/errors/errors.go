package errors

import "errors"

// Domain errors
var (
	// Website errors
	ErrWebsiteNotFound   = errors.New("website not found")
	ErrWebsiteInactive   = errors.New("website is not active")
	ErrInvalidWebsiteURL = errors.New("invalid website URL")
	ErrInvalidInterval   = errors.New("check interval must be one of 5, 10, 15, 30 or 60 minutes")
	ErrEmptyNotifyEmail  = errors.New("notification email cannot be empty")
	ErrEmptyOwner        = errors.New("website owner cannot be empty")

	// Check / pipeline errors
	ErrCheckNotFound    = errors.New("monitoring check not found")
	ErrCheckInProgress  = errors.New("check already in progress, will refresh")
	ErrInvalidCheckType = errors.New("invalid check type")

	// Alert errors
	ErrAlertNotFound      = errors.New("alert not found")
	ErrInvalidSeverity    = errors.New("invalid alert severity")
	ErrInvalidAlertType   = errors.New("invalid alert type")
	ErrUnknownDetailsKind = errors.New("unknown alert details kind")

	// Defense action errors
	ErrActionNotFound          = errors.New("defense action not found")
	ErrIllegalActionTransition = errors.New("illegal defense action transition")
	ErrActionTerminal          = errors.New("defense action is in a terminal state")

	// Repository errors
	ErrRepositoryOperation   = errors.New("repository operation failed")
	ErrInvalidData           = errors.New("invalid data")
	ErrSerializationFailed   = errors.New("serialization failed")
	ErrDeserializationFailed = errors.New("deserialization failed")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
)
