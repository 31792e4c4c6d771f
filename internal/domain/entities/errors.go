package entities

import "errors"

// Domain errors
var (
	// Webhook errors
	ErrWebhookConfigNotFound = errors.New("webhook config not found")
	ErrWebhookInactive       = errors.New("webhook config inactive")
	ErrSecretMismatch        = errors.New("webhook secret mismatch")
	ErrUnknownEventKind      = errors.New("unknown event kind")

	// Transcript errors
	ErrTranscriptNotFound = errors.New("transcript event not found")
	ErrDuplicateEvent     = errors.New("duplicate transcript event")
	ErrNotRetryable       = errors.New("transcript event not in a retryable state")
	ErrRetryExhausted     = errors.New("transcript event retry limit reached")

	// Pipeline errors
	ErrPipelineFailed = errors.New("downstream pipeline reported failure")

	// Resolution errors
	ErrResolutionUnavailable = errors.New("identity resolution storage unavailable")
	ErrContactNotFound       = errors.New("contact not found")
	ErrMappingNotFound       = errors.New("speaker mapping not found")
	ErrProjectNotFound       = errors.New("project not found")
)
