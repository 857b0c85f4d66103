package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDuplicateUsername    = errors.New("user exists")
	ErrAuthUnavailable      = errors.New("auth service unavailable")
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrDuplicateInvoice     = errors.New("invoice with this document uuid already exists")
	ErrInvalidInvoice       = errors.New("invalid invoice")
	ErrDocumentNotFound     = errors.New("esf document not found")
	ErrDuplicateDocument    = errors.New("esf document with this document uuid already exists")
	ErrDocumentNotDraft     = errors.New("esf document is not in draft status")
	ErrMissingTIN           = errors.New("legal person tin is required")
	ErrUnknownReferenceKind = errors.New("unknown reference kind")
	ErrInvalidPayload       = errors.New("unsupported payload schema version")
)

// GatewayError is returned by every GNS gateway call that did not produce a 2xx
// response. StatusCode is 503 for transport failures, otherwise the upstream status.
type GatewayError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Transport() {
		return fmt.Sprintf("gns %s: service unavailable: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gns %s: upstream returned %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Transport reports whether the call never got an HTTP response.
func (e *GatewayError) Transport() bool {
	return e.Err != nil
}

// NewGatewayTransportError wraps a connection/timeout/DNS failure.
func NewGatewayTransportError(op string, err error) *GatewayError {
	return &GatewayError{Op: op, StatusCode: http.StatusServiceUnavailable, Err: err}
}

// NewGatewayStatusError records a non-2xx upstream response.
func NewGatewayStatusError(op string, status int, body string) *GatewayError {
	return &GatewayError{Op: op, StatusCode: status, Body: body}
}

// SyncError identifies the batch element that aborted a synchronization.
type SyncError struct {
	Index        int
	DocumentUUID string
	Err          error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync aborted at invoice %d (%s): %v", e.Index, e.DocumentUUID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
