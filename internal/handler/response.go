package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"esfhub/internal/domain"
	"esfhub/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code. The
// message is repeated in detail for clients that only read that field.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
		Detail:  msg,
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Gateway errors keep the upstream status.
func MapDomainError(err error) (status int, code, msg string) {
	var gwErr *domain.GatewayError
	switch {
	case errors.As(err, &gwErr):
		if gwErr.Transport() {
			return http.StatusServiceUnavailable, "GATEWAY_UNAVAILABLE", gwErr.Error()
		}
		return gwErr.StatusCode, "GATEWAY_ERROR", gwErr.Error()
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "INVOICE_NOT_FOUND", "invoice not found"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "DOCUMENT_NOT_FOUND", "esf document not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrAuthUnavailable):
		return http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "auth service unavailable"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusBadRequest, "DUPLICATE_USERNAME", "user exists"
	case errors.Is(err, domain.ErrDuplicateInvoice):
		return http.StatusBadRequest, "DUPLICATE_INVOICE", "invoice with this document uuid already exists"
	case errors.Is(err, domain.ErrDuplicateDocument):
		return http.StatusBadRequest, "DUPLICATE_DOCUMENT", "esf document with this document uuid already exists"
	case errors.Is(err, domain.ErrInvalidInvoice):
		return http.StatusBadRequest, "INVALID_INVOICE", err.Error()
	case errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusBadRequest, "INVALID_PAYLOAD", "unsupported payload schema version"
	case errors.Is(err, domain.ErrMissingTIN):
		return http.StatusBadRequest, "MISSING_TIN", "legal person tin is required"
	case errors.Is(err, domain.ErrUnknownReferenceKind):
		return http.StatusNotFound, "UNKNOWN_REFERENCE_KIND", "unknown reference kind"
	case errors.Is(err, domain.ErrDocumentNotDraft):
		return http.StatusConflict, "DOCUMENT_NOT_DRAFT", "esf document is not in draft status"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Error().Err(err).Str("request_id", fmt.Sprint(requestID)).Msg("request failed")
	}
	RespondError(c, status, code, msg)
}

// extractIdentity returns the caller identity, writing a 401 when absent.
func extractIdentity(c *gin.Context) (*domain.Identity, bool) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity context")
		return nil, false
	}
	return identity, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return 0, false
	}
	return id, true
}
