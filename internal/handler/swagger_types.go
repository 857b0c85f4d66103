package handler

import (
	"github.com/google/uuid"

	"esfhub/internal/domain"
)

// Swagger type definitions for API documentation.

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
	TIN      string `json:"tin" example:"01234567890123"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// CreateESFRequest represents the create ESF document request body.
type CreateESFRequest struct {
	DocumentUUID   *uuid.UUID        `json:"document_uuid" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	LegalPersonTIN string            `json:"legal_person_tin" example:"01234567890123"`
	Payload        domain.ESFPayload `json:"payload"`
}
