package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"esfhub/internal/domain"
	"esfhub/internal/service"
)

// ESFHandler handles ESF document endpoints. Documents are scoped to the caller.
type ESFHandler struct {
	esfService service.ESFService
}

// NewESFHandler creates a new ESFHandler.
func NewESFHandler(esfService service.ESFService) *ESFHandler {
	return &ESFHandler{esfService: esfService}
}

// Create handles POST /api/v1/esf
// @Summary      Create a draft ESF document
// @Tags         esf
// @Accept       json
// @Produce      json
// @Param        body body CreateESFRequest true "ESF document"
// @Success      201 {object} APIResponse{data=domain.ESFDocument}
// @Failure      400 {object} APIResponse
// @Failure      401 {object} APIResponse
// @Security     BearerAuth
// @Router       /esf [post]
func (h *ESFHandler) Create(c *gin.Context) {
	identity, ok := extractIdentity(c)
	if !ok {
		return
	}

	var input service.CreateESFInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	doc, err := h.esfService.Create(c.Request.Context(), identity, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// List handles GET /api/v1/esf
// @Summary      List the caller's ESF documents
// @Tags         esf
// @Produce      json
// @Param        offset query int false "Pagination offset" default(0)
// @Param        limit query int false "Pagination limit" default(20)
// @Success      200 {object} APIResponse{data=[]domain.ESFDocument,meta=PagMeta}
// @Security     BearerAuth
// @Router       /esf [get]
func (h *ESFHandler) List(c *gin.Context) {
	identity, ok := extractIdentity(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	docs, total, err := h.esfService.List(c.Request.Context(), identity, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/esf/:id
// @Summary      Get an ESF document
// @Tags         esf
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} APIResponse{data=domain.ESFDocument}
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /esf/{id} [get]
func (h *ESFHandler) GetByID(c *gin.Context) {
	identity, ok := extractIdentity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.esfService.GetByID(c.Request.Context(), identity, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Send handles POST /api/v1/esf/:id/send
// @Summary      Submit a draft ESF document to GNS
// @Description  Only drafts can be sent, once. A gateway failure marks the document failed and answers 502.
// @Tags         esf
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} APIResponse{data=service.SendESFResult}
// @Failure      404 {object} APIResponse
// @Failure      409 {object} APIResponse
// @Failure      502 {object} APIResponse
// @Security     BearerAuth
// @Router       /esf/{id}/send [post]
func (h *ESFHandler) Send(c *gin.Context) {
	identity, ok := extractIdentity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	result, err := h.esfService.Send(c.Request.Context(), identity, id)
	if err != nil {
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) {
			RespondError(c, http.StatusBadGateway, "GATEWAY_ERROR", gwErr.Error())
			return
		}
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}
