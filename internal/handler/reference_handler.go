package handler

import (
	"github.com/gin-gonic/gin"

	"esfhub/internal/domain"
	"esfhub/internal/service"
)

// ReferenceHandler exposes the reference tables mirrored from GNS.
type ReferenceHandler struct {
	referenceService service.ReferenceService
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(referenceService service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// Kinds handles GET /api/v1/references
func (h *ReferenceHandler) Kinds(c *gin.Context) {
	RespondOK(c, domain.RefKinds())
}

// List handles GET /api/v1/references/:kind
// @Summary      List reference records of one kind
// @Tags         references
// @Produce      json
// @Param        kind path string true "payment_type, currency, status, receipt_type, delivery_type, legal_person, contractor or vat_tax_type"
// @Param        offset query int false "Pagination offset" default(0)
// @Param        limit query int false "Pagination limit" default(20)
// @Success      200 {object} APIResponse{data=[]domain.Reference,meta=PagMeta}
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /references/{kind} [get]
func (h *ReferenceHandler) List(c *gin.Context) {
	kind := domain.RefKind(c.Param("kind"))
	offset, limit := parsePagination(c)

	refs, total, err := h.referenceService.List(c.Request.Context(), kind, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, refs, PagMeta{Total: total, Offset: offset, Limit: limit})
}
