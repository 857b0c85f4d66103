package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"esfhub/internal/domain"
	"esfhub/internal/port"
)

// GNSHandler proxies calls straight to the GNS gateway and relays its JSON.
type GNSHandler struct {
	gateway port.Gateway
}

// NewGNSHandler creates a new GNSHandler.
func NewGNSHandler(gateway port.Gateway) *GNSHandler {
	return &GNSHandler{gateway: gateway}
}

// Submit handles POST /api/v1/gns/invoices
// @Summary      Submit an invoice document to GNS
// @Tags         gns
// @Accept       json
// @Produce      json
// @Param        body body domain.InvoiceData true "GNS create-invoice document"
// @Success      200 {object} object
// @Failure      400 {object} APIResponse
// @Failure      503 {object} APIResponse
// @Security     BearerAuth
// @Router       /gns/invoices [post]
func (h *GNSHandler) Submit(c *gin.Context) {
	var data domain.InvoiceData
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	resp, err := h.gateway.Submit(c.Request.Context(), data)
	if err != nil {
		HandleError(c, err)
		return
	}
	relay(c, resp)
}

// Fetch handles GET /api/v1/gns/invoices
// @Summary      Fetch invoices from GNS
// @Tags         gns
// @Produce      json
// @Param        exchangeCode query string false "Exchange code; defaults to the configured one"
// @Success      200 {object} object
// @Failure      503 {object} APIResponse
// @Security     BearerAuth
// @Router       /gns/invoices [get]
func (h *GNSHandler) Fetch(c *gin.Context) {
	resp, err := h.gateway.Fetch(c.Request.Context(), fetchFilterFromQuery(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	relay(c, resp)
}

// Update handles PUT /api/v1/gns/invoices/:id
// @Summary      Update a document held by GNS
// @Tags         gns
// @Accept       json
// @Produce      json
// @Param        id path string true "GNS document id"
// @Success      200 {object} object
// @Security     BearerAuth
// @Router       /gns/invoices/{id} [put]
func (h *GNSHandler) Update(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	resp, err := h.gateway.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		HandleError(c, err)
		return
	}
	relay(c, resp)
}

// Delete handles DELETE /api/v1/gns/invoices/:id
// @Summary      Delete a document held by GNS
// @Tags         gns
// @Produce      json
// @Param        id path string true "GNS document id"
// @Success      200 {object} object
// @Security     BearerAuth
// @Router       /gns/invoices/{id} [delete]
func (h *GNSHandler) Delete(c *gin.Context) {
	resp, err := h.gateway.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	relay(c, resp)
}

func relay(c *gin.Context, resp *port.GatewayResponse) {
	status := resp.StatusCode
	if status == http.StatusNoContent {
		status = http.StatusOK
	}
	c.Data(status, "application/json; charset=utf-8", resp.Body)
}
