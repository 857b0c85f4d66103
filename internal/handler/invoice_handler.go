package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"esfhub/internal/domain"
	"esfhub/internal/port"
	"esfhub/internal/service"
	"esfhub/internal/xlsxexport"
)

// exportLimit caps the number of invoices written to one spreadsheet.
const exportLimit = 10000

// InvoiceHandler handles invoice endpoints, including GNS synchronization.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	syncService    service.SyncService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService, syncService service.SyncService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, syncService: syncService}
}

// Create handles POST /api/v1/invoices
// @Summary      Create an invoice
// @Description  Resolves the embedded reference data and stores the invoice. A duplicate documentUuid is rejected.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body body domain.ExternalInvoice true "Invoice in GNS format"
// @Success      201 {object} APIResponse{data=domain.Invoice}
// @Failure      400 {object} APIResponse
// @Failure      401 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var ext domain.ExternalInvoice
	if err := c.ShouldBindJSON(&ext); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), &ext)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// List handles GET /api/v1/invoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        offset query int false "Pagination offset" default(0)
// @Param        limit query int false "Pagination limit" default(20)
// @Success      200 {object} APIResponse{data=[]domain.Invoice,meta=PagMeta}
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	invoices, total, err := h.invoiceService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path int true "Invoice ID"
// @Success      200 {object} APIResponse{data=domain.Invoice}
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Update handles PUT /api/v1/invoices/:id
// @Summary      Overwrite an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path int true "Invoice ID"
// @Param        body body domain.ExternalInvoice true "Invoice in GNS format"
// @Success      200 {object} APIResponse{data=domain.Invoice}
// @Failure      400 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	var ext domain.ExternalInvoice
	if err := c.ShouldBindJSON(&ext); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.Update(c.Request.Context(), id, &ext)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary      Delete an invoice
// @Tags         invoices
// @Param        id path int true "Invoice ID"
// @Success      200 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "invoice deleted"})
}

// Send handles POST /api/v1/invoices/:id/send
// @Summary      Submit an invoice to GNS
// @Description  Relays the gateway answer. Gateway failures keep the upstream status; transport failures are 503.
// @Tags         invoices
// @Produce      json
// @Param        id path int true "Invoice ID"
// @Success      200 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Failure      503 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	resp, err := h.invoiceService.Send(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, resp.Body)
}

// SyncBatch handles POST /api/v1/invoices/sync/batch
// @Summary      Synchronize a batch of GNS invoices
// @Description  All invoices are saved in one transaction or none are.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        body body []domain.ExternalInvoice true "Invoices in GNS format"
// @Success      200 {object} APIResponse{data=service.SyncResult}
// @Failure      422 {object} APIResponse{data=service.SyncResult}
// @Security     BearerAuth
// @Router       /invoices/sync/batch [post]
func (h *InvoiceHandler) SyncBatch(c *gin.Context) {
	var invoices []domain.ExternalInvoice
	if err := c.ShouldBindJSON(&invoices); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.syncService.SyncBatch(c.Request.Context(), invoices)
	h.respondSync(c, result, err)
}

// Pull handles POST /api/v1/invoices/sync
// @Summary      Pull invoices from GNS and synchronize them
// @Tags         sync
// @Produce      json
// @Param        exchangeCode query string false "Exchange code; defaults to the configured one"
// @Success      200 {object} APIResponse{data=service.SyncResult}
// @Failure      422 {object} APIResponse{data=service.SyncResult}
// @Failure      503 {object} APIResponse
// @Security     BearerAuth
// @Router       /invoices/sync [post]
func (h *InvoiceHandler) Pull(c *gin.Context) {
	result, err := h.syncService.PullAndSync(c.Request.Context(), fetchFilterFromQuery(c))
	h.respondSync(c, result, err)
}

// respondSync reports a failed batch with its result attached so callers see
// which element aborted it and that nothing was saved.
func (h *InvoiceHandler) respondSync(c *gin.Context, result *service.SyncResult, err error) {
	if err == nil {
		RespondOK(c, result)
		return
	}

	var syncErr *domain.SyncError
	if result == nil || !errors.As(err, &syncErr) {
		HandleError(c, err)
		return
	}

	status, code, msg := MapDomainError(err)
	if errors.Is(err, domain.ErrInvalidInvoice) {
		status, code, msg = http.StatusUnprocessableEntity, "INVALID_INVOICE", result.Error
	}
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Error().Err(err).Str("request_id", fmt.Sprint(requestID)).Msg("sync batch failed")
	}
	c.JSON(status, APIResponse{
		Success: false,
		Data:    result,
		Error:   &APIError{Code: code, Message: msg},
		Detail:  msg,
	})
}

// Export handles GET /api/v1/invoices/export
// @Summary      Export invoices as a spreadsheet
// @Tags         invoices
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	invoices, _, err := h.invoiceService.List(c.Request.Context(), 0, exportLimit)
	if err != nil {
		HandleError(c, err)
		return
	}

	w, err := xlsxexport.NewWriter()
	if err != nil {
		HandleError(c, err)
		return
	}
	defer func() { _ = w.Close() }()

	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteInvoices(invoices); err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, xlsxexport.BuildFilename("invoices")))
	c.Data(http.StatusOK, xlsxexport.ContentType, buf.Bytes())
}

func fetchFilterFromQuery(c *gin.Context) port.FetchFilter {
	filter := port.FetchFilter{ExchangeCode: c.Query("exchangeCode")}
	for key, values := range c.Request.URL.Query() {
		if key == "exchangeCode" || len(values) == 0 {
			continue
		}
		if filter.Params == nil {
			filter.Params = make(map[string]string)
		}
		filter.Params[key] = values[0]
	}
	return filter
}
