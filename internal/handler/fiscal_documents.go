package handler

import (
	"net/http"

	"vendapos/internal/dto"
	"vendapos/internal/middleware"
	"vendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type FiscalDocumentsHandler struct{ svc service.FiscalService }

func NewFiscalDocumentsHandler(svc service.FiscalService) *FiscalDocumentsHandler {
	return &FiscalDocumentsHandler{svc: svc}
}

// Get godoc
// @Summary      Obter documento fiscal
// @Tags         fiscal-documents
// @Produce      json
// @Security     BearerAuth
// @Param        id  path string true "UUID do documento"
// @Success      200 {object} dto.FiscalDocumentResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/fiscal-documents/{id} [get]
func (h *FiscalDocumentsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "Documento fiscal")
	if !ok {
		return
	}
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.Get(c.Request.Context(), companyID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancelar NFC-e
// @Tags         fiscal-documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                         true "UUID do documento"
// @Param        body body dto.CancelFiscalDocumentRequest true "Justificativa (15 a 255 caracteres)"
// @Success      200  {object} dto.FiscalDocumentResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/fiscal-documents/{id}/cancel [post]
func (h *FiscalDocumentsHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id", "Documento fiscal")
	if !ok {
		return
	}
	var req dto.CancelFiscalDocumentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.Cancel(c.Request.Context(), companyID, id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Content godoc
// @Summary      DANFE NFC-e em texto
// @Tags         fiscal-documents
// @Produce      json
// @Security     BearerAuth
// @Param        id  path string true "UUID do documento"
// @Success      200 {object} dto.ReportResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/fiscal-documents/{id}/content [get]
func (h *FiscalDocumentsHandler) Content(c *gin.Context) {
	id, ok := parseID(c, "id", "Documento fiscal")
	if !ok {
		return
	}
	companyID, _ := middleware.Identity(c)

	text, err := h.svc.Render(c.Request.Context(), companyID, id, middleware.ClientTimeInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReportResponse{Content: text})
}
