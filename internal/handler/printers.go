package handler

import (
	"net/http"

	"vendapos/internal/dto"
	"vendapos/internal/middleware"
	"vendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type PrintersHandler struct{ svc service.PrintService }

func NewPrintersHandler(svc service.PrintService) *PrintersHandler { return &PrintersHandler{svc: svc} }

// RegisterDevice godoc
// @Summary      Registrar impressoras do computador
// @Description  O agente local informa as impressoras que enxerga. A lista expira se não for renovada.
// @Tags         printers
// @Accept       json
// @Security     BearerAuth
// @Param        body body dto.RegisterDeviceRequest true "Computador e impressoras"
// @Success      204
// @Router       /v1/printers/devices [post]
func (h *PrintersHandler) RegisterDevice(c *gin.Context) {
	var req dto.RegisterDeviceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, _ := middleware.Identity(c)

	if err := h.svc.RegisterDevice(c.Request.Context(), companyID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Create godoc
// @Summary      Cadastrar impressora da empresa
// @Tags         printers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreatePrinterRequest true "Impressora"
// @Success      201  {object} dto.PrinterResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/printers [post]
func (h *PrintersHandler) Create(c *gin.Context) {
	var req dto.CreatePrinterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.CreatePrinter(c.Request.Context(), companyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Listar impressoras da empresa
// @Tags         printers
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.PrinterResponse
// @Router       /v1/printers [get]
func (h *PrintersHandler) List(c *gin.Context) {
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.ListPrinters(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetDefault godoc
// @Summary      Definir impressora padrão
// @Tags         printers
// @Security     BearerAuth
// @Param        id  path string true "UUID da impressora"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/printers/{id}/default [put]
func (h *PrintersHandler) SetDefault(c *gin.Context) {
	id, ok := parseID(c, "id", "Impressora")
	if !ok {
		return
	}
	companyID, _ := middleware.Identity(c)

	if err := h.svc.SetDefault(c.Request.Context(), companyID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Print godoc
// @Summary      Imprimir texto
// @Description  Resolve a impressora (computador, empresa, sistema) e envia o texto. Sempre responde 200; falhas vêm no corpo.
// @Tags         printers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.DispatchPrintRequest true "Conteúdo"
// @Success      200  {object} dto.PrintResult
// @Router       /v1/printers/print [post]
func (h *PrintersHandler) Print(c *gin.Context) {
	var req dto.DispatchPrintRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, _ := middleware.Identity(c)
	cut := req.Cut == nil || *req.Cut

	res := h.svc.Dispatch(c.Request.Context(), companyID, req.ComputerID, req.Content, cut)
	c.JSON(http.StatusOK, service.ToPrintResult(res))
}

// Status godoc
// @Summary      Status da impressora
// @Tags         printers
// @Produce      json
// @Security     BearerAuth
// @Param        name path string true "Nome da impressora"
// @Success      200  {object} dto.PrinterStatusResponse
// @Router       /v1/printers/{name}/status [get]
func (h *PrintersHandler) Status(c *gin.Context) {
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.Status(c.Request.Context(), companyID, c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
