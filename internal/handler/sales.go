package handler

import (
	"net/http"

	"vendapos/internal/dto"
	"vendapos/internal/middleware"
	"vendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// CreateSale godoc
// @Summary      Registrar venda
// @Description  Valida o pagamento, baixa o estoque e grava a venda numa única transação. Emissão fiscal, impressão e e-mail acontecem depois do commit e só geram avisos.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Itens e formas de pagamento"
// @Param        X-Time-Zone header string false "Fuso horário do cliente (IANA)"
// @Success      201  {object} dto.CreateSaleResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, sellerID := middleware.Identity(c)

	resp, err := h.svc.CreateSale(c.Request.Context(), companyID, sellerID, req, middleware.ClientTimeInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListSales godoc
// @Summary      Listar vendas
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        seller_id       query string false "Vendedor"
// @Param        cash_closure_id query string false "Caixa"
// @Param        from            query string false "Data inicial YYYY-MM-DD"
// @Param        to              query string false "Data final YYYY-MM-DD"
// @Param        client_name     query string false "Nome do cliente (parcial)"
// @Param        page            query int    false "Página (padrão 1)"
// @Param        limit           query int    false "Registros por página (padrão 50)"
// @Success      200  {object} dto.SaleListResponse
// @Router       /v1/sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.ListSales(c.Request.Context(), companyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSale godoc
// @Summary      Obter venda
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id  path string true "UUID da venda"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := parseID(c, "id", "Venda")
	if !ok {
		return
	}
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.GetSale(c.Request.Context(), companyID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveSale godoc
// @Summary      Remover venda
// @Description  Devolve o estoque e apaga a venda. Só é permitido dentro da janela de edição e com o caixa ainda aberto.
// @Tags         sales
// @Security     BearerAuth
// @Param        id  path string true "UUID da venda"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Failure      422 {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) RemoveSale(c *gin.Context) {
	id, ok := parseID(c, "id", "Venda")
	if !ok {
		return
	}
	companyID, _ := middleware.Identity(c)

	if err := h.svc.RemoveSale(c.Request.Context(), companyID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Content godoc
// @Summary      Texto do comprovante de venda
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id  path string true "UUID da venda"
// @Success      200 {object} dto.ReportResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/content [get]
func (h *SalesHandler) Content(c *gin.Context) {
	id, ok := parseID(c, "id", "Venda")
	if !ok {
		return
	}
	companyID, _ := middleware.Identity(c)

	text, err := h.svc.Receipt(c.Request.Context(), companyID, id, middleware.ClientTimeInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReportResponse{Content: text})
}

// ReprintSale godoc
// @Summary      Reimprimir cupom
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string             true  "UUID da venda"
// @Param        body body dto.ReprintRequest false "Computador que pediu a reimpressão"
// @Success      200  {object} dto.ReportResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales/{id}/reprint [post]
func (h *SalesHandler) ReprintSale(c *gin.Context) {
	id, ok := parseID(c, "id", "Venda")
	if !ok {
		return
	}
	var req dto.ReprintRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.ReprintSale(c.Request.Context(), companyID, id, req.ComputerID, middleware.ClientTimeInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
