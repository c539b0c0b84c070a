package handler

import (
	"net/http"
	"strconv"

	"vendapos/internal/dto"
	"vendapos/internal/middleware"
	"vendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type CashClosuresHandler struct{ svc service.CashClosureService }

func NewCashClosuresHandler(svc service.CashClosureService) *CashClosuresHandler {
	return &CashClosuresHandler{svc: svc}
}

// Open godoc
// @Summary      Abrir caixa
// @Description  Abre o caixa do escopo do vendedor (compartilhado ou individual, conforme a empresa).
// @Tags         cash-closures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpenCashClosureRequest true "Fundo de troco"
// @Success      201  {object} dto.CashClosureResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/cash-closures [post]
func (h *CashClosuresHandler) Open(c *gin.Context) {
	var req dto.OpenCashClosureRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, sellerID := middleware.Identity(c)

	resp, err := h.svc.Open(c.Request.Context(), companyID, sellerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Current godoc
// @Summary      Caixa aberto
// @Description  Retorna o caixa aberto com os totais parciais por forma de pagamento.
// @Tags         cash-closures
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CashClosureResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/cash-closures/current [get]
func (h *CashClosuresHandler) Current(c *gin.Context) {
	companyID, sellerID := middleware.Identity(c)

	resp, err := h.svc.GetOpen(c.Request.Context(), companyID, sellerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Close godoc
// @Summary      Fechar caixa
// @Description  Calcula o valor esperado, registra a diferença e devolve o relatório de fechamento.
// @Tags         cash-closures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CloseCashClosureRequest true "Valor contado"
// @Success      200  {object} dto.CloseCashClosureResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/cash-closures/close [post]
func (h *CashClosuresHandler) Close(c *gin.Context) {
	var req dto.CloseCashClosureRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, sellerID := middleware.Identity(c)

	resp, err := h.svc.Close(c.Request.Context(), companyID, sellerID, req, middleware.ClientTimeInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Withdraw godoc
// @Summary      Registrar sangria
// @Tags         cash-closures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.WithdrawalRequest true "Valor e motivo"
// @Success      201  {object} dto.WithdrawalResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/cash-closures/withdrawals [post]
func (h *CashClosuresHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, sellerID := middleware.Identity(c)

	resp, err := h.svc.RegisterWithdrawal(c.Request.Context(), companyID, sellerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Histórico de caixas
// @Tags         cash-closures
// @Produce      json
// @Security     BearerAuth
// @Param        seller_id query string false "Vendedor"
// @Param        status    query string false "open | closed"
// @Param        from      query string false "Data inicial YYYY-MM-DD"
// @Param        to        query string false "Data final YYYY-MM-DD"
// @Param        page      query int    false "Página"
// @Param        limit     query int    false "Registros por página"
// @Success      200 {object} dto.CashClosureListResponse
// @Router       /v1/cash-closures [get]
func (h *CashClosuresHandler) List(c *gin.Context) {
	var filter dto.ClosureFilter
	if !bindQuery(c, &filter) {
		return
	}
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.List(c.Request.Context(), companyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary      Relatório de fechamento
// @Description  Texto de largura fixa, refeito a partir dos registros gravados.
// @Tags         cash-closures
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string true  "UUID do caixa"
// @Param        details query bool   false "Incluir cada venda"
// @Success      200 {object} dto.ReportResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/cash-closures/{id}/report [get]
func (h *CashClosuresHandler) Report(c *gin.Context) {
	id, ok := parseID(c, "id", "Caixa")
	if !ok {
		return
	}
	companyID, _ := middleware.Identity(c)

	text, err := h.svc.Report(c.Request.Context(), companyID, id, queryBool(c, "details"), middleware.ClientTimeInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReportResponse{Content: text})
}

// Reprint godoc
// @Summary      Reimprimir relatório de fechamento
// @Tags         cash-closures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string             true  "UUID do caixa"
// @Param        details query bool               false "Incluir cada venda"
// @Param        body    body  dto.ReprintRequest false "Computador"
// @Success      200 {object} dto.ReportResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/cash-closures/{id}/reprint [post]
func (h *CashClosuresHandler) Reprint(c *gin.Context) {
	id, ok := parseID(c, "id", "Caixa")
	if !ok {
		return
	}
	var req dto.ReprintRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.Reprint(c.Request.Context(), companyID, id, req.ComputerID, queryBool(c, "details"), middleware.ClientTimeInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}
