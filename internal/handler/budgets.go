package handler

import (
	"net/http"

	"vendapos/internal/dto"
	"vendapos/internal/middleware"
	"vendapos/internal/service"

	"github.com/gin-gonic/gin"
)

type BudgetsHandler struct{ svc service.BudgetService }

func NewBudgetsHandler(svc service.BudgetService) *BudgetsHandler { return &BudgetsHandler{svc: svc} }

// Create godoc
// @Summary      Criar orçamento
// @Description  Congela os preços atuais. Não reserva estoque.
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateBudgetRequest true "Itens do orçamento"
// @Success      201  {object} dto.BudgetResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/budgets [post]
func (h *BudgetsHandler) Create(c *gin.Context) {
	var req dto.CreateBudgetRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, sellerID := middleware.Identity(c)

	resp, err := h.svc.Create(c.Request.Context(), companyID, sellerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Obter orçamento
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        id  path string true "UUID do orçamento"
// @Success      200 {object} dto.BudgetResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/budgets/{id} [get]
func (h *BudgetsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "Orçamento")
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

// Content godoc
// @Summary      Texto do orçamento
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        id  path string true "UUID do orçamento"
// @Success      200 {object} dto.ReportResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/budgets/{id}/content [get]
func (h *BudgetsHandler) Content(c *gin.Context) {
	id, ok := parseID(c, "id", "Orçamento")
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

// Approve godoc
// @Summary      Aprovar orçamento
// @Description  Aprova e tenta gerar a venda com os preços do orçamento. Falha na venda vira aviso; repetir a aprovação devolve a mesma venda.
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID do orçamento"
// @Param        body body dto.ApproveBudgetRequest true "Formas de pagamento"
// @Success      200  {object} dto.ApproveBudgetResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/budgets/{id}/approve [post]
func (h *BudgetsHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id", "Orçamento")
	if !ok {
		return
	}
	var req dto.ApproveBudgetRequest
	if !bindAndValidate(c, &req) {
		return
	}
	companyID, sellerID := middleware.Identity(c)

	resp, err := h.svc.Approve(c.Request.Context(), companyID, sellerID, id, req, middleware.ClientTimeInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reject godoc
// @Summary      Rejeitar orçamento
// @Tags         budgets
// @Produce      json
// @Security     BearerAuth
// @Param        id  path string true "UUID do orçamento"
// @Success      200 {object} dto.BudgetResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/budgets/{id}/reject [post]
func (h *BudgetsHandler) Reject(c *gin.Context) {
	id, ok := parseID(c, "id", "Orçamento")
	if !ok {
		return
	}
	companyID, _ := middleware.Identity(c)

	resp, err := h.svc.Reject(c.Request.Context(), companyID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
