package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/studiodesk/studio-backend/internal/workspace/service"
)

func (h *Handler) listTransactions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "transactions": h.svc.State().Transactions})
}

func (h *Handler) addTransaction(c *gin.Context) {
	var req service.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	t, err := h.svc.AddTransaction(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "transaction": t})
}

func (h *Handler) deleteTransaction(c *gin.Context) {
	if err := h.svc.DeleteTransaction(c.Request.Context(), id(c, "id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) projectFinances(c *gin.Context) {
	f, err := h.svc.ProjectFinances(id(c, "id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "finances": f})
}

type contractReq struct {
	Engineer string          `json:"engineer"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h *Handler) setContract(c *gin.Context) {
	var req contractReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := h.svc.SetEngineerContract(c.Request.Context(), id(c, "id"), req.Engineer, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "contracts": p.EngineerContracts})
}

func (h *Handler) contractBalance(c *gin.Context) {
	b, err := h.svc.ContractBalance(id(c, "id"), c.Param("engineer"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "balance": b})
}

type paymentReq struct {
	Engineer string          `json:"engineer"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
}

func (h *Handler) addPayment(c *gin.Context) {
	var req paymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	t, err := h.svc.AddEngineerPayment(c.Request.Context(), id(c, "id"), req.Engineer, req.Amount, req.Date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "transaction": t})
}

func (h *Handler) totals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "totals": h.svc.Totals()})
}

func (h *Handler) periods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "comparison": h.svc.PeriodComparison()})
}

func (h *Handler) clientStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "clients": h.svc.ClientStats()})
}

func (h *Handler) migrateAdvances(c *gin.Context) {
	n, err := h.svc.MigrateAdvances(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "created": n})
}
