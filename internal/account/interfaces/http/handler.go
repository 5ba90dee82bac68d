package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrader/internal/account/application"
	"github.com/wyfcoding/stocktrader/internal/account/domain"
)

// AccountHandler 账户 HTTP 处理器
type AccountHandler struct {
	ledger *application.LedgerService
}

// NewAccountHandler 创建账户 HTTP 处理器实例
func NewAccountHandler(ledger *application.LedgerService) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

// RegisterRoutes 注册路由
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/v1/accounts")
	{
		v1.POST("/deposit", h.Deposit)
		v1.POST("/withdraw", h.Withdraw)
		v1.GET("/:user_id/balance", h.GetBalance)
		v1.GET("/:user_id/transactions", h.ListTransactions)
	}
}

type fundsRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// Deposit 存入资金
func (h *AccountHandler) Deposit(c *gin.Context) {
	var req fundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	balance, err := h.ledger.Deposit(c.Request.Context(), req.UserID, amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// Withdraw 提取资金
func (h *AccountHandler) Withdraw(c *gin.Context) {
	var req fundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	balance, err := h.ledger.Withdraw(c.Request.Context(), req.UserID, amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// GetBalance 查询账户余额
func (h *AccountHandler) GetBalance(c *gin.Context) {
	balance, err := h.ledger.GetBalance(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

type listTransactionsQuery struct {
	Kind     string `form:"kind"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// ListTransactions 分页查询账务流水
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 || query.PageSize > 100 {
		query.PageSize = 20
	}

	entries, total, err := h.ledger.ListEntries(c.Request.Context(), c.Param("user_id"),
		domain.EntryKind(query.Kind), query.PageSize, (query.Page-1)*query.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": entries,
		"total":        total,
		"page":         query.Page,
		"page_size":    query.PageSize,
	})
}

// respondError 将领域错误映射为 HTTP 状态码
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAccountInactive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
