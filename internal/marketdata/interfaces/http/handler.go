package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrader/internal/marketdata/application"
	"github.com/wyfcoding/stocktrader/internal/marketdata/domain"
)

// MarketDataHandler 行情 HTTP 处理器
type MarketDataHandler struct {
	marketdata *application.MarketDataService
}

// NewMarketDataHandler 创建行情 HTTP 处理器实例
func NewMarketDataHandler(marketdata *application.MarketDataService) *MarketDataHandler {
	return &MarketDataHandler{marketdata: marketdata}
}

// RegisterRoutes 注册路由
func (h *MarketDataHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/v1/securities")
	{
		v1.POST("", h.SaveSecurity)
		v1.GET("/:id", h.GetSecurity)
		v1.PUT("/:id/price", h.SavePrice)
		v1.GET("/:id/price", h.GetPrice)
	}
}

type saveSecurityRequest struct {
	SecurityID  string `json:"security_id" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
	Industry    string `json:"industry"`
	IsActive    *bool  `json:"is_active"`
}

// SaveSecurity 新增或更新证券参考数据
func (h *MarketDataHandler) SaveSecurity(c *gin.Context) {
	var req saveSecurityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	security := &domain.Security{
		SecurityID:  req.SecurityID,
		CompanyName: req.CompanyName,
		Industry:    req.Industry,
		IsActive:    active,
	}
	if err := h.marketdata.SaveSecurity(c.Request.Context(), security); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, security)
}

// GetSecurity 查询证券参考数据
func (h *MarketDataHandler) GetSecurity(c *gin.Context) {
	security, err := h.marketdata.GetSecurity(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSecurityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, security)
}

type savePriceRequest struct {
	CurrentPrice string `json:"current_price" binding:"required"`
}

// SavePrice 更新价格快照
func (h *MarketDataHandler) SavePrice(c *gin.Context) {
	var req savePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	price, err := decimal.NewFromString(req.CurrentPrice)
	if err != nil || !price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid current_price"})
		return
	}

	if err := h.marketdata.SavePrice(c.Request.Context(), c.Param("id"), price); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"security_id": c.Param("id"), "current_price": price.String()})
}

// GetPrice 查询当前价格
func (h *MarketDataHandler) GetPrice(c *gin.Context) {
	price, err := h.marketdata.CurrentPrice(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrPriceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"security_id": c.Param("id"), "current_price": price.String()})
}
