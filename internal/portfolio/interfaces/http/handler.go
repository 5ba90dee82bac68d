package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/stocktrader/internal/portfolio/application"
)

// PortfolioHandler 持仓 HTTP 处理器
type PortfolioHandler struct {
	portfolio *application.PortfolioService
}

// NewPortfolioHandler 创建持仓 HTTP 处理器实例
func NewPortfolioHandler(portfolio *application.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio}
}

// RegisterRoutes 注册路由
func (h *PortfolioHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/v1/portfolio")
	{
		v1.GET("/:user_id", h.ListPositions)
	}
}

// ListPositions 查询用户全部持仓
func (h *PortfolioHandler) ListPositions(c *gin.Context) {
	positions, err := h.portfolio.ListByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": positions})
}
