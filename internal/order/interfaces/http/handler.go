package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/stocktrader/internal/order/application"
	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	service *application.OrderService
}

// NewOrderHandler 创建订单 HTTP 处理器实例
func NewOrderHandler(service *application.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/v1/orders")
	{
		v1.POST("/buy", h.CreateBuyOrder)
		v1.POST("/sell", h.CreateSellOrder)
		v1.GET("", h.ListOrders)
		v1.GET("/:id", h.GetOrder)
		v1.PUT("/:id", h.UpdateOrder)
		v1.DELETE("/:id", h.CancelOrder)
	}
}

type createOrderRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	SecurityID string `json:"security_id" binding:"required"`
	Price      string `json:"price" binding:"required"`
	Quantity   int64  `json:"quantity" binding:"required"`
}

// CreateBuyOrder 创建买入订单
func (h *OrderHandler) CreateBuyOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dto, err := h.service.Manager.CreateBuyOrder(c.Request.Context(), &application.CreateOrderRequest{
		UserID:     req.UserID,
		SecurityID: req.SecurityID,
		Price:      req.Price,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

// CreateSellOrder 创建卖出订单
func (h *OrderHandler) CreateSellOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dto, err := h.service.Manager.CreateSellOrder(c.Request.Context(), &application.CreateOrderRequest{
		UserID:     req.UserID,
		SecurityID: req.SecurityID,
		Price:      req.Price,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto)
}

type updateOrderRequest struct {
	UserID   string  `json:"user_id" binding:"required"`
	Price    *string `json:"price"`
	Quantity *int64  `json:"quantity"`
}

// UpdateOrder 修改未成交订单的价格或数量
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dto, err := h.service.Manager.UpdateOrder(c.Request.Context(), c.Param("id"), req.UserID, &application.UpdateOrderRequest{
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// CancelOrder 撤销订单
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	dto, err := h.service.Manager.CancelOrder(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// GetOrder 查询订单详情，含状态历史与成交记录
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	detail, err := h.service.Query.GetOrder(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type listOrdersQuery struct {
	UserID   string `form:"user_id" binding:"required"`
	Side     string `form:"side"`
	Status   string `form:"status"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// ListOrders 分页查询用户订单
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var query listOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orders, total, err := h.service.Query.ListUserOrders(c.Request.Context(), query.UserID,
		domain.OrderSide(query.Side), domain.OrderStatus(query.Status), query.Page, query.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":    orders,
		"total":     total,
		"page":      query.Page,
		"page_size": query.PageSize,
	})
}

// respondError 将领域错误映射为 HTTP 状态码
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidOrderState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientHoldings):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidSecurity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
