package application

import (
	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

// CreateOrderRequest 创建订单请求 DTO
type CreateOrderRequest struct {
	UserID     string // 用户 ID
	SecurityID string // 证券 ID
	Price      string // 委托价格（最多两位小数）
	Quantity   int64  // 委托数量
}

// UpdateOrderRequest 修改订单请求 DTO，nil 字段表示不修改
type UpdateOrderRequest struct {
	Price    *string
	Quantity *int64
}

// OrderDTO 订单视图
type OrderDTO struct {
	OrderID        string `json:"order_id"`
	UserID         string `json:"user_id"`
	SecurityID     string `json:"security_id"`
	Side           string `json:"side"`
	Status         string `json:"status"`
	Price          string `json:"price"`
	Quantity       int64  `json:"quantity"`
	FilledQuantity int64  `json:"filled_quantity"`
	TotalAmount    string `json:"total_amount"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

// OrderHistoryDTO 状态变更历史视图
type OrderHistoryDTO struct {
	PreviousStatus string `json:"previous_status,omitempty"`
	CurrentStatus  string `json:"current_status"`
	Note           string `json:"note"`
	CreatedAt      int64  `json:"created_at"`
}

// TradeDTO 成交记录视图
type TradeDTO struct {
	TradeID    string `json:"trade_id"`
	Side       string `json:"side"`
	Price      string `json:"price"`
	Quantity   int64  `json:"quantity"`
	Amount     string `json:"amount"`
	IsComplete bool   `json:"is_complete"`
	ExecutedAt int64  `json:"executed_at"`
}

// OrderDetailDTO 订单详情视图，含历史与成交
type OrderDetailDTO struct {
	OrderDTO
	RetryCount int                `json:"retry_count"`
	History    []*OrderHistoryDTO `json:"history"`
	Trades     []*TradeDTO        `json:"trades"`
}

func toOrderDTO(order *domain.Order) *OrderDTO {
	return &OrderDTO{
		OrderID:        order.OrderID,
		UserID:         order.UserID,
		SecurityID:     order.SecurityID,
		Side:           string(order.Side),
		Status:         string(order.Status),
		Price:          order.Price.String(),
		Quantity:       order.Quantity,
		FilledQuantity: order.FilledQuantity,
		TotalAmount:    order.TotalAmount.String(),
		CreatedAt:      order.CreatedAt.Unix(),
		UpdatedAt:      order.UpdatedAt.Unix(),
	}
}

func toHistoryDTO(h *domain.OrderHistory) *OrderHistoryDTO {
	dto := &OrderHistoryDTO{
		CurrentStatus: string(h.CurrentStatus),
		Note:          h.Note,
		CreatedAt:     h.CreatedAt.Unix(),
	}
	if h.PreviousStatus != nil {
		dto.PreviousStatus = string(*h.PreviousStatus)
	}
	return dto
}

func toTradeDTO(t *domain.Trade) *TradeDTO {
	return &TradeDTO{
		TradeID:    t.TradeID,
		Side:       string(t.Side),
		Price:      t.Price.String(),
		Quantity:   t.Quantity,
		Amount:     t.Amount.String(),
		IsComplete: t.IsComplete,
		ExecutedAt: t.ExecutedAt.Unix(),
	}
}
