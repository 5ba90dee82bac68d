package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

// OrderQuery 订单只读查询。
type OrderQuery struct {
	orders domain.OrderRepository
}

// NewOrderQuery 创建订单查询实例。
func NewOrderQuery(orders domain.OrderRepository) *OrderQuery {
	return &OrderQuery{orders: orders}
}

// GetOrder 查询订单详情，包含状态变更历史与成交记录。
func (q *OrderQuery) GetOrder(ctx context.Context, orderID, userID string) (*OrderDetailDTO, error) {
	order, err := q.orders.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}

	history, err := q.orders.ListHistory(ctx, orderID)
	if err != nil {
		return nil, err
	}
	trades, err := q.orders.ListTrades(ctx, orderID)
	if err != nil {
		return nil, err
	}

	detail := &OrderDetailDTO{
		OrderDTO:   *toOrderDTO(order),
		RetryCount: order.RetryCount,
		History:    make([]*OrderHistoryDTO, 0, len(history)),
		Trades:     make([]*TradeDTO, 0, len(trades)),
	}
	for _, h := range history {
		detail.History = append(detail.History, toHistoryDTO(h))
	}
	for _, t := range trades {
		detail.Trades = append(detail.Trades, toTradeDTO(t))
	}
	return detail, nil
}

// ListUserOrders 分页查询用户订单，side 与 status 为空时不过滤。
func (q *OrderQuery) ListUserOrders(ctx context.Context, userID string, side domain.OrderSide, status domain.OrderStatus, page, pageSize int) ([]*OrderDTO, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	orders, total, err := q.orders.ListByUser(ctx, userID, side, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	return dtos, total, nil
}
