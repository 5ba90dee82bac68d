package application

import (
	"log/slog"

	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

// OrderService 订单服务门面，整合命令和查询服务
type OrderService struct {
	Manager *OrderManager
	Query   *OrderQuery
}

// NewOrderService 构造函数
func NewOrderService(
	orders domain.OrderRepository,
	ledger domain.AccountLedger,
	holdings domain.HoldingsLedger,
	securities domain.SecurityReference,
	prices domain.PriceSource,
	publisher domain.EventPublisher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		Manager: NewOrderManager(orders, ledger, holdings, securities, prices, publisher, logger),
		Query:   NewOrderQuery(orders),
	}
}
