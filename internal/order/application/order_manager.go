package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"

	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

// OrderManager 负责订单全部写操作：下单、撤单、改单以及异步成交处理。
// 所有写路径都在单个数据库事务内完成状态变更、台账调整与出站事件写入。
type OrderManager struct {
	orders     domain.OrderRepository
	ledger     domain.AccountLedger
	holdings   domain.HoldingsLedger
	securities domain.SecurityReference
	prices     domain.PriceSource
	publisher  domain.EventPublisher
	logger     *slog.Logger
}

// NewOrderManager 创建订单管理器实例。
func NewOrderManager(
	orders domain.OrderRepository,
	ledger domain.AccountLedger,
	holdings domain.HoldingsLedger,
	securities domain.SecurityReference,
	prices domain.PriceSource,
	publisher domain.EventPublisher,
	logger *slog.Logger,
) *OrderManager {
	return &OrderManager{
		orders:     orders,
		ledger:     ledger,
		holdings:   holdings,
		securities: securities,
		prices:     prices,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateBuyOrder 创建买入订单：校验证券与报价、冻结买入资金、
// 提交订单并写入异步处理请求。
func (m *OrderManager) CreateBuyOrder(ctx context.Context, req *CreateOrderRequest) (*OrderDTO, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, err
	}
	security, err := m.validateSecurity(ctx, req.SecurityID)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrder(newOrderID(), req.UserID, req.SecurityID, domain.OrderSideBuy, price, req.Quantity)
	err = m.orders.WithTx(ctx, func(txCtx context.Context) error {
		if err := m.orders.Save(txCtx, order); err != nil {
			return err
		}
		if err := m.orders.SaveHistory(txCtx, domain.NewOrderHistory(order.OrderID, nil, order.Status, "Buy order created")); err != nil {
			return err
		}
		desc := fmt.Sprintf("Payment for buy order %s (%s)", order.OrderID, security.Name)
		if err := m.ledger.DebitForOrder(txCtx, order.UserID, order.OrderID, desc, order.TotalAmount); err != nil {
			return err
		}
		return m.submitForProcessing(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "buy order created",
		"order_id", order.OrderID, "user_id", order.UserID,
		"security_id", order.SecurityID, "amount", order.TotalAmount.String())
	return toOrderDTO(order), nil
}

// CreateSellOrder 创建卖出订单：校验证券与报价、冻结持仓数量、
// 提交订单并写入异步处理请求。
func (m *OrderManager) CreateSellOrder(ctx context.Context, req *CreateOrderRequest) (*OrderDTO, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if _, err := m.validateSecurity(ctx, req.SecurityID); err != nil {
		return nil, err
	}

	order := domain.NewOrder(newOrderID(), req.UserID, req.SecurityID, domain.OrderSideSell, price, req.Quantity)
	err = m.orders.WithTx(ctx, func(txCtx context.Context) error {
		if err := m.orders.Save(txCtx, order); err != nil {
			return err
		}
		if err := m.orders.SaveHistory(txCtx, domain.NewOrderHistory(order.OrderID, nil, order.Status, "Sell order created")); err != nil {
			return err
		}
		if err := m.holdings.Hold(txCtx, order.UserID, order.SecurityID, order.Quantity); err != nil {
			return err
		}
		return m.submitForProcessing(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "sell order created",
		"order_id", order.OrderID, "user_id", order.UserID,
		"security_id", order.SecurityID, "quantity", order.Quantity)
	return toOrderDTO(order), nil
}

// CancelOrder 用户主动撤单，退回未成交部分占用的资金或持仓。
func (m *OrderManager) CancelOrder(ctx context.Context, orderID, userID string) (*OrderDTO, error) {
	var order *domain.Order
	err := m.orders.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = m.orders.GetForUser(txCtx, orderID, userID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
		}
		return m.cancelInTx(txCtx, order, "Order cancelled by user")
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "order cancelled", "order_id", orderID, "user_id", userID)
	return toOrderDTO(order), nil
}

// UpdateOrder 修改未成交订单的价格或数量，并按差额调整资金冻结或持仓冻结。
// 修改后重置重试计数并重新进入处理流程。
func (m *OrderManager) UpdateOrder(ctx context.Context, orderID, userID string, req *UpdateOrderRequest) (*OrderDTO, error) {
	if req.Price == nil && req.Quantity == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidArgument)
	}
	var newPrice *decimal.Decimal
	if req.Price != nil {
		p, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		newPrice = &p
	}
	if req.Quantity != nil {
		if err := validateQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}

	var order *domain.Order
	err := m.orders.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = m.orders.GetForUser(txCtx, orderID, userID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
		}
		if !order.Updatable() {
			return fmt.Errorf("%w: order %s cannot be updated in status %s", domain.ErrInvalidOrderState, orderID, order.Status)
		}

		price := order.Price
		if newPrice != nil {
			price = *newPrice
		}
		quantity := order.Quantity
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		newTotal := price.Mul(decimal.NewFromInt(quantity))

		if order.Side == domain.OrderSideBuy {
			delta := newTotal.Sub(order.TotalAmount)
			switch {
			case delta.IsPositive():
				desc := fmt.Sprintf("Additional payment for updated buy order %s", orderID)
				if err := m.ledger.DebitForOrder(txCtx, userID, orderID, desc, delta); err != nil {
					return err
				}
			case delta.IsNegative():
				desc := fmt.Sprintf("Refund for updated buy order %s", orderID)
				if err := m.ledger.RefundOrder(txCtx, userID, orderID, desc, delta.Neg()); err != nil {
					return err
				}
			}
		} else {
			deltaQty := quantity - order.Quantity
			switch {
			case deltaQty > 0:
				if err := m.holdings.Hold(txCtx, userID, order.SecurityID, deltaQty); err != nil {
					return err
				}
			case deltaQty < 0:
				if err := m.holdings.Release(txCtx, userID, order.SecurityID, -deltaQty); err != nil {
					return err
				}
			}
		}

		prev := order.Status
		order.Price = price
		order.Quantity = quantity
		order.TotalAmount = newTotal
		if err := m.orders.Save(txCtx, order); err != nil {
			return err
		}
		note := fmt.Sprintf("Order updated: price=%s, quantity=%d", price.String(), quantity)
		if err := m.orders.SaveHistory(txCtx, domain.NewOrderHistory(orderID, &prev, order.Status, note)); err != nil {
			return err
		}
		return m.publishLifecycleEvent(txCtx, orderID, domain.EventTypeUpdate)
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "order updated", "order_id", orderID, "user_id", userID)
	return toOrderDTO(order), nil
}

// ProcessOrder 处理一次成交尝试。该方法是订单撮合的唯一入口，
// 由处理请求消费者按订单分区串行触发；终态订单重复投递时为幂等空操作。
func (m *OrderManager) ProcessOrder(ctx context.Context, orderID string) error {
	return m.orders.WithTx(ctx, func(txCtx context.Context) error {
		order, err := m.orders.Get(txCtx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			m.logger.WarnContext(ctx, "processing request for unknown order", "order_id", orderID)
			return nil
		}
		if !order.Processable() {
			// 重复投递：已终结或正在排队的订单直接跳过
			return nil
		}

		prev := order.Status
		marketPrice, err := m.prices.CurrentPrice(ctx, order.SecurityID)
		if err != nil {
			if errors.Is(err, domain.ErrPriceUnavailable) {
				return m.failAttempt(txCtx, order, prev)
			}
			return err
		}

		if !fillEligible(order, marketPrice) {
			return m.deferAttempt(txCtx, order, prev, marketPrice)
		}
		return m.fill(txCtx, order, prev, marketPrice)
	})
}

// ResetOrder 在订单被修改后重置处理进度，并重新投递处理请求。
func (m *OrderManager) ResetOrder(ctx context.Context, orderID string) error {
	return m.orders.WithTx(ctx, func(txCtx context.Context) error {
		order, err := m.orders.Get(txCtx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			m.logger.WarnContext(ctx, "reset request for unknown order", "order_id", orderID)
			return nil
		}
		if order.Status != domain.OrderStatusPending && order.Status != domain.OrderStatusRetrying {
			return nil
		}
		prev := order.Status
		if err := order.Reset(txCtx); err != nil {
			return err
		}
		if err := m.orders.Save(txCtx, order); err != nil {
			return err
		}
		if err := m.orders.SaveHistory(txCtx, domain.NewOrderHistory(orderID, &prev, order.Status, "Order processing reset after update")); err != nil {
			return err
		}
		return m.publishProcessRequest(txCtx, orderID)
	})
}

// fill 以市场价全量成交剩余数量，落盘成交记录并结算资金与持仓。
func (m *OrderManager) fill(txCtx context.Context, order *domain.Order, prev domain.OrderStatus, marketPrice decimal.Decimal) error {
	matched := order.RemainingQuantity()
	amount := marketPrice.Mul(decimal.NewFromInt(matched))

	trade := &domain.Trade{
		TradeID:    fmt.Sprintf("TRD-%d", idgen.GenID()),
		OrderID:    order.OrderID,
		UserID:     order.UserID,
		SecurityID: order.SecurityID,
		Side:       order.Side,
		Price:      marketPrice,
		Quantity:   matched,
		Amount:     amount,
		IsComplete: true,
		ExecutedAt: time.Now(),
	}
	if err := m.orders.SaveTrade(txCtx, trade); err != nil {
		return err
	}

	if order.Side == domain.OrderSideBuy {
		if err := m.holdings.ApplyBuyFill(txCtx, order.UserID, order.SecurityID, matched, marketPrice, amount); err != nil {
			return err
		}
		// 按委托价冻结、按市场价成交，差额退回账户
		excess := order.Price.Sub(marketPrice).Mul(decimal.NewFromInt(matched))
		if excess.IsPositive() {
			desc := fmt.Sprintf("Refund of price difference for buy order %s", order.OrderID)
			if err := m.ledger.RefundOrder(txCtx, order.UserID, order.OrderID, desc, excess); err != nil {
				return err
			}
		}
	} else {
		if err := m.holdings.ApplySellFill(txCtx, order.UserID, order.SecurityID, matched); err != nil {
			return err
		}
		desc := fmt.Sprintf("Income from sell order %s", order.OrderID)
		if err := m.ledger.CreditSellIncome(txCtx, order.UserID, order.OrderID, desc, amount); err != nil {
			return err
		}
	}

	if err := order.ApplyFill(txCtx, matched); err != nil {
		return err
	}
	if err := m.orders.Save(txCtx, order); err != nil {
		return err
	}
	note := fmt.Sprintf("Order fully executed at price %s", marketPrice.String())
	if err := m.orders.SaveHistory(txCtx, domain.NewOrderHistory(order.OrderID, &prev, order.Status, note)); err != nil {
		return err
	}

	m.logger.InfoContext(txCtx, "order filled",
		"order_id", order.OrderID, "security_id", order.SecurityID,
		"price", marketPrice.String(), "quantity", matched)
	return nil
}

// failAttempt 记录一次因行情缺失导致的处理失败；达到重试上限时自动撤单。
func (m *OrderManager) failAttempt(txCtx context.Context, order *domain.Order, prev domain.OrderStatus) error {
	order.RetryCount++
	if err := order.MarkFailed(txCtx); err != nil {
		return err
	}
	if err := m.orders.Save(txCtx, order); err != nil {
		return err
	}
	note := "Failed to process order: price information not available"
	if err := m.orders.SaveHistory(txCtx, domain.NewOrderHistory(order.OrderID, &prev, order.Status, note)); err != nil {
		return err
	}
	m.logger.WarnContext(txCtx, "order processing failed",
		"order_id", order.OrderID, "retry_count", order.RetryCount)
	if order.RetryCount >= domain.MaxRetryCount {
		return m.cancelInTx(txCtx, order, "Order auto-cancelled after maximum retry attempts")
	}
	return m.publishProcessRequest(txCtx, order.OrderID)
}

// deferAttempt 记录一次因价格不满足成交条件的重试；达到重试上限时自动撤单。
func (m *OrderManager) deferAttempt(txCtx context.Context, order *domain.Order, prev domain.OrderStatus, marketPrice decimal.Decimal) error {
	order.RetryCount++
	if order.RetryCount >= domain.MaxRetryCount {
		return m.cancelInTx(txCtx, order, "Order auto-cancelled after maximum retry attempts")
	}
	if err := order.MarkRetrying(txCtx); err != nil {
		return err
	}
	if err := m.orders.Save(txCtx, order); err != nil {
		return err
	}
	note := fmt.Sprintf("Retry %d: order price %s does not match market price %s",
		order.RetryCount, order.Price.String(), marketPrice.String())
	if err := m.orders.SaveHistory(txCtx, domain.NewOrderHistory(order.OrderID, &prev, order.Status, note)); err != nil {
		return err
	}
	m.logger.InfoContext(txCtx, "order deferred for retry",
		"order_id", order.OrderID, "retry_count", order.RetryCount,
		"order_price", order.Price.String(), "market_price", marketPrice.String())
	return m.publishProcessRequest(txCtx, order.OrderID)
}

// cancelInTx 在当前事务内撤销订单：退回未成交部分的资金或持仓、
// 迁移状态并发布撤单事件。用户撤单与自动撤单共用该路径。
func (m *OrderManager) cancelInTx(txCtx context.Context, order *domain.Order, note string) error {
	if !order.Cancelable() {
		return fmt.Errorf("%w: order %s cannot be cancelled in status %s", domain.ErrInvalidOrderState, order.OrderID, order.Status)
	}
	prev := order.Status
	remaining := order.RemainingQuantity()
	if remaining > 0 {
		if order.Side == domain.OrderSideBuy {
			refund := order.Price.Mul(decimal.NewFromInt(remaining))
			desc := fmt.Sprintf("Refund for cancelled buy order %s", order.OrderID)
			if err := m.ledger.RefundOrder(txCtx, order.UserID, order.OrderID, desc, refund); err != nil {
				return err
			}
		} else {
			if err := m.holdings.Release(txCtx, order.UserID, order.SecurityID, remaining); err != nil {
				return err
			}
		}
	}
	if err := order.Cancel(txCtx); err != nil {
		return err
	}
	if err := m.orders.Save(txCtx, order); err != nil {
		return err
	}
	if err := m.orders.SaveHistory(txCtx, domain.NewOrderHistory(order.OrderID, &prev, order.Status, note)); err != nil {
		return err
	}
	return m.publishLifecycleEvent(txCtx, order.OrderID, domain.EventTypeCancel)
}

// submitForProcessing 将订单从 INITIAL 迁移至 PENDING 并投递处理请求。
func (m *OrderManager) submitForProcessing(txCtx context.Context, order *domain.Order) error {
	prev := order.Status
	if err := order.Submit(txCtx); err != nil {
		return err
	}
	if err := m.orders.Save(txCtx, order); err != nil {
		return err
	}
	side := "buy"
	if order.Side == domain.OrderSideSell {
		side = "sell"
	}
	note := fmt.Sprintf("Processing %s order", side)
	if err := m.orders.SaveHistory(txCtx, domain.NewOrderHistory(order.OrderID, &prev, order.Status, note)); err != nil {
		return err
	}
	return m.publishProcessRequest(txCtx, order.OrderID)
}

// publishProcessRequest 通过出站箱在当前事务内写入处理请求，
// 以订单 ID 作为分区键保证同一订单的请求串行消费。
func (m *OrderManager) publishProcessRequest(txCtx context.Context, orderID string) error {
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: domain.EventTypeProcess,
		Timestamp: time.Now().Unix(),
		RequestID: fmt.Sprintf("REQ-%d", idgen.GenID()),
	}
	return m.publisher.PublishInTx(txCtx, contextx.GetTx(txCtx), domain.TopicProcessingRequests, orderID, event)
}

// publishLifecycleEvent 发布订单生命周期事件到通知主题。
func (m *OrderManager) publishLifecycleEvent(txCtx context.Context, orderID, eventType string) error {
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: eventType,
		Timestamp: time.Now().Unix(),
		RequestID: fmt.Sprintf("REQ-%d", idgen.GenID()),
	}
	return m.publisher.PublishInTx(txCtx, contextx.GetTx(txCtx), domain.TopicOrderEvents, orderID, event)
}

// validateSecurity 校验证券存在、可交易且有可用行情。
func (m *OrderManager) validateSecurity(ctx context.Context, securityID string) (*domain.SecurityInfo, error) {
	security, err := m.securities.GetSecurity(ctx, securityID)
	if err != nil {
		return nil, err
	}
	if !security.Active {
		return nil, fmt.Errorf("%w: security %s is not tradable", domain.ErrInvalidSecurity, securityID)
	}
	if _, err := m.prices.CurrentPrice(ctx, securityID); err != nil {
		if errors.Is(err, domain.ErrPriceUnavailable) {
			return nil, fmt.Errorf("%w: no market price for security %s", domain.ErrInvalidSecurity, securityID)
		}
		return nil, err
	}
	return security, nil
}

// fillEligible 判断委托价是否满足按当前市场价成交的条件。
func fillEligible(order *domain.Order, marketPrice decimal.Decimal) bool {
	if order.Side == domain.OrderSideBuy {
		return order.Price.GreaterThanOrEqual(marketPrice)
	}
	return order.Price.LessThanOrEqual(marketPrice)
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid price %q", domain.ErrInvalidArgument, raw)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: price must be positive", domain.ErrInvalidArgument)
	}
	if !price.Equal(price.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: price must have at most two decimal places", domain.ErrInvalidArgument)
	}
	return price, nil
}

func validateQuantity(quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidArgument)
	}
	return nil
}

func newOrderID() string {
	return fmt.Sprintf("ORD-%d", idgen.GenID())
}
