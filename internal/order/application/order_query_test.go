package application

import (
	"context"
	"errors"
	"testing"

	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

func TestGetOrderDetail(t *testing.T) {
	env := newTestEnv(t)
	query := NewOrderQuery(env.orders)
	ctx := context.Background()

	dto, err := env.manager.CreateBuyOrder(ctx, &CreateOrderRequest{
		UserID: "user-1", SecurityID: "AAPL", Price: "100.00", Quantity: 10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.manager.ProcessOrder(ctx, dto.OrderID); err != nil {
		t.Fatalf("process: %v", err)
	}

	detail, err := query.GetOrder(ctx, dto.OrderID, "user-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if detail.Status != string(domain.OrderStatusSuccess) {
		t.Fatalf("expected SUCCESS, got %s", detail.Status)
	}
	// created -> pending -> executed
	if len(detail.History) != 3 {
		t.Fatalf("expected 3 history rows, got %d", len(detail.History))
	}
	if detail.History[0].PreviousStatus != "" {
		t.Fatalf("first history row must have empty previous status, got %q", detail.History[0].PreviousStatus)
	}
	if len(detail.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(detail.Trades))
	}

	if _, err := query.GetOrder(ctx, dto.OrderID, "user-2"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for wrong user, got %v", err)
	}
}

func TestListUserOrdersFilters(t *testing.T) {
	env := newTestEnv(t)
	env.holdings.quantity["AAPL"] = 50
	query := NewOrderQuery(env.orders)
	ctx := context.Background()

	if _, err := env.manager.CreateBuyOrder(ctx, &CreateOrderRequest{
		UserID: "user-1", SecurityID: "AAPL", Price: "100.00", Quantity: 10,
	}); err != nil {
		t.Fatalf("create buy: %v", err)
	}
	if _, err := env.manager.CreateSellOrder(ctx, &CreateOrderRequest{
		UserID: "user-1", SecurityID: "AAPL", Price: "80.00", Quantity: 5,
	}); err != nil {
		t.Fatalf("create sell: %v", err)
	}

	all, total, err := query.ListUserOrders(ctx, "user-1", "", "", 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected 2 orders, got total=%d len=%d", total, len(all))
	}

	sells, total, err := query.ListUserOrders(ctx, "user-1", domain.OrderSideSell, "", 1, 20)
	if err != nil {
		t.Fatalf("list sells: %v", err)
	}
	if total != 1 || sells[0].Side != string(domain.OrderSideSell) {
		t.Fatalf("expected 1 sell order, got total=%d", total)
	}

	none, total, err := query.ListUserOrders(ctx, "user-2", "", "", 1, 20)
	if err != nil {
		t.Fatalf("list other user: %v", err)
	}
	if total != 0 || len(none) != 0 {
		t.Fatalf("expected no orders for user-2, got %d", total)
	}
}
