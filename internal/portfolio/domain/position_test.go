package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPositionHoldRelease(t *testing.T) {
	p := NewPosition("user-1", "AAPL", 10, decimal.RequireFromString("100"), decimal.RequireFromString("1000"))

	if err := p.Hold(6); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if p.Available() != 4 {
		t.Fatalf("expected available 4, got %d", p.Available())
	}
	if err := p.Hold(5); !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}

	p.Release(2)
	if p.HoldQuantity != 4 {
		t.Fatalf("expected hold 4, got %d", p.HoldQuantity)
	}
	// 释放数量超出预留时收敛到 0
	p.Release(100)
	if p.HoldQuantity != 0 {
		t.Fatalf("expected hold 0, got %d", p.HoldQuantity)
	}
}

func TestPositionApplyBuy(t *testing.T) {
	p := NewPosition("user-1", "AAPL", 10, decimal.RequireFromString("100"), decimal.RequireFromString("1000"))

	// 10 股成本 1000 + 10 股成本 1500 => 均价 125
	p.ApplyBuy(10, decimal.RequireFromString("1500"))
	if p.Quantity != 20 {
		t.Fatalf("expected quantity 20, got %d", p.Quantity)
	}
	if got := p.AvgPurchasePrice.String(); got != "125" {
		t.Fatalf("expected avg price 125, got %s", got)
	}
	if got := p.TotalPurchaseAmount.String(); got != "2500" {
		t.Fatalf("expected total amount 2500, got %s", got)
	}
}

func TestPositionApplyBuyRounding(t *testing.T) {
	p := NewPosition("user-1", "AAPL", 3, decimal.RequireFromString("33.33"), decimal.RequireFromString("100"))
	p.ApplyBuy(3, decimal.RequireFromString("100"))
	if got := p.AvgPurchasePrice.String(); got != "33.33" {
		t.Fatalf("expected avg price 33.33, got %s", got)
	}
}

func TestPositionApplySell(t *testing.T) {
	p := NewPosition("user-1", "AAPL", 10, decimal.RequireFromString("100"), decimal.RequireFromString("1000"))
	if err := p.Hold(6); err != nil {
		t.Fatalf("hold: %v", err)
	}

	if err := p.ApplySell(6); err != nil {
		t.Fatalf("apply sell: %v", err)
	}
	if p.Quantity != 4 || p.HoldQuantity != 0 {
		t.Fatalf("expected quantity 4 hold 0, got %d/%d", p.Quantity, p.HoldQuantity)
	}

	// 卖出必须先有对应预留
	if err := p.ApplySell(1); !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}
}
