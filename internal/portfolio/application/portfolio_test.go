package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrader/internal/portfolio/domain"
)

type fakePositionRepo struct {
	positions map[string]*domain.Position
}

func newFakePositionRepo() *fakePositionRepo {
	return &fakePositionRepo{positions: make(map[string]*domain.Position)}
}

func (r *fakePositionRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakePositionRepo) Get(_ context.Context, userID, securityID string) (*domain.Position, error) {
	return r.positions[userID+"/"+securityID], nil
}

func (r *fakePositionRepo) Save(_ context.Context, position *domain.Position) error {
	r.positions[position.UserID+"/"+position.SecurityID] = position
	return nil
}

func (r *fakePositionRepo) ListByUser(_ context.Context, userID string) ([]*domain.Position, error) {
	var matched []*domain.Position
	for _, p := range r.positions {
		if p.UserID == userID {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func TestHoldRequiresExistingPosition(t *testing.T) {
	repo := newFakePositionRepo()
	svc := NewPortfolioService(repo)
	ctx := context.Background()

	if err := svc.Hold(ctx, "user-1", "AAPL", 5); !errors.Is(err, domain.ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}
}

func TestBuyFillCreatesPositionOnFirstBuy(t *testing.T) {
	repo := newFakePositionRepo()
	svc := NewPortfolioService(repo)
	ctx := context.Background()

	err := svc.ApplyBuyFill(ctx, "user-1", "AAPL", 10, decimal.RequireFromString("90"), decimal.RequireFromString("900"))
	if err != nil {
		t.Fatalf("first buy: %v", err)
	}
	position, _ := repo.Get(ctx, "user-1", "AAPL")
	if position == nil || position.Quantity != 10 {
		t.Fatalf("expected position with 10 shares, got %+v", position)
	}
	if got := position.AvgPurchasePrice.String(); got != "90" {
		t.Fatalf("expected avg price 90, got %s", got)
	}

	// 加仓后均价按累计买入金额重算
	err = svc.ApplyBuyFill(ctx, "user-1", "AAPL", 10, decimal.RequireFromString("110"), decimal.RequireFromString("1100"))
	if err != nil {
		t.Fatalf("second buy: %v", err)
	}
	position, _ = repo.Get(ctx, "user-1", "AAPL")
	if got := position.AvgPurchasePrice.String(); got != "100" {
		t.Fatalf("expected avg price 100, got %s", got)
	}
}

func TestSellLifecycle(t *testing.T) {
	repo := newFakePositionRepo()
	svc := NewPortfolioService(repo)
	ctx := context.Background()

	if err := svc.ApplyBuyFill(ctx, "user-1", "AAPL", 10, decimal.RequireFromString("90"), decimal.RequireFromString("900")); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if err := svc.Hold(ctx, "user-1", "AAPL", 6); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := svc.Hold(ctx, "user-1", "AAPL", 5); !errors.Is(err, domain.ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}
	if err := svc.ApplySellFill(ctx, "user-1", "AAPL", 6); err != nil {
		t.Fatalf("sell fill: %v", err)
	}

	positions, err := svc.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if positions[0].Quantity != 4 || positions[0].HoldQuantity != 0 || positions[0].AvailableQuantity != 4 {
		t.Fatalf("unexpected position %+v", positions[0])
	}
}

func TestReleaseWithoutPosition(t *testing.T) {
	repo := newFakePositionRepo()
	svc := NewPortfolioService(repo)

	if err := svc.Release(context.Background(), "user-1", "AAPL", 5); !errors.Is(err, domain.ErrPositionNotFound) {
		t.Fatalf("expected ErrPositionNotFound, got %v", err)
	}
}
