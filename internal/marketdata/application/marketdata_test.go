package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrader/internal/marketdata/domain"
)

type fakeSecurityRepo struct {
	securities map[string]*domain.Security
	prices     map[string]*domain.SecurityPrice
}

func newFakeSecurityRepo() *fakeSecurityRepo {
	return &fakeSecurityRepo{
		securities: make(map[string]*domain.Security),
		prices:     make(map[string]*domain.SecurityPrice),
	}
}

func (r *fakeSecurityRepo) Get(_ context.Context, securityID string) (*domain.Security, error) {
	return r.securities[securityID], nil
}

func (r *fakeSecurityRepo) Save(_ context.Context, security *domain.Security) error {
	r.securities[security.SecurityID] = security
	return nil
}

func (r *fakeSecurityRepo) GetPrice(_ context.Context, securityID string) (*domain.SecurityPrice, error) {
	return r.prices[securityID], nil
}

func (r *fakeSecurityRepo) SavePrice(_ context.Context, price *domain.SecurityPrice) error {
	r.prices[price.SecurityID] = price
	return nil
}

type fakeQuoteCache struct {
	quotes map[string]*domain.Quote
	err    error
	sets   int
}

func (c *fakeQuoteCache) Get(_ context.Context, securityID string) (*domain.Quote, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.quotes[securityID], nil
}

func (c *fakeQuoteCache) Set(_ context.Context, quote *domain.Quote) error {
	if c.err != nil {
		return c.err
	}
	c.quotes[quote.SecurityID] = quote
	c.sets++
	return nil
}

func TestCurrentPricePrefersCache(t *testing.T) {
	repo := newFakeSecurityRepo()
	cache := &fakeQuoteCache{quotes: map[string]*domain.Quote{
		"AAPL": {SecurityID: "AAPL", CurrentPrice: decimal.RequireFromString("95")},
	}}
	repo.prices["AAPL"] = &domain.SecurityPrice{SecurityID: "AAPL", CurrentPrice: decimal.RequireFromString("90")}
	svc := NewMarketDataService(repo, cache, slog.Default())

	price, err := svc.CurrentPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("current price: %v", err)
	}
	if price.String() != "95" {
		t.Fatalf("expected cached price 95, got %s", price.String())
	}
}

func TestCurrentPriceFallsBackToDatabase(t *testing.T) {
	repo := newFakeSecurityRepo()
	repo.prices["AAPL"] = &domain.SecurityPrice{SecurityID: "AAPL", CurrentPrice: decimal.RequireFromString("90")}

	t.Run("cache miss", func(t *testing.T) {
		svc := NewMarketDataService(repo, &fakeQuoteCache{quotes: map[string]*domain.Quote{}}, slog.Default())
		price, err := svc.CurrentPrice(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("current price: %v", err)
		}
		if price.String() != "90" {
			t.Fatalf("expected 90, got %s", price.String())
		}
	})

	t.Run("cache failure degrades without blocking", func(t *testing.T) {
		svc := NewMarketDataService(repo, &fakeQuoteCache{err: errors.New("redis down")}, slog.Default())
		price, err := svc.CurrentPrice(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("current price: %v", err)
		}
		if price.String() != "90" {
			t.Fatalf("expected 90, got %s", price.String())
		}
	})
}

func TestCurrentPriceNotFound(t *testing.T) {
	svc := NewMarketDataService(newFakeSecurityRepo(), &fakeQuoteCache{quotes: map[string]*domain.Quote{}}, slog.Default())
	if _, err := svc.CurrentPrice(context.Background(), "NOPE"); !errors.Is(err, domain.ErrPriceNotFound) {
		t.Fatalf("expected ErrPriceNotFound, got %v", err)
	}
}

func TestSavePriceRefreshesCache(t *testing.T) {
	repo := newFakeSecurityRepo()
	cache := &fakeQuoteCache{quotes: map[string]*domain.Quote{}}
	svc := NewMarketDataService(repo, cache, slog.Default())
	ctx := context.Background()

	if err := svc.SavePrice(ctx, "AAPL", decimal.RequireFromString("101.50")); err != nil {
		t.Fatalf("save price: %v", err)
	}
	if repo.prices["AAPL"] == nil || repo.prices["AAPL"].CurrentPrice.String() != "101.5" {
		t.Fatalf("price not persisted: %+v", repo.prices["AAPL"])
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache refresh, got %d sets", cache.sets)
	}

	price, err := svc.CurrentPrice(ctx, "AAPL")
	if err != nil {
		t.Fatalf("current price: %v", err)
	}
	if price.String() != "101.5" {
		t.Fatalf("expected 101.5, got %s", price.String())
	}
}

func TestGetSecurity(t *testing.T) {
	repo := newFakeSecurityRepo()
	repo.securities["AAPL"] = &domain.Security{SecurityID: "AAPL", CompanyName: "Apple Inc.", IsActive: true}
	svc := NewMarketDataService(repo, &fakeQuoteCache{quotes: map[string]*domain.Quote{}}, slog.Default())

	security, err := svc.GetSecurity(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("get security: %v", err)
	}
	if security.CompanyName != "Apple Inc." {
		t.Fatalf("unexpected security %+v", security)
	}

	if _, err := svc.GetSecurity(context.Background(), "NOPE"); !errors.Is(err, domain.ErrSecurityNotFound) {
		t.Fatalf("expected ErrSecurityNotFound, got %v", err)
	}
}
