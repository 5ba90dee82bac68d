package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrader/internal/order/domain"
	portfolioapp "github.com/wyfcoding/stocktrader/internal/portfolio/application"
	portfoliodomain "github.com/wyfcoding/stocktrader/internal/portfolio/domain"
)

// HoldingsLedgerAdapter 将组合上下文的持仓服务适配为订单上下文的持仓台账端口，
// 并把持仓域错误翻译为订单域错误。
type HoldingsLedgerAdapter struct {
	portfolio *portfolioapp.PortfolioService
}

// NewHoldingsLedgerAdapter 创建持仓台账适配器。
func NewHoldingsLedgerAdapter(portfolio *portfolioapp.PortfolioService) *HoldingsLedgerAdapter {
	return &HoldingsLedgerAdapter{portfolio: portfolio}
}

func (a *HoldingsLedgerAdapter) Hold(ctx context.Context, userID, securityID string, quantity int64) error {
	return translatePortfolioErr(a.portfolio.Hold(ctx, userID, securityID, quantity))
}

func (a *HoldingsLedgerAdapter) Release(ctx context.Context, userID, securityID string, quantity int64) error {
	return translatePortfolioErr(a.portfolio.Release(ctx, userID, securityID, quantity))
}

func (a *HoldingsLedgerAdapter) ApplyBuyFill(ctx context.Context, userID, securityID string, quantity int64, price, amount decimal.Decimal) error {
	return translatePortfolioErr(a.portfolio.ApplyBuyFill(ctx, userID, securityID, quantity, price, amount))
}

func (a *HoldingsLedgerAdapter) ApplySellFill(ctx context.Context, userID, securityID string, quantity int64) error {
	return translatePortfolioErr(a.portfolio.ApplySellFill(ctx, userID, securityID, quantity))
}

func translatePortfolioErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, portfoliodomain.ErrInsufficientHoldings) || errors.Is(err, portfoliodomain.ErrPositionNotFound) {
		return fmt.Errorf("%w: %v", domain.ErrInsufficientHoldings, err)
	}
	return err
}
