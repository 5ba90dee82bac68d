package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	marketdataapp "github.com/wyfcoding/stocktrader/internal/marketdata/application"
	marketdatadomain "github.com/wyfcoding/stocktrader/internal/marketdata/domain"
	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

// MarketDataProvider 将行情上下文适配为订单上下文的证券信息与价格来源端口。
type MarketDataProvider struct {
	marketdata *marketdataapp.MarketDataService
}

// NewMarketDataProvider 创建行情适配器。
func NewMarketDataProvider(marketdata *marketdataapp.MarketDataService) *MarketDataProvider {
	return &MarketDataProvider{marketdata: marketdata}
}

func (p *MarketDataProvider) GetSecurity(ctx context.Context, securityID string) (*domain.SecurityInfo, error) {
	security, err := p.marketdata.GetSecurity(ctx, securityID)
	if err != nil {
		if errors.Is(err, marketdatadomain.ErrSecurityNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSecurity, securityID)
		}
		return nil, err
	}
	return &domain.SecurityInfo{
		SecurityID: security.SecurityID,
		Name:       security.CompanyName,
		Active:     security.IsActive,
	}, nil
}

func (p *MarketDataProvider) CurrentPrice(ctx context.Context, securityID string) (decimal.Decimal, error) {
	price, err := p.marketdata.CurrentPrice(ctx, securityID)
	if err != nil {
		if errors.Is(err, marketdatadomain.ErrPriceNotFound) {
			return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrPriceUnavailable, securityID)
		}
		return decimal.Zero, err
	}
	return price, nil
}
