// Package application 证券参考数据与价格快照的用例逻辑
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stocktrader/internal/marketdata/domain"
)

// MarketDataService 对外提供证券信息与当前价格
// 价格读取先查 Redis 读模型，未命中回落到数据库
type MarketDataService struct {
	repo   domain.SecurityRepository
	quotes domain.QuoteCache
	logger *slog.Logger
}

// NewMarketDataService 创建行情服务
func NewMarketDataService(repo domain.SecurityRepository, quotes domain.QuoteCache, logger *slog.Logger) *MarketDataService {
	return &MarketDataService{repo: repo, quotes: quotes, logger: logger}
}

// GetSecurity 查询证券参考数据
func (s *MarketDataService) GetSecurity(ctx context.Context, securityID string) (*domain.Security, error) {
	security, err := s.repo.Get(ctx, securityID)
	if err != nil {
		return nil, err
	}
	if security == nil {
		return nil, domain.ErrSecurityNotFound
	}
	return security, nil
}

// SaveSecurity 新增或更新证券参考数据
func (s *MarketDataService) SaveSecurity(ctx context.Context, security *domain.Security) error {
	return s.repo.Save(ctx, security)
}

// CurrentPrice 查询当前价格快照
func (s *MarketDataService) CurrentPrice(ctx context.Context, securityID string) (decimal.Decimal, error) {
	if s.quotes != nil {
		quote, err := s.quotes.Get(ctx, securityID)
		if err != nil {
			// 缓存故障只降级，不阻断交易路径
			s.logger.WarnContext(ctx, "quote cache lookup failed", "security_id", securityID, "error", err)
		} else if quote != nil {
			return quote.CurrentPrice, nil
		}
	}

	price, err := s.repo.GetPrice(ctx, securityID)
	if err != nil {
		return decimal.Zero, err
	}
	if price == nil {
		return decimal.Zero, domain.ErrPriceNotFound
	}
	return price.CurrentPrice, nil
}

// SavePrice 更新价格快照并刷新缓存
func (s *MarketDataService) SavePrice(ctx context.Context, securityID string, currentPrice decimal.Decimal) error {
	price, err := s.repo.GetPrice(ctx, securityID)
	if err != nil {
		return err
	}
	if price == nil {
		price = &domain.SecurityPrice{SecurityID: securityID, CurrentPrice: currentPrice}
	} else {
		price.CurrentPrice = currentPrice
	}
	if err := s.repo.SavePrice(ctx, price); err != nil {
		return err
	}

	if s.quotes != nil {
		quote := &domain.Quote{SecurityID: securityID, CurrentPrice: currentPrice, UpdatedAt: time.Now()}
		if err := s.quotes.Set(ctx, quote); err != nil {
			s.logger.WarnContext(ctx, "failed to refresh quote cache", "security_id", securityID, "error", err)
		}
	}
	return nil
}
