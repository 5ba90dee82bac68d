// Package application 持仓账本的用例逻辑
package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stocktrader/internal/portfolio/domain"
)

// PortfolioService 持仓账本服务
// 订单相关操作由订单事务调用，复用 ctx 中的事务句柄
type PortfolioService struct {
	repo domain.PositionRepository
}

// NewPortfolioService 创建持仓服务
func NewPortfolioService(repo domain.PositionRepository) *PortfolioService {
	return &PortfolioService{repo: repo}
}

// PositionDTO 持仓视图
type PositionDTO struct {
	SecurityID          string `json:"security_id"`
	Quantity            int64  `json:"quantity"`
	HoldQuantity        int64  `json:"hold_quantity"`
	AvailableQuantity   int64  `json:"available_quantity"`
	AvgPurchasePrice    string `json:"avg_purchase_price"`
	TotalPurchaseAmount string `json:"total_purchase_amount"`
}

// Hold 为卖单预留可卖数量
func (s *PortfolioService) Hold(ctx context.Context, userID, securityID string, quantity int64) error {
	position, err := s.repo.Get(ctx, userID, securityID)
	if err != nil {
		return err
	}
	if position == nil {
		return domain.ErrInsufficientHoldings
	}
	if err := position.Hold(quantity); err != nil {
		return err
	}
	return s.repo.Save(ctx, position)
}

// Release 释放卖单预留数量
func (s *PortfolioService) Release(ctx context.Context, userID, securityID string, quantity int64) error {
	position, err := s.repo.Get(ctx, userID, securityID)
	if err != nil {
		return err
	}
	if position == nil {
		return domain.ErrPositionNotFound
	}
	position.Release(quantity)
	return s.repo.Save(ctx, position)
}

// ApplyBuyFill 买单成交入账，首次买入时创建持仓
func (s *PortfolioService) ApplyBuyFill(ctx context.Context, userID, securityID string, quantity int64, price, amount decimal.Decimal) error {
	position, err := s.repo.Get(ctx, userID, securityID)
	if err != nil {
		return err
	}
	if position == nil {
		return s.repo.Save(ctx, domain.NewPosition(userID, securityID, quantity, price, amount))
	}
	position.ApplyBuy(quantity, amount)
	return s.repo.Save(ctx, position)
}

// ApplySellFill 卖单成交出账
func (s *PortfolioService) ApplySellFill(ctx context.Context, userID, securityID string, quantity int64) error {
	position, err := s.repo.Get(ctx, userID, securityID)
	if err != nil {
		return err
	}
	if position == nil {
		return domain.ErrPositionNotFound
	}
	if err := position.ApplySell(quantity); err != nil {
		return err
	}
	return s.repo.Save(ctx, position)
}

// ListByUser 用户持仓列表
func (s *PortfolioService) ListByUser(ctx context.Context, userID string) ([]*PositionDTO, error) {
	positions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]*PositionDTO, len(positions))
	for i, p := range positions {
		dtos[i] = &PositionDTO{
			SecurityID:          p.SecurityID,
			Quantity:            p.Quantity,
			HoldQuantity:        p.HoldQuantity,
			AvailableQuantity:   p.Available(),
			AvgPurchasePrice:    p.AvgPurchasePrice.String(),
			TotalPurchaseAmount: p.TotalPurchaseAmount.String(),
		}
	}
	return dtos, nil
}
