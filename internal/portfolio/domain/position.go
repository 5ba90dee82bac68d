// Package domain 持仓账本的领域模型
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPositionNotFound = errors.New("position not found")
	// ErrInsufficientHoldings 可卖数量不足（持仓数量减去已预留数量）
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// Position 持仓，(user_id, security_id) 唯一
// hold_quantity 为挂起卖单预留的数量，始终满足 0 <= hold <= quantity
type Position struct {
	gorm.Model
	// 用户 ID
	UserID string `gorm:"column:user_id;type:varchar(36);uniqueIndex:uq_user_security;not null" json:"user_id"`
	// 证券 ID
	SecurityID string `gorm:"column:security_id;type:varchar(10);uniqueIndex:uq_user_security;not null" json:"security_id"`
	// 持仓数量
	Quantity int64 `gorm:"column:quantity;not null;default:0" json:"quantity"`
	// 卖单预留数量
	HoldQuantity int64 `gorm:"column:hold_quantity;not null;default:0" json:"hold_quantity"`
	// 平均买入价
	AvgPurchasePrice decimal.Decimal `gorm:"column:avg_purchase_price;type:decimal(16,2);not null" json:"avg_purchase_price"`
	// 累计买入金额
	TotalPurchaseAmount decimal.Decimal `gorm:"column:total_purchase_amount;type:decimal(24,2);not null" json:"total_purchase_amount"`
}

func (Position) TableName() string { return "portfolio" }

// NewPosition 首次买入成交时创建持仓
func NewPosition(userID, securityID string, quantity int64, price, amount decimal.Decimal) *Position {
	return &Position{
		UserID:              userID,
		SecurityID:          securityID,
		Quantity:            quantity,
		HoldQuantity:        0,
		AvgPurchasePrice:    price,
		TotalPurchaseAmount: amount,
	}
}

// Available 可卖数量
func (p *Position) Available() int64 {
	return p.Quantity - p.HoldQuantity
}

// Hold 预留可卖数量
func (p *Position) Hold(quantity int64) error {
	if p.Available() < quantity {
		return ErrInsufficientHoldings
	}
	p.HoldQuantity += quantity
	p.UpdatedAt = time.Now()
	return nil
}

// Release 释放预留数量，不会降到 0 以下
func (p *Position) Release(quantity int64) {
	if quantity > p.HoldQuantity {
		quantity = p.HoldQuantity
	}
	p.HoldQuantity -= quantity
	p.UpdatedAt = time.Now()
}

// ApplyBuy 买入成交：增加持仓并重算均价
// 均价用成交前的累计金额计算，首次买入也不会除零
func (p *Position) ApplyBuy(quantity int64, amount decimal.Decimal) {
	totalQuantity := p.Quantity + quantity
	totalAmount := p.TotalPurchaseAmount.Add(amount)
	p.Quantity = totalQuantity
	p.TotalPurchaseAmount = totalAmount
	p.AvgPurchasePrice = totalAmount.Div(decimal.NewFromInt(totalQuantity)).Round(2)
	p.UpdatedAt = time.Now()
}

// ApplySell 卖出成交：同时扣减持仓数量与预留数量
func (p *Position) ApplySell(quantity int64) error {
	if p.HoldQuantity < quantity || p.Quantity < quantity {
		return ErrInsufficientHoldings
	}
	p.Quantity -= quantity
	p.HoldQuantity -= quantity
	p.UpdatedAt = time.Now()
	return nil
}

// PositionRepository 持仓仓储接口
type PositionRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// Get 按 (用户, 证券) 获取持仓，未命中返回 (nil, nil)
	Get(ctx context.Context, userID, securityID string) (*Position, error)
	Save(ctx context.Context, position *Position) error
	// ListByUser 返回用户全部持仓
	ListByUser(ctx context.Context, userID string) ([]*Position, error)
}
