package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// 引擎依赖的外部协作方能力接口。
// 实现方在订单事务内被调用时必须复用 ctx 中携带的事务句柄。

// AccountLedger 资金账本：余额只能通过账本操作变动，每次变动都留下流水
type AccountLedger interface {
	// DebitForOrder 为买单预留资金，余额不足时返回 ErrInsufficientFunds
	DebitForOrder(ctx context.Context, userID, orderID, description string, amount decimal.Decimal) error
	// RefundOrder 取消/回退时退还预留资金
	RefundOrder(ctx context.Context, userID, orderID, description string, amount decimal.Decimal) error
	// CreditSellIncome 卖单成交后入账卖出所得
	CreditSellIncome(ctx context.Context, userID, orderID, description string, amount decimal.Decimal) error
}

// HoldingsLedger 持仓账本：卖单预留与成交变更都经由该接口
type HoldingsLedger interface {
	// Hold 预留可卖数量，不足时返回 ErrInsufficientHoldings
	Hold(ctx context.Context, userID, securityID string, quantity int64) error
	// Release 释放预留数量
	Release(ctx context.Context, userID, securityID string, quantity int64) error
	// ApplyBuyFill 买单成交：增加持仓并按成交前总额重算均价
	ApplyBuyFill(ctx context.Context, userID, securityID string, quantity int64, price, amount decimal.Decimal) error
	// ApplySellFill 卖单成交：同时扣减持仓数量与预留数量
	ApplySellFill(ctx context.Context, userID, securityID string, quantity int64) error
}

// SecurityInfo 证券基础信息
type SecurityInfo struct {
	SecurityID string
	Name       string
	Active     bool
}

// SecurityReference 证券参考数据，未找到时返回 ErrInvalidSecurity
type SecurityReference interface {
	GetSecurity(ctx context.Context, securityID string) (*SecurityInfo, error)
}

// PriceSource 价格快照来源，无快照时返回 ErrPriceUnavailable
type PriceSource interface {
	CurrentPrice(ctx context.Context, securityID string) (decimal.Decimal, error)
}
