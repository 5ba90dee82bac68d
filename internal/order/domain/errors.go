package domain

import "errors"

var (
	// ErrInvalidArgument 价格或数量不合法
	ErrInvalidArgument = errors.New("invalid order argument")
	// ErrOrderNotFound 订单不存在或不属于该用户
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidSecurity 证券不存在、未激活或没有价格快照
	ErrInvalidSecurity = errors.New("security not found or not active")
	// ErrInvalidOrderState 当前状态不允许该操作
	ErrInvalidOrderState = errors.New("operation not allowed in current order status")
	// ErrInsufficientFunds 余额不足
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientHoldings 可卖持仓不足
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	// ErrPriceUnavailable 当前没有可用的价格快照
	ErrPriceUnavailable = errors.New("price snapshot not available")
)
