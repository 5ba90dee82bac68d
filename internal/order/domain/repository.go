package domain

import "context"

// OrderRepository 订单仓储接口
// Get 系列方法未命中时返回 (nil, nil)
type OrderRepository interface {
	// WithTx 在一个数据库事务内执行 fn，事务句柄通过 ctx 传递
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// Save 保存或更新订单
	Save(ctx context.Context, order *Order) error
	// Get 按订单 ID 获取订单
	Get(ctx context.Context, orderID string) (*Order, error)
	// GetForUser 按订单 ID 获取属于指定用户的订单
	GetForUser(ctx context.Context, orderID, userID string) (*Order, error)
	// ListByUser 按条件分页查询用户订单
	ListByUser(ctx context.Context, userID string, side OrderSide, status OrderStatus, limit, offset int) ([]*Order, int64, error)
	// SaveHistory 追加一条状态变更历史
	SaveHistory(ctx context.Context, history *OrderHistory) error
	// ListHistory 按时间顺序返回订单的全部历史
	ListHistory(ctx context.Context, orderID string) ([]*OrderHistory, error)
	// SaveTrade 写入一条成交记录
	SaveTrade(ctx context.Context, trade *Trade) error
	// ListTrades 按时间顺序返回订单的全部成交
	ListTrades(ctx context.Context, orderID string) ([]*Trade, error)
}

// EventPublisher 事件发布接口，实现方须保证与业务变更同事务写入
type EventPublisher interface {
	PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error
}
