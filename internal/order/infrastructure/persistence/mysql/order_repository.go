package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

// orderRepository 订单仓储实现
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建并返回一个新的 orderRepository 实例。
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

// Save 保存订单（新建或更新）
func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	return r.getDB(ctx).WithContext(ctx).Save(order).Error
}

// Get 按订单 ID 查询，未找到时返回 (nil, nil)
func (r *orderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	if err := r.getDB(ctx).WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetForUser 按订单 ID 与用户 ID 查询，未找到时返回 (nil, nil)
func (r *orderRepository) GetForUser(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	var order domain.Order
	err := r.getDB(ctx).WithContext(ctx).
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser 分页查询用户订单，side 与 status 为空时不过滤
func (r *orderRepository) ListByUser(ctx context.Context, userID string, side domain.OrderSide, status domain.OrderStatus, limit, offset int) ([]*domain.Order, int64, error) {
	query := r.getDB(ctx).WithContext(ctx).Model(&domain.Order{}).Where("user_id = ?", userID)
	if side != "" {
		query = query.Where("side = ?", side)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*domain.Order
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// SaveHistory 追加一条状态变更历史
func (r *orderRepository) SaveHistory(ctx context.Context, history *domain.OrderHistory) error {
	return r.getDB(ctx).WithContext(ctx).Create(history).Error
}

// ListHistory 按时间正序返回订单的状态变更历史
func (r *orderRepository) ListHistory(ctx context.Context, orderID string) ([]*domain.OrderHistory, error) {
	var history []*domain.OrderHistory
	err := r.getDB(ctx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// SaveTrade 追加一条成交记录
func (r *orderRepository) SaveTrade(ctx context.Context, trade *domain.Trade) error {
	return r.getDB(ctx).WithContext(ctx).Create(trade).Error
}

// ListTrades 按时间正序返回订单的成交记录
func (r *orderRepository) ListTrades(ctx context.Context, orderID string) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	err := r.getDB(ctx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("executed_at ASC, id ASC").
		Find(&trades).Error
	if err != nil {
		return nil, err
	}
	return trades, nil
}

func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
