package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/wyfcoding/stocktrader/internal/portfolio/domain"
)

// positionRepository 持仓仓储实现
type positionRepository struct {
	db *gorm.DB
}

// NewPositionRepository 创建并返回一个新的 positionRepository 实例。
func NewPositionRepository(db *gorm.DB) domain.PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

// Get 按 (用户, 证券) 查询持仓，未找到时返回 (nil, nil)
func (r *positionRepository) Get(ctx context.Context, userID, securityID string) (*domain.Position, error) {
	var position domain.Position
	err := r.getDB(ctx).WithContext(ctx).
		Where("user_id = ? AND security_id = ?", userID, securityID).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &position, nil
}

// Save 保存持仓（新建或更新）
func (r *positionRepository) Save(ctx context.Context, position *domain.Position) error {
	return r.getDB(ctx).WithContext(ctx).Save(position).Error
}

// ListByUser 返回用户全部持仓
func (r *positionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Position, error) {
	var positions []*domain.Position
	err := r.getDB(ctx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("security_id ASC").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
