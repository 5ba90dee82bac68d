package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/stocktrader/internal/marketdata/domain"
)

// securityRepository 证券与价格仓储实现
type securityRepository struct {
	db *gorm.DB
}

// NewSecurityRepository 创建并返回一个新的 securityRepository 实例。
func NewSecurityRepository(db *gorm.DB) domain.SecurityRepository {
	return &securityRepository{db: db}
}

// Get 按证券 ID 查询，未找到时返回 (nil, nil)
func (r *securityRepository) Get(ctx context.Context, securityID string) (*domain.Security, error) {
	var security domain.Security
	if err := r.db.WithContext(ctx).Where("security_id = ?", securityID).First(&security).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &security, nil
}

// Save 保存证券（按证券 ID upsert）
func (r *securityRepository) Save(ctx context.Context, security *domain.Security) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "security_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"company_name", "industry", "is_active", "updated_at"}),
	}).Create(security).Error
}

// GetPrice 查询证券当前价格，未找到时返回 (nil, nil)
func (r *securityRepository) GetPrice(ctx context.Context, securityID string) (*domain.SecurityPrice, error) {
	var price domain.SecurityPrice
	if err := r.db.WithContext(ctx).Where("security_id = ?", securityID).First(&price).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}

// SavePrice 保存证券价格（按证券 ID upsert）
func (r *securityRepository) SavePrice(ctx context.Context, price *domain.SecurityPrice) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "security_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_price", "updated_at"}),
	}).Create(price).Error
}
