package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/wyfcoding/stocktrader/internal/account/domain"
)

// accountRepository 账户仓储实现
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建并返回一个新的 accountRepository 实例。
func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

// Get 按用户 ID 查询账户，未找到时返回 (nil, nil)
func (r *accountRepository) Get(ctx context.Context, userID string) (*domain.Account, error) {
	var account domain.Account
	if err := r.getDB(ctx).WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Save 保存账户（新建或更新）
func (r *accountRepository) Save(ctx context.Context, account *domain.Account) error {
	return r.getDB(ctx).WithContext(ctx).Save(account).Error
}

// SaveEntry 追加一条账务流水
func (r *accountRepository) SaveEntry(ctx context.Context, entry *domain.AccountTransaction) error {
	return r.getDB(ctx).WithContext(ctx).Create(entry).Error
}

// ListEntries 分页查询账务流水，kind 为空时不过滤，按时间倒序
func (r *accountRepository) ListEntries(ctx context.Context, userID string, kind domain.EntryKind, limit, offset int) ([]*domain.AccountTransaction, int64, error) {
	query := r.getDB(ctx).WithContext(ctx).Model(&domain.AccountTransaction{}).Where("user_id = ?", userID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*domain.AccountTransaction
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *accountRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
