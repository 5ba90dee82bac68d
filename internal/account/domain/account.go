// Package domain 资金账户与账本流水的领域模型
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountInactive     = errors.New("account is not active")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// EntryKind 账本流水类型
type EntryKind string

const (
	EntryKindDeposit      EntryKind = "DEPOSIT"       // 充值
	EntryKindWithdrawal   EntryKind = "WITHDRAWAL"    // 提现
	EntryKindOrderPayment EntryKind = "ORDER_PAYMENT" // 买单预留扣款
	EntryKindOrderRefund  EntryKind = "ORDER_REFUND"  // 取消/回退退款
	EntryKindSellIncome   EntryKind = "SELL_INCOME"   // 卖出所得
)

// Account 资金账户
// 余额只允许通过账本操作变动，保证每次变动都有对应流水
type Account struct {
	gorm.Model
	// 用户 ID
	UserID string `gorm:"column:user_id;type:varchar(36);uniqueIndex;not null" json:"user_id"`
	// 现金余额
	Balance decimal.Decimal `gorm:"column:balance;type:decimal(24,2);not null;default:0" json:"balance"`
	// 账户是否可用
	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (Account) TableName() string { return "accounts" }

// NewAccount 创建零余额的可用账户
func NewAccount(userID string) *Account {
	return &Account{
		UserID:   userID,
		Balance:  decimal.Zero,
		IsActive: true,
	}
}

// Credit 入账
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// Debit 出账，余额不足时拒绝
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// AccountTransaction 账本流水，只追加不修改
// 按时间重放全部流水的带符号金额可精确还原当前余额
type AccountTransaction struct {
	ID uint `gorm:"primarykey" json:"id"`
	// 流水 ID（业务主键）
	TransactionID string `gorm:"column:transaction_id;type:varchar(36);uniqueIndex;not null" json:"transaction_id"`
	// 用户 ID
	UserID string `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	// 流水类型
	Kind EntryKind `gorm:"column:kind;type:varchar(20);index;not null" json:"kind"`
	// 带符号金额，入账为正出账为负
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(24,2);not null" json:"amount"`
	// 变动后余额快照
	BalanceAfter decimal.Decimal `gorm:"column:balance_after;type:decimal(24,2);not null" json:"balance_after"`
	// 说明
	Description string `gorm:"column:description;type:varchar(255)" json:"description"`
	// 关联订单 ID（与订单无关的流水为空）
	RelatedOrderID string    `gorm:"column:related_order_id;type:varchar(36);index" json:"related_order_id"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (AccountTransaction) TableName() string { return "account_transactions" }

// AccountRepository 账户仓储接口
type AccountRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// Get 按用户 ID 获取账户，未命中返回 (nil, nil)
	Get(ctx context.Context, userID string) (*Account, error)
	Save(ctx context.Context, account *Account) error
	// SaveEntry 追加一条账本流水
	SaveEntry(ctx context.Context, entry *AccountTransaction) error
	// ListEntries 按时间倒序分页查询流水，kind 为空时不过滤
	ListEntries(ctx context.Context, userID string, kind EntryKind, limit, offset int) ([]*AccountTransaction, int64, error)
}
