// Package application 资金账本的用例逻辑
package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/stocktrader/internal/account/domain"
)

// LedgerService 资金账本服务
// 余额变动与流水写入总是发生在同一个事务里；订单相关操作
// 由订单事务调用，直接复用 ctx 中的事务句柄
type LedgerService struct {
	repo domain.AccountRepository
}

// NewLedgerService 创建账本服务
func NewLedgerService(repo domain.AccountRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

// BalanceDTO 余额视图
type BalanceDTO struct {
	UserID  string `json:"user_id"`
	Balance string `json:"balance"`
}

// EntryDTO 流水视图
type EntryDTO struct {
	TransactionID  string `json:"transaction_id"`
	Kind           string `json:"kind"`
	Amount         string `json:"amount"`
	BalanceAfter   string `json:"balance_after"`
	Description    string `json:"description"`
	RelatedOrderID string `json:"related_order_id,omitempty"`
	CreatedAt      int64  `json:"created_at"`
}

// Deposit 充值，账户不存在时随首笔充值一并创建
func (s *LedgerService) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (*BalanceDTO, error) {
	var dto *BalanceDTO
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		account, err := s.repo.Get(txCtx, userID)
		if err != nil {
			return err
		}
		if account == nil {
			account = domain.NewAccount(userID)
		} else if !account.IsActive {
			return fmt.Errorf("%w: %s", domain.ErrAccountInactive, userID)
		}
		if err := account.Credit(amount); err != nil {
			return err
		}
		if err := s.appendEntry(txCtx, account, domain.EntryKindDeposit, amount, "Deposit to account", ""); err != nil {
			return err
		}
		dto = toBalanceDTO(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Withdraw 提现，余额不足时拒绝
func (s *LedgerService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (*BalanceDTO, error) {
	var dto *BalanceDTO
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		account, err := s.activeAccount(txCtx, userID)
		if err != nil {
			return err
		}
		if err := account.Debit(amount); err != nil {
			return err
		}
		if err := s.appendEntry(txCtx, account, domain.EntryKindWithdrawal, amount.Neg(), "Withdrawal from account", ""); err != nil {
			return err
		}
		dto = toBalanceDTO(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// DebitForOrder 买单创建时预留资金，必须在外层订单事务内调用
func (s *LedgerService) DebitForOrder(ctx context.Context, userID, orderID, description string, amount decimal.Decimal) error {
	account, err := s.activeAccount(ctx, userID)
	if err != nil {
		return err
	}
	if err := account.Debit(amount); err != nil {
		return err
	}
	return s.appendEntry(ctx, account, domain.EntryKindOrderPayment, amount.Neg(), description, orderID)
}

// RefundOrder 退还预留资金，必须在外层订单事务内调用
func (s *LedgerService) RefundOrder(ctx context.Context, userID, orderID, description string, amount decimal.Decimal) error {
	account, err := s.activeAccount(ctx, userID)
	if err != nil {
		return err
	}
	if err := account.Credit(amount); err != nil {
		return err
	}
	return s.appendEntry(ctx, account, domain.EntryKindOrderRefund, amount, description, orderID)
}

// CreditSellIncome 卖单成交后入账，必须在外层订单事务内调用
func (s *LedgerService) CreditSellIncome(ctx context.Context, userID, orderID, description string, amount decimal.Decimal) error {
	account, err := s.activeAccount(ctx, userID)
	if err != nil {
		return err
	}
	if err := account.Credit(amount); err != nil {
		return err
	}
	return s.appendEntry(ctx, account, domain.EntryKindSellIncome, amount, description, orderID)
}

// GetBalance 查询余额
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (*BalanceDTO, error) {
	account, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return toBalanceDTO(account), nil
}

// ListEntries 分页查询账本流水
func (s *LedgerService) ListEntries(ctx context.Context, userID string, kind domain.EntryKind, limit, offset int) ([]*EntryDTO, int64, error) {
	entries, total, err := s.repo.ListEntries(ctx, userID, kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = &EntryDTO{
			TransactionID:  e.TransactionID,
			Kind:           string(e.Kind),
			Amount:         e.Amount.String(),
			BalanceAfter:   e.BalanceAfter.String(),
			Description:    e.Description,
			RelatedOrderID: e.RelatedOrderID,
			CreatedAt:      e.CreatedAt.Unix(),
		}
	}
	return dtos, total, nil
}

func (s *LedgerService) activeAccount(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	if !account.IsActive {
		return nil, domain.ErrAccountInactive
	}
	return account, nil
}

func (s *LedgerService) appendEntry(ctx context.Context, account *domain.Account, kind domain.EntryKind, amount decimal.Decimal, description, orderID string) error {
	if err := s.repo.Save(ctx, account); err != nil {
		return err
	}
	return s.repo.SaveEntry(ctx, &domain.AccountTransaction{
		TransactionID:  fmt.Sprintf("TXN-%d", idgen.GenID()),
		UserID:         account.UserID,
		Kind:           kind,
		Amount:         amount,
		BalanceAfter:   account.Balance,
		Description:    description,
		RelatedOrderID: orderID,
	})
}

func toBalanceDTO(account *domain.Account) *BalanceDTO {
	return &BalanceDTO{UserID: account.UserID, Balance: account.Balance.String()}
}
