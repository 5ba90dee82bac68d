package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/stocktrader/internal/account/domain"
)

// fakeAccountRepo 内存账户仓储
type fakeAccountRepo struct {
	accounts map[string]*domain.Account
	entries  []*domain.AccountTransaction
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *fakeAccountRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeAccountRepo) Get(_ context.Context, userID string) (*domain.Account, error) {
	account, ok := r.accounts[userID]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, account *domain.Account) error {
	copied := *account
	r.accounts[account.UserID] = &copied
	return nil
}

func (r *fakeAccountRepo) SaveEntry(_ context.Context, entry *domain.AccountTransaction) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAccountRepo) ListEntries(_ context.Context, userID string, kind domain.EntryKind, limit, offset int) ([]*domain.AccountTransaction, int64, error) {
	var matched []*domain.AccountTransaction
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		matched = append(matched, e)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func TestDepositCreatesAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewLedgerService(repo)
	ctx := context.Background()

	balance, err := svc.Deposit(ctx, "user-1", decimal.RequireFromString("500"))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if balance.Balance != "500" {
		t.Fatalf("expected balance 500, got %s", balance.Balance)
	}
	if len(repo.entries) != 1 || repo.entries[0].Kind != domain.EntryKindDeposit {
		t.Fatalf("expected one DEPOSIT entry, got %+v", repo.entries)
	}
}

func TestWithdrawRejectsOverdraft(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewLedgerService(repo)
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, "user-1", decimal.RequireFromString("100")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := svc.Withdraw(ctx, "user-1", decimal.RequireFromString("150")); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	balance, err := svc.GetBalance(ctx, "user-1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if balance.Balance != "100" {
		t.Fatalf("rejected withdrawal must not change balance, got %s", balance.Balance)
	}
}

func TestOrderOperationsWriteEntries(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewLedgerService(repo)
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, "user-1", decimal.RequireFromString("1000")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := svc.DebitForOrder(ctx, "user-1", "ORD-1", "Payment for buy order ORD-1", decimal.RequireFromString("600")); err != nil {
		t.Fatalf("debit for order: %v", err)
	}
	if err := svc.RefundOrder(ctx, "user-1", "ORD-1", "Refund for cancelled buy order ORD-1", decimal.RequireFromString("600")); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if err := svc.CreditSellIncome(ctx, "user-1", "ORD-2", "Income from sell order ORD-2", decimal.RequireFromString("250")); err != nil {
		t.Fatalf("credit income: %v", err)
	}

	if err := svc.DebitForOrder(ctx, "user-2", "ORD-3", "Payment", decimal.RequireFromString("10")); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	// 按时间重放全部流水的带符号金额应还原当前余额
	replayed := decimal.Zero
	for _, e := range repo.entries {
		replayed = replayed.Add(e.Amount)
	}
	balance, err := svc.GetBalance(ctx, "user-1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if replayed.String() != balance.Balance {
		t.Fatalf("replayed %s != balance %s", replayed.String(), balance.Balance)
	}
	if balance.Balance != "1250" {
		t.Fatalf("expected balance 1250, got %s", balance.Balance)
	}

	last := repo.entries[len(repo.entries)-1]
	if last.Kind != domain.EntryKindSellIncome || last.RelatedOrderID != "ORD-2" {
		t.Fatalf("unexpected last entry %+v", last)
	}
	if last.BalanceAfter.String() != "1250" {
		t.Fatalf("expected balance_after 1250, got %s", last.BalanceAfter.String())
	}
}

func TestListEntriesFiltersByKind(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewLedgerService(repo)
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, "user-1", decimal.RequireFromString("100")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := svc.Withdraw(ctx, "user-1", decimal.RequireFromString("30")); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	entries, total, err := svc.ListEntries(ctx, "user-1", domain.EntryKindWithdrawal, 10, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("expected 1 withdrawal entry, got total=%d len=%d", total, len(entries))
	}
	if entries[0].Amount != "-30" {
		t.Fatalf("expected amount -30, got %s", entries[0].Amount)
	}
}
