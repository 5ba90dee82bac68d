package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	accountapp "github.com/wyfcoding/stocktrader/internal/account/application"
	accountdomain "github.com/wyfcoding/stocktrader/internal/account/domain"
	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

// AccountLedgerAdapter 将账户上下文的台账服务适配为订单上下文的资金台账端口，
// 并把账户域错误翻译为订单域错误。
type AccountLedgerAdapter struct {
	ledger *accountapp.LedgerService
}

// NewAccountLedgerAdapter 创建资金台账适配器。
func NewAccountLedgerAdapter(ledger *accountapp.LedgerService) *AccountLedgerAdapter {
	return &AccountLedgerAdapter{ledger: ledger}
}

func (a *AccountLedgerAdapter) DebitForOrder(ctx context.Context, userID, orderID, description string, amount decimal.Decimal) error {
	return translateAccountErr(a.ledger.DebitForOrder(ctx, userID, orderID, description, amount))
}

func (a *AccountLedgerAdapter) RefundOrder(ctx context.Context, userID, orderID, description string, amount decimal.Decimal) error {
	return translateAccountErr(a.ledger.RefundOrder(ctx, userID, orderID, description, amount))
}

func (a *AccountLedgerAdapter) CreditSellIncome(ctx context.Context, userID, orderID, description string, amount decimal.Decimal) error {
	return translateAccountErr(a.ledger.CreditSellIncome(ctx, userID, orderID, description, amount))
}

func translateAccountErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, accountdomain.ErrInsufficientBalance) {
		return fmt.Errorf("%w: %v", domain.ErrInsufficientFunds, err)
	}
	return err
}
