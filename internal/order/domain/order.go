// Package domain 包含订单执行引擎的领域模型
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/fsm"
	"gorm.io/gorm"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusInitial   OrderStatus = "INITIAL"   // 初始状态
	OrderStatusPending   OrderStatus = "PENDING"   // 等待撮合
	OrderStatusSuccess   OrderStatus = "SUCCESS"   // 完全成交
	OrderStatusFailed    OrderStatus = "FAILED"    // 本次处理失败（可重试）
	OrderStatusRetrying  OrderStatus = "RETRYING"  // 重试中
	OrderStatusCancelled OrderStatus = "CANCELLED" // 已取消
)

// OrderSide 买卖方向
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// MaxRetryCount 达到该次数后自动取消订单
const MaxRetryCount = 3

// 状态机触发器
const (
	triggerSubmit = "SUBMIT"
	triggerFill   = "FILL"
	triggerFail   = "FAIL"
	triggerRetry  = "RETRY"
	triggerCancel = "CANCEL"
	triggerReset  = "RESET"
)

// Order 订单聚合根
// 资金/持仓的预留发生在创建时，成交或取消时释放
type Order struct {
	gorm.Model
	// 订单 ID（业务主键）
	OrderID string `gorm:"column:order_id;type:varchar(36);uniqueIndex;not null" json:"order_id"`
	// 用户 ID
	UserID string `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	// 证券 ID
	SecurityID string `gorm:"column:security_id;type:varchar(10);index;not null" json:"security_id"`
	// 买卖方向
	Side OrderSide `gorm:"column:side;type:varchar(10);not null" json:"side"`
	// 订单状态
	Status OrderStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	// 委托价格
	Price decimal.Decimal `gorm:"column:price;type:decimal(16,2);not null" json:"price"`
	// 委托数量
	Quantity int64 `gorm:"column:quantity;not null" json:"quantity"`
	// 已成交数量
	FilledQuantity int64 `gorm:"column:filled_quantity;not null;default:0" json:"filled_quantity"`
	// 总委托金额（price * quantity，创建时预留）
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(24,2);not null" json:"total_amount"`
	// 重试次数
	RetryCount int `gorm:"column:retry_count;not null;default:0" json:"retry_count"`

	fsm *fsm.Machine[string, string]
}

func (Order) TableName() string { return "orders" }

// NewOrder 创建订单，初始状态为 INITIAL
func NewOrder(orderID, userID, securityID string, side OrderSide, price decimal.Decimal, quantity int64) *Order {
	o := &Order{
		OrderID:        orderID,
		UserID:         userID,
		SecurityID:     securityID,
		Side:           side,
		Status:         OrderStatusInitial,
		Price:          price,
		Quantity:       quantity,
		FilledQuantity: 0,
		TotalAmount:    price.Mul(decimal.NewFromInt(quantity)),
		RetryCount:     0,
	}
	o.initFSM()
	return o
}

func (o *Order) initFSM() {
	m := fsm.NewMachine[string, string](string(o.Status))
	m.AddTransition(string(OrderStatusInitial), triggerSubmit, string(OrderStatusPending))

	m.AddTransition(string(OrderStatusPending), triggerFill, string(OrderStatusSuccess))
	m.AddTransition(string(OrderStatusRetrying), triggerFill, string(OrderStatusSuccess))
	m.AddTransition(string(OrderStatusFailed), triggerFill, string(OrderStatusSuccess))

	m.AddTransition(string(OrderStatusPending), triggerFail, string(OrderStatusFailed))
	m.AddTransition(string(OrderStatusRetrying), triggerFail, string(OrderStatusFailed))
	m.AddTransition(string(OrderStatusFailed), triggerFail, string(OrderStatusFailed))

	m.AddTransition(string(OrderStatusPending), triggerRetry, string(OrderStatusRetrying))
	m.AddTransition(string(OrderStatusRetrying), triggerRetry, string(OrderStatusRetrying))
	m.AddTransition(string(OrderStatusFailed), triggerRetry, string(OrderStatusRetrying))

	m.AddTransition(string(OrderStatusInitial), triggerCancel, string(OrderStatusCancelled))
	m.AddTransition(string(OrderStatusPending), triggerCancel, string(OrderStatusCancelled))
	m.AddTransition(string(OrderStatusFailed), triggerCancel, string(OrderStatusCancelled))
	m.AddTransition(string(OrderStatusRetrying), triggerCancel, string(OrderStatusCancelled))

	m.AddTransition(string(OrderStatusPending), triggerReset, string(OrderStatusPending))
	m.AddTransition(string(OrderStatusRetrying), triggerReset, string(OrderStatusPending))
	o.fsm = m
}

// InitFSM 确保从仓储加载后状态机已初始化
func (o *Order) InitFSM() {
	if o.fsm == nil {
		o.initFSM()
	}
}

func (o *Order) trigger(ctx context.Context, trigger string, next OrderStatus) error {
	o.InitFSM()
	if err := o.fsm.Trigger(ctx, trigger); err != nil {
		return fmt.Errorf("%w: %s not allowed in status %s", ErrInvalidOrderState, trigger, o.Status)
	}
	o.Status = next
	o.UpdatedAt = time.Now()
	return nil
}

// Submit 进入等待撮合状态
func (o *Order) Submit(ctx context.Context) error {
	return o.trigger(ctx, triggerSubmit, OrderStatusPending)
}

// ApplyFill 记录成交并转入 SUCCESS
// 当前策略为全量成交，一次成交即完全成交
func (o *Order) ApplyFill(ctx context.Context, executedQuantity int64) error {
	if err := o.trigger(ctx, triggerFill, OrderStatusSuccess); err != nil {
		return err
	}
	o.FilledQuantity += executedQuantity
	return nil
}

// MarkFailed 本次处理失败，等待下一次尝试
func (o *Order) MarkFailed(ctx context.Context) error {
	return o.trigger(ctx, triggerFail, OrderStatusFailed)
}

// MarkRetrying 价格未匹配，转入重试
func (o *Order) MarkRetrying(ctx context.Context) error {
	return o.trigger(ctx, triggerRetry, OrderStatusRetrying)
}

// Cancel 取消订单
func (o *Order) Cancel(ctx context.Context) error {
	return o.trigger(ctx, triggerCancel, OrderStatusCancelled)
}

// Reset 订单修改后重置处理状态，重试次数清零
func (o *Order) Reset(ctx context.Context) error {
	if err := o.trigger(ctx, triggerReset, OrderStatusPending); err != nil {
		return err
	}
	o.RetryCount = 0
	return nil
}

// RemainingQuantity 未成交数量
func (o *Order) RemainingQuantity() int64 {
	return o.Quantity - o.FilledQuantity
}

// RemainingAmount 未成交部分的预留金额（按委托价）
func (o *Order) RemainingAmount() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.RemainingQuantity()))
}

// Processable 是否可被处理器处理
// SUCCESS/CANCELLED 为终态，重复投递时直接跳过
func (o *Order) Processable() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusRetrying, OrderStatusFailed:
		return true
	}
	return false
}

// Cancelable 是否可取消
func (o *Order) Cancelable() bool {
	switch o.Status {
	case OrderStatusInitial, OrderStatusPending, OrderStatusFailed, OrderStatusRetrying:
		return true
	}
	return false
}

// Updatable 是否可修改（已有成交的订单不可修改）
func (o *Order) Updatable() bool {
	return o.Cancelable() && o.FilledQuantity == 0
}

// IsTerminal 是否处于终态
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusSuccess || o.Status == OrderStatusCancelled
}

// OrderHistory 订单状态变更历史，只追加不修改
type OrderHistory struct {
	ID uint `gorm:"primarykey" json:"id"`
	// 订单 ID
	OrderID string `gorm:"column:order_id;type:varchar(36);index;not null" json:"order_id"`
	// 变更前状态（首条记录为空）
	PreviousStatus *OrderStatus `gorm:"column:previous_status;type:varchar(20)" json:"previous_status"`
	// 变更后状态
	CurrentStatus OrderStatus `gorm:"column:current_status;type:varchar(20);index;not null" json:"current_status"`
	// 变更原因
	Note      string    `gorm:"column:note;type:text" json:"note"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (OrderHistory) TableName() string { return "order_history" }

// NewOrderHistory 创建历史记录
func NewOrderHistory(orderID string, previous *OrderStatus, current OrderStatus, note string) *OrderHistory {
	return &OrderHistory{
		OrderID:        orderID,
		PreviousStatus: previous,
		CurrentStatus:  current,
		Note:           note,
	}
}

// Trade 成交记录，每次成交写入一条，不可变
type Trade struct {
	gorm.Model
	// 成交 ID（业务主键）
	TradeID string `gorm:"column:trade_id;type:varchar(36);uniqueIndex;not null" json:"trade_id"`
	// 订单 ID
	OrderID string `gorm:"column:order_id;type:varchar(36);index;not null" json:"order_id"`
	// 用户 ID
	UserID string `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	// 证券 ID
	SecurityID string `gorm:"column:security_id;type:varchar(10);index;not null" json:"security_id"`
	// 买卖方向
	Side OrderSide `gorm:"column:side;type:varchar(10);not null" json:"side"`
	// 成交价格
	Price decimal.Decimal `gorm:"column:price;type:decimal(16,2);not null" json:"price"`
	// 成交数量
	Quantity int64 `gorm:"column:quantity;not null" json:"quantity"`
	// 成交金额（price * quantity）
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(24,2);not null" json:"amount"`
	// 订单是否完全成交
	IsComplete bool `gorm:"column:is_complete;not null;default:false" json:"is_complete"`
	// 成交时间
	ExecutedAt time.Time `gorm:"column:executed_at;not null" json:"executed_at"`
}

func (Trade) TableName() string { return "trades" }
