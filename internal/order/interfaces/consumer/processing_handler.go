package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

// OrderProcessor 处理器侧需要的订单操作
type OrderProcessor interface {
	ProcessOrder(ctx context.Context, orderID string) error
	ResetOrder(ctx context.Context, orderID string) error
}

// ProcessingHandler 消费订单处理请求并触发一次成交尝试。
// 消息以订单 ID 作为分区键，同一订单的请求在分区内串行处理。
type ProcessingHandler struct {
	manager OrderProcessor
	logger  *slog.Logger
}

func NewProcessingHandler(manager OrderProcessor, logger *slog.Logger) *ProcessingHandler {
	return &ProcessingHandler{manager: manager, logger: logger}
}

// Handle 处理一条处理请求消息。畸形消息记录后直接确认，
// 业务处理失败返回错误以触发重新投递。
func (h *ProcessingHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event domain.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.ErrorContext(ctx, "dropping malformed processing request",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return nil
	}
	if event.OrderID == "" {
		h.logger.ErrorContext(ctx, "dropping processing request without order id",
			"topic", msg.Topic, "offset", msg.Offset)
		return nil
	}

	if err := h.manager.ProcessOrder(ctx, event.OrderID); err != nil {
		h.logger.ErrorContext(ctx, "failed to process order",
			"order_id", event.OrderID, "request_id", event.RequestID, "error", err)
		return err
	}
	return nil
}
