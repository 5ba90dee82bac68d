package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

// LifecycleHandler 消费订单生命周期事件。
// order.update 事件触发处理进度重置并重新排队；
// order.process 与 order.cancel 事件仅作为通知记录。
type LifecycleHandler struct {
	manager OrderProcessor
	logger  *slog.Logger
}

func NewLifecycleHandler(manager OrderProcessor, logger *slog.Logger) *LifecycleHandler {
	return &LifecycleHandler{manager: manager, logger: logger}
}

// Handle 处理一条生命周期事件消息。事件类型优先取 Kafka 消息头，
// 缺失时回退到消息体字段。
func (h *LifecycleHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event domain.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.ErrorContext(ctx, "dropping malformed lifecycle event",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return nil
	}

	eventType := headerValue(msg, domain.EventTypeHeader)
	if eventType == "" {
		eventType = event.EventType
	}
	if event.OrderID == "" || eventType == "" {
		h.logger.ErrorContext(ctx, "dropping lifecycle event without order id or type",
			"topic", msg.Topic, "offset", msg.Offset)
		return nil
	}

	switch eventType {
	case domain.EventTypeUpdate:
		if err := h.manager.ResetOrder(ctx, event.OrderID); err != nil {
			h.logger.ErrorContext(ctx, "failed to reset order after update",
				"order_id", event.OrderID, "error", err)
			return err
		}
	case domain.EventTypeProcess, domain.EventTypeCancel:
		h.logger.InfoContext(ctx, "order lifecycle event",
			"order_id", event.OrderID, "event_type", eventType)
	default:
		h.logger.WarnContext(ctx, "dropping lifecycle event with unknown type",
			"order_id", event.OrderID, "event_type", eventType)
	}
	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
