package consumer

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/stocktrader/internal/order/domain"
)

type stubProcessor struct {
	processed []string
	resets    []string
	err       error
}

func (s *stubProcessor) ProcessOrder(_ context.Context, orderID string) error {
	s.processed = append(s.processed, orderID)
	return s.err
}

func (s *stubProcessor) ResetOrder(_ context.Context, orderID string) error {
	s.resets = append(s.resets, orderID)
	return s.err
}

func TestProcessingHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("valid request triggers processing", func(t *testing.T) {
		stub := &stubProcessor{}
		h := NewProcessingHandler(stub, slog.Default())
		msg := kafka.Message{Value: []byte(`{"order_id":"ORD-1","event_type":"order.process"}`)}
		if err := h.Handle(ctx, msg); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if len(stub.processed) != 1 || stub.processed[0] != "ORD-1" {
			t.Fatalf("expected ORD-1 processed, got %v", stub.processed)
		}
	})

	t.Run("malformed payload is acked and dropped", func(t *testing.T) {
		stub := &stubProcessor{}
		h := NewProcessingHandler(stub, slog.Default())
		msg := kafka.Message{Value: []byte(`{not json`)}
		if err := h.Handle(ctx, msg); err != nil {
			t.Fatalf("malformed message must be acked, got %v", err)
		}
		if len(stub.processed) != 0 {
			t.Fatal("malformed message must not trigger processing")
		}
	})

	t.Run("missing order id is acked and dropped", func(t *testing.T) {
		stub := &stubProcessor{}
		h := NewProcessingHandler(stub, slog.Default())
		msg := kafka.Message{Value: []byte(`{"event_type":"order.process"}`)}
		if err := h.Handle(ctx, msg); err != nil {
			t.Fatalf("message without order id must be acked, got %v", err)
		}
		if len(stub.processed) != 0 {
			t.Fatal("message without order id must not trigger processing")
		}
	})

	t.Run("processing error requests redelivery", func(t *testing.T) {
		stub := &stubProcessor{err: errors.New("db down")}
		h := NewProcessingHandler(stub, slog.Default())
		msg := kafka.Message{Value: []byte(`{"order_id":"ORD-1"}`)}
		if err := h.Handle(ctx, msg); err == nil {
			t.Fatal("expected error to trigger redelivery")
		}
	})
}

func TestLifecycleHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("update event resets order", func(t *testing.T) {
		stub := &stubProcessor{}
		h := NewLifecycleHandler(stub, slog.Default())
		msg := kafka.Message{Value: []byte(`{"order_id":"ORD-1","event_type":"order.update"}`)}
		if err := h.Handle(ctx, msg); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if len(stub.resets) != 1 || stub.resets[0] != "ORD-1" {
			t.Fatalf("expected ORD-1 reset, got %v", stub.resets)
		}
	})

	t.Run("event type header wins over payload", func(t *testing.T) {
		stub := &stubProcessor{}
		h := NewLifecycleHandler(stub, slog.Default())
		msg := kafka.Message{
			Value:   []byte(`{"order_id":"ORD-1","event_type":"order.cancel"}`),
			Headers: []kafka.Header{{Key: domain.EventTypeHeader, Value: []byte(domain.EventTypeUpdate)}},
		}
		if err := h.Handle(ctx, msg); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if len(stub.resets) != 1 {
			t.Fatalf("expected header-routed reset, got %v", stub.resets)
		}
	})

	t.Run("cancel and process events are notification only", func(t *testing.T) {
		stub := &stubProcessor{}
		h := NewLifecycleHandler(stub, slog.Default())
		for _, eventType := range []string{domain.EventTypeCancel, domain.EventTypeProcess} {
			msg := kafka.Message{Value: []byte(`{"order_id":"ORD-1","event_type":"` + eventType + `"}`)}
			if err := h.Handle(ctx, msg); err != nil {
				t.Fatalf("handle %s: %v", eventType, err)
			}
		}
		if len(stub.resets) != 0 || len(stub.processed) != 0 {
			t.Fatal("notification events must not trigger order operations")
		}
	})

	t.Run("unknown event type is acked and dropped", func(t *testing.T) {
		stub := &stubProcessor{}
		h := NewLifecycleHandler(stub, slog.Default())
		msg := kafka.Message{Value: []byte(`{"order_id":"ORD-1","event_type":"order.exotic"}`)}
		if err := h.Handle(ctx, msg); err != nil {
			t.Fatalf("unknown event type must be acked, got %v", err)
		}
	})

	t.Run("malformed payload is acked and dropped", func(t *testing.T) {
		stub := &stubProcessor{}
		h := NewLifecycleHandler(stub, slog.Default())
		msg := kafka.Message{Value: []byte(`garbage`)}
		if err := h.Handle(ctx, msg); err != nil {
			t.Fatalf("malformed message must be acked, got %v", err)
		}
	})
}
