package domain

// Kafka 主题，均以订单 ID 作为消息 key，保证同一订单落在同一分区内顺序处理
const (
	// TopicProcessingRequests 撮合处理请求
	TopicProcessingRequests = "orders.processing.requests"
	// TopicOrderEvents 订单生命周期事件
	TopicOrderEvents = "orders.events"
)

// 事件类型，生命周期事件同时写入 event_type 消息头便于路由
const (
	EventTypeProcess = "order.process"
	EventTypeCancel  = "order.cancel"
	EventTypeUpdate  = "order.update"
)

// EventTypeHeader 承载事件类型的消息头名称
const EventTypeHeader = "event_type"

// OrderEvent 队列消息载荷
type OrderEvent struct {
	OrderID   string `json:"order_id"`
	EventType string `json:"event_type"`
	Timestamp int64  `json:"timestamp"`
	RequestID string `json:"request_id"`
}
