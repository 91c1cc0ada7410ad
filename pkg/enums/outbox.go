package enums

import "slices"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregateProduct OutboxAggregateType = "product"
)

// OutboxEventType names a domain event published through the outbox.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventProductsImported   OutboxEventType = "products_imported"
)

// OutboxDLQErrorReason records why an event stopped being retried.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)

var (
	aggregateTypes = []OutboxAggregateType{AggregateOrder, AggregateProduct}
	eventTypes     = []OutboxEventType{EventOrderCreated, EventOrderStatusChanged, EventProductsImported}
)

func (a OutboxAggregateType) IsValid() bool { return slices.Contains(aggregateTypes, a) }

func (e OutboxEventType) IsValid() bool { return slices.Contains(eventTypes, e) }

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parseMember("aggregate type", value, aggregateTypes)
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parseMember("event type", value, eventTypes)
}
