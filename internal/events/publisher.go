package events

import "context"

// Publisher delivers sale events to a message broker.
type Publisher interface {
	PublishSaleRecorded(ctx context.Context, ev SaleRecorded) error
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

// PublishSaleRecorded implements Publisher.
func (NopPublisher) PublishSaleRecorded(context.Context, SaleRecorded) error { return nil }
